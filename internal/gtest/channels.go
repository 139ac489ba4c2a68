package gtest

import (
	"time"
)

// TestingFatalHelper is the subset of [testing.TB] used by the channel helpers,
// so that the helpers themselves can be tested with a fake.
type TestingFatalHelper interface {
	Helper()

	Fatalf(format string, args ...any)
}

// ReceiveSoon receives a value from ch,
// calling tb.Fatalf if none arrives within a short default timeout.
func ReceiveSoon[T any](tb TestingFatalHelper, ch <-chan T) T {
	tb.Helper()
	return ReceiveOrTimeout(tb, ch, ScaleMs(100))
}

// ReceiveOrTimeout receives a value from ch,
// calling tb.Fatalf if none arrives within timeout.
//
// Prefer [ReceiveSoon] unless a test has a specific reason to wait longer.
func ReceiveOrTimeout[T any](tb TestingFatalHelper, ch <-chan T, timeout ScaledDuration) T {
	tb.Helper()

	if ch == nil {
		tb.Fatalf("refusing to block receiving from nil channel %T", ch)
		panic("unreachable")
	}

	timer := time.NewTimer(time.Duration(timeout))
	defer timer.Stop()

	select {
	case <-timer.C:
		tb.Fatalf(
			"timed out after %s receiving from %T; set GMWDG_TEST_TIME_FACTOR above %d if this machine is slow",
			time.Duration(timeout), ch, TimeFactor,
		)
		// Fatalf stops a real test goroutine; fakes return, so panic instead.
		panic("unreachable")
	case x := <-ch:
		return x
	}
}

// NotSending calls tb.Fatalf if a value is immediately available on ch.
func NotSending[T any](tb TestingFatalHelper, ch <-chan T) {
	tb.Helper()

	if ch == nil {
		tb.Fatalf("a nil channel %T never sends; the check is meaningless", ch)
		panic("unreachable")
	}

	select {
	case x := <-ch:
		tb.Fatalf("expected no value on %T, got %v", ch, x)
	default:
		// Okay.
	}
}

// NotSendingSoon calls tb.Fatalf if a value arrives on ch within a short duration.
// Prefer [NotSending] when the test has another way to synchronize.
func NotSendingSoon[T any](tb TestingFatalHelper, ch <-chan T) {
	tb.Helper()

	if ch == nil {
		tb.Fatalf("a nil channel %T never sends; the check is meaningless", ch)
		panic("unreachable")
	}

	timer := time.NewTimer(time.Duration(ScaleMs(75)))
	defer timer.Stop()

	select {
	case <-timer.C:
		// Okay.
	case x := <-ch:
		tb.Fatalf("expected no value on %T, got %v", ch, x)
		panic("unreachable")
	}
}
