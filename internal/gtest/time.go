package gtest

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TimeFactor multiplies every test timeout produced by [ScaleMs].
// It is read from the GMWDG_TEST_TIME_FACTOR environment variable,
// so a slow CI machine can get longer timeouts without code changes.
var TimeFactor ScaledDuration = 1

func init() {
	f := os.Getenv("GMWDG_TEST_TIME_FACTOR")
	if f == "" {
		return
	}

	n, err := strconv.Atoi(f)
	if err != nil {
		panic(fmt.Errorf(
			"failed to parse GMWDG_TEST_TIME_FACTOR (%q) into an integer: %w",
			f, err,
		))
	}

	if n <= 0 {
		panic(fmt.Errorf("GMWDG_TEST_TIME_FACTOR must be positive; got %d", n))
	}

	TimeFactor = ScaledDuration(n)
}

// ScaledDuration is a test duration already multiplied by [TimeFactor].
type ScaledDuration time.Duration

// ScaleMs returns ms milliseconds multiplied by [TimeFactor].
func ScaleMs(ms int64) ScaledDuration {
	return TimeFactor * ScaledDuration(ms) * ScaledDuration(time.Millisecond)
}
