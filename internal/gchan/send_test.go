package gchan_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/gordian-engine/gmwdg/internal/gchan"
	"github.com/gordian-engine/gmwdg/internal/gtest"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestSendC_contextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	res := make(chan bool, 1)

	// A nil channel never accepts a send.
	var out chan int
	go func() {
		res <- gchan.SendC(ctx, jsonLogger(&buf), out, 1, "sending in test")
	}()

	gtest.NotSendingSoon(t, res)

	cancel()
	require.False(t, gtest.ReceiveSoon(t, res))

	var m map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "INFO", m["level"])
	require.Equal(t, "Context canceled while sending in test", m["msg"])
	require.Equal(t, context.Canceled.Error(), m["cause"])
}

func TestSendC_sent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := make(chan int, 1)

	require.True(t, gchan.SendC(context.Background(), jsonLogger(&buf), out, 5, "sending in test"))
	require.Equal(t, 5, gtest.ReceiveSoon(t, out))
	require.Zero(t, buf.Len())
}

func TestRecvC(t *testing.T) {
	t.Parallel()

	t.Run("received", func(t *testing.T) {
		t.Parallel()

		in := make(chan string, 1)
		in <- "x"

		var buf bytes.Buffer
		v, ok := gchan.RecvC(context.Background(), jsonLogger(&buf), in, "receiving in test")
		require.True(t, ok)
		require.Equal(t, "x", v)
		require.Zero(t, buf.Len())
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var buf bytes.Buffer
		var in chan string
		v, ok := gchan.RecvC(ctx, jsonLogger(&buf), in, "receiving in test")
		require.False(t, ok)
		require.Empty(t, v)
		require.Contains(t, buf.String(), "Context canceled while receiving in test")
	})
}

func TestReqResp(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type req struct {
		N    int
		Resp chan int
	}
	reqs := make(chan req)

	go func() {
		r := <-reqs
		r.Resp <- r.N * 2
	}()

	r := req{N: 21, Resp: make(chan int, 1)}
	got, ok := gchan.ReqResp(ctx, gtest.NewLogger(t), reqs, r, r.Resp, "doubling")
	require.True(t, ok)
	require.Equal(t, 42, got)

	// Nobody is serving requests any more.
	cancel()
	r = req{N: 1, Resp: make(chan int, 1)}
	_, ok = gchan.ReqResp(ctx, gtest.NewLogger(t), reqs, r, r.Resp, "doubling")
	require.False(t, ok)
}
