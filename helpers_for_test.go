package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gordian-engine/gmwdg/internal/gci"
	"github.com/stretchr/testify/require"
)

func NewRootCmd(t *testing.T, log *slog.Logger) CmdEnv {
	t.Helper()

	return CmdEnv{
		log:     log,
		homeDir: t.TempDir(),
	}
}

// CmdEnv runs the root command in isolation.
type CmdEnv struct {
	log     *slog.Logger
	homeDir string
}

func (e CmdEnv) Run(args ...string) RunResult {
	return e.RunC(context.Background(), args...)
}

func (e CmdEnv) RunC(ctx context.Context, args ...string) RunResult {
	return e.RunWithInputC(ctx, nil, args...)
}

func (e CmdEnv) RunWithInputC(ctx context.Context, in io.Reader, args ...string) RunResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := gci.NewRootCmd(e.log)
	cmd.SetArgs(slices.Clone(args))

	var res RunResult
	cmd.SetOut(&res.Stdout)
	cmd.SetErr(&res.Stderr)
	cmd.SetIn(in)

	res.Err = cmd.ExecuteContext(ctx)
	return res
}

type RunResult struct {
	Stdout, Stderr bytes.Buffer
	Err            error
}

func (r RunResult) NoError(t *testing.T) {
	t.Helper()

	require.NoErrorf(t, r.Err, "OUT: %s\n\nERR: %s", r.Stdout.String(), r.Stderr.String())
}

// WriteFile writes content to name inside the environment's temporary directory
// and returns the full path.
func (e CmdEnv) WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(e.homeDir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}
