// Command gmwdg runs a software multi-watchdog demonstration
// and prints its effective configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gordian-engine/gmwdg/internal/gci"
)

func main() {
	if err := mainE(); err != nil {
		os.Exit(1)
	}
}

func mainE() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// A nil logger lets each subcommand build one from configuration.
	root := gci.NewRootCmd(nil)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), err)
		os.Stderr.Sync()
		return err
	}

	return nil
}
