package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// ExitItemErrors is returned when some catalog entries failed.
	ExitItemErrors = 1
	// ExitFatal is returned when a run could not be performed at all.
	ExitFatal = 2
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "catalog-sync",
	Short: "Catalog Sync Service",
	Long: `Catalog Sync keeps a locally defined product catalog in step with Stripe.
It creates missing products, rotates changed prices and records the mapping
between local ids and provider ids in a database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries the process exit code of a failed command.
// A nil Err means the outcome has already been reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func fatal(err error) error {
	return &ExitError{Code: ExitFatal, Err: err}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := 1
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			os.Exit(code)
		}
	}

	reportError(err)
	os.Exit(code)
}

// reportError logs err on the console with ISO8601 timestamps, matching what
// operators read in a terminal.
func reportError(err error) {
	cfg := &logger.Config{
		Level:  "debug",
		Format: "console",
	}

	l, logErr := logger.New(cfg)
	if logErr != nil {
		fmt.Println(err)
		return
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
}
