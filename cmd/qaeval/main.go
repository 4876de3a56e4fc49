package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gauravv801/QA-Eval/internal/cli"
	qaerrors "github.com/Gauravv801/QA-Eval/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad flow descriptions (2) and degenerate graphs (3)
// from tool failure (1) so CI wrappers can branch on the result.
func exitCode(err error) int {
	switch qaerrors.GetCode(err) {
	case qaerrors.ErrCodeInvalidInput, qaerrors.ErrCodeInvalidGraph,
		qaerrors.ErrCodeInvalidFormat, qaerrors.ErrCodeInvalidConfig:
		return 2
	case qaerrors.ErrCodeDegenerateGraph:
		return 3
	default:
		return 1
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
