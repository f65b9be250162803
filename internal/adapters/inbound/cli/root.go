package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openkraft/fixloop/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var (
		verbosity int
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "fixloop",
		Short: "Apply analyzer fixes until nothing is left to fix",
		Long: "fixloop runs Go analyzers over every package of a module and applies their suggested fixes, " +
			"package by package in dependency order, until the diagnostics stop changing.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cmd.ErrOrStderr(), logging.Level(verbosity, quiet))
			cmd.SetContext(logging.WithLogger(cmd.Context(), log))
			return nil
		},
	}
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "More log output (repeat for trace)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newAnalyzersCmd())
	cmd.AddCommand(newGraphCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func projectPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
