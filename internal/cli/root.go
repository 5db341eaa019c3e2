// Package cli implements floorctl, the operator command line for the reservation service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/observability"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

type options struct {
	verbose bool
}

func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "floorctl",
		Short:         "Operate the reservation service: apply table holds, migrate storage, mint staff tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stdout while running")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newApplyHoldsCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newTokenCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "floorctl %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}

func (o *options) logger(cfg *config.Config) (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	return observability.NewLogger(cfg.App, cfg.Logger)
}
