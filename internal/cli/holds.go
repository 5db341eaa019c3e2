package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/spec-kit/reservation-service/internal/app"
	"github.com/spec-kit/reservation-service/internal/config"
)

func newApplyHoldsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "apply-holds",
		Short: "Mark tables reserved for today's upcoming reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			c, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Holds.Apply(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "%s %s: applied %d hold(s)\n", report.Date, report.Now, report.Applied)
			for _, r := range report.Results {
				if r.OK {
					fmt.Fprintf(out, "  ok      %s\n", r.Target)
				} else {
					fmt.Fprintf(out, "  failed  %s: %s\n", r.Target, r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}
