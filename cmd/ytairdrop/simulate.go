package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/ytairdrop/internal/report"
)

func newSimulateCmd(c *cli) *cobra.Command {
	var withSweep bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project the allocation for the configured positions",
		Long: `simulate computes network and user points for the configured entry days and
prints the projected allocation at every FDV. When sweep.enabled is set in the
configuration (or --sweep is passed) the entry-day sweep follows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := c.svc.Simulate(ctx)
			if err != nil {
				return err
			}
			if err := report.Simulation(c.stdout, res); err != nil {
				return err
			}

			if !cmd.Flags().Changed("sweep") {
				withSweep = c.cfg.Sweep.Enabled
			}
			if !withSweep {
				return nil
			}
			return c.runSweep(cmd, c.cfg.Sweep.EntryDays, c.cfg.Sweep.Top)
		},
	}
	cmd.Flags().BoolVar(&withSweep, "sweep", false, "also run the entry-day sweep (default from sweep.enabled)")
	return cmd
}
