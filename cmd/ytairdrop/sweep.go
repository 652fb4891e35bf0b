package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ytairdrop/internal/report"
)

func newSweepCmd(c *cli) *cobra.Command {
	var (
		top  int
		days []int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Rank every entry day by ROI at each FDV",
		Long: `sweep evaluates buying every configured position on each candidate entry day
and ranks the days by ROI for every FDV. Days outside the program are ignored
and repeated days are evaluated once.`,
		Example: `  ytairdrop sweep --top 10
  ytairdrop sweep --days 0,7,14,21 --config scenario.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("top") {
				top = c.cfg.Sweep.Top
			}
			if !cmd.Flags().Changed("days") {
				days = c.cfg.Sweep.EntryDays
			}
			if top < 0 {
				return fmt.Errorf("--top must not be negative, got %d", top)
			}
			return c.runSweep(cmd, days, top)
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "entry days to list per FDV (default from sweep.top)")
	cmd.Flags().IntSliceVar(&days, "days", nil, "candidate entry days, e.g. 0,5,10 (default every day)")
	return cmd
}

func (c *cli) runSweep(cmd *cobra.Command, days []int, top int) error {
	// An empty list from config means every day.
	if len(days) == 0 {
		days = nil
	}
	res, err := c.svc.Sweep(cmd.Context(), days, top)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.stdout); err != nil {
		return err
	}
	return report.Sweep(c.stdout, res, top)
}
