// Package report renders calculator results as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	service "github.com/okian/ytairdrop/internal/app"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/sweep"
)

// Simulation writes the single-run summary: network and user totals, the
// per-position breakdown and one line per FDV.
func Simulation(w io.Writer, res model.SimulationResult) error {
	if _, err := fmt.Fprintf(w, "Run %s\n", res.RunID); err != nil {
		return err
	}

	summary := tablewriter.NewWriter(w)
	summary.Header("Metric", "Value")
	rows := [][]string{
		{"Average value locked", Money(res.AverageValueLocked)},
		{"Effective market share", Percent(res.EffectiveMarketShare, 2)},
		{"Network points", Amount(res.NetworkPoints, 0)},
		{"User points", Amount(res.UserPoints, 0)},
		{"User share", Percent(res.UserShare, 6)},
		{"Airdrop pool", Amount(res.AirdropTokens, 0)},
		{"User tokens", Amount(res.UserTokens, 2)},
		{"Total spend", Money(res.TotalSpend)},
	}
	if err := summary.Bulk(rows); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	positions := tablewriter.NewWriter(w)
	positions.Header("Position", "Entry day", "Entry price", "Spend", "YT owned", "Points")
	for _, p := range res.Positions {
		if err := positions.Append([]string{
			p.Name,
			strconv.Itoa(p.EntryDay),
			Price(p.EntryPrice),
			Money(p.Spend),
			Amount(p.Owned, 2),
			Amount(p.Points, 0),
		}); err != nil {
			return err
		}
	}
	if err := positions.Render(); err != nil {
		return err
	}

	outcomes := tablewriter.NewWriter(w)
	outcomes.Header("FDV", "Token price", "Value", "ROI", "Spend / FDV")
	for _, o := range res.Outcomes {
		if err := outcomes.Append([]string{
			FDV(o.FDV),
			Price(o.TokenPrice),
			Money(o.Value),
			ROI(o.ROI),
			Percent(o.CostRatio, 6),
		}); err != nil {
			return err
		}
	}
	return outcomes.Render()
}

// Sweep writes one ranking per FDV followed by the best day's breakeven and
// how many candidate days were profitable. When res carries no per-FDV
// ranking, top rows are taken from res.Rows.
func Sweep(w io.Writer, res service.SweepResult, top int) error {
	if _, err := fmt.Fprintf(w, "Sweep %s: %d entry days, network points %s\n",
		res.RunID, len(res.Days), Amount(res.NetworkPoints, 0)); err != nil {
		return err
	}

	for _, fdv := range res.FDVs {
		ranked := res.Top[fdv]
		if ranked == nil {
			ranked = res.Rows.TopByROI(fdv, top)
		}
		if _, err := fmt.Fprintf(w, "\nFDV %s\n", FDV(fdv)); err != nil {
			return err
		}
		if err := ranking(w, ranked); err != nil {
			return err
		}
		if err := verdict(w, res.Rows, fdv, len(res.Days)); err != nil {
			return err
		}
	}
	return nil
}

func ranking(w io.Writer, rows []model.SweepRow) error {
	table := tablewriter.NewWriter(w)
	table.Header("Rank", "Entry day", "Avg entry price", "Breakeven", "Value", "ROI", "Profitable days ahead")
	for i, r := range rows {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.EntryDay),
			Price(r.AvgEntryPrice),
			Price(r.Breakeven),
			Money(r.Value),
			ROI(r.ROI),
			strconv.Itoa(r.FutureProfitableDays),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func verdict(w io.Writer, rows sweep.Rows, fdv float64, days int) error {
	if best, ok := rows.Best(fdv); ok {
		if _, err := fmt.Fprintf(w, "Best entry day %d: ROI %s, breakeven avg price %s\n",
			best.EntryDay, ROI(best.ROI), Price(best.Breakeven)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Profitable entry days: %d/%d\n", rows.ProfitableCount(fdv), days)
	return err
}
