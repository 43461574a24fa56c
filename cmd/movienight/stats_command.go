package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"movienight/internal/catalog"
	"movienight/internal/enrich"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalogue counts, coverage and paused sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				runCtx := runContext(cmd)
				out := cmd.OutOrStdout()

				if err := store.RefreshAttendanceCounts(runCtx); err != nil {
					return err
				}
				summary, err := store.Summarize(runCtx)
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Movies", strconv.Itoa(summary.TotalMovies)},
					{"With trailer", strconv.Itoa(summary.WithTrailer)},
					{"Missing trailer", strconv.Itoa(summary.WithoutTrailer)},
					{"Scored", strconv.Itoa(summary.Scored)},
					{"Rating samples", strconv.Itoa(summary.RatingSamples)},
					{"Pick lists", strconv.Itoa(summary.Lists)},
					{"Attendees", strconv.Itoa(summary.Users)},
				}
				fmt.Fprintln(out, renderTable([]string{"Metric", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight}))

				checkpointRows, err := pausedSweeps(cmd, store)
				if err != nil {
					return err
				}
				if len(checkpointRows) > 0 {
					fmt.Fprintln(out, "Paused sweeps (rerun the command to resume):")
					fmt.Fprintln(out, renderTable([]string{"Job", "Last movie id"}, checkpointRows,
						[]columnAlignment{alignLeft, alignRight}))
				}

				shares, err := store.CatalogueShares(runCtx)
				if err != nil {
					return err
				}
				if len(shares) > 0 {
					fmt.Fprintln(out, renderTable([]string{"Origin", "Share"}, shareRows(shares),
						[]columnAlignment{alignLeft, alignRight}))
				}
				return nil
			})
		},
	}
}

func pausedSweeps(cmd *cobra.Command, store *catalog.Store) ([][]string, error) {
	jobs := []string{enrich.JobMetadata, enrich.JobTrailer, enrich.JobTrend, enrich.JobDiscover}
	var rows [][]string
	for _, job := range jobs {
		last, err := store.Checkpoint(cmd.Context(), job)
		if err != nil {
			return nil, err
		}
		if last > 0 {
			rows = append(rows, []string{job, strconv.FormatInt(last, 10)})
		}
	}
	return rows, nil
}

func shareRows(shares map[string]float64) [][]string {
	origins := make([]string, 0, len(shares))
	for origin := range shares {
		origins = append(origins, origin)
	}
	sort.Slice(origins, func(i, j int) bool {
		if shares[origins[i]] != shares[origins[j]] {
			return shares[origins[i]] > shares[origins[j]]
		}
		return origins[i] < origins[j]
	})

	rows := make([][]string, 0, len(origins))
	for _, origin := range origins {
		rows = append(rows, []string{orDash(origin), fmt.Sprintf("%.1f%%", shares[origin]*100)})
	}
	return rows
}
