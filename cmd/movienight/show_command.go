package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"movienight/internal/catalog"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|title>",
		Short: "Show one movie with every stored field and rating sample",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				runCtx := runContext(cmd)
				query := strings.TrimSpace(strings.Join(args, " "))

				movie, err := lookupMovie(cmd, store, query)
				if err != nil {
					return err
				}
				if movie == nil {
					return fmt.Errorf("no movie matching %q", query)
				}

				genres, err := store.GenresFor(runCtx, movie.ID)
				if err != nil {
					return err
				}
				themes, err := store.ThemesFor(runCtx, movie.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, movieRows(movie, genres, themes),
					[]columnAlignment{alignLeft, alignLeft}))

				samples, err := store.RatingsFor(runCtx, movie.ID)
				if err != nil {
					return err
				}
				if len(samples) > 0 {
					rows := make([][]string, 0, len(samples))
					for _, sample := range samples {
						rows = append(rows, []string{
							sample.Source,
							fmt.Sprintf("%.1f", sample.Score),
							strconv.Itoa(sample.SampleCount),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Source", "Score", "Samples"}, rows,
						[]columnAlignment{alignLeft, alignRight, alignRight}))
				}

				grades, err := store.GradeSummaryFor(runCtx, movie.ID)
				if err != nil {
					return err
				}
				if grades.Count > 0 {
					fmt.Fprintf(out, "Night grades: %.1f average over %d attendees.\n", grades.Average, grades.Count)
				}
				return nil
			})
		},
	}
}

func lookupMovie(cmd *cobra.Command, store *catalog.Store, query string) (*catalog.Movie, error) {
	if id, err := strconv.ParseInt(query, 10, 64); err == nil && id > 0 {
		return store.GetByID(cmd.Context(), id)
	}
	return store.FindByTitle(cmd.Context(), query)
}

func movieRows(movie *catalog.Movie, genres, themes []string) [][]string {
	rows := [][]string{
		{"ID", strconv.FormatInt(movie.ID, 10)},
		{"Title", movie.Title},
		{"Year", formatYear(movie.Year)},
		{"Release window", orDash(movie.ReleaseWindow)},
		{"Certification", orDash(movie.RatingCert)},
		{"Runtime", formatRuntime(movie.DurationSeconds)},
		{"Origin", orDash(movie.Origin)},
		{"Franchise", orDash(movie.Franchise)},
		{"Genres", orDash(strings.Join(genres, ", "))},
		{"Themes", orDash(strings.Join(themes, ", "))},
		{"Trailer", orDash(movie.YouTubeLink)},
		{"Box office expected", formatMoney(movie.BoxOfficeExpected)},
		{"Box office actual", formatMoney(movie.BoxOfficeActual)},
		{"Google trend", formatScore(movie.GoogleTrendScore)},
		{"Actor trend", formatScore(movie.ActorTrendScore)},
		{"Combined score", formatScore(movie.CombinedScore)},
	}
	if movie.TMDBID > 0 {
		rows = append(rows, []string{"TMDb id", strconv.FormatInt(movie.TMDBID, 10)})
	}
	if plot := strings.TrimSpace(movie.PlotDesc); plot != "" {
		rows = append(rows, []string{"Plot", truncate(plot, 120)})
	}
	return rows
}
