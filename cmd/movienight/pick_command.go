package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"movienight/internal/catalog"
	"movienight/internal/logging"
	"movienight/internal/picker"
	"movienight/internal/services"
	"movienight/internal/similarity"
)

func newPickCommand(ctx *commandContext) *cobra.Command {
	var listName string
	var drawSize int

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Draw movie-night candidates and build the trailer playlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svcs *appServices) error {
				runCtx := runContext(cmd)
				p, err := picker.New(svcs.store,
					picker.WithLogger(logging.NewComponentLogger(svcs.logger, "picker")))
				if err != nil {
					return err
				}

				drawn, err := p.Draw(runCtx, listName, drawSize)
				if err != nil {
					return err
				}
				if err := fillTrailers(runCtx, svcs, drawn); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(drawn))
				for _, movie := range drawn {
					rows = append(rows, []string{
						strconv.FormatInt(movie.ID, 10),
						movie.Title,
						formatYear(movie.Year),
						formatScore(movie.CombinedScore),
						orDash(movie.YouTubeLink),
						trailerViews(runCtx, svcs, movie.YouTubeLink),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Year", "Score", "Trailer", "Views"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight}))

				// The extra draw is the movie; the rest of the table spins.
				if drawSize > 1 {
					spin := p.Spin(drawSize - 1)
					fmt.Fprintf(out, "Spin: %s, land on seat %d.\n", spin.Direction, spin.Seat)
				}

				if err := printSimilarity(cmd, runCtx, svcs, drawn); err != nil {
					return err
				}

				if playlist := p.PlaylistURL(drawn); playlist != "" {
					fmt.Fprintf(out, "Playlist: %s\n", playlist)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "Pick list to draw from")
	cmd.Flags().IntVarP(&drawSize, "count", "n", 3, "How many movies to draw")
	_ = cmd.MarkFlagRequired("list")
	return cmd
}

// fillTrailers runs the resolution cascade for drawn movies that have no
// stored link yet. Resolution failures other than rate limiting leave the
// movie without a trailer rather than spoiling the draw.
func fillTrailers(runCtx context.Context, svcs *appServices, drawn []*catalog.Movie) error {
	for _, movie := range drawn {
		if movie.YouTubeLink != "" {
			continue
		}
		url, source, confidence, err := svcs.resolver.Resolve(runCtx, movie.Title)
		if err != nil {
			if services.HaltsSweep(err) {
				return err
			}
			svcs.logger.Warn("trailer resolution failed",
				logging.Int64(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldTitle, movie.Title),
				logging.Error(err))
			continue
		}
		if url == "" {
			continue
		}
		if err := svcs.store.UpdateField(runCtx, movie.ID, "youtube_link", url); err != nil {
			return err
		}
		movie.YouTubeLink = url
		svcs.logger.Info("trailer stored",
			logging.Int64(logging.FieldMovieID, movie.ID),
			logging.String(logging.FieldSource, string(source)),
			logging.Float64("confidence", confidence))
	}
	return nil
}

// trailerViews is best-effort decoration; without a YouTube key the
// column stays blank.
func trailerViews(runCtx context.Context, svcs *appServices, link string) string {
	if svcs.videos == nil || link == "" {
		return "-"
	}
	views, err := svcs.videos.VideoViews(runCtx, link)
	if err != nil {
		svcs.logger.Debug("view count lookup failed",
			logging.String("link", link),
			logging.Error(err))
		return "-"
	}
	return strconv.FormatInt(views, 10)
}

func printSimilarity(cmd *cobra.Command, runCtx context.Context, svcs *appServices, drawn []*catalog.Movie) error {
	pairs, err := similarity.Pairs(runCtx, drawn, svcs.store)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}

	titles := make(map[int64]string, len(drawn))
	for _, movie := range drawn {
		titles[movie.ID] = movie.Title
	}
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{
			titles[pair.AID],
			titles[pair.BID],
			fmt.Sprintf("%.3f", pair.Score),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Movie A", "Movie B", "Similarity"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight}))
	return nil
}
