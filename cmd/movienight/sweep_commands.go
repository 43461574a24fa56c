package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"movienight/internal/enrich"
	"movienight/internal/services"
)

// reportSweep prints one sweep outcome. A rate-limited pause is a normal
// exit: the checkpoint is on disk and rerunning the command resumes.
func reportSweep(cmd *cobra.Command, progress enrich.Progress, err error) error {
	out := cmd.OutOrStdout()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		if errors.Is(err, services.ErrRateLimited) {
			fmt.Fprintf(out, "%s sweep processed %d (failed %d), then hit the provider rate limit.\n",
				progress.Job, progress.Processed, progress.Failed)
			printNotice(out, "paused, resume later: rerun the same command to continue from the checkpoint")
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "%s sweep complete: %d processed, %d failed.\n",
		progress.Job, progress.Processed, progress.Failed)
	return nil
}

func runSweep(ctx *commandContext, cmd *cobra.Command, run func(context.Context, *enrich.Service) (enrich.Progress, error)) error {
	return ctx.withServices(func(svcs *appServices) error {
		svc, err := svcs.enrichService()
		if err != nil {
			return err
		}
		progress, err := run(runContext(cmd), svc)
		return reportSweep(cmd, progress, err)
	})
}

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var country string
	var full bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Walk the TMDb discover feed and enrich new movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(ctx, cmd, func(runCtx context.Context, svc *enrich.Service) (enrich.Progress, error) {
				return svc.DiscoverySweep(runCtx, country, full)
			})
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "Restrict discovery to one ISO country code")
	cmd.Flags().BoolVar(&full, "full", false, "Ignore the checkpoint and start from the beginning")
	return cmd
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var full bool
	var movieID int64

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing metadata for the catalogue or one movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			if movieID > 0 {
				return ctx.withServices(func(svcs *appServices) error {
					svc, err := svcs.enrichService()
					if err != nil {
						return err
					}
					if err := svc.EnrichMovie(runContext(cmd), movieID); err != nil {
						if errors.Is(err, services.ErrNotFound) {
							return fmt.Errorf("no movie with id %d", movieID)
						}
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Enriched movie %d.\n", movieID)
					return nil
				})
			}
			return runSweep(ctx, cmd, func(runCtx context.Context, svc *enrich.Service) (enrich.Progress, error) {
				return svc.MetadataSweep(runCtx, full)
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Ignore the checkpoint and start from the beginning")
	cmd.Flags().Int64Var(&movieID, "id", 0, "Enrich a single movie by catalogue id")
	return cmd
}

func newTrailersCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "trailers",
		Short: "Resolve trailer links for movies that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(ctx, cmd, func(runCtx context.Context, svc *enrich.Service) (enrich.Progress, error) {
				return svc.TrailerSweep(runCtx, full)
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Ignore the checkpoint and start from the beginning")
	return cmd
}

func newTrendsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Refresh ratings and trend scores for movies missing a trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(ctx, cmd, func(runCtx context.Context, svc *enrich.Service) (enrich.Progress, error) {
				return svc.TrendSweep(runCtx, false)
			})
		},
	}
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run the metadata and trailer sweeps concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svcs *appServices) error {
				svc, err := svcs.enrichService()
				if err != nil {
					return err
				}
				runCtx := runContext(cmd)

				var mu sync.Mutex
				var results []enrich.Progress
				record := func(p enrich.Progress) {
					mu.Lock()
					defer mu.Unlock()
					results = append(results, p)
				}

				// Disjoint checkpoints; the limiter and store are safe
				// for concurrent use.
				workers := pool.New().WithContext(runCtx)
				workers.Go(func(runCtx context.Context) error {
					progress, err := svc.MetadataSweep(runCtx, full)
					record(progress)
					return err
				})
				workers.Go(func(runCtx context.Context) error {
					progress, err := svc.TrailerSweep(runCtx, full)
					record(progress)
					return err
				})
				waitErr := workers.Wait()

				sort.Slice(results, func(i, j int) bool { return results[i].Job < results[j].Job })
				out := cmd.OutOrStdout()
				for _, progress := range results {
					fmt.Fprintf(out, "%s sweep: %d processed, %d failed.\n",
						progress.Job, progress.Processed, progress.Failed)
				}

				if waitErr != nil {
					if errors.Is(waitErr, context.Canceled) {
						return waitErr
					}
					if errors.Is(waitErr, services.ErrRateLimited) {
						printNotice(out, "paused, resume later: rerun refresh to continue from the checkpoints")
						return nil
					}
					return waitErr
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Ignore checkpoints and start both sweeps from the beginning")
	return cmd
}
