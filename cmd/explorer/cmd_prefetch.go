package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"property-explorer/internal/imagery"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// prefetchWorkers bounds concurrent imagery requests.
const prefetchWorkers = 8

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Download the feed's imagery into the cache directory",
	Long: `prefetch fetches ground-level and overhead imagery for every located property of
the feed into imagery.cache_dir, so later runs start with textures ready.`,
	RunE: runPrefetch,
}

type prefetchResult struct {
	Ready, Failed, Skipped int
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	feed, err := loadFeed(feedPath)
	if err != nil {
		return err
	}
	if cfg.Imagery.CacheDir == "" {
		return errors.New("prefetch: imagery.cache_dir is empty")
	}
	p := imagery.NewGoogleProvider(googleOptions(cfg), log.Logger)
	res, err := prefetch(cmd.Context(), p, feed, log.Logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ready %d, failed %d, skipped %d\n", res.Ready, res.Failed, res.Skipped)
	return nil
}

// prefetch requests both imagery slots for each located property. Properties without a
// coordinate are skipped. It stops early only when ctx is cancelled.
func prefetch(ctx context.Context, p imagery.Provider, feed Feed, log *zap.Logger) (prefetchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		mu  sync.Mutex
		res prefetchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)
	for _, prop := range feed.Properties {
		if !prop.HasCoordinate() {
			res.Skipped++
			continue
		}
		for _, slot := range []imagery.Slot{imagery.SlotGroundLevel, imagery.SlotOverhead} {
			prop, slot := prop, slot
			g.Go(func() error {
				var tex *imagery.Texture
				if slot == imagery.SlotOverhead {
					tex = p.FetchOverhead(gctx, prop.Coordinate)
				} else {
					tex = p.FetchGroundLevel(gctx, prop.Coordinate)
				}
				mu.Lock()
				defer mu.Unlock()
				if tex.Ready() {
					res.Ready++
					return nil
				}
				res.Failed++
				log.Warn("prefetch failed", zap.String("id", prop.ID), zap.Stringer("slot", slot), zap.Error(tex.Err))
				return gctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("prefetch: %w", err)
	}
	return res, nil
}
