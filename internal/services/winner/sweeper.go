package winner

import (
	"context"
	"time"

	"auctionhouse/internal/repository"

	"go.uber.org/zap"
)

// RunSweeper periodically resolves items whose auction window has elapsed
// without a winner. Close itself needs no event: it is a function of time,
// the sweep just persists its consequence.
func RunSweeper(ctx context.Context, store *repository.Store, resolver *Resolver, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				sweepOnce(ctx, store, resolver)
			}
		}
	}()
}

func sweepOnce(ctx context.Context, store *repository.Store, resolver *Resolver) {
	ids, err := store.ItemsPendingResolution(ctx, time.Now())
	if err != nil {
		zap.L().Error("winner.sweep_list", zap.Error(err))
		return
	}
	for _, id := range ids {
		if _, err := resolver.Resolve(ctx, id); err != nil {
			zap.L().Error("winner.sweep_resolve", zap.String("item", id), zap.Error(err))
		}
	}
}
