package winner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAuctionStillOpen = errors.New("auction has not ended yet")
	ErrItemNotFound     = errors.New("item not found")
	ErrUserNotFound     = errors.New("user not found")
)

// WinnerNotifier is the slice of the dispatcher the resolver needs.
type WinnerNotifier interface {
	NotifyWinner(ctx context.Context, item models.Item, winner models.User)
}

// Resolver assigns winners to closed auctions and runs the explicit
// contact-winners step.
type Resolver struct {
	store    *repository.Store
	notifier WinnerNotifier
	now      func() time.Time
}

func NewResolver(store *repository.Store, notifier WinnerNotifier) *Resolver {
	return &Resolver{store: store, notifier: notifier, now: time.Now}
}

// Resolve picks the bidder of the highest accepted bid for a closed item and
// persists it as the winner. Returns the winner's user ID, or "" when the
// item drew no bids (unsold, left for later sweeps to skip).
func (r *Resolver) Resolve(ctx context.Context, itemID string) (string, error) {
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrItemNotFound
		}
		return "", err
	}
	if item.EndsAt.After(r.now()) {
		return "", ErrAuctionStillOpen
	}
	if item.WinnerID != "" {
		return item.WinnerID, nil // already resolved, idempotent
	}

	top, err := r.store.HighestBid(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil // unsold
		}
		return "", err
	}

	if err := r.store.SetWinner(ctx, itemID, top.BidderID); err != nil {
		return "", err
	}
	zap.L().Info("winner.resolved",
		zap.String("item", itemID),
		zap.String("winner", top.BidderID),
		zap.String("amount", top.Amount.String()))
	return top.BidderID, nil
}

// Override assigns an admin-chosen winner, bypassing the highest-bid rule.
// Only permitted once the clock reports the auction closed.
func (r *Resolver) Override(ctx context.Context, itemID, userID string) error {
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if item.EndsAt.After(r.now()) {
		return ErrAuctionStillOpen
	}
	if _, err := r.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := r.store.SetWinner(ctx, itemID, userID); err != nil {
		return err
	}
	zap.L().Info("winner.override", zap.String("item", itemID), zap.String("winner", userID))
	return nil
}

// Admin dashboard reads.

func (r *Resolver) RecentWinners(ctx context.Context, limit int) ([]models.Item, error) {
	return r.store.RecentWinners(ctx, r.now(), limit)
}

func (r *Resolver) WinnerIDs(ctx context.Context) ([]string, error) {
	return r.store.WinnerIDs(ctx, r.now())
}

func (r *Resolver) WonItems(ctx context.Context, userID string) ([]models.Item, error) {
	return r.store.WonItems(ctx, userID, r.now())
}

// ContactWinners notifies the winners of the given items. Idempotent per
// item: already-notified items are skipped. The winner always receives an
// in-app message; email goes out only when their win notifications are
// enabled, best effort. Returns how many winners were contacted.
func (r *Resolver) ContactWinners(ctx context.Context, itemIDs []string, senderID string) (int, error) {
	contacted := 0
	for _, id := range itemIDs {
		item, err := r.store.GetItem(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return contacted, err
		}
		if item.WinnerID == "" || item.WinnerNotified {
			continue
		}

		winner, err := r.store.GetUser(ctx, item.WinnerID)
		if err != nil {
			zap.L().Warn("winner.contact_lookup", zap.String("item", id), zap.Error(err))
			continue
		}

		if winner.WinNotificationsEnabled {
			r.notifier.NotifyWinner(ctx, *item, *winner)
		}

		msg := &models.Message{
			ID:         uuid.New().String(),
			SenderID:   senderID,
			ReceiverID: winner.ID,
			Content: fmt.Sprintf(
				"Congratulations! You've won the auction for %s with a bid of $%s. Please respond to arrange payment and shipping details.",
				item.Title, item.CurrentPrice.StringFixed(2)),
			CreatedAt: r.now(),
		}
		if err := r.store.InsertMessage(ctx, msg); err != nil {
			return contacted, err
		}
		if err := r.store.MarkWinnerContacted(ctx, id, r.now()); err != nil {
			return contacted, err
		}
		contacted++
	}
	return contacted, nil
}
