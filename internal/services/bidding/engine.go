package bidding

import (
	"context"
	"errors"
	"time"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateLimiter answers allow/deny for a bid attempt. Denial must be
// side-effect free; the engine owns attempt recording.
type RateLimiter interface {
	AllowBid(ctx context.Context, actorKey, originKey string) (bool, error)
}

// Notifier is the fire-and-forget side channel. Implementations swallow and
// log their own failures; nothing here can affect a bid outcome.
type Notifier interface {
	NotifyOutbid(ctx context.Context, user models.User, item models.Item, prevAmount, newAmount decimal.Decimal)
	PublishBidEvent(ctx context.Context, item models.Item, bid models.Bid)
}

// BidResult is the serialized outcome of one bid request.
type BidResult struct {
	Accepted     bool            `json:"accepted"`
	Reason       RejectReason    `json:"reason,omitempty"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Bid          *models.Bid     `json:"bid,omitempty"`
}

type IBiddingEngine interface {
	PlaceBid(ctx context.Context, itemID, bidderID, origin string, amount decimal.Decimal) (*BidResult, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
	GetHighestBid(ctx context.Context, itemID string) (*models.Bid, error)
	GetBidHistory(ctx context.Context, itemID string) ([]models.Bid, error)
	ListItems(ctx context.Context, category string, pastOnly bool, limit, offset int) ([]models.Item, error)
}

type BiddingEngine struct {
	store        *repository.Store
	limiter      RateLimiter
	notifier     Notifier
	minIncrement decimal.Decimal
	locks        keyedMutex
	now          func() time.Time
}

var _ IBiddingEngine = (*BiddingEngine)(nil)

func NewBiddingEngine(store *repository.Store, limiter RateLimiter, notifier Notifier, minIncrement float64) *BiddingEngine {
	return &BiddingEngine{
		store:        store,
		limiter:      limiter,
		notifier:     notifier,
		minIncrement: decimal.NewFromFloat(minIncrement),
		now:          time.Now,
	}
}

// PlaceBid runs one bid request to completion: throttle check, per-item
// critical section with read-after-lock re-validation, ledger append and
// price update in a single transaction, then asynchronous notification.
func (e *BiddingEngine) PlaceBid(ctx context.Context, itemID, bidderID, origin string, amount decimal.Decimal) (*BidResult, error) {
	allowed, err := e.limiter.AllowBid(ctx, bidderID, origin)
	if err != nil {
		// the throttle is defense in depth, not a security boundary
		zap.L().Warn("bidding.rate_limit_check", zap.Error(err))
		allowed = true
	}
	if !allowed {
		// no attempt row here: denial is not a real attempt
		return &BidResult{Reason: ReasonRateLimited}, nil
	}

	unlock := e.locks.Lock(itemID)
	defer unlock()

	var (
		result *BidResult
		item   *models.Item
		prev   *models.Bid
	)
	err = e.store.Transact(ctx, func(tx *repository.Tx) error {
		var err error
		item, err = tx.ItemForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		now := e.now()
		if rej := ValidateBid(item, amount, e.minIncrement, now); rej != nil {
			if err := tx.InsertBidAttempt(ctx, newAttempt(bidderID, origin, false, now)); err != nil {
				return err
			}
			result = &BidResult{Reason: rej.Reason, CurrentPrice: item.CurrentPrice}
			return nil
		}

		prev, err = tx.HighestBid(ctx, itemID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		bid := &models.Bid{
			ID:        uuid.New().String(),
			ItemID:    itemID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: now,
		}
		if err := tx.InsertBid(ctx, bid); err != nil {
			return err
		}
		if err := tx.UpdateItemPrice(ctx, itemID, amount); err != nil {
			return err
		}
		if err := tx.InsertBidAttempt(ctx, newAttempt(bidderID, origin, true, now)); err != nil {
			return err
		}
		item.CurrentPrice = amount
		result = &BidResult{Accepted: true, CurrentPrice: amount, Bid: bid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Accepted {
		// outside the critical section; a slow mail channel must never
		// block bid acceptance
		go e.afterAccept(*item, *result.Bid, prev)
	}
	return result, nil
}

func (e *BiddingEngine) afterAccept(item models.Item, bid models.Bid, prev *models.Bid) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	e.notifier.PublishBidEvent(ctx, item, bid)

	if prev == nil || prev.BidderID == bid.BidderID {
		return
	}
	user, err := e.store.GetUser(ctx, prev.BidderID)
	if err != nil {
		zap.L().Warn("bidding.outbid_lookup", zap.String("user", prev.BidderID), zap.Error(err))
		return
	}
	if !user.OutbidNotificationsEnabled {
		return
	}
	e.notifier.NotifyOutbid(ctx, *user, item, prev.Amount, bid.Amount)
}

func newAttempt(bidderID, origin string, success bool, now time.Time) *models.BidAttempt {
	return &models.BidAttempt{
		ID:        uuid.New().String(),
		UserID:    bidderID,
		IPAddress: origin,
		Success:   success,
		CreatedAt: now,
	}
}

func (e *BiddingEngine) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// GetHighestBid returns nil when the item has no bids yet.
func (e *BiddingEngine) GetHighestBid(ctx context.Context, itemID string) (*models.Bid, error) {
	bid, err := e.store.HighestBid(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}

func (e *BiddingEngine) GetBidHistory(ctx context.Context, itemID string) ([]models.Bid, error) {
	return e.store.BidHistory(ctx, itemID)
}

func (e *BiddingEngine) ListItems(ctx context.Context, category string, pastOnly bool, limit, offset int) ([]models.Item, error) {
	return e.store.ListItems(ctx, category, pastOnly, e.now(), limit, offset)
}
