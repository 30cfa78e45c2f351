package bidding

import (
	"time"

	"auctionhouse/internal/models"

	"github.com/shopspring/decimal"
)

// ValidateBid decides accept (nil) or reject for a proposed amount against
// the item's current state. The check order is fixed; the first failing
// check determines the reason the caller sees. The clock verdict comes from
// IsOpen, decomposed here into distinct reasons: an inactive or not yet
// started item reads not_active, an elapsed window reads ended.
func ValidateBid(item *models.Item, amount decimal.Decimal, minIncrement decimal.Decimal, now time.Time) *BidRejectedError {
	if !IsOpen(item, now) {
		if item.Active && !now.Before(item.EndsAt) {
			return ErrAuctionEnded
		}
		return ErrItemNotActive
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Cmp(item.CurrentPrice) <= 0 {
		return ErrBidTooLow
	}
	// The increment check subsumes the previous one for whole-unit
	// increments but not for fractional ones; both stay, in this order.
	if amount.Cmp(item.CurrentPrice.Add(minIncrement)) < 0 {
		return ErrBidBelowIncrement
	}
	return nil
}
