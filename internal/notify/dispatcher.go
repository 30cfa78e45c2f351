package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"auctionhouse/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dispatcher is the best-effort side channel for outbid and winner mail plus
// the Redis bid-event fan-out the websocket layer subscribes to. Every
// delivery is attempted at most once; failures are logged, never propagated.
type Dispatcher struct {
	mailer      Mailer
	rdc         *redis.Client
	frontendURL string
}

func NewDispatcher(mailer Mailer, rdc *redis.Client, frontendURL string) *Dispatcher {
	return &Dispatcher{mailer: mailer, rdc: rdc, frontendURL: frontendURL}
}

// BidEvent is the payload published on "item:<id>:events" after an accepted
// bid commits.
type BidEvent struct {
	Event    string    `json:"event"`
	ItemID   string    `json:"item_id"`
	BidID    string    `json:"bid_id"`
	BidderID string    `json:"bidder_id"`
	Amount   string    `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

func eventChannel(itemID string) string { return "item:" + itemID + ":events" }

func (d *Dispatcher) PublishBidEvent(ctx context.Context, item models.Item, bid models.Bid) {
	payload, err := json.Marshal(BidEvent{
		Event:    "bid",
		ItemID:   item.ID,
		BidID:    bid.ID,
		BidderID: bid.BidderID,
		Amount:   bid.Amount.String(),
		PlacedAt: bid.CreatedAt,
	})
	if err != nil {
		zap.L().Error("notify.event_marshal", zap.Error(err))
		return
	}
	if err := d.rdc.Publish(ctx, eventChannel(item.ID), payload).Err(); err != nil {
		zap.L().Warn("notify.event_publish", zap.String("item", item.ID), zap.Error(err))
	}
}

// NotifyOutbid mails the bidder who just lost the lead. One attempt only.
func (d *Dispatcher) NotifyOutbid(ctx context.Context, user models.User, item models.Item, prevAmount, newAmount decimal.Decimal) {
	subject := fmt.Sprintf("You've been outbid on %s", item.Title)
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", displayName(user))
	fmt.Fprintf(&body, "Someone has outbid you on %s!\n\n", item.Title)
	fmt.Fprintf(&body, "Your bid: $%s\nNew bid: $%s\n\n", prevAmount.StringFixed(2), newAmount.StringFixed(2))
	fmt.Fprintf(&body, "Don't let this one get away! Visit the item page to place a new bid.\n%s/%s/%s\n",
		d.frontendURL, strings.ToLower(item.CategoryCode), item.ID)

	if err := d.mailer.Send(user.Email, subject, body.String()); err != nil {
		zap.L().Warn("notify.outbid_send",
			zap.String("item", item.ID), zap.String("user", user.ID), zap.Error(err))
		return
	}
	zap.L().Info("notify.outbid_sent", zap.String("item", item.ID), zap.String("user", user.ID))
}

// NotifyWinner mails the resolved winner. The caller decides whether the
// winner's preferences permit the email at all.
func (d *Dispatcher) NotifyWinner(ctx context.Context, item models.Item, winner models.User) {
	subject := fmt.Sprintf("Congratulations! You've won the auction for %s", item.Title)
	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", displayName(winner))
	fmt.Fprintf(&body, "Congratulations! You've won the auction for %q with your bid of $%s.\n\n",
		item.Title, item.CurrentPrice.StringFixed(2))
	body.WriteString("Please log in to your account and check your messages for details about completing your purchase and arranging shipping.\n\n")
	fmt.Fprintf(&body, "Your winning bid: $%s\nItem: %s\nAuction end date: %s\n",
		item.CurrentPrice.StringFixed(2), item.Title, item.EndsAt.Format("2006-01-02 15:04"))

	if err := d.mailer.Send(winner.Email, subject, body.String()); err != nil {
		zap.L().Warn("notify.winner_send",
			zap.String("item", item.ID), zap.String("user", winner.ID), zap.Error(err))
	}
}

func displayName(u models.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Email
}
