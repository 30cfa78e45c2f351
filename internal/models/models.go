package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered participant. Only the fields the bidding core
// consumes are modelled here; profile management lives elsewhere.
type User struct {
	ID                         string    `json:"id"`
	Email                      string    `json:"email"`
	Nickname                   string    `json:"nickname"`
	PasswordHash               string    `json:"-"`
	EmailVerified              bool      `json:"email_verified"`
	IsAdmin                    bool      `json:"is_admin"`
	OutbidNotificationsEnabled bool      `json:"outbid_notifications_enabled"`
	WinNotificationsEnabled    bool      `json:"win_notifications_enabled"`
	CreatedAt                  time.Time `json:"created_at"`
}

// Item is an auction lot with a bounded bidding window.
//
// CurrentPrice starts at StartingPrice and only ever increases, and only as
// a side effect of an accepted bid. Winner stays empty until the auction is
// resolved.
type Item struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	CategoryCode    string          `json:"category"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	Active          bool            `json:"active"`
	WinnerID        string          `json:"winner_id,omitempty"`
	WinnerNotified  bool            `json:"winner_notified"`
	WinnerContacted *time.Time      `json:"winner_contacted,omitempty"`
}

// Bid is one accepted offer. Immutable once created.
type Bid struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// BidAttempt is the audit record of a bid request, accepted or not.
// UserID is empty for anonymous/failed-auth requests. These rows feed the
// rate limiter and abuse audits only; price is never reconstructed from them.
type BidAttempt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginAttempt records one login request for the failed-login throttle.
type LoginAttempt struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is an in-app message; the winner-contact flow always creates one
// regardless of the winner's email preferences.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
