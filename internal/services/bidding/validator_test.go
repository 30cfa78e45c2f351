package bidding

import (
	"testing"
	"time"

	"auctionhouse/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openItem(price string, now time.Time) *models.Item {
	p, _ := decimal.NewFromString(price)
	return &models.Item{
		ID:            "item-1",
		Active:        true,
		StartingPrice: p,
		CurrentPrice:  p,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
	}
}

func TestValidateBid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	one := decimal.NewFromInt(1)
	amt := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name   string
		mutate func(*models.Item)
		amount decimal.Decimal
		want   *BidRejectedError
	}{
		{"exact increment accepted", nil, amt("101.00"), nil},
		{"above increment accepted", nil, amt("250"), nil},
		{"inactive item", func(i *models.Item) { i.Active = false }, amt("101"), ErrItemNotActive},
		{"ended auction", func(i *models.Item) { i.EndsAt = now.Add(-time.Second) }, amt("101"), ErrAuctionEnded},
		{"not yet started", func(i *models.Item) { i.StartsAt = now.Add(time.Minute) }, amt("101"), ErrItemNotActive},
		{"zero amount", nil, decimal.Zero, ErrInvalidAmount},
		{"negative amount", nil, amt("-5"), ErrInvalidAmount},
		{"equal to current price", nil, amt("100.00"), ErrBidTooLow},
		{"below current price", nil, amt("99.99"), ErrBidTooLow},
		{"above price but below increment", nil, amt("100.50"), ErrBidBelowIncrement},
		{"one cent short of increment", nil, amt("100.99"), ErrBidBelowIncrement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := openItem("100.00", now)
			if tt.mutate != nil {
				tt.mutate(item)
			}
			got := ValidateBid(item, tt.amount, one, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Reason, got.Reason)
		})
	}
}

// An inactive item that has also ended must report not_active, and an
// ended item with a garbage amount must report ended: earlier checks win.
func TestValidateBid_CheckOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	one := decimal.NewFromInt(1)

	item := openItem("100.00", now)
	item.Active = false
	item.EndsAt = now.Add(-time.Hour)
	got := ValidateBid(item, decimal.NewFromInt(101), one, now)
	require.NotNil(t, got)
	assert.Equal(t, ReasonNotActive, got.Reason)

	item = openItem("100.00", now)
	item.EndsAt = now.Add(-time.Hour)
	got = ValidateBid(item, decimal.Zero, one, now)
	require.NotNil(t, got)
	assert.Equal(t, ReasonEnded, got.Reason)
}

func TestValidateBid_FractionalIncrement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	half := decimal.RequireFromString("0.5")

	item := openItem("100.00", now)
	assert.Nil(t, ValidateBid(item, decimal.RequireFromString("100.50"), half, now))

	got := ValidateBid(item, decimal.RequireFromString("100.25"), half, now)
	require.NotNil(t, got)
	assert.Equal(t, ReasonBelowIncrement, got.Reason)
}
