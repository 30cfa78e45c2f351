package bidding

import (
	"time"

	"auctionhouse/internal/models"
)

// IsOpen reports whether bidding on the item is permitted at the given
// instant. Pure: active flag and start <= now < end, nothing else.
func IsOpen(item *models.Item, now time.Time) bool {
	return item.Active && !now.Before(item.StartsAt) && now.Before(item.EndsAt)
}
