package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auctionhouse/internal/models"
)

// The bids table is the append-only ledger: rows are inserted by the bidding
// engine inside its critical section and never updated or deleted.

const bidColumns = `id, item_id, bidder_id, amount, created_at`

func (t *Tx) InsertBid(ctx context.Context, b *models.Bid) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bids (id, item_id, bidder_id, amount, created_at)
		     VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.ItemID, b.BidderID, b.Amount, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// HighestBid inside the transaction: the leader at the locked instant, used
// to capture the to-be-outbid party before the new bid lands.
func (t *Tx) HighestBid(ctx context.Context, itemID string) (*models.Bid, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+bidColumns+` FROM bids
		 WHERE item_id = $1
		 ORDER BY amount DESC LIMIT 1`, itemID)
	return scanBid(row)
}

func (s *Store) HighestBid(ctx context.Context, itemID string) (*models.Bid, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bidColumns+` FROM bids
		 WHERE item_id = $1
		 ORDER BY amount DESC LIMIT 1`, itemID)
	return scanBid(row)
}

func scanBid(row *sql.Row) (*models.Bid, error) {
	b := &models.Bid{}
	err := row.Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bid: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan bid: %w", err)
	}
	return b, nil
}

// BidHistory returns every bid for the item in chronological order.
func (s *Store) BidHistory(ctx context.Context, itemID string) ([]models.Bid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bidColumns+` FROM bids
		 WHERE item_id = $1
		 ORDER BY created_at ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("bid history: %w", err)
	}
	defer rows.Close()

	var list []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
