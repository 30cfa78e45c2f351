package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auctionhouse/internal/models"

	"github.com/shopspring/decimal"
)

const itemColumns = `id, title, category_code, starting_price, current_price,
	       starts_at, ends_at, active, coalesce(winner_id,''), winner_notified, winner_contacted`

func scanItem(row *sql.Row) (*models.Item, error) {
	it := &models.Item{}
	var contacted sql.NullTime
	err := row.Scan(&it.ID, &it.Title, &it.CategoryCode,
		&it.StartingPrice, &it.CurrentPrice,
		&it.StartsAt, &it.EndsAt, &it.Active,
		&it.WinnerID, &it.WinnerNotified, &contacted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	if contacted.Valid {
		t := contacted.Time
		it.WinnerContacted = &t
	}
	return it, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

// ListItems returns items for catalog browsing. category filters by code
// when non-empty; pastOnly selects ended auctions, otherwise only active
// ones are returned.
func (s *Store) ListItems(ctx context.Context, category string, pastOnly bool, now time.Time, limit, offset int) ([]models.Item, error) {
	if limit == 0 {
		limit = 10
	}
	q := `SELECT ` + itemColumns + ` FROM items WHERE ($1 = '' OR category_code = $1)`
	if pastOnly {
		q += ` AND ends_at < $2 ORDER BY ends_at DESC`
	} else {
		q += ` AND active AND ends_at >= $2 ORDER BY ends_at ASC`
	}
	q += ` LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, q, category, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	list := make([]models.Item, 0, limit)
	for rows.Next() {
		var it models.Item
		var contacted sql.NullTime
		if err := rows.Scan(&it.ID, &it.Title, &it.CategoryCode,
			&it.StartingPrice, &it.CurrentPrice,
			&it.StartsAt, &it.EndsAt, &it.Active,
			&it.WinnerID, &it.WinnerNotified, &contacted); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if contacted.Valid {
			t := contacted.Time
			it.WinnerContacted = &t
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ItemForUpdate reads the item under a row lock; concurrent bidders on the
// same item block here until the holder commits.
func (t *Tx) ItemForUpdate(ctx context.Context, id string) (*models.Item, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
	return scanItem(row)
}

func (t *Tx) UpdateItemPrice(ctx context.Context, id string, price decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE items SET current_price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("update item price: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update item price: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) SetWinner(ctx context.Context, itemID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET winner_id = $2 WHERE id = $1`, itemID, userID)
	if err != nil {
		return fmt.Errorf("set winner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set winner: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) MarkWinnerContacted(ctx context.Context, itemID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET winner_notified = TRUE, winner_contacted = $2 WHERE id = $1`,
		itemID, at)
	if err != nil {
		return fmt.Errorf("mark winner contacted: %w", err)
	}
	return nil
}

// ItemsPendingResolution lists ended items that hold at least one bid but no
// winner yet; the sweep resolves each of them.
func (s *Store) ItemsPendingResolution(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id FROM items i
		 WHERE i.ends_at < $1
		   AND i.winner_id IS NULL
		   AND EXISTS (SELECT 1 FROM bids b WHERE b.item_id = i.id)`, now)
	if err != nil {
		return nil, fmt.Errorf("pending resolution: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentWinners returns the latest resolved items, newest first.
func (s *Store) RecentWinners(ctx context.Context, now time.Time, limit int) ([]models.Item, error) {
	if limit == 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		 WHERE winner_id IS NOT NULL AND ends_at < $1
		 ORDER BY ends_at DESC LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("recent winners: %w", err)
	}
	defer rows.Close()

	var list []models.Item
	for rows.Next() {
		var it models.Item
		var contacted sql.NullTime
		if err := rows.Scan(&it.ID, &it.Title, &it.CategoryCode,
			&it.StartingPrice, &it.CurrentPrice,
			&it.StartsAt, &it.EndsAt, &it.Active,
			&it.WinnerID, &it.WinnerNotified, &contacted); err != nil {
			return nil, err
		}
		if contacted.Valid {
			t := contacted.Time
			it.WinnerContacted = &t
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// WonItems returns ended items won by the given user.
func (s *Store) WonItems(ctx context.Context, userID string, now time.Time) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		 WHERE winner_id = $1 AND ends_at < $2
		 ORDER BY ends_at DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("won items: %w", err)
	}
	defer rows.Close()

	var list []models.Item
	for rows.Next() {
		var it models.Item
		var contacted sql.NullTime
		if err := rows.Scan(&it.ID, &it.Title, &it.CategoryCode,
			&it.StartingPrice, &it.CurrentPrice,
			&it.StartsAt, &it.EndsAt, &it.Active,
			&it.WinnerID, &it.WinnerNotified, &contacted); err != nil {
			return nil, err
		}
		if contacted.Valid {
			t := contacted.Time
			it.WinnerContacted = &t
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// WinnerIDs returns the distinct users who have won at least one auction.
func (s *Store) WinnerIDs(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT winner_id FROM items
		 WHERE winner_id IS NOT NULL AND ends_at < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("winner ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
