package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auctionhouse/internal/models"
)

// Attempt rows are audit records for the throttles; they are append-only and
// never reconstruct price.

func insertBidAttempt(ctx context.Context, ex interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, a *models.BidAttempt) error {
	var userID any
	if a.UserID != "" {
		userID = a.UserID
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO bid_attempts (id, user_id, ip_address, success, created_at)
		     VALUES ($1, $2, $3, $4, $5)`,
		a.ID, userID, a.IPAddress, a.Success, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid attempt: %w", err)
	}
	return nil
}

func (t *Tx) InsertBidAttempt(ctx context.Context, a *models.BidAttempt) error {
	return insertBidAttempt(ctx, t.tx, a)
}

func (s *Store) InsertBidAttempt(ctx context.Context, a *models.BidAttempt) error {
	return insertBidAttempt(ctx, s.db, a)
}

func (s *Store) InsertLoginAttempt(ctx context.Context, a *models.LoginAttempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_attempts (id, email, ip_address, success, created_at)
		     VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Email, a.IPAddress, a.Success, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}
	return nil
}

// CountBidAttempts counts all bid attempts, successful or not, for the
// actor+origin pair since the cutoff. An empty userID counts anonymous
// attempts from the origin.
func (s *Store) CountBidAttempts(ctx context.Context, userID, ip string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM bid_attempts
		 WHERE ip_address = $1
		   AND created_at >= $2
		   AND ($3 = '' OR user_id = $3)`,
		ip, since, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bid attempts: %w", err)
	}
	return n, nil
}

// CountFailedLogins counts only failed attempts for the email+origin pair.
func (s *Store) CountFailedLogins(ctx context.Context, email, ip string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM login_attempts
		 WHERE email = $1 AND ip_address = $2
		   AND created_at >= $3 AND NOT success`,
		email, ip, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count failed logins: %w", err)
	}
	return n, nil
}
