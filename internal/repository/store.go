package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// Store is the Postgres-backed persistence layer. All reads outside a bid
// transaction are plain queries; the read-validate-write critical section of
// the bidding engine runs through Transact, which hands the callback a Tx
// holding a row lock on the item.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Tx wraps one open transaction. Methods on Tx are only valid inside the
// Transact callback that produced it.
type Tx struct {
	tx *sql.Tx
}

// Transact runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer t.Rollback()

	if err := fn(&Tx{tx: t}); err != nil {
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
