// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"fmt"
)

// CollectionStore answers whether a user owns a game. Collections are
// filled by the BoardGameGeek importer, outside this service.
type CollectionStore interface {
	OwnsGame(ctx context.Context, userID, gameID string) (bool, error)
}

// SQLCollectionStore reads the user_game table
type SQLCollectionStore struct {
	db *sql.DB
}

func NewSQLCollectionStore(db *sql.DB) *SQLCollectionStore {
	return &SQLCollectionStore{db: db}
}

func (c *SQLCollectionStore) OwnsGame(ctx context.Context, userID, gameID string) (bool, error) {
	var owns bool
	err := c.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_game WHERE user_id = $1 AND game_id = $2
		)
	`, userID, gameID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("failed to query collection: %w", err)
	}
	return owns, nil
}
