// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Service is the scheduling and voting engine. It holds no state between
// calls; everything lives in the store.
type Service struct {
	db          *sql.DB
	codec       *auth.ShareCodec
	collections CollectionStore
	now         func() time.Time
}

func NewService(db *sql.DB, codec *auth.ShareCodec, collections CollectionStore) *Service {
	return &Service{
		db:          db,
		codec:       codec,
		collections: collections,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Caller is who is making a request: a registered user (from the session),
// an optional share token, both, or neither.
type Caller struct {
	UserID     string
	ShareToken string
}

// Voter is the identity a vote is recorded under. Exactly one field is set.
type Voter struct {
	UserID  string
	GuestID string
}

func UserVoter(userID string) Voter   { return Voter{UserID: userID} }
func GuestVoter(guestID string) Voter { return Voter{GuestID: guestID} }

func (v Voter) IsGuest() bool { return v.GuestID != "" }

func (v Voter) id() string {
	if v.IsGuest() {
		return v.GuestID
	}
	return v.UserID
}

// withTx runs fn in a transaction; any error rolls everything back
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Internal("commit transaction", err)
	}
	return nil
}

const eventColumns = `id, title, description, event_date, location, created_by,
	is_public, share_token, selected_date, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	var ev models.Event
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.EventDate, &ev.Location, &ev.CreatedByID,
		&ev.IsPublic, &ev.ShareToken, &ev.SelectedDate, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func loadEvent(ctx context.Context, q querier, eventID string) (*models.Event, error) {
	ev, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM event WHERE id = $1`, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Event not found")
	}
	if err != nil {
		return nil, apperr.Internal("query event", err)
	}
	return ev, nil
}

// rowsAffected turns a result into a count, classifying driver failures
func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Internal(op, fmt.Errorf("rows affected: %w", err))
	}
	return n, nil
}
