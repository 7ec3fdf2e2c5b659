// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/testutil"
)

type fixture struct {
	svc     *Service
	db      *sql.DB
	ctx     context.Context
	creator string
	eventID string
}

// newFixture sets up a service over a fresh database with one user and
// one private event owned by that user.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	svc := NewService(conn, testutil.NewTestCodec(t), NewSQLCollectionStore(conn))
	creator := testutil.CreateTestUser(t, conn, "Dana")
	return &fixture{
		svc:     svc,
		db:      conn,
		ctx:     context.Background(),
		creator: creator,
		eventID: testutil.CreateTestEvent(t, conn, creator, "Game night"),
	}
}

func (f *fixture) asCreator() Caller { return Caller{UserID: f.creator} }

// invitee creates a user and invites them to the fixture event
func (f *fixture) invitee(t *testing.T, name string) string {
	t.Helper()
	userID := testutil.CreateTestUser(t, f.db, name)
	testutil.InviteTestUser(t, f.db, f.eventID, userID)
	return userID
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func TestWithTxRollsBack(t *testing.T) {
	f := newFixture(t)

	err := f.svc.withTx(f.ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(f.ctx, `UPDATE event SET title = 'changed' WHERE id = $1`, f.eventID)
		require.NoError(t, err)
		return apperr.Conflict("stop")
	})
	assertKind(t, err, apperr.KindConflict)

	ev, err := loadEvent(f.ctx, f.db, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, "Game night", ev.Title)
}

func TestLoadEventNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := loadEvent(f.ctx, f.db, "missing")
	assertKind(t, err, apperr.KindNotFound)
}
