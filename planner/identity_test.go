// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/testutil"
)

func TestNormalizeNickname(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Alex", "Alex", false},
		{"  Alex  ", "Alex", false},
		{"Jo", "Jo", false},
		{"Zoë", "Zoë", false},
		{"J", "", true},
		{"   ", "", true},
		{"", "", true},
		{strings.Repeat("x", 50), strings.Repeat("x", 50), false},
		{strings.Repeat("x", 51), "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeNickname(tt.in)
		if tt.wantErr {
			assertKind(t, err, apperr.KindInvalidArgument)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestJoinAsGuest(t *testing.T) {
	f := newFixture(t)
	token := testutil.PublishTestEvent(t, f.db, f.eventID)

	alex, isNew, err := f.svc.JoinAsGuest(f.ctx, token, "Alex")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, f.eventID, alex.EventID)
	assert.Equal(t, "Alex", alex.Nickname)

	// Surrounding space resolves to the same guest
	again, isNew, err := f.svc.JoinAsGuest(f.ctx, token, " Alex ")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, alex.ID, again.ID)

	sam, _, err := f.svc.JoinAsGuest(f.ctx, token, "Sam")
	require.NoError(t, err)
	assert.NotEqual(t, alex.ID, sam.ID)

	assert.Equal(t, 2, testutil.CountRows(t, f.db, `SELECT COUNT(*) FROM guest_participant`))
}

func TestJoinAsGuestPerEvent(t *testing.T) {
	f := newFixture(t)
	token := testutil.PublishTestEvent(t, f.db, f.eventID)
	other := testutil.CreateTestEvent(t, f.db, f.creator, "Other night")
	otherToken := testutil.PublishTestEvent(t, f.db, other)

	here, _, err := f.svc.JoinAsGuest(f.ctx, token, "Alex")
	require.NoError(t, err)
	there, isNew, err := f.svc.JoinAsGuest(f.ctx, otherToken, "Alex")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEqual(t, here.ID, there.ID)
}

func TestJoinAsGuestRejected(t *testing.T) {
	f := newFixture(t)
	token := testutil.PublishTestEvent(t, f.db, f.eventID)

	_, _, err := f.svc.JoinAsGuest(f.ctx, token, "A")
	assertKind(t, err, apperr.KindInvalidArgument)

	_, _, err = f.svc.JoinAsGuest(f.ctx, "bogus", "Alex")
	assertKind(t, err, apperr.KindNotFound)

	require.NoError(t, f.svc.Unpublish(f.ctx, f.eventID, f.asCreator()))
	_, _, err = f.svc.JoinAsGuest(f.ctx, token, "Alex")
	assertKind(t, err, apperr.KindNotFound)
}
