// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/metrics"
	"github.com/danielhkuo/boardnight/models"
)

const (
	minNicknameLen = 2
	maxNicknameLen = 50
)

// NormalizeNickname trims surrounding space and checks the length
func NormalizeNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", apperr.InvalidArgument("nickname is required")
	}
	if n := utf8.RuneCountInString(nickname); n < minNicknameLen || n > maxNicknameLen {
		return "", apperr.InvalidArgument("nickname must be 2-50 characters")
	}
	return nickname, nil
}

// JoinAsGuest returns the guest identity for nickname within the token's
// event, creating it on first use. Guests are not authenticated: whoever
// presents a nickname acts as that guest inside that one event.
func (s *Service) JoinAsGuest(ctx context.Context, token, nickname string) (*models.GuestParticipant, bool, error) {
	nickname, err := NormalizeNickname(nickname)
	if err != nil {
		return nil, false, err
	}

	ev, err := s.publicEvent(ctx, s.db, token)
	if err != nil {
		return nil, false, err
	}

	// The (event_id, nickname) unique key decides races between two joins
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO guest_participant (id, event_id, nickname, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, nickname) DO NOTHING
	`, auth.NewID(), ev.ID, nickname, s.now())
	if err != nil {
		return nil, false, apperr.Internal("insert guest", err)
	}
	created, err := rowsAffected(res, "insert guest")
	if err != nil {
		return nil, false, err
	}

	var guest models.GuestParticipant
	err = s.db.QueryRowContext(ctx, `
		SELECT id, event_id, nickname, created_at
		FROM guest_participant
		WHERE event_id = $1 AND nickname = $2
	`, ev.ID, nickname).Scan(&guest.ID, &guest.EventID, &guest.Nickname, &guest.CreatedAt)
	if err != nil {
		return nil, false, apperr.Internal("query guest", err)
	}

	if created > 0 {
		metrics.GuestsJoined.Inc()
		slog.Info("guest joined", "event_id", ev.ID, "guest_id", guest.ID)
	}
	return &guest, created > 0, nil
}

// resolveGuest checks that guestID names a guest of eventID
func resolveGuest(ctx context.Context, q querier, eventID, guestID string) error {
	if guestID == "" {
		return apperr.InvalidArgument("guestId is required")
	}
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM guest_participant WHERE id = $1 AND event_id = $2
	`, guestID, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Guest not found")
	}
	if err != nil {
		return apperr.Internal("query guest", err)
	}
	return nil
}
