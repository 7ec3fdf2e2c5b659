// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/models"
)

// InviteUsers adds users to the invite list. Users already invited keep
// their current status.
func (s *Service) InviteUsers(ctx context.Context, eventID string, caller Caller, userIDs []string) ([]models.Invite, error) {
	if len(userIDs) == 0 {
		return nil, apperr.InvalidArgument("userIds cannot be empty")
	}

	var invites []models.Invite
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}

		now := s.now()
		for _, userID := range userIDs {
			if userID == "" {
				return apperr.InvalidArgument("userIds cannot contain empty ids")
			}
			if userID == ev.CreatedByID {
				return apperr.InvalidArgument("The creator cannot be invited to their own event")
			}
			if err := requireUser(ctx, tx, userID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO event_invite (event_id, user_id, status, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (event_id, user_id) DO NOTHING
			`, ev.ID, userID, models.InviteStatusPending, now); err != nil {
				return apperr.Internal("insert invite", err)
			}
		}

		invites, err = listInvites(ctx, tx, ev.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("users invited", "event_id", eventID, "count", len(userIDs))
	return invites, nil
}

// RemoveInvite takes a user off the invite list. Their votes stay; they
// simply lose access.
func (s *Service) RemoveInvite(ctx context.Context, eventID string, caller Caller, userID string) error {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if err := requireCreator(ev, caller); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM event_invite WHERE event_id = $1 AND user_id = $2
	`, ev.ID, userID)
	if err != nil {
		return apperr.Internal("delete invite", err)
	}
	n, err := rowsAffected(res, "delete invite")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Invite not found")
	}

	slog.Info("invite removed", "event_id", ev.ID, "user_id", userID)
	return nil
}

// RespondInvite records the caller's answer to their invitation
func (s *Service) RespondInvite(ctx context.Context, eventID string, caller Caller, status string) error {
	if caller.UserID == "" {
		return apperr.Unauthorized("Sign in required")
	}
	if status != models.InviteStatusAccepted && status != models.InviteStatusDeclined {
		return apperr.InvalidArgument("status must be accepted or declined")
	}

	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE event_invite SET status = $1, responded_at = $2
		WHERE event_id = $3 AND user_id = $4
	`, status, s.now(), ev.ID, caller.UserID)
	if err != nil {
		return apperr.Internal("update invite", err)
	}
	n, err := rowsAffected(res, "update invite")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Invite not found")
	}

	slog.Info("invite answered", "event_id", ev.ID, "user_id", caller.UserID, "status", status)
	return nil
}

func requireUser(ctx context.Context, q querier, userID string) error {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM app_user WHERE id = $1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal("query user", err)
	}
	return nil
}

func listInvites(ctx context.Context, q querier, eventID string) ([]models.Invite, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.user_id, u.name, i.status
		FROM event_invite i
		JOIN app_user u ON u.id = i.user_id
		WHERE i.event_id = $1
		ORDER BY u.name, i.user_id
	`, eventID)
	if err != nil {
		return nil, apperr.Internal("query invites", err)
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(&inv.UserID, &inv.Name, &inv.Status); err != nil {
			return nil, apperr.Internal("scan invite", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate invites", err)
	}
	return invites, nil
}
