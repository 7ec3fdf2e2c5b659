// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/models"
)

const maxTitleLen = 200

// EventInput is a validated CreateEventRequest
type EventInput struct {
	Title       string
	Description string
	Location    string
	EventDate   *time.Time
}

// ParseEventInput validates the wire request
func ParseEventInput(req models.CreateEventRequest) (EventInput, error) {
	in := EventInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
	}
	if in.Title == "" {
		return in, apperr.InvalidArgument("title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return in, apperr.InvalidArgument("title must be at most 200 characters")
	}
	if req.EventDate != "" {
		t, err := time.Parse(time.RFC3339, req.EventDate)
		if err != nil {
			d, derr := ParseDate(req.EventDate)
			if derr != nil {
				return in, apperr.InvalidArgument("invalid eventDate")
			}
			t = d
		}
		t = t.UTC()
		in.EventDate = &t
	}
	return in, nil
}

// CreateEvent creates an event owned by the caller. The poll starts open.
func (s *Service) CreateEvent(ctx context.Context, caller Caller, in EventInput) (*models.Event, error) {
	if caller.UserID == "" {
		return nil, apperr.Unauthorized("Sign in required")
	}

	ev := &models.Event{
		ID:          auth.NewID(),
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
		Location:    in.Location,
		CreatedByID: caller.UserID,
		CreatedAt:   s.now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event (id, title, description, event_date, location, created_by, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, ev.ID, ev.Title, ev.Description, ev.EventDate, ev.Location, ev.CreatedByID, ev.CreatedAt)
	if err != nil {
		return nil, apperr.Internal("insert event", err)
	}

	slog.Info("event created", "event_id", ev.ID, "created_by", ev.CreatedByID)
	return ev, nil
}

// ListEvents returns the events the caller created or is invited to,
// soonest-dated first with undated events last.
func (s *Service) ListEvents(ctx context.Context, caller Caller) ([]models.EventSummary, error) {
	if caller.UserID == "" {
		return nil, apperr.Unauthorized("Sign in required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.event_date, e.selected_date, e.created_by, e.is_public
		FROM event e
		WHERE e.created_by = $1
		   OR EXISTS(SELECT 1 FROM event_invite i WHERE i.event_id = e.id AND i.user_id = $1)
		ORDER BY CASE WHEN e.event_date IS NULL THEN 1 ELSE 0 END, e.event_date, e.created_at
	`, caller.UserID)
	if err != nil {
		return nil, apperr.Internal("query events", err)
	}
	defer rows.Close()

	events := []models.EventSummary{}
	for rows.Next() {
		var e models.EventSummary
		var createdBy string
		if err := rows.Scan(&e.ID, &e.Title, &e.EventDate, &e.SelectedDate, &createdBy, &e.IsPublic); err != nil {
			return nil, apperr.Internal("scan event", err)
		}
		e.EventDate = utcPtr(e.EventDate)
		e.SelectedDate = utcPtr(e.SelectedDate)
		e.IsCreator = createdBy == caller.UserID
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate events", err)
	}
	return events, nil
}

// EventDetail is the member read model of an event
func (s *Service) EventDetail(ctx context.Context, eventID string, caller Caller) (*models.EventView, error) {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	access, err := s.requireAccess(ctx, s.db, ev, caller)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, s.db, ev, UserVoter(caller.UserID), access)
}

// DeleteEvent removes an event and, by cascade, everything under it
func (s *Service) DeleteEvent(ctx context.Context, eventID string, caller Caller) error {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if err := requireCreator(ev, caller); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM event WHERE id = $1`, ev.ID); err != nil {
		return apperr.Internal("delete event", err)
	}
	slog.Info("event deleted", "event_id", ev.ID)
	return nil
}

// Publish makes the event public. The first publish issues a share token;
// later publishes (including after Unpublish) reuse it.
func (s *Service) Publish(ctx context.Context, eventID string, caller Caller) (string, error) {
	var token string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}

		fresh, err := s.codec.Encode(ev.ID)
		if err != nil {
			return apperr.Internal("encode share token", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE event SET share_token = COALESCE(share_token, $1), is_public = TRUE
			WHERE id = $2
		`, fresh, ev.ID); err != nil {
			return apperr.Internal("publish event", err)
		}

		if err := tx.QueryRowContext(ctx, `SELECT share_token FROM event WHERE id = $1`, ev.ID).Scan(&token); err != nil {
			return apperr.Internal("query share token", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("event published", "event_id", eventID)
	return token, nil
}

// Unpublish revokes public access. The token is kept so a later Publish
// hands out the same link again.
func (s *Service) Unpublish(ctx context.Context, eventID string, caller Caller) error {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if err := requireCreator(ev, caller); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE event SET is_public = FALSE WHERE id = $1`, ev.ID); err != nil {
		return apperr.Internal("unpublish event", err)
	}
	slog.Info("event unpublished", "event_id", ev.ID)
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
