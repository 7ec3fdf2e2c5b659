// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/models"
)

// Access records which relationship admitted a caller to an event
type Access struct {
	Creator bool
	Invited bool
	Public  bool
}

func (a Access) Allowed() bool {
	return a.Creator || a.Invited || a.Public
}

// Member is true for the creator and invitees
func (a Access) Member() bool {
	return a.Creator || a.Invited
}

// ShareTokenValid reports whether token currently grants public access to ev.
// The token must open under this server's key, name ev, and equal the token
// stored on ev while ev is public. A stale or revoked token fails here even
// though it still decodes.
func (s *Service) ShareTokenValid(ev *models.Event, token string) bool {
	if token == "" || !ev.IsPublic || ev.ShareToken == nil {
		return false
	}
	eventID, err := s.codec.Decode(token)
	if err != nil || eventID != ev.ID {
		return false
	}
	return auth.TokensEqual(token, *ev.ShareToken)
}

// CanAccess is the single authorization predicate: the creator, an invited
// user, anyone holding the valid share token of a public event, or a caller
// presenting nothing at all when the event is public. Writes additionally
// require a user or guest identity. It reads the invite list on every call.
func (s *Service) CanAccess(ctx context.Context, ev *models.Event, caller Caller) (bool, error) {
	access, err := s.accessFor(ctx, s.db, ev, caller)
	if err != nil {
		return false, err
	}
	return access.Allowed(), nil
}

func (s *Service) accessFor(ctx context.Context, q querier, ev *models.Event, caller Caller) (Access, error) {
	var access Access
	if caller.UserID != "" {
		if caller.UserID == ev.CreatedByID {
			access.Creator = true
			return access, nil
		}
		invited, err := isInvited(ctx, q, ev.ID, caller.UserID)
		if err != nil {
			return access, err
		}
		access.Invited = invited
	}
	if access.Invited {
		return access, nil
	}
	anonymous := caller.UserID == "" && caller.ShareToken == ""
	if (anonymous && ev.IsPublic) || s.ShareTokenValid(ev, caller.ShareToken) {
		access.Public = true
	}
	return access, nil
}

// requireAccess returns Unauthorized for an anonymous caller without a
// usable token and Forbidden for a known caller without a relationship.
func (s *Service) requireAccess(ctx context.Context, q querier, ev *models.Event, caller Caller) (Access, error) {
	access, err := s.accessFor(ctx, q, ev, caller)
	if err != nil {
		return access, err
	}
	if access.Allowed() {
		return access, nil
	}
	if caller.UserID == "" {
		return access, apperr.Unauthorized("Sign in or use a share link")
	}
	return access, apperr.Forbidden("You do not have access to this event")
}

// requireUserAccess is requireAccess for operations that record a registered identity
func (s *Service) requireUserAccess(ctx context.Context, q querier, ev *models.Event, caller Caller) (Access, error) {
	if caller.UserID == "" {
		return Access{}, apperr.Unauthorized("Sign in required")
	}
	return s.requireAccess(ctx, q, ev, caller)
}

func requireCreator(ev *models.Event, caller Caller) error {
	if caller.UserID == "" {
		return apperr.Unauthorized("Sign in required")
	}
	if caller.UserID != ev.CreatedByID {
		return apperr.Forbidden("Only the event creator can do this")
	}
	return nil
}

func isInvited(ctx context.Context, q querier, eventID, userID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM event_invite WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, userID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal("query invite", err)
	}
	return exists, nil
}

// publicEvent resolves a share token to its event. Undecodable tokens,
// tokens of private events and stale tokens all read as NotFound so the
// response cannot be used to probe which tokens exist.
func (s *Service) publicEvent(ctx context.Context, q querier, token string) (*models.Event, error) {
	eventID, err := s.codec.Decode(token)
	if err != nil {
		return nil, apperr.NotFound("Event not found")
	}

	ev, err := loadEvent(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	if !s.ShareTokenValid(ev, token) {
		return nil, apperr.NotFound("Event not found")
	}
	return ev, nil
}
