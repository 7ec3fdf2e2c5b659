// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/models"
)

// PublicEvent is the read model behind a share link. guestID, when it
// names a guest of this event, marks that guest's own votes; an unknown
// guestID is ignored so a stale client-side cache still gets the page.
// A registered caller's own game votes are marked as well.
func (s *Service) PublicEvent(ctx context.Context, token string, caller Caller, guestID string) (*models.EventView, error) {
	ev, err := s.publicEvent(ctx, s.db, token)
	if err != nil {
		return nil, err
	}

	viewer := UserVoter(caller.UserID)
	if guestID != "" {
		switch err := resolveGuest(ctx, s.db, ev.ID, guestID); {
		case err == nil:
			viewer = GuestVoter(guestID)
		case !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		}
	}

	return s.buildView(ctx, s.db, ev, viewer, Access{Public: true})
}

// buildView assembles the aggregate read model. Public viewers get names
// only: no user ids, no per-voter date answers, no invite list. Emails are
// never part of it.
func (s *Service) buildView(ctx context.Context, q querier, ev *models.Event, viewer Voter, access Access) (*models.EventView, error) {
	member := access.Member()

	var creatorName string
	if err := q.QueryRowContext(ctx, `SELECT name FROM app_user WHERE id = $1`, ev.CreatedByID).Scan(&creatorName); err != nil {
		return nil, apperr.Internal("query creator", err)
	}

	view := &models.EventView{
		Event: models.EventInfo{
			Title:        ev.Title,
			Description:  ev.Description,
			Location:     ev.Location,
			EventDate:    utcPtr(ev.EventDate),
			SelectedDate: utcPtr(ev.SelectedDate),
			CreatedBy:    models.UserRef{Name: creatorName},
			IsPublic:     ev.IsPublic,
		},
	}
	if member {
		view.Event.ID = ev.ID
		view.Event.CreatedBy.ID = ev.CreatedByID
	}

	games, err := rankedGames(ctx, q, ev.ID, viewer, !member)
	if err != nil {
		return nil, err
	}
	view.Games = games

	poll, err := datePollView(ctx, q, ev, viewer, member)
	if err != nil {
		return nil, err
	}
	view.DatePoll = *poll

	guests, err := guestRoster(ctx, q, ev.ID)
	if err != nil {
		return nil, err
	}
	view.Guests = guests

	if member {
		invites, err := listInvites(ctx, q, ev.ID)
		if err != nil {
			return nil, err
		}
		view.Invites = invites
	}
	if access.Creator {
		view.IsCreator = true
		if ev.ShareToken != nil {
			view.ShareToken = *ev.ShareToken
		}
	}
	return view, nil
}

// guestRoster lists guests by nickname with how many game and date votes
// each has cast. Guest ids stay server-side.
func guestRoster(ctx context.Context, q querier, eventID string) ([]models.GuestSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT g.nickname,
		       (SELECT COUNT(*) FROM guest_game_vote v WHERE v.guest_id = g.id),
		       (SELECT COUNT(*) FROM guest_date_vote v WHERE v.guest_id = g.id)
		FROM guest_participant g
		WHERE g.event_id = $1
		ORDER BY g.created_at, g.nickname
	`, eventID)
	if err != nil {
		return nil, apperr.Internal("query guests", err)
	}
	defer rows.Close()

	guests := []models.GuestSummary{}
	for rows.Next() {
		var g models.GuestSummary
		if err := rows.Scan(&g.Nickname, &g.VoteCount, &g.DateVoteCount); err != nil {
			return nil, apperr.Internal("scan guest", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate guests", err)
	}
	return guests, nil
}
