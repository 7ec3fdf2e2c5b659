// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/metrics"
	"github.com/danielhkuo/boardnight/models"
)

// ProposeGame puts a game from the caller's own collection up for a vote
func (s *Service) ProposeGame(ctx context.Context, eventID string, caller Caller, gameID string) (*models.GameProposal, error) {
	if gameID == "" {
		return nil, apperr.InvalidArgument("gameId is required")
	}

	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireUserAccess(ctx, s.db, ev, caller); err != nil {
		return nil, err
	}

	owns, err := s.collections.OwnsGame(ctx, caller.UserID, gameID)
	if err != nil {
		return nil, apperr.Internal("check collection", err)
	}
	if !owns {
		return nil, apperr.Forbidden("You can only propose games from your collection")
	}

	p := &models.GameProposal{
		ID:           auth.NewID(),
		EventID:      ev.ID,
		GameID:       gameID,
		ProposedByID: caller.UserID,
		CreatedAt:    s.now(),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO game_proposal (id, event_id, game_id, proposed_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, game_id) DO NOTHING
	`, p.ID, p.EventID, p.GameID, p.ProposedByID, p.CreatedAt)
	if err != nil {
		return nil, apperr.Internal("insert game proposal", err)
	}
	n, err := rowsAffected(res, "insert game proposal")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.Conflict("Game already proposed for this event")
	}

	slog.Info("game proposed", "event_id", ev.ID, "proposal_id", p.ID, "game_id", gameID)
	return p, nil
}

// WithdrawProposal removes a proposal and its votes. Only the proposer may.
func (s *Service) WithdrawProposal(ctx context.Context, eventID string, caller Caller, proposalID string) error {
	if proposalID == "" {
		return apperr.InvalidArgument("proposalId is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if _, err := s.requireUserAccess(ctx, tx, ev, caller); err != nil {
			return err
		}

		p, err := loadGameProposal(ctx, tx, ev.ID, proposalID)
		if err != nil {
			return err
		}
		if p.ProposedByID != caller.UserID {
			return apperr.Forbidden("Only the proposer can withdraw this game")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM game_proposal WHERE id = $1`, p.ID); err != nil {
			return apperr.Internal("delete game proposal", err)
		}
		slog.Info("game proposal withdrawn", "event_id", ev.ID, "proposal_id", p.ID)
		return nil
	})
}

// VoteGame records one unit of support from a registered user
func (s *Service) VoteGame(ctx context.Context, eventID string, caller Caller, proposalID string) error {
	if proposalID == "" {
		return apperr.InvalidArgument("proposalId is required")
	}
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if _, err := s.requireUserAccess(ctx, s.db, ev, caller); err != nil {
		return err
	}
	return s.castGameVote(ctx, ev, UserVoter(caller.UserID), proposalID)
}

// UnvoteGame withdraws a registered user's support
func (s *Service) UnvoteGame(ctx context.Context, eventID string, caller Caller, proposalID string) error {
	if proposalID == "" {
		return apperr.InvalidArgument("proposalId is required")
	}
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if _, err := s.requireUserAccess(ctx, s.db, ev, caller); err != nil {
		return err
	}
	return s.removeGameVote(ctx, ev, UserVoter(caller.UserID), proposalID)
}

// GuestVoteGame records one unit of support from a guest of the token's event
func (s *Service) GuestVoteGame(ctx context.Context, token, guestID, proposalID string) error {
	if proposalID == "" {
		return apperr.InvalidArgument("proposalId is required")
	}
	ev, err := s.publicEvent(ctx, s.db, token)
	if err != nil {
		return err
	}
	if err := resolveGuest(ctx, s.db, ev.ID, guestID); err != nil {
		return err
	}
	return s.castGameVote(ctx, ev, GuestVoter(guestID), proposalID)
}

func (s *Service) GuestUnvoteGame(ctx context.Context, token, guestID, proposalID string) error {
	if proposalID == "" {
		return apperr.InvalidArgument("proposalId is required")
	}
	ev, err := s.publicEvent(ctx, s.db, token)
	if err != nil {
		return err
	}
	if err := resolveGuest(ctx, s.db, ev.ID, guestID); err != nil {
		return err
	}
	return s.removeGameVote(ctx, ev, GuestVoter(guestID), proposalID)
}

// castGameVote inserts a vote row. The (proposal, voter) key decides
// concurrent duplicates: the first insert wins, the rest see Conflict.
func (s *Service) castGameVote(ctx context.Context, ev *models.Event, voter Voter, proposalID string) error {
	if _, err := loadGameProposal(ctx, s.db, ev.ID, proposalID); err != nil {
		return err
	}

	query := `
		INSERT INTO game_vote (proposal_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, user_id) DO NOTHING
	`
	voterLabel := metrics.VoterUser
	if voter.IsGuest() {
		query = `
			INSERT INTO guest_game_vote (proposal_id, guest_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (proposal_id, guest_id) DO NOTHING
		`
		voterLabel = metrics.VoterGuest
	}

	res, err := s.db.ExecContext(ctx, query, proposalID, voter.id(), s.now())
	if err != nil {
		return apperr.Internal("insert game vote", err)
	}
	n, err := rowsAffected(res, "insert game vote")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Conflict("Already voted")
	}

	metrics.VotesCast.WithLabelValues(metrics.PollGame, voterLabel).Inc()
	slog.Info("game vote cast", "event_id", ev.ID, "proposal_id", proposalID, "guest", voter.IsGuest())
	return nil
}

func (s *Service) removeGameVote(ctx context.Context, ev *models.Event, voter Voter, proposalID string) error {
	if _, err := loadGameProposal(ctx, s.db, ev.ID, proposalID); err != nil {
		return err
	}

	query := `DELETE FROM game_vote WHERE proposal_id = $1 AND user_id = $2`
	if voter.IsGuest() {
		query = `DELETE FROM guest_game_vote WHERE proposal_id = $1 AND guest_id = $2`
	}
	res, err := s.db.ExecContext(ctx, query, proposalID, voter.id())
	if err != nil {
		return apperr.Internal("delete game vote", err)
	}
	n, err := rowsAffected(res, "delete game vote")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Vote not found")
	}

	slog.Info("game vote removed", "event_id", ev.ID, "proposal_id", proposalID, "guest", voter.IsGuest())
	return nil
}

func loadGameProposal(ctx context.Context, q querier, eventID, proposalID string) (*models.GameProposal, error) {
	var p models.GameProposal
	err := q.QueryRowContext(ctx, `
		SELECT id, event_id, game_id, proposed_by, created_at
		FROM game_proposal
		WHERE id = $1 AND event_id = $2
	`, proposalID, eventID).Scan(&p.ID, &p.EventID, &p.GameID, &p.ProposedByID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Game proposal not found")
	}
	if err != nil {
		return nil, apperr.Internal("query game proposal", err)
	}
	return &p, nil
}

// Games returns the event's proposals in rank order
func (s *Service) Games(ctx context.Context, eventID string, caller Caller) ([]models.GameProposalView, error) {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	access, err := s.requireAccess(ctx, s.db, ev, caller)
	if err != nil {
		return nil, err
	}
	return rankedGames(ctx, s.db, ev.ID, UserVoter(caller.UserID), !access.Member())
}

// rankedGames loads every proposal with its split vote counts and ranks
// them. public drops proposer ids.
func rankedGames(ctx context.Context, q querier, eventID string, viewer Voter, public bool) ([]models.GameProposalView, error) {
	votedByMe := `EXISTS(SELECT 1 FROM game_vote v WHERE v.proposal_id = gp.id AND v.user_id = $2)`
	if viewer.IsGuest() {
		votedByMe = `EXISTS(SELECT 1 FROM guest_game_vote v WHERE v.proposal_id = gp.id AND v.guest_id = $2)`
	}

	rows, err := q.QueryContext(ctx, `
		SELECT gp.id, gp.created_at,
		       g.id, g.name, g.year_published, g.thumbnail_url,
		       u.id, u.name,
		       (SELECT COUNT(*) FROM game_vote v WHERE v.proposal_id = gp.id),
		       (SELECT COUNT(*) FROM guest_game_vote v WHERE v.proposal_id = gp.id),
		       `+votedByMe+`
		FROM game_proposal gp
		JOIN game g ON g.id = gp.game_id
		JOIN app_user u ON u.id = gp.proposed_by
		WHERE gp.event_id = $1
	`, eventID, viewer.id())
	if err != nil {
		return nil, apperr.Internal("query game proposals", err)
	}
	defer rows.Close()

	games := []models.GameProposalView{}
	for rows.Next() {
		var g models.GameProposalView
		var year sql.NullInt64
		var thumb sql.NullString
		if err := rows.Scan(
			&g.ID, &g.CreatedAt,
			&g.Game.ID, &g.Game.Name, &year, &thumb,
			&g.ProposedBy.ID, &g.ProposedBy.Name,
			&g.RegisteredVotes, &g.GuestVotes, &g.VotedByMe,
		); err != nil {
			return nil, apperr.Internal("scan game proposal", err)
		}
		if year.Valid {
			y := int(year.Int64)
			g.Game.YearPublished = &y
		}
		g.Game.ThumbnailURL = thumb.String
		g.CreatedAt = g.CreatedAt.UTC()
		g.TotalVotes = g.RegisteredVotes + g.GuestVotes
		if viewer.id() == "" {
			g.VotedByMe = false
		}
		if public {
			g.ProposedBy.ID = ""
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate game proposals", err)
	}

	RankGameProposals(games)
	return games, nil
}

// RankGameProposals sorts by total support, most first. Ties go to the
// earlier proposal, then the lower id, so the order is stable across reads.
// Rank is set to the 1-based position.
func RankGameProposals(games []models.GameProposalView) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.TotalVotes != b.TotalVotes {
			return a.TotalVotes > b.TotalVotes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for i := range games {
		games[i].Rank = i + 1
	}
}
