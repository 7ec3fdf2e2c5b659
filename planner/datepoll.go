// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/metrics"
	"github.com/danielhkuo/boardnight/models"
)

// MaxRangeDays bounds how far apart startDate and endDate may be
const MaxRangeDays = 365

// DateRange is an inclusive span of days, optionally filtered to some
// weekdays (time.Sunday = 0 ... time.Saturday = 6).
type DateRange struct {
	Start    time.Time
	End      time.Time
	Weekdays []int
}

// ProposalInput is either an explicit date list or a range
type ProposalInput struct {
	Dates []time.Time
	Range *DateRange
}

// NormalizeDate truncates t to midnight UTC of its UTC calendar day
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp and returns
// the UTC midnight of that instant's UTC day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.InvalidArgument("invalid date: " + s)
	}
	return NormalizeDate(t), nil
}

// ParseProposalInput converts the wire request into a ProposalInput
func ParseProposalInput(req models.CreateDateProposalsRequest) (ProposalInput, error) {
	hasRange := req.StartDate != "" || req.EndDate != ""
	if len(req.Dates) > 0 && hasRange {
		return ProposalInput{}, apperr.InvalidArgument("provide either dates or startDate/endDate, not both")
	}

	if len(req.Dates) > 0 {
		in := ProposalInput{Dates: make([]time.Time, 0, len(req.Dates))}
		for _, s := range req.Dates {
			d, err := ParseDate(s)
			if err != nil {
				return ProposalInput{}, err
			}
			in.Dates = append(in.Dates, d)
		}
		return in, nil
	}

	if req.StartDate == "" || req.EndDate == "" {
		return ProposalInput{}, apperr.InvalidArgument("dates or startDate and endDate are required")
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return ProposalInput{}, err
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return ProposalInput{}, err
	}
	return ProposalInput{Range: &DateRange{Start: start, End: end, Weekdays: req.Weekdays}}, nil
}

// ExpandDates returns the distinct, sorted UTC-midnight dates described by in
func ExpandDates(in ProposalInput) ([]time.Time, error) {
	var dates []time.Time

	if in.Range != nil {
		start, end := NormalizeDate(in.Range.Start), NormalizeDate(in.Range.End)
		if start.After(end) {
			return nil, apperr.InvalidArgument("startDate must not be after endDate")
		}
		if end.Sub(start) > MaxRangeDays*24*time.Hour {
			return nil, apperr.InvalidArgument("date range cannot exceed 365 days")
		}

		var filter map[time.Weekday]bool
		if len(in.Range.Weekdays) > 0 {
			filter = make(map[time.Weekday]bool, len(in.Range.Weekdays))
			for _, wd := range in.Range.Weekdays {
				if wd < 0 || wd > 6 {
					return nil, apperr.InvalidArgument("weekdays must be between 0 (Sunday) and 6 (Saturday)")
				}
				filter[time.Weekday(wd)] = true
			}
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if filter != nil && !filter[d.Weekday()] {
				continue
			}
			dates = append(dates, d)
		}
	} else {
		seen := make(map[time.Time]bool, len(in.Dates))
		for _, d := range in.Dates {
			d = NormalizeDate(d)
			if seen[d] {
				continue
			}
			seen[d] = true
			dates = append(dates, d)
		}
		if len(dates) > MaxRangeDays+1 {
			return nil, apperr.InvalidArgument("too many dates")
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}

	if len(dates) == 0 {
		return nil, apperr.InvalidArgument("no dates to propose")
	}
	return dates, nil
}

// DateVote is one availability answer in a (bulk) vote
type DateVote struct {
	DateProposalID string
	Availability   string
}

func validateDateVotes(votes []DateVote) error {
	if len(votes) == 0 {
		return apperr.InvalidArgument("votes cannot be empty")
	}
	for _, v := range votes {
		if v.DateProposalID == "" {
			return apperr.InvalidArgument("dateProposalId is required")
		}
		if !models.ValidAvailability(v.Availability) {
			return apperr.InvalidArgument("availability must be yes, maybe or no")
		}
	}
	return nil
}

func requireOpen(ev *models.Event) error {
	if ev.SelectedDate != nil {
		return apperr.Conflict("Date poll is finalized")
	}
	return nil
}

// lockOpenPoll row-locks the event for the rest of tx if its poll is still
// open. A SelectDate that committed after ev was loaded makes it fail, and
// one that starts later waits for tx.
func lockOpenPoll(ctx context.Context, tx *sql.Tx, eventID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE event SET selected_date = NULL
		WHERE id = $1 AND selected_date IS NULL
	`, eventID)
	if err != nil {
		return apperr.Internal("lock date poll", err)
	}
	n, err := rowsAffected(res, "lock date poll")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Conflict("Date poll is finalized")
	}
	return nil
}

// CreateDateProposals adds dates to an open poll. Dates already proposed
// are left alone, so repeating a call (or widening the weekday filter) is safe.
func (s *Service) CreateDateProposals(ctx context.Context, eventID string, caller Caller, in ProposalInput) (*models.DatePollView, error) {
	var view *models.DatePollView
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}
		if err := requireOpen(ev); err != nil {
			return err
		}
		if err := lockOpenPoll(ctx, tx, ev.ID); err != nil {
			return err
		}
		dates, err := ExpandDates(in)
		if err != nil {
			return err
		}

		now := s.now()
		var created int64
		for _, d := range dates {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO date_proposal (id, event_id, proposed_date, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (event_id, proposed_date) DO NOTHING
			`, auth.NewID(), ev.ID, d, now)
			if err != nil {
				return apperr.Internal("insert date proposal", err)
			}
			n, err := rowsAffected(res, "insert date proposal")
			if err != nil {
				return err
			}
			created += n
		}

		view, err = datePollView(ctx, tx, ev, UserVoter(caller.UserID), true)
		if err != nil {
			return err
		}
		slog.Info("date proposals created", "event_id", ev.ID, "requested", len(dates), "created", created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SubmitDateVotes records a registered user's availability. All votes are
// applied in one transaction; an existing (proposal, user) answer is overwritten.
func (s *Service) SubmitDateVotes(ctx context.Context, eventID string, caller Caller, votes []DateVote) error {
	if err := validateDateVotes(votes); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if _, err := s.requireUserAccess(ctx, tx, ev, caller); err != nil {
			return err
		}
		return s.upsertDateVotes(ctx, tx, ev, UserVoter(caller.UserID), votes)
	})
}

// SubmitGuestDateVotes is SubmitDateVotes for a guest reached via share token
func (s *Service) SubmitGuestDateVotes(ctx context.Context, token, guestID string, votes []DateVote) error {
	if err := validateDateVotes(votes); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := s.publicEvent(ctx, tx, token)
		if err != nil {
			return err
		}
		if err := resolveGuest(ctx, tx, ev.ID, guestID); err != nil {
			return err
		}
		return s.upsertDateVotes(ctx, tx, ev, GuestVoter(guestID), votes)
	})
}

func (s *Service) upsertDateVotes(ctx context.Context, tx *sql.Tx, ev *models.Event, voter Voter, votes []DateVote) error {
	if err := requireOpen(ev); err != nil {
		return err
	}
	if err := lockOpenPoll(ctx, tx, ev.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO date_vote (date_proposal_id, user_id, availability, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date_proposal_id, user_id)
		DO UPDATE SET availability = excluded.availability, updated_at = excluded.updated_at
	`
	voterLabel := metrics.VoterUser
	if voter.IsGuest() {
		query = `
			INSERT INTO guest_date_vote (date_proposal_id, guest_id, availability, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (date_proposal_id, guest_id)
			DO UPDATE SET availability = excluded.availability, updated_at = excluded.updated_at
		`
		voterLabel = metrics.VoterGuest
	}

	now := s.now()
	for _, v := range votes {
		if err := requireDateProposal(ctx, tx, ev.ID, v.DateProposalID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, v.DateProposalID, voter.id(), v.Availability, now); err != nil {
			return apperr.Internal("upsert date vote", err)
		}
	}

	metrics.VotesCast.WithLabelValues(metrics.PollDate, voterLabel).Add(float64(len(votes)))
	slog.Info("date votes recorded", "event_id", ev.ID, "guest", voter.IsGuest(), "count", len(votes))
	return nil
}

// requireDateProposal fails with NotFound unless proposalID belongs to eventID
func requireDateProposal(ctx context.Context, q querier, eventID, proposalID string) error {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM date_proposal WHERE id = $1 AND event_id = $2
	`, proposalID, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Date proposal not found")
	}
	if err != nil {
		return apperr.Internal("query date proposal", err)
	}
	return nil
}

// SelectDate finalizes the poll on one proposal and mirrors the date into
// the event date. A finalized poll must be reset before selecting again.
func (s *Service) SelectDate(ctx context.Context, eventID string, caller Caller, proposalID string) (*models.Event, error) {
	if proposalID == "" {
		return nil, apperr.InvalidArgument("dateProposalId is required")
	}

	var ev *models.Event
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		ev, err = loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}
		if ev.SelectedDate != nil {
			return apperr.Conflict("Date already selected; reset the poll first")
		}

		var date time.Time
		err = tx.QueryRowContext(ctx, `
			SELECT proposed_date FROM date_proposal WHERE id = $1 AND event_id = $2
		`, proposalID, ev.ID).Scan(&date)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Date proposal not found")
		}
		if err != nil {
			return apperr.Internal("query date proposal", err)
		}
		date = date.UTC()

		// Guarded on selected_date so a concurrent select cannot overwrite
		res, err := tx.ExecContext(ctx, `
			UPDATE event SET selected_date = $1, event_date = $1
			WHERE id = $2 AND selected_date IS NULL
		`, date, ev.ID)
		if err != nil {
			return apperr.Internal("select date", err)
		}
		n, err := rowsAffected(res, "select date")
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.Conflict("Date already selected; reset the poll first")
		}

		ev.SelectedDate = &date
		ev.EventDate = &date
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DatesFinalized.Inc()
	slog.Info("date selected", "event_id", ev.ID, "date_proposal_id", proposalID)
	return ev, nil
}

// ResetDatePoll deletes every proposal (and with them every date vote) and
// clears the selected date, reopening the poll.
func (s *Service) ResetDatePoll(ctx context.Context, eventID string, caller Caller) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM date_proposal WHERE event_id = $1`, ev.ID); err != nil {
			return apperr.Internal("delete date proposals", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE event SET selected_date = NULL WHERE id = $1`, ev.ID); err != nil {
			return apperr.Internal("clear selected date", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("date poll reset", "event_id", eventID)
	return nil
}

// DeleteAllDateProposals clears an open poll without touching the event
func (s *Service) DeleteAllDateProposals(ctx context.Context, eventID string, caller Caller) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ev, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := requireCreator(ev, caller); err != nil {
			return err
		}
		if err := requireOpen(ev); err != nil {
			return err
		}
		if err := lockOpenPoll(ctx, tx, ev.ID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM date_proposal WHERE event_id = $1`, ev.ID)
		if err != nil {
			return apperr.Internal("delete date proposals", err)
		}
		n, err := rowsAffected(res, "delete date proposals")
		if err != nil {
			return err
		}
		slog.Info("date proposals cleared", "event_id", ev.ID, "deleted", n)
		return nil
	})
}

// DatePoll returns the poll state with per-proposal tallies
func (s *Service) DatePoll(ctx context.Context, eventID string, caller Caller) (*models.DatePollView, error) {
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	access, err := s.requireAccess(ctx, s.db, ev, caller)
	if err != nil {
		return nil, err
	}
	return datePollView(ctx, s.db, ev, UserVoter(caller.UserID), access.Member())
}

// datePollView tallies every proposal. viewer's own answers are marked;
// withVotes adds who answered what (members only).
func datePollView(ctx context.Context, q querier, ev *models.Event, viewer Voter, withVotes bool) (*models.DatePollView, error) {
	view := &models.DatePollView{
		State:        ev.PollState(),
		SelectedDate: ev.SelectedDate,
		Proposals:    []models.DateProposalView{},
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, proposed_date FROM date_proposal
		WHERE event_id = $1
		ORDER BY proposed_date
	`, ev.ID)
	if err != nil {
		return nil, apperr.Internal("query date proposals", err)
	}
	index := map[string]int{}
	for rows.Next() {
		var p models.DateProposalView
		if err := rows.Scan(&p.ID, &p.Date); err != nil {
			rows.Close()
			return nil, apperr.Internal("scan date proposal", err)
		}
		p.Date = p.Date.UTC()
		index[p.ID] = len(view.Proposals)
		view.Proposals = append(view.Proposals, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate date proposals", err)
	}

	// Registered and guest answers, in one pass
	rows, err = q.QueryContext(ctx, `
		SELECT v.date_proposal_id, v.user_id, u.name, v.availability, FALSE
		FROM date_vote v
		JOIN date_proposal dp ON dp.id = v.date_proposal_id
		JOIN app_user u ON u.id = v.user_id
		WHERE dp.event_id = $1
		UNION ALL
		SELECT v.date_proposal_id, v.guest_id, g.nickname, v.availability, TRUE
		FROM guest_date_vote v
		JOIN date_proposal dp ON dp.id = v.date_proposal_id
		JOIN guest_participant g ON g.id = v.guest_id
		WHERE dp.event_id = $1
	`, ev.ID)
	if err != nil {
		return nil, apperr.Internal("query date votes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var proposalID, voterID, name, availability string
		var guest bool
		if err := rows.Scan(&proposalID, &voterID, &name, &availability, &guest); err != nil {
			return nil, apperr.Internal("scan date vote", err)
		}
		i, ok := index[proposalID]
		if !ok {
			continue
		}
		p := &view.Proposals[i]

		switch availability {
		case models.AvailabilityYes:
			p.Tally.Yes++
		case models.AvailabilityMaybe:
			p.Tally.Maybe++
		case models.AvailabilityNo:
			p.Tally.No++
		}
		if voterID != "" && voterID == viewer.id() && guest == viewer.IsGuest() {
			p.MyAvailability = availability
		}
		if withVotes {
			p.Votes = append(p.Votes, models.DateVoteView{Name: name, Guest: guest, Availability: availability})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate date votes", err)
	}

	for i := range view.Proposals {
		votes := view.Proposals[i].Votes
		sort.Slice(votes, func(a, b int) bool { return votes[a].Name < votes[b].Name })
	}
	return view, nil
}
