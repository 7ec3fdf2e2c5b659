// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/models"
)

const (
	calendarProductID = "-//boardnight//event planner//EN"
	eventDuration     = 4 * time.Hour
)

type attendee struct {
	Name   string
	Email  string
	Status string
}

// Calendar renders the event as an iCalendar document. The VEVENT starts
// at the selected date, else the event date, else the earliest proposal.
// Only the creator and invitees may export, since attendees carry emails.
func (s *Service) Calendar(ctx context.Context, eventID string, caller Caller) (string, error) {
	if caller.UserID == "" {
		return "", apperr.Unauthorized("Sign in required")
	}
	ev, err := loadEvent(ctx, s.db, eventID)
	if err != nil {
		return "", err
	}
	access, err := s.accessFor(ctx, s.db, ev, caller)
	if err != nil {
		return "", err
	}
	if !access.Member() {
		return "", apperr.Forbidden("Only the creator and invitees can export the calendar")
	}

	poll, err := datePollView(ctx, s.db, ev, UserVoter(caller.UserID), false)
	if err != nil {
		return "", err
	}

	var creatorName, creatorEmail string
	err = s.db.QueryRowContext(ctx, `SELECT name, email FROM app_user WHERE id = $1`, ev.CreatedByID).
		Scan(&creatorName, &creatorEmail)
	if err != nil {
		return "", apperr.Internal("query creator", err)
	}

	attendees, err := inviteAttendees(ctx, s.db, ev.ID)
	if err != nil {
		return "", err
	}

	start, ok := calendarStart(ev, poll)
	if !ok {
		return "", apperr.InvalidArgument("Event has no date to export")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	vevent := cal.AddEvent(ev.ID + "@boardnight")
	vevent.SetDtStampTime(s.now())
	vevent.SetCreatedTime(ev.CreatedAt)
	vevent.SetStartAt(start)
	vevent.SetEndAt(start.Add(eventDuration))
	vevent.SetSummary(ev.Title)
	if ev.Location != "" {
		vevent.SetLocation(ev.Location)
	}
	vevent.SetDescription(calendarDescription(ev, poll, attendees))
	vevent.SetOrganizer("mailto:"+creatorEmail, ics.WithCN(creatorName))
	for _, a := range attendees {
		vevent.AddAttendee(a.Email,
			ics.WithCN(a.Name),
			ics.CalendarUserTypeIndividual,
			ics.ParticipationRoleReqParticipant,
			participationStatus(a.Status),
		)
	}

	return cal.Serialize(), nil
}

func calendarStart(ev *models.Event, poll *models.DatePollView) (time.Time, bool) {
	switch {
	case ev.SelectedDate != nil:
		return ev.SelectedDate.UTC(), true
	case ev.EventDate != nil:
		return ev.EventDate.UTC(), true
	case len(poll.Proposals) > 0:
		return poll.Proposals[0].Date.UTC(), true
	}
	return time.Time{}, false
}

func calendarDescription(ev *models.Event, poll *models.DatePollView, attendees []attendee) string {
	var b strings.Builder
	if ev.Description != "" {
		b.WriteString(ev.Description)
		b.WriteString("\n\n")
	}

	if ev.SelectedDate != nil {
		fmt.Fprintf(&b, "Date finalized: %s\n", ev.SelectedDate.UTC().Format("Mon Jan 2, 2006"))
	} else if len(poll.Proposals) > 0 {
		fmt.Fprintf(&b, "Date poll open: %s\n", english.Plural(len(poll.Proposals), "proposed date", ""))
	}
	for _, p := range poll.Proposals {
		fmt.Fprintf(&b, "- %s: %d yes, %d maybe, %d no\n",
			p.Date.Format("Mon Jan 2, 2006"), p.Tally.Yes, p.Tally.Maybe, p.Tally.No)
	}

	if len(attendees) > 0 {
		counts := map[string]int{}
		for _, a := range attendees {
			counts[a.Status]++
		}
		fmt.Fprintf(&b, "\n%s: %d accepted, %d declined, %d pending\n",
			english.Plural(len(attendees), "invitee", ""),
			counts[models.InviteStatusAccepted],
			counts[models.InviteStatusDeclined],
			counts[models.InviteStatusPending],
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func participationStatus(status string) ics.ParticipationStatus {
	switch status {
	case models.InviteStatusAccepted:
		return ics.ParticipationStatusAccepted
	case models.InviteStatusDeclined:
		return ics.ParticipationStatusDeclined
	}
	return ics.ParticipationStatusNeedsAction
}

func inviteAttendees(ctx context.Context, q querier, eventID string) ([]attendee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.name, u.email, i.status
		FROM event_invite i
		JOIN app_user u ON u.id = i.user_id
		WHERE i.event_id = $1
		ORDER BY u.name, u.id
	`, eventID)
	if err != nil {
		return nil, apperr.Internal("query attendees", err)
	}
	defer rows.Close()

	var attendees []attendee
	for rows.Next() {
		var a attendee
		if err := rows.Scan(&a.Name, &a.Email, &a.Status); err != nil {
			return nil, apperr.Internal("scan attendee", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate attendees", err)
	}
	return attendees, nil
}
