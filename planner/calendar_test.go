// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/boardnight/apperr"
	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/testutil"
)

// unfold joins iCalendar continuation lines
func unfold(s string) string {
	return strings.ReplaceAll(s, "\r\n ", "")
}

func TestCalendarSelectedDate(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC) }
	sam := f.invitee(t, "Sam")
	require.NoError(t, f.svc.RespondInvite(f.ctx, f.eventID, Caller{UserID: sam}, models.InviteStatusAccepted))

	p1 := testutil.AddDateProposal(t, f.db, f.eventID, day(2025, 1, 8))
	testutil.AddDateProposal(t, f.db, f.eventID, day(2025, 1, 9))
	require.NoError(t, f.svc.SubmitDateVotes(f.ctx, f.eventID, Caller{UserID: sam}, []DateVote{{p1, models.AvailabilityYes}}))
	_, err := f.svc.SelectDate(f.ctx, f.eventID, f.asCreator(), p1)
	require.NoError(t, err)

	out, err := f.svc.Calendar(f.ctx, f.eventID, Caller{UserID: sam})
	require.NoError(t, err)
	ics := unfold(out)

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "BEGIN:VEVENT")
	assert.Contains(t, ics, "UID:"+f.eventID+"@boardnight")
	assert.Contains(t, ics, "DTSTART:20250108T000000Z")
	assert.Contains(t, ics, "DTEND:20250108T040000Z")
	assert.Contains(t, ics, "DTSTAMP:20250102T100000Z")
	assert.Contains(t, ics, "SUMMARY:Game night")
	assert.Contains(t, ics, "LOCATION:Game room")
	assert.Contains(t, ics, "mailto:"+sam+"@example.com")
	assert.Contains(t, ics, "PARTSTAT=ACCEPTED")
	assert.Contains(t, ics, "Date finalized")
}

func TestCalendarFallsBackToEarliestProposal(t *testing.T) {
	f := newFixture(t)
	testutil.AddDateProposal(t, f.db, f.eventID, day(2025, 2, 14))
	testutil.AddDateProposal(t, f.db, f.eventID, day(2025, 2, 7))

	out, err := f.svc.Calendar(f.ctx, f.eventID, f.asCreator())
	require.NoError(t, err)
	assert.Contains(t, unfold(out), "DTSTART:20250207T000000Z")
}

func TestCalendarAccess(t *testing.T) {
	f := newFixture(t)
	token := testutil.PublishTestEvent(t, f.db, f.eventID)
	outsider := testutil.CreateTestUser(t, f.db, "Outsider")

	_, err := f.svc.Calendar(f.ctx, f.eventID, Caller{ShareToken: token})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = f.svc.Calendar(f.ctx, f.eventID, Caller{UserID: outsider, ShareToken: token})
	assertKind(t, err, apperr.KindForbidden)

	// No selected date, no event date, no proposals
	_, err = f.svc.Calendar(f.ctx, f.eventID, f.asCreator())
	assertKind(t, err, apperr.KindInvalidArgument)

	_, err = f.svc.Calendar(f.ctx, "missing", f.asCreator())
	assertKind(t, err, apperr.KindNotFound)

	// Anonymous callers learn nothing about which events exist
	_, err = f.svc.Calendar(f.ctx, "missing", Caller{})
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestCalendarDescription(t *testing.T) {
	ev := &models.Event{Description: "Bring snacks"}
	poll := &models.DatePollView{Proposals: []models.DateProposalView{
		{Date: day(2025, 1, 8), Tally: models.AvailabilityTally{Yes: 2, Maybe: 1}},
		{Date: day(2025, 1, 9), Tally: models.AvailabilityTally{No: 1}},
	}}
	attendees := []attendee{
		{Name: "Sam", Status: models.InviteStatusAccepted},
		{Name: "Avery", Status: models.InviteStatusPending},
	}

	got := calendarDescription(ev, poll, attendees)
	want := strings.Join([]string{
		"Bring snacks",
		"",
		"Date poll open: 2 proposed dates",
		"- Wed Jan 8, 2025: 2 yes, 1 maybe, 0 no",
		"- Thu Jan 9, 2025: 0 yes, 0 maybe, 1 no",
		"",
		"2 invitees: 1 accepted, 0 declined, 1 pending",
	}, "\n")
	assert.Equal(t, want, got)

	single := calendarDescription(&models.Event{}, &models.DatePollView{Proposals: poll.Proposals[:1]}, attendees[:1])
	assert.Contains(t, single, "1 proposed date\n")
	assert.Contains(t, single, "1 invitee: 1 accepted")
}
