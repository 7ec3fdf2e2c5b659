// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/testutil"
)

// TestDatePollWorkflow walks a week-long date poll from creation to a
// finalized date.
func TestDatePollWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := newTestService(t, db)
	eventHandler := NewEventHandler(svc, cfg)
	dateHandler := NewDatePollHandler(svc)

	creator := testutil.CreateTestUser(t, db, "Dana")
	voterA := testutil.CreateTestUser(t, db, "Avery")
	voterB := testutil.CreateTestUser(t, db, "Blake")

	// Step 1: Create the event
	w := httptest.NewRecorder()
	eventHandler.CreateEvent(w, request("POST", "/events", models.CreateEventRequest{Title: "Board game night"}, creator, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create event failed: %d - %s", w.Code, w.Body.String())
	}
	var ev models.Event
	testutil.AssertJSON(t, w, &ev)
	path := map[string]string{"id": ev.ID}
	t.Logf("Step 1 - Created event: %s", ev.ID)

	// Step 2: Invite both voters
	w = httptest.NewRecorder()
	eventHandler.Invite(w, request("POST", "/events/"+ev.ID+"/invites",
		models.InviteRequest{UserIDs: []string{voterA, voterB}}, creator, path))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Invite failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 3: Propose Monday through Sunday
	w = httptest.NewRecorder()
	dateHandler.CreateProposals(w, request("POST", "/events/"+ev.ID+"/date-proposals",
		models.CreateDateProposalsRequest{StartDate: "2025-01-06", EndDate: "2025-01-12"}, creator, path))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Create proposals failed: %d - %s", w.Code, w.Body.String())
	}
	var poll models.DatePollView
	testutil.AssertJSON(t, w, &poll)
	if len(poll.Proposals) != 7 {
		t.Fatalf("Step 3 - Expected 7 proposals, got %d", len(poll.Proposals))
	}
	third := poll.Proposals[2]
	t.Logf("Step 3 - Third proposal is %s", third.Date.Format("2006-01-02"))

	// Step 4: A says yes, B says no
	for _, v := range []struct {
		userID       string
		availability string
	}{{voterA, "yes"}, {voterB, "no"}} {
		w = httptest.NewRecorder()
		dateHandler.Vote(w, request("POST", "/events/"+ev.ID+"/date-proposals/vote",
			models.DateVoteRequest{DateProposalID: third.ID, Availability: v.availability}, v.userID, path))
		if w.Code != http.StatusOK {
			t.Fatalf("Step 4 - Vote failed: %d - %s", w.Code, w.Body.String())
		}
	}

	w = httptest.NewRecorder()
	dateHandler.ListProposals(w, request("GET", "/events/"+ev.ID+"/date-proposals", nil, creator, path))
	testutil.AssertJSON(t, w, &poll)
	if poll.Proposals[2].Tally != (models.AvailabilityTally{Yes: 1, No: 1}) {
		t.Errorf("Step 4 - Unexpected tally: %+v", poll.Proposals[2].Tally)
	}

	// Step 5: Finalize on the third date
	w = httptest.NewRecorder()
	dateHandler.Select(w, request("POST", "/events/"+ev.ID+"/date-proposals/select",
		models.SelectDateRequest{DateProposalID: third.ID}, creator, path))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Select failed: %d - %s", w.Code, w.Body.String())
	}
	testutil.AssertJSON(t, w, &ev)
	if ev.SelectedDate == nil || !ev.SelectedDate.Equal(mustDate(t, "2025-01-08")) {
		t.Errorf("Step 5 - Expected 2025-01-08 selected, got %v", ev.SelectedDate)
	}

	// Step 6: The poll no longer takes votes
	w = httptest.NewRecorder()
	dateHandler.Vote(w, request("POST", "/events/"+ev.ID+"/date-proposals/vote",
		models.DateVoteRequest{DateProposalID: third.ID, Availability: "maybe"}, voterB, path))
	if w.Code != http.StatusConflict {
		t.Errorf("Step 6 - Expected 409 voting on a finalized poll, got %d", w.Code)
	}
}

// TestGuestWorkflow publishes an event and has a guest join and vote on a game.
func TestGuestWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := newTestService(t, db)
	eventHandler := NewEventHandler(svc, cfg)
	gameHandler := NewGameHandler(svc)
	publicHandler := NewPublicHandler(svc)

	creator := testutil.CreateTestUser(t, db, "Dana")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	game := testutil.CreateTestGame(t, db, "Wingspan")
	testutil.AddToCollection(t, db, creator, game)
	path := map[string]string{"id": eventID}

	// Step 1: Propose a game
	w := httptest.NewRecorder()
	gameHandler.Propose(w, request("POST", "/events/"+eventID+"/proposals", models.ProposeGameRequest{GameID: game}, creator, path))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Propose failed: %d - %s", w.Code, w.Body.String())
	}
	var proposal models.GameProposal
	testutil.AssertJSON(t, w, &proposal)

	// Step 2: Publish
	w = httptest.NewRecorder()
	eventHandler.Publish(w, request("POST", "/events/"+eventID+"/publish", nil, creator, path))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Publish failed: %d - %s", w.Code, w.Body.String())
	}
	var published models.PublishResponse
	testutil.AssertJSON(t, w, &published)
	token := published.ShareToken
	publicPath := map[string]string{"token": token}

	// Step 3: Join twice as Alex
	var guestIDs []string
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		publicHandler.Join(w, request("POST", "/public/event/"+token+"/join", models.JoinRequest{Nickname: "Alex"}, "", publicPath))
		if w.Code != http.StatusCreated && w.Code != http.StatusOK {
			t.Fatalf("Step 3 - Join failed: %d - %s", w.Code, w.Body.String())
		}
		var joined models.JoinResponse
		testutil.AssertJSON(t, w, &joined)
		guestIDs = append(guestIDs, joined.GuestID)
	}
	if guestIDs[0] != guestIDs[1] {
		t.Fatalf("Step 3 - Expected the same guest id, got %v", guestIDs)
	}
	guestID := guestIDs[0]

	vote := func() int {
		w := httptest.NewRecorder()
		publicHandler.Vote(w, request("POST", "/public/event/"+token+"/vote",
			models.GuestGameVoteRequest{GuestID: guestID, ProposalID: proposal.ID}, "", publicPath))
		return w.Code
	}
	unvote := func() int {
		w := httptest.NewRecorder()
		publicHandler.Unvote(w, request("DELETE", "/public/event/"+token+"/vote?guestId="+guestID+"&proposalId="+proposal.ID,
			nil, "", publicPath))
		return w.Code
	}

	// Step 4: vote, vote again, unvote, vote
	if code := vote(); code != http.StatusCreated {
		t.Fatalf("Step 4 - First vote: expected 201, got %d", code)
	}
	if code := vote(); code != http.StatusConflict {
		t.Errorf("Step 4 - Second vote: expected 409, got %d", code)
	}
	if code := unvote(); code != http.StatusOK {
		t.Errorf("Step 4 - Unvote: expected 200, got %d", code)
	}
	if code := vote(); code != http.StatusCreated {
		t.Errorf("Step 4 - Vote after unvote: expected 201, got %d", code)
	}

	// Step 5: The public page shows one guest vote
	w = httptest.NewRecorder()
	publicHandler.GetEvent(w, request("GET", "/public/event/"+token, nil, "", publicPath))
	var view models.EventView
	testutil.AssertJSON(t, w, &view)
	if len(view.Games) != 1 || view.Games[0].GuestVotes != 1 || view.Games[0].TotalVotes != 1 {
		t.Errorf("Step 5 - Unexpected games: %+v", view.Games)
	}
	if len(view.Guests) != 1 || view.Guests[0].VoteCount != 1 {
		t.Errorf("Step 5 - Unexpected guests: %+v", view.Guests)
	}
}

// TestCreatorOnlyOperations checks the permission edges of the date poll.
func TestCreatorOnlyOperations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dateHandler := NewDatePollHandler(newTestService(t, db))

	creator := testutil.CreateTestUser(t, db, "Dana")
	invitee := testutil.CreateTestUser(t, db, "Sam")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	testutil.InviteTestUser(t, db, eventID, invitee)
	testutil.AddDateProposal(t, db, eventID, mustDate(t, "2025-01-06"))

	otherEvent := testutil.CreateTestEvent(t, db, creator, "Other night")
	foreign := testutil.AddDateProposal(t, db, otherEvent, mustDate(t, "2025-01-07"))
	path := map[string]string{"id": eventID}

	w := httptest.NewRecorder()
	dateHandler.Reset(w, request("POST", "/events/"+eventID+"/date-proposals/reset", nil, invitee, path))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	dateHandler.Select(w, request("POST", "/events/"+eventID+"/date-proposals/select",
		models.SelectDateRequest{DateProposalID: foreign}, creator, path))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	if n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM date_proposal WHERE event_id = $1", eventID); n != 1 {
		t.Errorf("Expected the proposal to survive, found %d", n)
	}
}
