// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/planner"
	"github.com/danielhkuo/boardnight/testutil"
)

func newTestService(t *testing.T, db *sql.DB) *planner.Service {
	t.Helper()
	return planner.NewService(db, testutil.NewTestCodec(t), planner.NewSQLCollectionStore(db))
}

// request builds a JSON request as userID (empty for anonymous) with path values set
func request(method, path string, body interface{}, userID string, pathValues map[string]string) *http.Request {
	req := testutil.WithUser(testutil.MakeRequest(method, path, body, nil), userID)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

func TestCreateEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(newTestService(t, db), cfg)
	userID := testutil.CreateTestUser(t, db, "Dana")

	tests := []struct {
		name           string
		userID         string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid event",
			userID:         userID,
			body:           models.CreateEventRequest{Title: "Game night", Location: "Dana's place", EventDate: "2025-03-01T18:00:00Z"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			userID:         userID,
			body:           models.CreateEventRequest{Location: "Somewhere"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date",
			userID:         userID,
			body:           models.CreateEventRequest{Title: "Game night", EventDate: "tomorrow"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "anonymous",
			body:           models.CreateEventRequest{Title: "Game night"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid json",
			userID:         userID,
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("POST", "/events", tt.body, tt.userID, nil)
			w := httptest.NewRecorder()

			handler.CreateEvent(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error == "" {
					t.Error("Expected an error message")
				}
				return
			}

			var ev models.Event
			testutil.AssertJSON(t, w, &ev)
			if ev.ID == "" || ev.CreatedByID != tt.userID {
				t.Errorf("Unexpected event: %+v", ev)
			}
			if ev.EventDate == nil {
				t.Error("Expected eventDate to be set")
			}
		})
	}
}

func TestGetEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(newTestService(t, db), cfg)

	creator := testutil.CreateTestUser(t, db, "Dana")
	invitee := testutil.CreateTestUser(t, db, "Sam")
	outsider := testutil.CreateTestUser(t, db, "Outsider")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	testutil.InviteTestUser(t, db, eventID, invitee)
	token := testutil.PublishTestEvent(t, db, eventID)
	privateID := testutil.CreateTestEvent(t, db, creator, "Private night")

	tests := []struct {
		name           string
		userID         string
		eventID        string
		shareToken     string
		expectedStatus int
	}{
		{"creator", creator, eventID, "", http.StatusOK},
		{"invitee", invitee, eventID, "", http.StatusOK},
		{"outsider", outsider, eventID, "", http.StatusForbidden},
		{"outsider with share token", outsider, eventID, token, http.StatusOK},
		{"anonymous on public event", "", eventID, "", http.StatusOK},
		{"anonymous on private event", "", privateID, "", http.StatusUnauthorized},
		{"unknown event", creator, "missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("GET", "/events/"+tt.eventID, nil, tt.userID, map[string]string{"id": tt.eventID})
			if tt.shareToken != "" {
				req.Header.Set(ShareTokenHeader, tt.shareToken)
			}
			w := httptest.NewRecorder()

			handler.GetEvent(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := newTestService(t, db)
	handler := NewEventHandler(svc, cfg)
	public := NewPublicHandler(svc)

	creator := testutil.CreateTestUser(t, db, "Dana")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	path := map[string]string{"id": eventID}

	w := httptest.NewRecorder()
	handler.Publish(w, request("POST", "/events/"+eventID+"/publish", nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PublishResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ShareToken == "" {
		t.Fatal("Expected a share token")
	}
	if resp.PublicURL != cfg.PublicBaseURL+"/public/event/"+resp.ShareToken {
		t.Errorf("Unexpected public URL: %s", resp.PublicURL)
	}

	getPublic := func() int {
		req := request("GET", "/public/event/"+resp.ShareToken, nil, "", map[string]string{"token": resp.ShareToken})
		w := httptest.NewRecorder()
		public.GetEvent(w, req)
		return w.Code
	}
	if code := getPublic(); code != http.StatusOK {
		t.Errorf("Expected public page to load, got %d", code)
	}

	w = httptest.NewRecorder()
	handler.Unpublish(w, request("POST", "/events/"+eventID+"/unpublish", nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)

	if code := getPublic(); code != http.StatusNotFound {
		t.Errorf("Expected 404 after unpublish, got %d", code)
	}

	// Publishing again hands out the same link
	w = httptest.NewRecorder()
	handler.Publish(w, request("POST", "/events/"+eventID+"/publish", nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)
	var again models.PublishResponse
	testutil.AssertJSON(t, w, &again)
	if again.ShareToken != resp.ShareToken {
		t.Error("Expected the share token to be reused")
	}
}

func TestInviteFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(newTestService(t, db), cfg)

	creator := testutil.CreateTestUser(t, db, "Dana")
	sam := testutil.CreateTestUser(t, db, "Sam")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	path := map[string]string{"id": eventID}

	w := httptest.NewRecorder()
	handler.Invite(w, request("POST", "/events/"+eventID+"/invites", models.InviteRequest{UserIDs: []string{sam}}, sam, path))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	handler.Invite(w, request("POST", "/events/"+eventID+"/invites", models.InviteRequest{UserIDs: []string{sam}}, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)
	var invites []models.Invite
	testutil.AssertJSON(t, w, &invites)
	if len(invites) != 1 || invites[0].Status != models.InviteStatusPending {
		t.Fatalf("Unexpected invites: %+v", invites)
	}

	w = httptest.NewRecorder()
	handler.RespondInvite(w, request("PUT", "/events/"+eventID+"/invites/me",
		models.RespondInviteRequest{Status: models.InviteStatusAccepted}, sam, path))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	handler.ListEvents(w, request("GET", "/events", nil, sam, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var events []models.EventSummary
	testutil.AssertJSON(t, w, &events)
	if len(events) != 1 || events[0].ID != eventID || events[0].IsCreator {
		t.Errorf("Unexpected event list: %+v", events)
	}

	w = httptest.NewRecorder()
	handler.RemoveInvite(w, request("DELETE", "/events/"+eventID+"/invites/"+sam, nil, creator,
		map[string]string{"id": eventID, "userId": sam}))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	handler.GetEvent(w, request("GET", "/events/"+eventID, nil, sam, path))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestDeleteEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(newTestService(t, db), cfg)

	creator := testutil.CreateTestUser(t, db, "Dana")
	sam := testutil.CreateTestUser(t, db, "Sam")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	testutil.InviteTestUser(t, db, eventID, sam)
	path := map[string]string{"id": eventID}

	w := httptest.NewRecorder()
	handler.DeleteEvent(w, request("DELETE", "/events/"+eventID, nil, sam, path))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	handler.DeleteEvent(w, request("DELETE", "/events/"+eventID, nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM event_invite"); n != 0 {
		t.Errorf("Expected invites to be deleted, found %d", n)
	}
}

func TestCalendarHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := newTestService(t, db)
	handler := NewEventHandler(svc, cfg)

	creator := testutil.CreateTestUser(t, db, "Dana")
	eventID := testutil.CreateTestEvent(t, db, creator, "Game night")
	path := map[string]string{"id": eventID}

	// Nothing to put on a calendar yet
	w := httptest.NewRecorder()
	handler.Calendar(w, request("GET", "/events/"+eventID+"/calendar", nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	testutil.AddDateProposal(t, db, eventID, mustDate(t, "2025-01-10"))

	w = httptest.NewRecorder()
	handler.Calendar(w, request("GET", "/events/"+eventID+"/calendar", nil, creator, path))
	testutil.AssertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Expected text/calendar, got %q", ct)
	}
	body := strings.ReplaceAll(w.Body.String(), "\r\n ", "")
	if !strings.Contains(body, "DTSTART:20250110T000000Z") {
		t.Errorf("Expected DTSTART for the earliest proposal, got:\n%s", body)
	}

	w = httptest.NewRecorder()
	handler.Calendar(w, request("GET", "/events/"+eventID+"/calendar", nil, "", path))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	handler.Calendar(w, request("GET", "/events/missing/calendar", nil, "", map[string]string{"id": "missing"}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
