// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/cliparse"
	"github.com/danielhkuo/boardnight/db"
	"github.com/danielhkuo/boardnight/middleware"
)

// SetupTestDB creates a fresh SQLite database with the full schema.
// Each test gets its own file, removed with t.TempDir.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "test.db",
		DatabaseType:     cliparse.DatabaseSQLite,
		ShareTokenSecret: "test-share-secret",
		SessionSecret:    "test-session-secret",
		PublicBaseURL:    "http://localhost:3318",
	}
}

// NewTestCodec returns the share codec for GetTestConfig's secret
func NewTestCodec(t *testing.T) *auth.ShareCodec {
	t.Helper()
	codec, err := auth.NewShareCodec(GetTestConfig().ShareTokenSecret)
	if err != nil {
		t.Fatalf("Failed to create share codec: %v", err)
	}
	return codec
}

// CreateTestUser inserts a registered user and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	userID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO app_user (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, name, userID+"@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

// CreateTestGame inserts a catalog game and returns its ID
func CreateTestGame(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	gameID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO game (id, name, year_published, thumbnail_url)
		VALUES ($1, $2, $3, $4)
	`, gameID, name, 2017, "https://example.com/"+gameID+".png")
	if err != nil {
		t.Fatalf("Failed to create test game: %v", err)
	}
	return gameID
}

// AddToCollection puts a game in a user's collection
func AddToCollection(t *testing.T, conn *sql.DB, userID, gameID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO user_game (user_id, game_id, added_at)
		VALUES ($1, $2, $3)
	`, userID, gameID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to add game to collection: %v", err)
	}
}

// CreateTestEvent inserts a private, open event owned by creatorID
func CreateTestEvent(t *testing.T, conn *sql.DB, creatorID, title string) string {
	t.Helper()

	eventID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO event (id, title, description, location, created_by, is_public, created_at)
		VALUES ($1, $2, 'A test event', 'Game room', $3, FALSE, $4)
	`, eventID, title, creatorID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return eventID
}

// PublishTestEvent makes the event public and returns its share token
func PublishTestEvent(t *testing.T, conn *sql.DB, eventID string) string {
	t.Helper()

	token, err := NewTestCodec(t).Encode(eventID)
	if err != nil {
		t.Fatalf("Failed to encode share token: %v", err)
	}
	_, err = conn.Exec(`UPDATE event SET share_token = $1, is_public = TRUE WHERE id = $2`, token, eventID)
	if err != nil {
		t.Fatalf("Failed to publish test event: %v", err)
	}
	return token
}

// InviteTestUser adds userID to the event's invite list
func InviteTestUser(t *testing.T, conn *sql.DB, eventID, userID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO event_invite (event_id, user_id, status, created_at)
		VALUES ($1, $2, 'pending', $3)
	`, eventID, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to invite test user: %v", err)
	}
}

// AddDateProposal inserts a date proposal (date is normalized to UTC midnight)
func AddDateProposal(t *testing.T, conn *sql.DB, eventID string, date time.Time) string {
	t.Helper()

	date = date.UTC()
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	proposalID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO date_proposal (id, event_id, proposed_date, created_at)
		VALUES ($1, $2, $3, $4)
	`, proposalID, eventID, date, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create date proposal: %v", err)
	}
	return proposalID
}

// CreateTestGuest inserts a guest participant and returns its ID
func CreateTestGuest(t *testing.T, conn *sql.DB, eventID, nickname string) string {
	t.Helper()

	guestID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO guest_participant (id, event_id, nickname, created_at)
		VALUES ($1, $2, $3, $4)
	`, guestID, eventID, nickname, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test guest: %v", err)
	}
	return guestID
}

// ProposeTestGame inserts a game proposal and returns its ID. createdAt
// orders proposals for ranking ties.
func ProposeTestGame(t *testing.T, conn *sql.DB, eventID, gameID, proposerID string, createdAt time.Time) string {
	t.Helper()

	proposalID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO game_proposal (id, event_id, game_id, proposed_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, proposalID, eventID, gameID, proposerID, createdAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create game proposal: %v", err)
	}
	return proposalID
}

// CountRows runs a COUNT(*) query and returns the result
func CountRows(t *testing.T, conn *sql.DB, query string, args ...interface{}) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// SessionToken issues a session for userID under GetTestConfig's secret
func SessionToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.IssueSession(userID, GetTestConfig().SessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header for userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + SessionToken(t, userID)}
}

// WithUser attaches userID to the request context the way the session
// middleware does
func WithUser(req *http.Request, userID string) *http.Request {
	if userID == "" {
		return req
	}
	return req.WithContext(middleware.ContextWithCaller(req.Context(), userID))
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
