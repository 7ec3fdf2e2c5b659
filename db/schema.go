// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/boardnight/cliparse"
)

// Open connects to the configured store and verifies the connection.
// SQLite connections get foreign keys (cascades depend on them) and a busy timeout.
func Open(dbType, url string) (*sql.DB, error) {
	driver := "postgres"
	if dbType == cliparse.DatabaseSQLite {
		driver = "sqlite"
		url = withSQLitePragmas(url)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbType == cliparse.DatabaseSQLite {
		// SQLite has a single writer; one connection keeps transactions from
		// tripping over each other with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func withSQLitePragmas(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid for both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{`
-- Registered users (owned by the account service; read-only here)
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
)`, `
-- Game catalog (filled by the BoardGameGeek importer)
CREATE TABLE IF NOT EXISTS game (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    year_published INTEGER,
    thumbnail_url TEXT
)`, `
-- Personal collections
CREATE TABLE IF NOT EXISTS user_game (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    added_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, game_id)
)`, `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    event_date TIMESTAMP,
    location TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    is_public BOOLEAN NOT NULL DEFAULT FALSE,
    share_token TEXT UNIQUE,
    selected_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    CHECK (is_public = FALSE OR share_token IS NOT NULL)
)`,
	`CREATE INDEX IF NOT EXISTS idx_event_created_by ON event(created_by)`, `
-- Invitations
CREATE TABLE IF NOT EXISTS event_invite (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
    created_at TIMESTAMP NOT NULL,
    responded_at TIMESTAMP,
    PRIMARY KEY (event_id, user_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_event_invite_user ON event_invite(user_id)`, `
-- Date poll
CREATE TABLE IF NOT EXISTS date_proposal (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    proposed_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (event_id, proposed_date)
)`, `
CREATE TABLE IF NOT EXISTS date_vote (
    date_proposal_id TEXT NOT NULL REFERENCES date_proposal(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    availability TEXT NOT NULL CHECK (availability IN ('yes', 'maybe', 'no')),
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (date_proposal_id, user_id)
)`, `
-- Guests
CREATE TABLE IF NOT EXISTS guest_participant (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    nickname TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (event_id, nickname)
)`, `
CREATE TABLE IF NOT EXISTS guest_date_vote (
    date_proposal_id TEXT NOT NULL REFERENCES date_proposal(id) ON DELETE CASCADE,
    guest_id TEXT NOT NULL REFERENCES guest_participant(id) ON DELETE CASCADE,
    availability TEXT NOT NULL CHECK (availability IN ('yes', 'maybe', 'no')),
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (date_proposal_id, guest_id)
)`, `
-- Game proposals
CREATE TABLE IF NOT EXISTS game_proposal (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    proposed_by TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (event_id, game_id)
)`, `
CREATE TABLE IF NOT EXISTS game_vote (
    proposal_id TEXT NOT NULL REFERENCES game_proposal(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (proposal_id, user_id)
)`, `
CREATE TABLE IF NOT EXISTS guest_game_vote (
    proposal_id TEXT NOT NULL REFERENCES game_proposal(id) ON DELETE CASCADE,
    guest_id TEXT NOT NULL REFERENCES guest_participant(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (proposal_id, guest_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_game_proposal_event ON game_proposal(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_guest_participant_event ON guest_participant(event_id)`,
}
