// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the store and creates its schema.

# Drivers

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses github.com/lib/pq; "sqlite" uses modernc.org/sqlite with
foreign keys enabled and a single connection. Queries use $N placeholders,
which both drivers accept.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Relationships

	app_user *──* game (via user_game)
	event 1──* event_invite *──1 app_user
	event 1──* date_proposal 1──* date_vote / guest_date_vote
	event 1──* guest_participant
	event 1──* game_proposal 1──* game_vote / guest_game_vote

All foreign keys use ON DELETE CASCADE, so deleting an event, a proposal,
a guest or a user removes the votes hanging off it.

# Uniqueness

The (proposal, voter) primary keys on the four vote tables are what
arbitrates concurrent votes: date votes upsert against them, game votes
insert with ON CONFLICT DO NOTHING and treat a no-op as "already voted".
*/
package db
