// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the boardnight API server.

Boardnight schedules board-game nights. A registered user creates an event,
invites friends, proposes candidate dates, and lets everyone vote on which
date works and which games to bring. Publishing the event issues a share
link; anyone holding it can join as a nickname-only guest and vote too.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=boardnight.db SHARE_TOKEN_SECRET=... SESSION_SECRET=... go run .

Or with flags against PostgreSQL:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SHARE_TOKEN_SECRET (--share-secret): Key material for share tokens
  - SESSION_SECRET (--session-secret): HMAC key for session JWTs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PUBLIC_BASE_URL (--public-url): Prefix for share links

# Architecture

  - planner: Event, date poll, game poll and guest rules
  - handlers: HTTP request handlers over planner
  - router: Route definitions using Go 1.22+ routing
  - middleware: Sessions, CORS, logging, metrics, JSON helpers
  - auth: Share token codec and session verification
  - apperr: Error kinds mapped to HTTP status codes
  - metrics: Prometheus collectors
  - models: Request/response types
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
