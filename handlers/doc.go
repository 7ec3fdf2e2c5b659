// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the boardnight API.

# Handler Types

Each handler is a struct over the planner service and config:

  - EventHandler: Event CRUD, publishing, invites, calendar export
  - DatePollHandler: Date proposals, availability votes, finalization
  - GameHandler: Game proposals and registered-user votes
  - PublicHandler: Share-link view, guest join and guest votes

Handlers are created via constructor functions:

	eventHandler := handlers.NewEventHandler(svc, cfg)

Handlers decode the request, call planner, and write the result. Errors
from planner carry a kind that middleware.WriteError maps to a status.

# Identity

Registered users arrive through middleware.WithSession, which puts the
user ID on the request context. Guests never have a session; they send the
share token in the path and their guest ID in the body or query string.

# Date Poll

	POST /events/{id}/date-proposals        → CreateProposals (dates or a range)
	POST /events/{id}/date-proposals/vote   → Vote (one date)
	PUT  /events/{id}/date-proposals/vote   → BulkVote
	POST /events/{id}/date-proposals/select → Select (creator, open poll only)
	POST /events/{id}/date-proposals/reset  → Reset (creator)

# Public Links

	GET  /public/event/{token}           → GetEvent (?guestId= marks own votes)
	POST /public/event/{token}/join      → Join (201 new, 200 existing nickname)
	POST /public/event/{token}/vote      → Vote
	POST /public/event/{token}/date-vote → DateVote

Every invalid, tampered or unpublished token yields the same 404.
*/
package handlers
