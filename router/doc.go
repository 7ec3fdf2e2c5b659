// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the boardnight API.

# Route Registration

NewRouter builds the share codec, the session verifier and the planner
service, then returns a configured http.ServeMux:

	mux, err := router.NewRouter(db, cfg)

Every API route is wrapped as WithLogging(WithMetrics(WithSession(h))).

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition
	GET /        - Banner

Events (Authorization: Bearer <session>):

	POST   /events                         - Create event
	GET    /events                         - Events created by or inviting the caller
	GET    /events/{id}                    - Member view
	DELETE /events/{id}                    - Delete (creator)
	POST   /events/{id}/publish            - Issue share link (creator)
	POST   /events/{id}/unpublish          - Revoke share link (creator)
	GET    /events/{id}/calendar           - iCalendar export
	POST   /events/{id}/invites            - Invite users (creator)
	PUT    /events/{id}/invites/me         - Accept or decline
	DELETE /events/{id}/invites/{userId}   - Remove invite (creator)

Date poll:

	GET    /events/{id}/date-proposals        - Proposals with tallies
	POST   /events/{id}/date-proposals        - Add dates (creator)
	DELETE /events/{id}/date-proposals        - Clear dates (creator)
	POST   /events/{id}/date-proposals/vote   - Vote on one date
	PUT    /events/{id}/date-proposals/vote   - Vote on several dates
	POST   /events/{id}/date-proposals/select - Finalize (creator)
	POST   /events/{id}/date-proposals/reset  - Reopen (creator)

Games:

	GET    /events/{id}/proposals              - Ranked proposals
	POST   /events/{id}/proposals              - Propose from collection
	DELETE /events/{id}/proposals?proposalId=  - Withdraw (proposer)
	POST   /events/{id}/votes                  - Vote
	DELETE /events/{id}/votes?proposalId=      - Remove vote

Public (share token, no session needed):

	GET         /public/event/{token}           - Public view
	POST        /public/event/{token}/join      - Join as guest
	POST|DELETE /public/event/{token}/vote      - Guest game vote
	POST        /public/event/{token}/date-vote - Guest date votes
*/
package router
