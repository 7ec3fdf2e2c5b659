// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package planner is the scheduling and voting engine behind board game nights.

A Service works over the store passed to NewService and keeps nothing in
memory between calls:

	svc := planner.NewService(db, codec, planner.NewSQLCollectionStore(db))

# Callers

Every operation takes a Caller: the registered user from the session (may
be empty) and the share token the request presented (may be empty). Guest
operations take the share token and a guest ID instead. Access is decided
fresh on every call: the creator, an invitee, or a holder of the current
share token of a public event.

# Date Poll

Each event has one date poll, open until the creator selects a date:

	CreateDateProposals → SubmitDateVotes / SubmitGuestDateVotes → SelectDate
	                                  ↑                                 │
	                                  └────────── ResetDatePoll ←───────┘

Availability answers are yes, maybe or no and are overwritten on re-vote.
Dates are stored as UTC midnight.

# Game Proposals

Members propose games from their own collection. Support is one vote per
voter per proposal; a second vote is a Conflict. Proposals are ranked on
read by total support, ties going to the earlier proposal.

# Guests

JoinAsGuest maps a nickname to a per-event guest identity. There is no
authentication behind it: anyone who knows a nickname can vote as that guest
within that event.

# Errors

All errors are *apperr.Error values; callers switch on apperr.KindOf.
*/
package planner
