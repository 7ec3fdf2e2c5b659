// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateEventRequest: title, description, location, eventDate
  - CreateDateProposalsRequest: dates, or startDate/endDate/weekdays
  - DateVoteRequest, BulkDateVoteRequest: dateProposalId, availability
  - SelectDateRequest: dateProposalId
  - ProposeGameRequest: gameId
  - GameVoteRequest: proposalId
  - InviteRequest, RespondInviteRequest: userIds, status
  - JoinRequest: nickname
  - GuestGameVoteRequest, GuestDateVoteRequest: guestId plus the vote

# Response Types

  - PublishResponse: shareToken, publicUrl
  - JoinResponse: guestId, nickname, isNew
  - MessageResponse: message
  - ErrorResponse: error

# Read Models

EventView is the aggregate served to both members and guests. The public
variant leaves out user IDs, invites, emails and per-voter date answers.

  - GameProposalView: ranked proposal with vote split and votedByMe
  - DatePollView, DateProposalView: state, proposals, tallies
  - GuestSummary: nickname with vote counts

# Constants

Availability:

	AvailabilityYes   = "yes"
	AvailabilityMaybe = "maybe"
	AvailabilityNo    = "no"

Date poll state:

	PollOpen      = "open"
	PollFinalized = "finalized"

Invite status:

	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
*/
package models
