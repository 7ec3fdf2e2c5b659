package models

import "time"

// Date poll availability values
const (
	AvailabilityYes   = "yes"
	AvailabilityMaybe = "maybe"
	AvailabilityNo    = "no"
)

// Date poll states
const (
	PollOpen      = "open"
	PollFinalized = "finalized"
)

// Invitation status values
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// ValidAvailability reports whether a is one of yes, maybe, no
func ValidAvailability(a string) bool {
	switch a {
	case AvailabilityYes, AvailabilityMaybe, AvailabilityNo:
		return true
	}
	return false
}

// Request types

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	EventDate   string `json:"eventDate,omitempty"`
}

// Either Dates or StartDate/EndDate (with optional Weekdays, 0=Sunday)
type CreateDateProposalsRequest struct {
	Dates     []string `json:"dates,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Weekdays  []int    `json:"weekdays,omitempty"`
}

type DateVoteRequest struct {
	DateProposalID string `json:"dateProposalId"`
	Availability   string `json:"availability"`
}

type BulkDateVoteRequest struct {
	Votes []DateVoteRequest `json:"votes"`
}

type SelectDateRequest struct {
	DateProposalID string `json:"dateProposalId"`
}

type ProposeGameRequest struct {
	GameID string `json:"gameId"`
}

type GameVoteRequest struct {
	ProposalID string `json:"proposalId"`
}

type InviteRequest struct {
	UserIDs []string `json:"userIds"`
}

type RespondInviteRequest struct {
	Status string `json:"status"`
}

type JoinRequest struct {
	Nickname string `json:"nickname"`
}

type GuestGameVoteRequest struct {
	GuestID    string `json:"guestId"`
	ProposalID string `json:"proposalId"`
}

type GuestDateVoteRequest struct {
	GuestID string            `json:"guestId"`
	Votes   []DateVoteRequest `json:"votes"`
}

// Response types

type PublishResponse struct {
	ShareToken string `json:"shareToken"`
	PublicURL  string `json:"publicUrl"`
}

type JoinResponse struct {
	GuestID  string `json:"guestId"`
	Nickname string `json:"nickname"`
	IsNew    bool   `json:"isNew"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	Location     string     `json:"location"`
	CreatedByID  string     `json:"createdById"`
	IsPublic     bool       `json:"isPublic"`
	ShareToken   *string    `json:"shareToken,omitempty"`
	SelectedDate *time.Time `json:"selectedDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// PollState reports whether the date poll is open or finalized
func (e *Event) PollState() string {
	if e.SelectedDate != nil {
		return PollFinalized
	}
	return PollOpen
}

type DateProposal struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

type GuestParticipant struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

type GameProposal struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	GameID       string    `json:"gameId"`
	ProposedByID string    `json:"proposedById"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Invite struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type EventSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	SelectedDate *time.Time `json:"selectedDate,omitempty"`
	IsCreator    bool       `json:"isCreator"`
	IsPublic     bool       `json:"isPublic"`
}

// Read models

// UserRef identifies a registered user by name. ID is left empty in
// public payloads.
type UserRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type GameInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished *int   `json:"yearPublished,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
}

type GameProposalView struct {
	ID              string    `json:"id"`
	Rank            int       `json:"rank"` // 1-indexed
	Game            GameInfo  `json:"game"`
	ProposedBy      UserRef   `json:"proposedBy"`
	RegisteredVotes int       `json:"registeredVotes"`
	GuestVotes      int       `json:"guestVotes"`
	TotalVotes      int       `json:"totalVotes"`
	VotedByMe       bool      `json:"votedByMe"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AvailabilityTally struct {
	Yes   int `json:"yes"`
	Maybe int `json:"maybe"`
	No    int `json:"no"`
}

// DateVoteView is one voter's answer, shown to event members only
type DateVoteView struct {
	Name         string `json:"name"`
	Guest        bool   `json:"guest"`
	Availability string `json:"availability"`
}

type DateProposalView struct {
	ID             string            `json:"id"`
	Date           time.Time         `json:"date"`
	Tally          AvailabilityTally `json:"tally"`
	MyAvailability string            `json:"myAvailability,omitempty"`
	Votes          []DateVoteView    `json:"votes,omitempty"`
}

type DatePollView struct {
	State        string             `json:"state"`
	SelectedDate *time.Time         `json:"selectedDate,omitempty"`
	Proposals    []DateProposalView `json:"proposals"`
}

type GuestSummary struct {
	Nickname      string `json:"nickname"`
	VoteCount     int    `json:"voteCount"`
	DateVoteCount int    `json:"dateVoteCount"`
}

type EventInfo struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	SelectedDate *time.Time `json:"selectedDate,omitempty"`
	CreatedBy    UserRef    `json:"createdBy"`
	IsPublic     bool       `json:"isPublic"`
}

// EventView is the aggregate read model. The public façade fills only the
// fields safe for unauthenticated guests; members also get invites, and the
// creator gets the share token.
type EventView struct {
	Event      EventInfo          `json:"event"`
	Games      []GameProposalView `json:"games"`
	DatePoll   DatePollView       `json:"datePoll"`
	Guests     []GuestSummary     `json:"guests"`
	Invites    []Invite           `json:"invites,omitempty"`
	IsCreator  bool               `json:"isCreator,omitempty"`
	ShareToken string             `json:"shareToken,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
