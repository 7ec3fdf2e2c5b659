// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/boardnight/middleware"
	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/planner"
)

// PublicHandler serves the share-link routes. The token in the path is
// the only credential; guests identify themselves by guestId.
type PublicHandler struct {
	svc *planner.Service
}

func NewPublicHandler(svc *planner.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// GetEvent handles GET /public/event/{token}
func (h *PublicHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	guestID := r.URL.Query().Get("guestId")

	view, err := h.svc.PublicEvent(r.Context(), token, callerFrom(r), guestID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Join handles POST /public/event/{token}/join
func (h *PublicHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	guest, isNew, err := h.svc.JoinAsGuest(r.Context(), r.PathValue("token"), req.Nickname)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.JoinResponse{
		GuestID:  guest.ID,
		Nickname: guest.Nickname,
		IsNew:    isNew,
	})
}

// Vote handles POST /public/event/{token}/vote
func (h *PublicHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.GuestGameVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.GuestVoteGame(r.Context(), r.PathValue("token"), req.GuestID, req.ProposalID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.MessageResponse{Message: "Vote recorded"})
}

// Unvote handles DELETE /public/event/{token}/vote. The guest and proposal
// come from the query string, or from a JSON body when the query has none.
func (h *PublicHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	req := models.GuestGameVoteRequest{
		GuestID:    r.URL.Query().Get("guestId"),
		ProposalID: r.URL.Query().Get("proposalId"),
	}
	if req.GuestID == "" && req.ProposalID == "" && r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	if err := h.svc.GuestUnvoteGame(r.Context(), r.PathValue("token"), req.GuestID, req.ProposalID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Vote removed"})
}

// DateVote handles POST /public/event/{token}/date-vote
func (h *PublicHandler) DateVote(w http.ResponseWriter, r *http.Request) {
	var req models.GuestDateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token := r.PathValue("token")
	if err := h.svc.SubmitGuestDateVotes(r.Context(), token, req.GuestID, toDateVotes(req.Votes)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	view, err := h.svc.PublicEvent(r.Context(), token, planner.Caller{}, req.GuestID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view.DatePoll)
}
