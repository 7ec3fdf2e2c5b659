// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/boardnight/middleware"
	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/planner"
)

type DatePollHandler struct {
	svc *planner.Service
}

func NewDatePollHandler(svc *planner.Service) *DatePollHandler {
	return &DatePollHandler{svc: svc}
}

func toDateVotes(in []models.DateVoteRequest) []planner.DateVote {
	votes := make([]planner.DateVote, 0, len(in))
	for _, v := range in {
		votes = append(votes, planner.DateVote{DateProposalID: v.DateProposalID, Availability: v.Availability})
	}
	return votes
}

// CreateProposals handles POST /events/{id}/date-proposals
func (h *DatePollHandler) CreateProposals(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDateProposalsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in, err := planner.ParseProposalInput(req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	view, err := h.svc.CreateDateProposals(r.Context(), r.PathValue("id"), callerFrom(r), in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, view)
}

// ListProposals handles GET /events/{id}/date-proposals
func (h *DatePollHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.DatePoll(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// DeleteAll handles DELETE /events/{id}/date-proposals
func (h *DatePollHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAllDateProposals(r.Context(), r.PathValue("id"), callerFrom(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Date proposals deleted"})
}

// Vote handles POST /events/{id}/date-proposals/vote
func (h *DatePollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.DateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.submit(w, r, []models.DateVoteRequest{req})
}

// BulkVote handles PUT /events/{id}/date-proposals/vote
func (h *DatePollHandler) BulkVote(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.submit(w, r, req.Votes)
}

// submit applies the votes and answers with the refreshed poll
func (h *DatePollHandler) submit(w http.ResponseWriter, r *http.Request, votes []models.DateVoteRequest) {
	eventID := r.PathValue("id")
	caller := callerFrom(r)

	if err := h.svc.SubmitDateVotes(r.Context(), eventID, caller, toDateVotes(votes)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	view, err := h.svc.DatePoll(r.Context(), eventID, caller)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Select handles POST /events/{id}/date-proposals/select
func (h *DatePollHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req models.SelectDateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev, err := h.svc.SelectDate(r.Context(), r.PathValue("id"), callerFrom(r), req.DateProposalID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ev)
}

// Reset handles POST /events/{id}/date-proposals/reset
func (h *DatePollHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetDatePoll(r.Context(), r.PathValue("id"), callerFrom(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Date poll reset"})
}
