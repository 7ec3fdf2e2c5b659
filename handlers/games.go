// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/boardnight/middleware"
	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/planner"
)

type GameHandler struct {
	svc *planner.Service
}

func NewGameHandler(svc *planner.Service) *GameHandler {
	return &GameHandler{svc: svc}
}

// ListProposals handles GET /events/{id}/proposals
func (h *GameHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	games, err := h.svc.Games(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, games)
}

// Propose handles POST /events/{id}/proposals
func (h *GameHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req models.ProposeGameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.svc.ProposeGame(r.Context(), r.PathValue("id"), callerFrom(r), req.GameID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, p)
}

// Withdraw handles DELETE /events/{id}/proposals?proposalId=
func (h *GameHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	proposalID := r.URL.Query().Get("proposalId")
	if err := h.svc.WithdrawProposal(r.Context(), r.PathValue("id"), callerFrom(r), proposalID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Proposal withdrawn"})
}

// Vote handles POST /events/{id}/votes
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.GameVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.VoteGame(r.Context(), r.PathValue("id"), callerFrom(r), req.ProposalID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.MessageResponse{Message: "Vote recorded"})
}

// Unvote handles DELETE /events/{id}/votes?proposalId=
func (h *GameHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	proposalID := r.URL.Query().Get("proposalId")
	if err := h.svc.UnvoteGame(r.Context(), r.PathValue("id"), callerFrom(r), proposalID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Vote removed"})
}
