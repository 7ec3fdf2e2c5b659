// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/boardnight/cliparse"
	"github.com/danielhkuo/boardnight/middleware"
	"github.com/danielhkuo/boardnight/models"
	"github.com/danielhkuo/boardnight/planner"
)

// ShareTokenHeader lets a registered caller use a share link on member routes
const ShareTokenHeader = "X-Share-Token"

// callerFrom builds the planner caller from the session and share token header
func callerFrom(r *http.Request) planner.Caller {
	return planner.Caller{
		UserID:     middleware.CallerID(r),
		ShareToken: r.Header.Get(ShareTokenHeader),
	}
}

type EventHandler struct {
	svc *planner.Service
	cfg cliparse.Config
}

func NewEventHandler(svc *planner.Service, cfg cliparse.Config) *EventHandler {
	return &EventHandler{svc: svc, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in, err := planner.ParseEventInput(req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	ev, err := h.svc.CreateEvent(r.Context(), callerFrom(r), in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, ev)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.EventDetail(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), r.PathValue("id"), callerFrom(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Event deleted"})
}

// Publish handles POST /events/{id}/publish
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	token, err := h.svc.Publish(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PublishResponse{
		ShareToken: token,
		PublicURL:  h.cfg.PublicBaseURL + "/public/event/" + token,
	})
}

// Unpublish handles POST /events/{id}/unpublish
func (h *EventHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unpublish(r.Context(), r.PathValue("id"), callerFrom(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Event is no longer public"})
}

// Invite handles POST /events/{id}/invites
func (h *EventHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req models.InviteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	invites, err := h.svc.InviteUsers(r.Context(), r.PathValue("id"), callerFrom(r), req.UserIDs)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, invites)
}

// RemoveInvite handles DELETE /events/{id}/invites/{userId}
func (h *EventHandler) RemoveInvite(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveInvite(r.Context(), r.PathValue("id"), callerFrom(r), r.PathValue("userId"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Invite removed"})
}

// RespondInvite handles PUT /events/{id}/invites/me
func (h *EventHandler) RespondInvite(w http.ResponseWriter, r *http.Request) {
	var req models.RespondInviteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.RespondInvite(r.Context(), r.PathValue("id"), callerFrom(r), req.Status); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Invite " + req.Status})
}

// Calendar handles GET /events/{id}/calendar
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	ics, err := h.svc.Calendar(r.Context(), eventID, callerFrom(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event-`+eventID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ics))
}
