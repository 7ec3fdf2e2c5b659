// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/boardnight/auth"
	"github.com/danielhkuo/boardnight/cliparse"
	"github.com/danielhkuo/boardnight/handlers"
	"github.com/danielhkuo/boardnight/metrics"
	"github.com/danielhkuo/boardnight/middleware"
	"github.com/danielhkuo/boardnight/planner"
)

const banner = "boardnight API v1"

func NewRouter(db *sql.DB, cfg cliparse.Config) (*http.ServeMux, error) {
	codec, err := auth.NewShareCodec(cfg.ShareTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create share codec: %w", err)
	}
	verifier := auth.NewSessionVerifier(cfg.SessionSecret)
	svc := planner.NewService(db, codec, planner.NewSQLCollectionStore(db))

	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(svc, cfg)
	dateHandler := handlers.NewDatePollHandler(svc)
	gameHandler := handlers.NewGameHandler(svc)
	publicHandler := handlers.NewPublicHandler(svc)

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithMetrics(middleware.WithSession(verifier, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Events (registered users)
	mux.HandleFunc("POST /events", wrap(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events", wrap(eventHandler.ListEvents))
	mux.HandleFunc("GET /events/{id}", wrap(eventHandler.GetEvent))
	mux.HandleFunc("DELETE /events/{id}", wrap(eventHandler.DeleteEvent))
	mux.HandleFunc("POST /events/{id}/publish", wrap(eventHandler.Publish))
	mux.HandleFunc("POST /events/{id}/unpublish", wrap(eventHandler.Unpublish))
	mux.HandleFunc("GET /events/{id}/calendar", wrap(eventHandler.Calendar))

	// Invites
	mux.HandleFunc("POST /events/{id}/invites", wrap(eventHandler.Invite))
	mux.HandleFunc("PUT /events/{id}/invites/me", wrap(eventHandler.RespondInvite))
	mux.HandleFunc("DELETE /events/{id}/invites/{userId}", wrap(eventHandler.RemoveInvite))

	// Date poll
	mux.HandleFunc("GET /events/{id}/date-proposals", wrap(dateHandler.ListProposals))
	mux.HandleFunc("POST /events/{id}/date-proposals", wrap(dateHandler.CreateProposals))
	mux.HandleFunc("DELETE /events/{id}/date-proposals", wrap(dateHandler.DeleteAll))
	mux.HandleFunc("POST /events/{id}/date-proposals/vote", wrap(dateHandler.Vote))
	mux.HandleFunc("PUT /events/{id}/date-proposals/vote", wrap(dateHandler.BulkVote))
	mux.HandleFunc("POST /events/{id}/date-proposals/select", wrap(dateHandler.Select))
	mux.HandleFunc("POST /events/{id}/date-proposals/reset", wrap(dateHandler.Reset))

	// Game proposals and votes
	mux.HandleFunc("GET /events/{id}/proposals", wrap(gameHandler.ListProposals))
	mux.HandleFunc("POST /events/{id}/proposals", wrap(gameHandler.Propose))
	mux.HandleFunc("DELETE /events/{id}/proposals", wrap(gameHandler.Withdraw))
	mux.HandleFunc("POST /events/{id}/votes", wrap(gameHandler.Vote))
	mux.HandleFunc("DELETE /events/{id}/votes", wrap(gameHandler.Unvote))

	// Public share link (guests)
	mux.HandleFunc("GET /public/event/{token}", wrap(publicHandler.GetEvent))
	mux.HandleFunc("POST /public/event/{token}/join", wrap(publicHandler.Join))
	mux.HandleFunc("POST /public/event/{token}/vote", wrap(publicHandler.Vote))
	mux.HandleFunc("DELETE /public/event/{token}/vote", wrap(publicHandler.Unvote))
	mux.HandleFunc("POST /public/event/{token}/date-vote", wrap(publicHandler.DateVote))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(banner))
	})

	return mux, nil
}
