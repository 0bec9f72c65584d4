package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"donorprofile/pkg/platform/httputil"
)

type server struct {
	donors map[string]donor
	logger *slog.Logger
}

func newServer(donors map[string]donor, logger *slog.Logger) http.Handler {
	s := &server{donors: donors, logger: logger}
	r := chi.NewRouter()
	r.Get("/api/public_profiles/{uuid}", s.handleProfile)
	return r
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(chi.URLParam(r, "uuid"))
	d, ok := s.donors[id]
	if !ok {
		s.logger.InfoContext(r.Context(), "profile lookup", "uuid", id, "status", http.StatusNotFound)
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	q := r.URL.Query()
	verified := d.Answers.matches(q.Get("gender"), q.Get("birthday"), q.Get("id_number"), q.Get("phone_number"))
	if d.Public || verified {
		s.logger.InfoContext(r.Context(), "profile lookup", "uuid", id, "status", http.StatusOK)
		httputil.WriteJSON(w, http.StatusOK, d.Profile)
		return
	}

	s.logger.InfoContext(r.Context(), "profile lookup", "uuid", id, "status", http.StatusPartialContent,
		"answers_supplied", q.Get("id_number") != "")
	httputil.WriteJSON(w, http.StatusPartialContent, d.partial())
}
