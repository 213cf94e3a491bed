package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/app/agentflow"
	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

type Server struct {
	orchestrator *agentflow.Orchestrator
	sessions     domain.SessionMemory
	profiles     domain.ProfileMemory
}

// NewServer wires the HTTP surface:
//
//	POST /query                      run a query through the orchestrator
//	GET  /sessions/{id}/messages     bounded session history
//	GET  /users/{id}/profile         long-term profile
//	GET  /healthz                    liveness
func NewServer(orchestrator *agentflow.Orchestrator, sessions domain.SessionMemory, profiles domain.ProfileMemory) http.Handler {
	s := &Server{
		orchestrator: orchestrator,
		sessions:     sessions,
		profiles:     profiles,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/sessions/", s.handleSessionWithID)
	mux.HandleFunc("/users/", s.handleUserWithID)

	// Innermost first: the request id must be in the context before the
	// logging middleware reads it.
	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type queryRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []messageResponse `json:"messages"`
}

type profileResponse struct {
	UserID           string               `json:"user_id"`
	Preferences      map[string]string    `json:"preferences,omitempty"`
	QueryHistory     []domain.QueryRecord `json:"query_history,omitempty"`
	InteractionCount int                  `json:"interaction_count"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, "query is required")
		return
	}

	result := s.orchestrator.Run(
		r.Context(),
		req.Query,
		domain.UserID(req.UserID),
		domain.SessionID(req.SessionID),
	)

	// Run never fails hard; a captured error still carries an answer.
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	// expected path: /sessions/{id}/messages
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "messages" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	sessionID := domain.SessionID(parts[0])
	history, err := s.sessions.History(r.Context(), sessionID, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	resp := historyResponse{SessionID: string(sessionID)}
	for _, msg := range history {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:        string(msg.ID),
			SessionID: string(msg.SessionID),
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserWithID(w http.ResponseWriter, r *http.Request) {
	// expected path: /users/{id}/profile
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "profile" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	profile, err := s.profiles.Profile(r.Context(), domain.UserID(parts[0]))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:           string(profile.UserID),
		Preferences:      profile.Preferences,
		QueryHistory:     profile.QueryHistory,
		InteractionCount: profile.InteractionCount,
	})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
