package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
	"github.com/rabiauynk/Organik-kose/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionView struct {
	Authenticated bool             `json:"authenticated"`
	Session       *session.Session `json:"session,omitempty"`
}

// Login authenticates the actor. Bad credentials yield a 401 without mutating
// any persisted state.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "email and password are required", http.StatusBadRequest))
		return
	}

	if !h.sessions.Login(r.Context(), req.Email, req.Password) {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_credentials", "login failed", http.StatusUnauthorized))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionView{Authenticated: true, Session: h.sessions.Current()})
}

// Register creates an account; success is an implicit login.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "email and password are required", http.StatusBadRequest))
		return
	}

	if !h.sessions.Register(r.Context(), req.Email, req.Password, req.Name) {
		httpx.WriteError(r.Context(), w, httpx.NewError("registration_failed", "registration failed", http.StatusUnauthorized))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionView{Authenticated: true, Session: h.sessions.Current()})
}

// Logout clears the session. Idempotent.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// CurrentSession reports the published session, if any.
func (h *Handlers) CurrentSession(w http.ResponseWriter, r *http.Request) {
	current := h.sessions.Current()
	httpx.WriteJSON(w, http.StatusOK, sessionView{Authenticated: current != nil, Session: current})
}
