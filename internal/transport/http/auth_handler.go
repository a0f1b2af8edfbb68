package http

import (
	"net/http"
	"time"

	"mcq-service/internal/auth"
	"mcq-service/internal/domain"
)

type sessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Account `json:"user"`
}

type AuthHandler struct {
	directory   *auth.Directory
	issuer      *auth.TokenIssuer
	allowSignup bool
}

func NewAuthHandler(directory *auth.Directory, issuer *auth.TokenIssuer, allowSignup bool) *AuthHandler {
	return &AuthHandler{directory: directory, issuer: issuer, allowSignup: allowSignup}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	account, err := h.directory.Authenticate(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.issueSession(w, r, http.StatusOK, account)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.allowSignup {
		writeError(w, http.StatusForbidden, "signup is disabled")
		return
	}
	var req auth.SignupRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	account, err := h.directory.Register(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.issueSession(w, r, http.StatusCreated, account)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	account, ok := h.directory.Lookup(principal.ID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.issuer.Revoke(r.Context(), auth.ClaimsFrom(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, status int, account domain.Account) {
	token, expiresAt, err := h.issuer.Issue(account)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt, User: account})
}
