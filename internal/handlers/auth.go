// Package handlers maps HTTP requests onto the services layer. Handlers
// stay thin: decode, pull the identity from context, call the service, map
// the result through httpx.
package handlers

import (
	"net/http"
	"time"

	"github.com/gymplanner/gymplanner/internal/auth"
	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/models"
	"github.com/gymplanner/gymplanner/internal/services"
)

type AuthHandler struct {
	Users         *services.UserService
	Tokens        *auth.TokenService
	SingleSession bool
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenService, singleSession bool) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, SingleSession: singleSession}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileDTO is the user without the password field.
type profileDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toProfile(u *models.User) profileDTO {
	return profileDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	u, err := h.Users.Register(in.Name, in.Email, in.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProfile(u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	u, err := h.Users.Authenticate(in.Email, in.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	token, jti, err := h.Tokens.Issue(u)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_error", nil)
		return
	}
	if h.SingleSession {
		if err := h.Users.StoreTokenID(u.ID, jti); err != nil {
			httpx.Error(w, err)
			return
		}
	}
	h.Tokens.SetSessionCookie(w, token)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toProfile(u),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.SingleSession {
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			// The slot must actually be cleared before the client is told
			// the token is dead; otherwise it stays replayable until expiry.
			if err := h.Users.ClearTokenID(id.UserID); err != nil {
				httpx.Error(w, err)
				return
			}
		}
	}
	h.Tokens.ClearSessionCookie(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
