package handlers

import (
	"net/http"

	"github.com/gymplanner/gymplanner/internal/auth"
	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/services"
)

// UserHandler serves the self-service profile routes. The target is always
// the authenticated identity; no id ever comes from the path or body.
type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	u, err := h.Users.GetByID(id.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfile(u))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	var patch services.UserPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	// Role changes are admin-only; drop the field even if supplied.
	patch.Role = nil
	u, err := h.Users.Update(id.UserID, patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfile(u))
}

// DeleteMe removes the account and cascades to every owned workout.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	if err := h.Users.Delete(id.UserID); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
