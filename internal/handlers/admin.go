package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/services"
)

// AdminHandler operates on any user or workout without ownership checks.
// The role gate upstream is the only guard; admin bypass is this separate
// code path, never a wildcard inside the ownership guard.
type AdminHandler struct {
	Users    *services.UserService
	Workouts *services.WorkoutService
}

func NewAdminHandler(users *services.UserService, workouts *services.WorkoutService) *AdminHandler {
	return &AdminHandler{Users: users, Workouts: workouts}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	out := make([]profileDTO, 0, len(users))
	for i := range users {
		out = append(out, toProfile(&users[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfile(u))
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch services.UserPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	u, err := h.Users.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfile(u))
}

// DeleteUser cascades: assignments of the user's workouts, the workouts,
// then the user.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListWorkouts is the cross-user admin view with nested assignments.
func (h *AdminHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.Workouts.ListAll()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workouts)
}
