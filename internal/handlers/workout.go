package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymplanner/gymplanner/internal/auth"
	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/services"
)

// WorkoutHandler serves the user-scoped workout routes. The owner id always
// comes from the authenticated identity, never from the request body, so a
// user cannot create or touch a workout "as" another user.
type WorkoutHandler struct {
	Workouts *services.WorkoutService
}

func NewWorkoutHandler(workouts *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{Workouts: workouts}
}

func requesterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return "", false
	}
	return id.UserID, true
}

func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	var in services.WorkoutInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	workout, err := h.Workouts.Create(uid, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, workout)
}

func (h *WorkoutHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	workouts, err := h.Workouts.ListOwn(uid)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workouts)
}

func (h *WorkoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	workout, err := h.Workouts.GetByID(chi.URLParam(r, "id"), uid)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workout)
}

func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	var patch services.WorkoutPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	workout, err := h.Workouts.Update(chi.URLParam(r, "id"), uid, patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workout)
}

func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	if err := h.Workouts.Delete(chi.URLParam(r, "id"), uid); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *WorkoutHandler) AddExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	var in services.AssignmentInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	row, err := h.Workouts.AddExercise(chi.URLParam(r, "id"), uid, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *WorkoutHandler) RemoveExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := requesterID(w, r)
	if !ok {
		return
	}
	if err := h.Workouts.RemoveExercise(chi.URLParam(r, "assignmentID"), uid); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
