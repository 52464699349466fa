package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/services"
)

// CatalogHandler serves the muscle-group and exercise routes. Reads are
// open to any authenticated user; the router wraps mutations in the ADMIN
// role gate.
type CatalogHandler struct {
	Catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type groupMuscleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type exerciseRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	GroupMuscleID string `json:"groupMuscleId"`
}

func (h *CatalogHandler) CreateGroupMuscle(w http.ResponseWriter, r *http.Request) {
	var in groupMuscleRequest
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	g, err := h.Catalog.CreateGroupMuscle(in.Name, in.Description)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *CatalogHandler) ListGroupMuscles(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Catalog.ListGroupMuscles()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *CatalogHandler) GetGroupMuscle(w http.ResponseWriter, r *http.Request) {
	g, err := h.Catalog.GetGroupMuscle(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *CatalogHandler) UpdateGroupMuscle(w http.ResponseWriter, r *http.Request) {
	var patch services.GroupMusclePatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	g, err := h.Catalog.UpdateGroupMuscle(chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *CatalogHandler) DeleteGroupMuscle(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteGroupMuscle(chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CatalogHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var in exerciseRequest
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	e, err := h.Catalog.CreateExercise(in.Name, in.Description, in.GroupMuscleID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *CatalogHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.Catalog.ListExercises()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exercises)
}

func (h *CatalogHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := h.Catalog.GetExercise(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *CatalogHandler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	var patch services.ExercisePatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	e, err := h.Catalog.UpdateExercise(chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *CatalogHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteExercise(chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
