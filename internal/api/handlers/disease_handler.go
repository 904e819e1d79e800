package handlers

import (
	"context"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// DiseaseService defines the disease operations used by the handler
type DiseaseService interface {
	List(ctx context.Context, search, parentID string) ([]*entities.Disease, error)
	Hierarchy(ctx context.Context) ([]*entities.DiseaseNode, error)
	GetByID(ctx context.Context, id string) (*entities.Disease, error)
	Search(ctx context.Context, query string) ([]entities.DiseaseSuggestion, error)
	Create(ctx context.Context, input services.DiseaseInput) (*entities.Disease, error)
	Update(ctx context.Context, id string, update services.DiseaseUpdate) (*entities.Disease, error)
	Delete(ctx context.Context, id string) error
}

// DiseaseHandler handles the disease catalog endpoints
type DiseaseHandler struct {
	service DiseaseService
}

// NewDiseaseHandler creates a new disease handler
func NewDiseaseHandler(service DiseaseService) *DiseaseHandler {
	return &DiseaseHandler{service: service}
}

// ListDiseases handles GET /api/diseases
func (h *DiseaseHandler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	diseases, err := h.service.List(r.Context(), query.Get("search"), query.Get("parentId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, diseases)
}

// GetHierarchy handles GET /api/diseases/hierarchy
func (h *DiseaseHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Hierarchy(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

// SearchDiseases handles GET /api/diseases/search
func (h *DiseaseHandler) SearchDiseases(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, suggestions)
}

// GetDisease handles GET /api/diseases/{id}
func (h *DiseaseHandler) GetDisease(w http.ResponseWriter, r *http.Request) {
	disease, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, disease)
}

// CreateDisease handles POST /api/diseases
func (h *DiseaseHandler) CreateDisease(w http.ResponseWriter, r *http.Request) {
	var input services.DiseaseInput
	if !decodeJSON(w, r, &input) {
		return
	}

	disease, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, disease)
}

// UpdateDisease handles PUT /api/diseases/{id}
func (h *DiseaseHandler) UpdateDisease(w http.ResponseWriter, r *http.Request) {
	var update services.DiseaseUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	disease, err := h.service.Update(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, disease)
}

// DeleteDisease handles DELETE /api/diseases/{id}
func (h *DiseaseHandler) DeleteDisease(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Disease deleted"})
}
