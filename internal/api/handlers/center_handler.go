package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// CenterService defines the center operations used by the handler
type CenterService interface {
	Search(ctx context.Context, query services.CenterQuery) (*entities.CenterSearchResult, error)
	GetByID(ctx context.Context, id string) (*entities.Center, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Center, error)
	UploadLicense(ctx context.Context, userID string, upload services.LicenseUpload) (string, error)
	Create(ctx context.Context, userID string, input services.CenterInput) (*entities.Center, error)
	Update(ctx context.Context, caller *entities.User, id string, update entities.CenterUpdate) (*entities.Center, error)
	Delete(ctx context.Context, caller *entities.User, id string) error
}

// CenterHandler handles the center directory endpoints
type CenterHandler struct {
	service        CenterService
	maxUploadBytes int64
}

// NewCenterHandler creates a new center handler. maxUploadBytes bounds
// license uploads.
func NewCenterHandler(service CenterService, maxUploadBytes int64) *CenterHandler {
	return &CenterHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// SearchCenters handles GET /api/centers
func (h *CenterHandler) SearchCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.Search(r.Context(), services.CenterQuery{
		DiseaseID: q.Get("diseaseId"),
		Disease:   q.Get("disease"),
		City:      q.Get("city"),
		State:     q.Get("state"),
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetCenter handles GET /api/centers/{id}
func (h *CenterHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	center, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, center)
}

// ListUserCenters handles GET /api/centers/user/{userId}
func (h *CenterHandler) ListUserCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.service.ListByOwner(r.Context(), r.PathValue("userId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, centers)
}

// ListMyCenters handles GET /api/centers/my/list
func (h *CenterHandler) ListMyCenters(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	centers, err := h.service.ListByOwner(r.Context(), caller.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, centers)
}

// UploadLicense handles POST /api/centers/license-upload. The document is
// the multipart field "license".
func (h *CenterHandler) UploadLicense(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Headroom for the form fields around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Max size is %dMB", h.maxUploadBytes>>20))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	upload := services.LicenseUpload{
		BusinessName:  r.FormValue("business_name"),
		LicenseNumber: r.FormValue("license_number"),
	}

	file, header, err := r.FormFile("license")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		respondWithError(w, http.StatusBadRequest, "Invalid license upload")
		return
	default:
		defer file.Close()
		if header.Size > h.maxUploadBytes {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Max size is %dMB", h.maxUploadBytes>>20))
			return
		}
		upload.ContentType = header.Header.Get("Content-Type")
		upload.Content = file
	}

	url, err := h.service.UploadLicense(r.Context(), caller.ID, upload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message":     "License uploaded successfully",
		"license_url": url,
	})
}

// CreateCenter handles POST /api/centers
func (h *CenterHandler) CreateCenter(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.CenterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	center, err := h.service.Create(r.Context(), caller.ID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, center)
}

// UpdateCenter handles PUT /api/centers/{id}
func (h *CenterHandler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var update entities.CenterUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	center, err := h.service.Update(r.Context(), caller, r.PathValue("id"), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, center)
}

// DeleteCenter handles DELETE /api/centers/{id}
func (h *CenterHandler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Center deleted"})
}
