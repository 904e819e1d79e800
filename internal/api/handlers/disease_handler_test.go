package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/api/handlers"
	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

type stubDiseaseService struct {
	diseases    []*entities.Disease
	suggestions []entities.DiseaseSuggestion
	err         error

	gotSearch   string
	gotParentID string
	gotQuery    string
	gotID       string
	created     services.DiseaseInput
	updated     services.DiseaseUpdate
}

func (s *stubDiseaseService) List(ctx context.Context, search, parentID string) ([]*entities.Disease, error) {
	s.gotSearch, s.gotParentID = search, parentID
	return s.diseases, s.err
}

func (s *stubDiseaseService) Hierarchy(ctx context.Context) ([]*entities.DiseaseNode, error) {
	if s.err != nil {
		return nil, s.err
	}
	nodes := make([]*entities.DiseaseNode, 0, len(s.diseases))
	for _, d := range s.diseases {
		nodes = append(nodes, &entities.DiseaseNode{Disease: d, Types: []*entities.DiseaseNode{}})
	}
	return nodes, nil
}

func (s *stubDiseaseService) GetByID(ctx context.Context, id string) (*entities.Disease, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Disease{ID: id, Name: "Migraine"}, nil
}

func (s *stubDiseaseService) Search(ctx context.Context, query string) ([]entities.DiseaseSuggestion, error) {
	s.gotQuery = query
	return s.suggestions, s.err
}

func (s *stubDiseaseService) Create(ctx context.Context, input services.DiseaseInput) (*entities.Disease, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Disease{ID: "new", Name: input.Name, Category: input.Category, IsActive: true}, nil
}

func (s *stubDiseaseService) Update(ctx context.Context, id string, update services.DiseaseUpdate) (*entities.Disease, error) {
	s.gotID, s.updated = id, update
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Disease{ID: id, Name: *update.Name}, nil
}

func (s *stubDiseaseService) Delete(ctx context.Context, id string) error {
	s.gotID = id
	return s.err
}

func TestDiseaseHandler_ListDiseases_PassesFilters(t *testing.T) {
	service := &stubDiseaseService{diseases: []*entities.Disease{{ID: "d1", Name: "Diabetes"}}}
	handler := handlers.NewDiseaseHandler(service)

	w := httptest.NewRecorder()
	handler.ListDiseases(w, newRequest(http.MethodGet, "/api/diseases?search=dia&parentId=root-1", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dia", service.gotSearch)
	assert.Equal(t, "root-1", service.gotParentID)

	var got []entities.Disease
	decodeInto(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Diabetes", got[0].Name)
}

func TestDiseaseHandler_GetHierarchy(t *testing.T) {
	service := &stubDiseaseService{diseases: []*entities.Disease{{ID: "d1", Name: "Cancer"}}}
	handler := handlers.NewDiseaseHandler(service)

	w := httptest.NewRecorder()
	handler.GetHierarchy(w, newRequest(http.MethodGet, "/api/diseases/hierarchy", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"d1","name":"Cancer","parent_id":null,"description":"","category":"","is_active":false,"order":0,"created_at":"0001-01-01T00:00:00Z","updated_at":"0001-01-01T00:00:00Z","types":[]}]`, w.Body.String())
}

func TestDiseaseHandler_SearchDiseases(t *testing.T) {
	service := &stubDiseaseService{suggestions: []entities.DiseaseSuggestion{{ID: "d3", Name: "Migraine", Category: "Neurological"}}}
	handler := handlers.NewDiseaseHandler(service)

	w := httptest.NewRecorder()
	handler.SearchDiseases(w, newRequest(http.MethodGet, "/api/diseases/search?q=headache", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "headache", service.gotQuery)
	assert.JSONEq(t, `[{"id":"d3","name":"Migraine","parent_id":null,"category":"Neurological"}]`, w.Body.String())
}

func TestDiseaseHandler_GetDisease(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := &stubDiseaseService{}
		handler := handlers.NewDiseaseHandler(service)

		req := newRequest(http.MethodGet, "/api/diseases/d7", "")
		req.SetPathValue("id", "d7")
		w := httptest.NewRecorder()
		handler.GetDisease(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "d7", service.gotID)
	})

	t.Run("not found", func(t *testing.T) {
		service := &stubDiseaseService{err: apperrors.NewNotFoundError("Disease not found")}
		handler := handlers.NewDiseaseHandler(service)

		req := newRequest(http.MethodGet, "/api/diseases/missing", "")
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.GetDisease(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Disease not found", decodeMap(t, w)["error"])
	})

	t.Run("unexpected error", func(t *testing.T) {
		service := &stubDiseaseService{err: errors.New("connection reset")}
		handler := handlers.NewDiseaseHandler(service)

		req := newRequest(http.MethodGet, "/api/diseases/d1", "")
		req.SetPathValue("id", "d1")
		w := httptest.NewRecorder()
		handler.GetDisease(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server error", decodeMap(t, w)["error"])
	})
}

func TestDiseaseHandler_CreateDisease(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service := &stubDiseaseService{}
		handler := handlers.NewDiseaseHandler(service)

		w := httptest.NewRecorder()
		handler.CreateDisease(w, newRequest(http.MethodPost, "/api/diseases", `{"name":"Asthma","category":"Respiratory","order":2}`))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Asthma", service.created.Name)
		assert.Equal(t, 2, service.created.Order)
		assert.Equal(t, "new", decodeMap(t, w)["id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		service := &stubDiseaseService{}
		handler := handlers.NewDiseaseHandler(service)

		w := httptest.NewRecorder()
		handler.CreateDisease(w, newRequest(http.MethodPost, "/api/diseases", `{"name":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request payload", decodeMap(t, w)["error"])
	})

	t.Run("duplicate", func(t *testing.T) {
		service := &stubDiseaseService{err: apperrors.NewConflictError("Disease already exists")}
		handler := handlers.NewDiseaseHandler(service)

		w := httptest.NewRecorder()
		handler.CreateDisease(w, newRequest(http.MethodPost, "/api/diseases", `{"name":"Asthma"}`))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDiseaseHandler_UpdateAndDelete(t *testing.T) {
	service := &stubDiseaseService{}
	handler := handlers.NewDiseaseHandler(service)

	req := newRequest(http.MethodPut, "/api/diseases/d2", `{"name":"Type 2 Diabetes","is_active":false}`)
	req.SetPathValue("id", "d2")
	w := httptest.NewRecorder()
	handler.UpdateDisease(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d2", service.gotID)
	require.NotNil(t, service.updated.IsActive)
	assert.False(t, *service.updated.IsActive)
	assert.Nil(t, service.updated.Category)

	req = newRequest(http.MethodDelete, "/api/diseases/d2", "")
	req.SetPathValue("id", "d2")
	w = httptest.NewRecorder()
	handler.DeleteDisease(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Disease deleted", decodeMap(t, w)["message"])
}
