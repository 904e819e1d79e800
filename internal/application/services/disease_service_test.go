package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/mocks"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

func strPtr(s string) *string { return &s }

func suggestionIDs(items []entities.DiseaseSuggestion) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestDiseaseService_List_DefaultsToRoots(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, nil, nil)
	ctx := context.Background()

	repo.On("List", ctx, repositories.DiseaseFilter{RootsOnly: true}).
		Return([]*entities.Disease{{ID: "1", Name: "Arthritis"}}, nil).Once()
	repo.On("List", ctx, repositories.DiseaseFilter{Search: "arth"}).
		Return([]*entities.Disease{}, nil).Once()
	repo.On("List", ctx, repositories.DiseaseFilter{ParentID: "1"}).
		Return([]*entities.Disease{}, nil).Once()

	roots, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, roots, 1)

	_, err = svc.List(ctx, " arth ", "")
	require.NoError(t, err)
	_, err = svc.List(ctx, "", "1")
	require.NoError(t, err)
}

func TestDiseaseService_Hierarchy(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, nil, nil)
	ctx := context.Background()

	repo.On("ListActive", ctx).Return([]*entities.Disease{
		{ID: "a", Name: "Arthritis"},
		{ID: "a1", Name: "Osteoarthritis", ParentID: strPtr("a")},
		{ID: "a2", Name: "Rheumatoid Arthritis", ParentID: strPtr("a")},
		{ID: "x1", Name: "Orphan", ParentID: strPtr("inactive")},
		{ID: "b", Name: "Back Pain"},
	}, nil)

	tree, err := svc.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].ID)
	require.Len(t, tree[0].Types, 2)
	assert.Equal(t, "a1", tree[0].Types[0].ID)
	assert.Equal(t, "a2", tree[0].Types[1].ID)
	assert.Equal(t, "b", tree[1].ID)
	assert.Empty(t, tree[1].Types)
}

func TestDiseaseService_Search_ShortQuery(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, services.NewSymptomMatcher(nil), nil)

	got, err := svc.Search(context.Background(), " a ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestDiseaseService_Search_EnoughDirectMatches(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	extractor := &stubExtractor{}
	svc := services.NewDiseaseService(repo, services.NewSymptomMatcher(extractor), nil)
	ctx := context.Background()

	direct := make([]*entities.Disease, 8)
	for i := range direct {
		direct[i] = &entities.Disease{ID: string(rune('a' + i)), Name: "Arthritis"}
	}
	repo.On("List", ctx, repositories.DiseaseFilter{Search: "arth", SortByName: true, Limit: 20}).
		Return(direct, nil)

	got, err := svc.Search(ctx, "arth")
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Zero(t, extractor.calls)
}

func TestDiseaseService_Search_SymptomMatchesFirst(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, services.NewSymptomMatcher(nil), nil)
	ctx := context.Background()
	query := "bad headache behind my eyes"

	repo.On("List", ctx, mock.MatchedBy(func(f repositories.DiseaseFilter) bool {
		return f.Search == query && f.SortByName && f.Limit == 20
	})).Return([]*entities.Disease{{ID: "9", Name: "Cluster Headache"}, {ID: "1", Name: "Migraine"}}, nil)
	repo.On("ListActive", ctx).Return(headCatalog(), nil)

	got, err := svc.Search(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "9"}, suggestionIDs(got))
}

func TestDiseaseService_Search_CatalogFailureKeepsDirectMatches(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, services.NewSymptomMatcher(nil), nil)
	ctx := context.Background()

	repo.On("List", ctx, mock.Anything).Return([]*entities.Disease{{ID: "1", Name: "Migraine"}}, nil)
	repo.On("ListActive", ctx).Return(nil, errors.New("connection refused"))

	got, err := svc.Search(ctx, "migr")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, suggestionIDs(got))
}

func TestDiseaseService_Create(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, nil, nil)
	ctx := context.Background()

	repo.On("GetByName", ctx, "Sciatica").Return(nil, apperrors.NewNotFoundError("Disease not found"))
	repo.On("GetByID", ctx, "back").Return(&entities.Disease{ID: "back", Name: "Back Pain"}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(d *entities.Disease) bool {
		return d.Name == "Sciatica" &&
			d.Category == entities.DefaultDiseaseCategory &&
			d.IsActive &&
			d.ParentID != nil && *d.ParentID == "back" &&
			d.ID != ""
	})).Return(nil)

	disease, err := svc.Create(ctx, services.DiseaseInput{Name: "  Sciatica ", ParentID: strPtr("back")})
	require.NoError(t, err)
	assert.Equal(t, "Sciatica", disease.Name)
}

func TestDiseaseService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name", func(t *testing.T) {
		svc := services.NewDiseaseService(mocks.NewMockDiseaseRepository(t), nil, nil)
		_, err := svc.Create(ctx, services.DiseaseInput{Name: "  "})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := mocks.NewMockDiseaseRepository(t)
		repo.On("GetByName", ctx, "migraine").Return(&entities.Disease{ID: "1", Name: "Migraine"}, nil)

		_, err := services.NewDiseaseService(repo, nil, nil).Create(ctx, services.DiseaseInput{Name: "migraine"})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
	})

	t.Run("unknown parent", func(t *testing.T) {
		repo := mocks.NewMockDiseaseRepository(t)
		repo.On("GetByName", ctx, "Sciatica").Return(nil, apperrors.NewNotFoundError("Disease not found"))
		repo.On("GetByID", ctx, "nope").Return(nil, apperrors.NewNotFoundError("Disease not found"))

		_, err := services.NewDiseaseService(repo, nil, nil).Create(ctx, services.DiseaseInput{Name: "Sciatica", ParentID: strPtr("nope")})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "Parent disease not found")
	})
}

func TestDiseaseService_Update(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, nil, nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, "1").Return(&entities.Disease{ID: "1", Name: "Migraine", Category: "General", IsActive: true}, nil)

	_, err := svc.Update(ctx, "1", services.DiseaseUpdate{ParentID: strPtr("1")})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	inactive := false
	order := 3
	repo.On("Update", ctx, mock.MatchedBy(func(d *entities.Disease) bool {
		return d.Name == "MIGRAINE" && !d.IsActive && d.Order == 3
	})).Return(nil).Once()

	updated, err := svc.Update(ctx, "1", services.DiseaseUpdate{Name: strPtr("MIGRAINE"), IsActive: &inactive, Order: &order})
	require.NoError(t, err)
	assert.Equal(t, "MIGRAINE", updated.Name)
}

func TestDiseaseService_Delete(t *testing.T) {
	repo := mocks.NewMockDiseaseRepository(t)
	svc := services.NewDiseaseService(repo, nil, nil)
	ctx := context.Background()

	repo.On("CountChildren", ctx, "parent").Return(2, nil)
	repo.On("CountChildren", ctx, "leaf").Return(0, nil)
	repo.On("Delete", ctx, "leaf").Return(nil).Once()

	err := svc.Delete(ctx, "parent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot delete disease with subtypes")

	require.NoError(t, svc.Delete(ctx, "leaf"))
}
