package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
	"github.com/kaayakalpa/healthfinder/pkg/textmatch"
)

const (
	diseaseSearchMinLength = 2
	directSearchLimit      = 20
	// Fewer direct matches than this sends the query through the symptom matcher
	sparseDirectMatches = 8
)

// DiseaseService handles the disease catalog and disease search
type DiseaseService struct {
	repo    repositories.DiseaseRepository
	matcher *SymptomMatcher
	metrics *observability.Metrics
}

// NewDiseaseService creates a new disease service. metrics may be nil.
func NewDiseaseService(repo repositories.DiseaseRepository, matcher *SymptomMatcher, metrics *observability.Metrics) *DiseaseService {
	return &DiseaseService{
		repo:    repo,
		matcher: matcher,
		metrics: metrics,
	}
}

// DiseaseInput carries the fields of a new disease
type DiseaseInput struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Order       int     `json:"order"`
}

// DiseaseUpdate carries a partial edit. Nil fields are left unchanged.
type DiseaseUpdate struct {
	Name        *string `json:"name"`
	ParentID    *string `json:"parent_id"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"is_active"`
	Order       *int    `json:"order"`
}

// List returns active diseases. With neither search nor parentID only root
// diseases are returned.
func (s *DiseaseService) List(ctx context.Context, search, parentID string) ([]*entities.Disease, error) {
	filter := repositories.DiseaseFilter{
		Search:   strings.TrimSpace(search),
		ParentID: strings.TrimSpace(parentID),
	}
	if filter.Search == "" && filter.ParentID == "" {
		filter.RootsOnly = true
	}
	return s.repo.List(ctx, filter)
}

// Hierarchy returns the active catalog as a tree. Diseases whose parent is
// not active are omitted.
func (s *DiseaseService) Hierarchy(ctx context.Context) ([]*entities.DiseaseNode, error) {
	diseases, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return buildDiseaseTree(diseases), nil
}

func buildDiseaseTree(diseases []*entities.Disease) []*entities.DiseaseNode {
	nodes := make(map[string]*entities.DiseaseNode, len(diseases))
	for _, d := range diseases {
		nodes[d.ID] = &entities.DiseaseNode{Disease: d, Types: []*entities.DiseaseNode{}}
	}

	roots := make([]*entities.DiseaseNode, 0)
	for _, d := range diseases {
		node := nodes[d.ID]
		if d.IsRoot() {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*d.ParentID]; ok {
			parent.Types = append(parent.Types, node)
		}
	}
	return roots
}

// GetByID retrieves a disease
func (s *DiseaseService) GetByID(ctx context.Context, id string) (*entities.Disease, error) {
	return s.repo.GetByID(ctx, id)
}

// Search powers disease autocomplete. Direct name matches are complemented by
// symptom matching when the query reads like a symptom description or direct
// matches are sparse. Symptom matches come first.
func (s *DiseaseService) Search(ctx context.Context, query string) ([]entities.DiseaseSuggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < diseaseSearchMinLength {
		return []entities.DiseaseSuggestion{}, nil
	}

	direct, err := s.repo.List(ctx, repositories.DiseaseFilter{
		Search:     query,
		SortByName: true,
		Limit:      directSearchLimit,
	})
	if err != nil {
		return nil, err
	}

	results := direct
	if s.matcher != nil && (textmatch.LooksLikeSymptomDescription(query) || len(direct) < sparseDirectMatches) {
		results = mergeByID(s.relatedDiseases(ctx, query), direct)
	}

	suggestions := make([]entities.DiseaseSuggestion, 0, len(results))
	for _, d := range results {
		suggestions = append(suggestions, d.Suggestion())
	}
	return suggestions, nil
}

func (s *DiseaseService) relatedDiseases(ctx context.Context, query string) []*entities.Disease {
	catalog, err := s.repo.ListActive(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to load disease catalog for symptom matching")
		return nil
	}

	related := s.matcher.FindRelatedDiseases(ctx, query, catalog, DefaultSymptomMatchLimit)
	observability.RecordSymptomMatch(ctx, s.metrics, len(related))
	return related
}

// Create adds a disease to the catalog
func (s *DiseaseService) Create(ctx context.Context, input DiseaseInput) (*entities.Disease, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("Disease name is required")
	}

	if err := s.ensureNameAvailable(ctx, name, ""); err != nil {
		return nil, err
	}

	parentID, err := s.resolveParent(ctx, input.ParentID, "")
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = entities.DefaultDiseaseCategory
	}

	now := time.Now().UTC()
	disease := &entities.Disease{
		ID:          uuid.New().String(),
		Name:        name,
		ParentID:    parentID,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		IsActive:    true,
		Order:       input.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, disease); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("disease_id", disease.ID).Str("name", name).Msg("disease created")
	return disease, nil
}

// Update edits a disease
func (s *DiseaseService) Update(ctx context.Context, id string, update DiseaseUpdate) (*entities.Disease, error) {
	disease, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Disease name is required")
		}
		if !strings.EqualFold(name, disease.Name) {
			if err := s.ensureNameAvailable(ctx, name, disease.ID); err != nil {
				return nil, err
			}
		}
		disease.Name = name
	}
	if update.ParentID != nil {
		parentID, err := s.resolveParent(ctx, update.ParentID, disease.ID)
		if err != nil {
			return nil, err
		}
		disease.ParentID = parentID
	}
	if update.Description != nil {
		disease.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		disease.Category = strings.TrimSpace(*update.Category)
	}
	if update.IsActive != nil {
		disease.IsActive = *update.IsActive
	}
	if update.Order != nil {
		disease.Order = *update.Order
	}

	if err := s.repo.Update(ctx, disease); err != nil {
		return nil, err
	}
	return disease, nil
}

// Delete removes a disease that has no subtypes
func (s *DiseaseService) Delete(ctx context.Context, id string) error {
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperrors.NewValidationError("Cannot delete disease with subtypes")
	}
	return s.repo.Delete(ctx, id)
}

func (s *DiseaseService) ensureNameAvailable(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.NewConflictError("Disease already exists")
	case err == nil, apperrors.Is(err, apperrors.ErrorTypeNotFound):
		return nil
	default:
		return err
	}
}

// resolveParent validates a parent reference. An empty id clears the parent.
func (s *DiseaseService) resolveParent(ctx context.Context, parentID *string, selfID string) (*string, error) {
	if parentID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*parentID)
	if id == "" {
		return nil, nil
	}
	if id == selfID {
		return nil, apperrors.NewValidationError("A disease cannot be its own parent")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewValidationError("Parent disease not found")
		}
		return nil, err
	}
	return &id, nil
}
