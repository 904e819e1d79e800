package repositories

import (
	"context"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// DiseaseRepository defines the interface for disease catalog operations
type DiseaseRepository interface {
	// Create creates a new disease
	Create(ctx context.Context, disease *entities.Disease) error

	// GetByID retrieves a disease by ID
	GetByID(ctx context.Context, id string) (*entities.Disease, error)

	// GetByName retrieves a disease by case-insensitive exact name
	GetByName(ctx context.Context, name string) (*entities.Disease, error)

	// Update updates a disease
	Update(ctx context.Context, disease *entities.Disease) error

	// Delete removes a disease
	Delete(ctx context.Context, id string) error

	// List retrieves active diseases matching filter, ordered by order then name
	List(ctx context.Context, filter DiseaseFilter) ([]*entities.Disease, error)

	// ListActive retrieves the whole active catalog
	ListActive(ctx context.Context) ([]*entities.Disease, error)

	// CountChildren returns the number of diseases whose parent is id
	CountChildren(ctx context.Context, id string) (int, error)
}

// DiseaseFilter defines filters for listing diseases
type DiseaseFilter struct {
	// Search is a case-insensitive substring of the name
	Search string
	// ParentID restricts results to children of this disease
	ParentID string
	// RootsOnly restricts results to diseases without a parent
	RootsOnly bool
	// SortByName orders by name alone instead of order then name
	SortByName bool
	Limit      int
}
