package repositories

import (
	"context"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// CenterRepository defines the interface for center data operations
type CenterRepository interface {
	// Create creates a new center
	Create(ctx context.Context, center *entities.Center) error

	// GetByID retrieves a center by ID
	GetByID(ctx context.Context, id string) (*entities.Center, error)

	// Update updates a center
	Update(ctx context.Context, center *entities.Center) error

	// Delete removes a center
	Delete(ctx context.Context, id string) error

	// Search returns a page of centers matching filter and the total match count
	Search(ctx context.Context, filter CenterFilter) ([]*entities.Center, int, error)

	// ListByOwner returns centers owned by a user, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Center, error)

	// ListByStatus returns centers in a moderation state, newest first
	ListByStatus(ctx context.Context, status entities.CenterStatus) ([]*entities.Center, error)

	// IncrementViewCount bumps the view counter
	IncrementViewCount(ctx context.Context, id string) error

	// IncrementReportCount bumps the report counter
	IncrementReportCount(ctx context.Context, id string) error
}

// CenterSearchRepository defines the interface for the center search index (e.g. Typesense)
type CenterSearchRepository interface {
	// Search returns a page of approved centers matching filter and the total match count
	Search(ctx context.Context, filter CenterFilter) ([]*entities.Center, int, error)

	// Index upserts a center document
	Index(ctx context.Context, center *entities.Center) error

	// Delete removes a center from the index
	Delete(ctx context.Context, id string) error
}

// CenterFilter defines filters for searching centers
type CenterFilter struct {
	Status    entities.CenterStatus
	DiseaseID string
	// Disease is a case-insensitive substring of the disease name
	Disease   string
	City      string
	State     string
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}
