package repositories

import (
	"context"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// ReportRepository defines the interface for center report operations
type ReportRepository interface {
	Create(ctx context.Context, report *entities.Report) error
	GetByID(ctx context.Context, id string) (*entities.Report, error)
	List(ctx context.Context) ([]*entities.Report, error)
	UpdateStatus(ctx context.Context, id string, status entities.ReportStatus) error
}
