package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

var reportColumns = []interface{}{
	"id", "center_id", "reported_by", "reason", "status", "created_at", "updated_at",
}

// ReportAdapter implements ReportRepository
type ReportAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReportAdapter creates a new report adapter
func NewReportAdapter(client *postgres.Client) repositories.ReportRepository {
	return &ReportAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new report
func (a *ReportAdapter) Create(ctx context.Context, report *entities.Report) error {
	query, args, err := a.db.Insert("reports").Rows(goqu.Record{
		"id":          report.ID,
		"center_id":   report.CenterID,
		"reported_by": report.ReportedBy,
		"reason":      report.Reason,
		"status":      string(report.Status),
		"created_at":  report.CreatedAt,
		"updated_at":  report.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create report", err)
	}
	return nil
}

// GetByID retrieves a report by ID
func (a *ReportAdapter) GetByID(ctx context.Context, id string) (*entities.Report, error) {
	query, args, err := a.db.Select(reportColumns...).
		From("reports").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	report, err := scanReport(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Report not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get report", err)
	}
	return report, nil
}

// List retrieves all reports, newest first
func (a *ReportAdapter) List(ctx context.Context) ([]*entities.Report, error) {
	query, args, err := a.db.Select(reportColumns...).
		From("reports").
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reports", err)
	}
	defer rows.Close()

	reports := make([]*entities.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan report", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list reports", err)
	}
	return reports, nil
}

// UpdateStatus sets a report's status
func (a *ReportAdapter) UpdateStatus(ctx context.Context, id string, status entities.ReportStatus) error {
	query, args, err := a.db.Update("reports").
		Set(goqu.Record{"status": string(status), "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update report", err)
	}
	return expectAffected(result, "Report not found")
}

func scanReport(row rowScanner) (*entities.Report, error) {
	r := &entities.Report{}
	var status string
	if err := row.Scan(&r.ID, &r.CenterID, &r.ReportedBy, &r.Reason, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = entities.ReportStatus(status)
	return r, nil
}
