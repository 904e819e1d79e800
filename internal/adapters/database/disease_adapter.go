package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

var diseaseColumns = []interface{}{
	"id", "name", "parent_id", "description", "category", "is_active", "sort_order", "created_at", "updated_at",
}

// DiseaseAdapter implements DiseaseRepository
type DiseaseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDiseaseAdapter creates a new disease adapter
func NewDiseaseAdapter(client *postgres.Client) repositories.DiseaseRepository {
	return &DiseaseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func diseaseRecord(d *entities.Disease) goqu.Record {
	return goqu.Record{
		"name":        d.Name,
		"parent_id":   nullableString(d.ParentID),
		"description": d.Description,
		"category":    d.Category,
		"is_active":   d.IsActive,
		"sort_order":  d.Order,
		"updated_at":  d.UpdatedAt,
	}
}

// Create creates a new disease
func (a *DiseaseAdapter) Create(ctx context.Context, disease *entities.Disease) error {
	record := diseaseRecord(disease)
	record["id"] = disease.ID
	record["created_at"] = disease.CreatedAt

	query, args, err := a.db.Insert("diseases").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("Disease already exists")
		}
		return apperrors.NewInternalError("failed to create disease", err)
	}

	return nil
}

// GetByID retrieves a disease by ID
func (a *DiseaseAdapter) GetByID(ctx context.Context, id string) (*entities.Disease, error) {
	query, args, err := a.db.Select(diseaseColumns...).
		From("diseases").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	disease, err := scanDisease(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Disease not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get disease", err)
	}

	return disease, nil
}

// GetByName retrieves a disease by case-insensitive exact name
func (a *DiseaseAdapter) GetByName(ctx context.Context, name string) (*entities.Disease, error) {
	query, args, err := a.db.Select(diseaseColumns...).
		From("diseases").
		Where(goqu.Func("LOWER", goqu.I("name")).Eq(strings.ToLower(strings.TrimSpace(name)))).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	disease, err := scanDisease(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("disease %q not found", name))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get disease", err)
	}

	return disease, nil
}

// Update updates a disease
func (a *DiseaseAdapter) Update(ctx context.Context, disease *entities.Disease) error {
	disease.UpdatedAt = time.Now()

	query, args, err := a.db.Update("diseases").
		Set(diseaseRecord(disease)).
		Where(goqu.Ex{"id": disease.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("Disease already exists")
		}
		return apperrors.NewInternalError("failed to update disease", err)
	}

	return expectAffected(result, "Disease not found")
}

// Delete removes a disease
func (a *DiseaseAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("diseases").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete disease", err)
	}

	return expectAffected(result, "Disease not found")
}

// List retrieves active diseases matching filter
func (a *DiseaseAdapter) List(ctx context.Context, filter repositories.DiseaseFilter) ([]*entities.Disease, error) {
	ds := a.db.Select(diseaseColumns...).
		From("diseases").
		Where(goqu.Ex{"is_active": true})

	if filter.Search != "" {
		ds = ds.Where(goqu.I("name").ILike("%" + escapeLike(filter.Search) + "%"))
	}
	if filter.ParentID != "" {
		ds = ds.Where(goqu.Ex{"parent_id": filter.ParentID})
	}
	if filter.RootsOnly {
		ds = ds.Where(goqu.Ex{"parent_id": nil})
	}

	if filter.SortByName {
		ds = ds.Order(goqu.I("name").Asc())
	} else {
		ds = ds.Order(goqu.I("sort_order").Asc(), goqu.I("name").Asc())
	}

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	return a.queryDiseases(ctx, ds, "failed to list diseases")
}

// ListActive retrieves the whole active catalog ordered by order then name
func (a *DiseaseAdapter) ListActive(ctx context.Context) ([]*entities.Disease, error) {
	ds := a.db.Select(diseaseColumns...).
		From("diseases").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("sort_order").Asc(), goqu.I("name").Asc())

	return a.queryDiseases(ctx, ds, "failed to list active diseases")
}

// CountChildren returns the number of diseases whose parent is id
func (a *DiseaseAdapter) CountChildren(ctx context.Context, id string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("diseases").
		Where(goqu.Ex{"parent_id": id}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count subtypes", err)
	}
	return count, nil
}

func (a *DiseaseAdapter) queryDiseases(ctx context.Context, ds *goqu.SelectDataset, failure string) ([]*entities.Disease, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}
	defer rows.Close()

	diseases := make([]*entities.Disease, 0)
	for rows.Next() {
		disease, err := scanDisease(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan disease", err)
		}
		diseases = append(diseases, disease)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}

	return diseases, nil
}

func scanDisease(row rowScanner) (*entities.Disease, error) {
	disease := &entities.Disease{}
	var parentID sql.NullString

	err := row.Scan(
		&disease.ID,
		&disease.Name,
		&parentID,
		&disease.Description,
		&disease.Category,
		&disease.IsActive,
		&disease.Order,
		&disease.CreatedAt,
		&disease.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid && parentID.String != "" {
		disease.ParentID = &parentID.String
	}
	return disease, nil
}
