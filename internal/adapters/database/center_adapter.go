package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

var centerColumns = []interface{}{
	"id", "name", "disease_id", "disease_name", "owner_id",
	"address", "city", "state", "pincode", "latitude", "longitude",
	"contact_phone", "contact_email", "contact_website",
	"description", "treatment_type", "price_range", "photos",
	"business_license_number", "license_url", "is_verified", "verified_by", "verified_at",
	"status", "rejection_reason", "view_count", "report_count", "created_at", "updated_at",
}

// centerSortColumns maps API sort keys onto columns
var centerSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"viewCount": "view_count",
	"city":      "city",
}

// CenterAdapter implements CenterRepository
type CenterAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCenterAdapter creates a new center adapter
func NewCenterAdapter(client *postgres.Client) repositories.CenterRepository {
	return &CenterAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func centerRecord(c *entities.Center) goqu.Record {
	photos := c.Photos
	if photos == nil {
		photos = []string{}
	}
	return goqu.Record{
		"name":                    c.Name,
		"disease_id":              c.DiseaseID,
		"disease_name":            c.DiseaseName,
		"owner_id":                c.OwnerID,
		"address":                 c.Location.Address,
		"city":                    c.Location.City,
		"state":                   c.Location.State,
		"pincode":                 c.Location.Pincode,
		"latitude":                nullableFloat(c.Location.Latitude),
		"longitude":               nullableFloat(c.Location.Longitude),
		"contact_phone":           c.Contact.Phone,
		"contact_email":           c.Contact.Email,
		"contact_website":         c.Contact.Website,
		"description":             c.Description,
		"treatment_type":          string(c.TreatmentType),
		"price_range":             c.PriceRange,
		"photos":                  pq.Array(photos),
		"business_license_number": c.BusinessLicenseNumber,
		"license_url":             c.LicenseURL,
		"is_verified":             c.IsVerified,
		"verified_by":             nullableString(c.VerifiedBy),
		"verified_at":             nullableTime(c.VerifiedAt),
		"status":                  string(c.Status),
		"rejection_reason":        c.RejectionReason,
		"updated_at":              c.UpdatedAt,
	}
}

// Create creates a new center
func (a *CenterAdapter) Create(ctx context.Context, center *entities.Center) error {
	record := centerRecord(center)
	record["id"] = center.ID
	record["view_count"] = center.ViewCount
	record["report_count"] = center.ReportCount
	record["created_at"] = center.CreatedAt

	query, args, err := a.db.Insert("centers").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create center", err)
	}
	return nil
}

// GetByID retrieves a center by ID
func (a *CenterAdapter) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	query, args, err := a.db.Select(centerColumns...).
		From("centers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	center, err := scanCenter(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Center not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get center", err)
	}
	return center, nil
}

// Update updates a center
func (a *CenterAdapter) Update(ctx context.Context, center *entities.Center) error {
	center.UpdatedAt = time.Now()

	query, args, err := a.db.Update("centers").
		Set(centerRecord(center)).
		Where(goqu.Ex{"id": center.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update center", err)
	}
	return expectAffected(result, "Center not found")
}

// Delete removes a center
func (a *CenterAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("centers").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete center", err)
	}
	return expectAffected(result, "Center not found")
}

// Search returns a page of centers matching filter and the total match count.
// The page and the count run concurrently.
func (a *CenterAdapter) Search(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, int, error) {
	base := a.db.From("centers").Where(centerFilterExpressions(filter)...)

	column, ok := centerSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := goqu.I(column).Desc()
	if !filter.SortDesc {
		order = goqu.I(column).Asc()
	}

	page := base.Select(centerColumns...).Order(order, goqu.I("id").Asc())
	if filter.Limit > 0 {
		page = page.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		page = page.Offset(uint(filter.Offset))
	}

	var (
		centers []*entities.Center
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		centers, err = a.queryCenters(gctx, page, "failed to search centers")
		return err
	})
	g.Go(func() error {
		query, args, err := base.Select(goqu.COUNT("*")).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build count query", err)
		}
		if err := a.client.DB().QueryRowContext(gctx, query, args...).Scan(&total); err != nil {
			return apperrors.NewInternalError("failed to count centers", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

func centerFilterExpressions(filter repositories.CenterFilter) []exp.Expression {
	var where []exp.Expression
	if filter.Status != "" {
		where = append(where, goqu.Ex{"status": string(filter.Status)})
	}
	if filter.DiseaseID != "" {
		where = append(where, goqu.Ex{"disease_id": filter.DiseaseID})
	}
	if filter.Disease != "" {
		where = append(where, goqu.I("disease_name").ILike("%"+escapeLike(filter.Disease)+"%"))
	}
	if filter.City != "" {
		where = append(where, goqu.I("city").ILike("%"+escapeLike(filter.City)+"%"))
	}
	if filter.State != "" {
		where = append(where, goqu.I("state").ILike("%"+escapeLike(filter.State)+"%"))
	}
	return where
}

// ListByOwner returns centers owned by a user, newest first
func (a *CenterAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Center, error) {
	ds := a.db.Select(centerColumns...).
		From("centers").
		Where(goqu.Ex{"owner_id": ownerID}).
		Order(goqu.I("created_at").Desc())
	return a.queryCenters(ctx, ds, "failed to list user centers")
}

// ListByStatus returns centers in a moderation state, newest first
func (a *CenterAdapter) ListByStatus(ctx context.Context, status entities.CenterStatus) ([]*entities.Center, error) {
	ds := a.db.Select(centerColumns...).
		From("centers").
		Where(goqu.Ex{"status": string(status)}).
		Order(goqu.I("created_at").Desc())
	return a.queryCenters(ctx, ds, "failed to list centers")
}

// IncrementViewCount bumps the view counter
func (a *CenterAdapter) IncrementViewCount(ctx context.Context, id string) error {
	return a.increment(ctx, id, "view_count")
}

// IncrementReportCount bumps the report counter
func (a *CenterAdapter) IncrementReportCount(ctx context.Context, id string) error {
	return a.increment(ctx, id, "report_count")
}

func (a *CenterAdapter) increment(ctx context.Context, id, column string) error {
	query, args, err := a.db.Update("centers").
		Set(goqu.Record{column: goqu.L("? + 1", goqu.I(column))}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update "+column, err)
	}
	return expectAffected(result, "Center not found")
}

func (a *CenterAdapter) queryCenters(ctx context.Context, ds *goqu.SelectDataset, failure string) ([]*entities.Center, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}
	defer rows.Close()

	centers := make([]*entities.Center, 0)
	for rows.Next() {
		center, err := scanCenter(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan center", err)
		}
		centers = append(centers, center)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}
	return centers, nil
}

func scanCenter(row rowScanner) (*entities.Center, error) {
	c := &entities.Center{}
	var (
		latitude, longitude sql.NullFloat64
		verifiedBy          sql.NullString
		verifiedAt          sql.NullTime
		treatmentType       string
		status              string
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.DiseaseID,
		&c.DiseaseName,
		&c.OwnerID,
		&c.Location.Address,
		&c.Location.City,
		&c.Location.State,
		&c.Location.Pincode,
		&latitude,
		&longitude,
		&c.Contact.Phone,
		&c.Contact.Email,
		&c.Contact.Website,
		&c.Description,
		&treatmentType,
		&c.PriceRange,
		pq.Array(&c.Photos),
		&c.BusinessLicenseNumber,
		&c.LicenseURL,
		&c.IsVerified,
		&verifiedBy,
		&verifiedAt,
		&status,
		&c.RejectionReason,
		&c.ViewCount,
		&c.ReportCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Location.Latitude = floatPtr(latitude)
	c.Location.Longitude = floatPtr(longitude)
	c.VerifiedBy = stringPtr(verifiedBy)
	c.VerifiedAt = timePtr(verifiedAt)
	c.TreatmentType = entities.TreatmentType(treatmentType)
	c.Status = entities.CenterStatus(status)
	if c.Photos == nil {
		c.Photos = []string{}
	}
	return c, nil
}
