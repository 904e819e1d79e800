package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	tsclient "github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements center search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CenterSearchRepository
var _ repositories.CenterSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// centerDocument is the stored projection of a center. Fields outside the
// collection schema are kept by Typesense but not indexed.
type centerDocument struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	DiseaseID             string   `json:"disease_id"`
	DiseaseName           string   `json:"disease_name"`
	OwnerID               string   `json:"owner_id"`
	Description           string   `json:"description"`
	Address               string   `json:"address"`
	City                  string   `json:"city"`
	State                 string   `json:"state"`
	Pincode               string   `json:"pincode"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	ContactPhone          string   `json:"contact_phone"`
	ContactEmail          string   `json:"contact_email"`
	ContactWebsite        string   `json:"contact_website"`
	TreatmentType         string   `json:"treatment_type"`
	PriceRange            string   `json:"price_range"`
	Photos                []string `json:"photos"`
	BusinessLicenseNumber string   `json:"business_license_number"`
	IsVerified            bool     `json:"is_verified"`
	Status                string   `json:"status"`
	ViewCount             int      `json:"view_count"`
	ReportCount           int      `json:"report_count"`
	CreatedAt             int64    `json:"created_at"`
	UpdatedAt             int64    `json:"updated_at"`
}

func newCenterDocument(c *entities.Center) centerDocument {
	photos := c.Photos
	if photos == nil {
		photos = []string{}
	}
	return centerDocument{
		ID:                    c.ID,
		Name:                  c.Name,
		DiseaseID:             c.DiseaseID,
		DiseaseName:           c.DiseaseName,
		OwnerID:               c.OwnerID,
		Description:           c.Description,
		Address:               c.Location.Address,
		City:                  c.Location.City,
		State:                 c.Location.State,
		Pincode:               c.Location.Pincode,
		Latitude:              c.Location.Latitude,
		Longitude:             c.Location.Longitude,
		ContactPhone:          c.Contact.Phone,
		ContactEmail:          c.Contact.Email,
		ContactWebsite:        c.Contact.Website,
		TreatmentType:         string(c.TreatmentType),
		PriceRange:            c.PriceRange,
		Photos:                photos,
		BusinessLicenseNumber: c.BusinessLicenseNumber,
		IsVerified:            c.IsVerified,
		Status:                string(c.Status),
		ViewCount:             c.ViewCount,
		ReportCount:           c.ReportCount,
		CreatedAt:             c.CreatedAt.Unix(),
		UpdatedAt:             c.UpdatedAt.Unix(),
	}
}

func (d centerDocument) center() *entities.Center {
	return &entities.Center{
		ID:          d.ID,
		Name:        d.Name,
		DiseaseID:   d.DiseaseID,
		DiseaseName: d.DiseaseName,
		OwnerID:     d.OwnerID,
		Location: entities.CenterLocation{
			Address:   d.Address,
			City:      d.City,
			State:     d.State,
			Pincode:   d.Pincode,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
		},
		Contact: entities.CenterContact{
			Phone:   d.ContactPhone,
			Email:   d.ContactEmail,
			Website: d.ContactWebsite,
		},
		Description:           d.Description,
		TreatmentType:         entities.TreatmentType(d.TreatmentType),
		PriceRange:            d.PriceRange,
		Photos:                d.Photos,
		BusinessLicenseNumber: d.BusinessLicenseNumber,
		IsVerified:            d.IsVerified,
		Status:                entities.CenterStatus(d.Status),
		ViewCount:             d.ViewCount,
		ReportCount:           d.ReportCount,
		CreatedAt:             time.Unix(d.CreatedAt, 0).UTC(),
		UpdatedAt:             time.Unix(d.UpdatedAt, 0).UTC(),
	}
}

// Index upserts a center document
func (a *TypesenseAdapter) Index(ctx context.Context, center *entities.Center) error {
	document := newCenterDocument(center)
	_, err := a.client.Client().Collection(tsclient.CentersCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index center: %w", err)
	}
	return nil
}

// Delete removes a center from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.CentersCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete center from index: %w", err)
	}
	return nil
}

// Search returns a page of centers matching filter and the total match count
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(buildQuery(filter)),
		QueryBy: pointer.String("disease_name,name,city,state"),
		SortBy:  pointer.String(buildSortBy(filter)),
		Page:    pointer.Int(filter.Offset/limit + 1),
		PerPage: pointer.Int(limit),
	}
	if filterBy := buildFilterBy(filter); filterBy != "" {
		params.FilterBy = pointer.String(filterBy)
	}

	result, err := a.client.Client().Collection(tsclient.CentersCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search centers: %w", err)
	}

	total := 0
	if result.Found != nil {
		total = *result.Found
	}

	centers := make([]*entities.Center, 0)
	if result.Hits == nil {
		return centers, total, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		center, err := decodeCenter(*hit.Document)
		if err != nil {
			return nil, 0, err
		}
		centers = append(centers, center)
	}
	return centers, total, nil
}

func decodeCenter(doc map[string]interface{}) (*entities.Center, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search hit: %w", err)
	}
	var d centerDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode search hit: %w", err)
	}
	return d.center(), nil
}

// buildQuery joins the free-text filters into a single query. Typesense
// matches each word by prefix across the queried fields.
func buildQuery(filter repositories.CenterFilter) string {
	terms := make([]string, 0, 3)
	for _, term := range []string{filter.Disease, filter.City, filter.State} {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return "*"
	}
	return strings.Join(terms, " ")
}

func buildFilterBy(filter repositories.CenterFilter) string {
	clauses := make([]string, 0, 2)
	if filter.Status != "" {
		clauses = append(clauses, "status:="+quoteValue(string(filter.Status)))
	}
	if filter.DiseaseID != "" {
		clauses = append(clauses, "disease_id:="+quoteValue(filter.DiseaseID))
	}
	return strings.Join(clauses, " && ")
}

var sortFields = map[string]string{
	"createdAt": "created_at",
	"viewCount": "view_count",
}

func buildSortBy(filter repositories.CenterFilter) string {
	field, ok := sortFields[filter.SortBy]
	if !ok {
		field = "created_at"
	}
	if filter.SortDesc {
		return field + ":desc"
	}
	return field + ":asc"
}

func quoteValue(value string) string {
	return "`" + strings.ReplaceAll(value, "`", "") + "`"
}
