package services

import (
	"context"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

const (
	// AddCenterOTPWindow is how long a phone verification authorizes center submission
	AddCenterOTPWindow = 30 * time.Minute

	defaultCenterPageSize = 10
	maxCenterPageSize     = 100
)

var licenseExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// CenterService handles center listings
type CenterService struct {
	centers  repositories.CenterRepository
	index    repositories.CenterSearchRepository
	diseases repositories.DiseaseRepository
	users    repositories.UserRepository
	files    providers.FileStorage
	geocoder providers.Geocoder
	now      func() time.Time
}

// NewCenterService creates a new center service. index may be nil, in which
// case searches run against the database.
func NewCenterService(
	centers repositories.CenterRepository,
	index repositories.CenterSearchRepository,
	diseases repositories.DiseaseRepository,
	users repositories.UserRepository,
	files providers.FileStorage,
) *CenterService {
	return &CenterService{
		centers:  centers,
		index:    index,
		diseases: diseases,
		users:    users,
		files:    files,
		now:      time.Now,
	}
}

// SetGeocoder enables coordinate lookup for centers submitted without lat/lng
func (s *CenterService) SetGeocoder(geocoder providers.Geocoder) {
	s.geocoder = geocoder
}

// CenterQuery is a public center search
type CenterQuery struct {
	DiseaseID string
	Disease   string
	City      string
	State     string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Search returns a page of approved centers
func (s *CenterService) Search(ctx context.Context, query CenterQuery) (*entities.CenterSearchResult, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultCenterPageSize
	}
	if limit > maxCenterPageSize {
		limit = maxCenterPageSize
	}
	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}

	filter := repositories.CenterFilter{
		Status:    entities.CenterStatusApproved,
		DiseaseID: strings.TrimSpace(query.DiseaseID),
		Disease:   strings.TrimSpace(query.Disease),
		City:      strings.TrimSpace(query.City),
		State:     strings.TrimSpace(query.State),
		SortBy:    sortBy,
		SortDesc:  query.SortOrder != "asc",
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	centers, total, err := s.searchCenters(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &entities.CenterSearchResult{
		Centers: centers,
		Pagination: entities.Pagination{
			Total: total,
			Page:  page,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
			Limit: limit,
		},
	}, nil
}

func (s *CenterService) searchCenters(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, int, error) {
	if s.index != nil {
		centers, total, err := s.index.Search(ctx, filter)
		if err == nil {
			return centers, total, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("search index unavailable, falling back to database")
	}
	return s.centers.Search(ctx, filter)
}

// GetByID returns a center and counts the view
func (s *CenterService) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.centers.IncrementViewCount(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("center_id", id).Msg("failed to count center view")
	} else {
		center.ViewCount++
	}
	return center, nil
}

// ListByOwner returns a user's centers, newest first
func (s *CenterService) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Center, error) {
	return s.centers.ListByOwner(ctx, ownerID)
}

// LicenseUpload is a business license document submitted during the add-center flow
type LicenseUpload struct {
	BusinessName  string
	LicenseNumber string
	ContentType   string
	Content       io.Reader
}

// UploadLicense stores a business license and stamps the user's license verification
func (s *CenterService) UploadLicense(ctx context.Context, userID string, upload LicenseUpload) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Role != entities.RoleBusiness {
		return "", apperrors.NewForbiddenError("Only business accounts can upload business license")
	}
	if !user.HasRecentOTPVerification(s.now(), AddCenterOTPWindow) {
		return "", apperrors.NewValidationError("Complete OTP verification before uploading license")
	}
	if upload.Content == nil {
		return "", apperrors.NewValidationError("License upload is required")
	}

	ext, ok := licenseExtensions[upload.ContentType]
	if !ok {
		return "", apperrors.NewValidationError("Only PDF/JPEG/PNG/WEBP files are allowed")
	}

	businessName := strings.TrimSpace(upload.BusinessName)
	licenseNumber := strings.TrimSpace(upload.LicenseNumber)
	if businessName == "" {
		return "", apperrors.NewValidationError("Business name is required")
	}
	if licenseNumber == "" {
		return "", apperrors.NewValidationError("License number is required")
	}

	name := user.ID + "-" + uuid.New().String() + ext
	url, err := s.files.Save(ctx, name, upload.Content)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to upload license", err)
	}

	verifiedAt := s.now().UTC()
	user.BusinessName = businessName
	user.LicenseNumber = licenseNumber
	user.LicenseURL = url
	user.AddCenterLicenseURL = url
	user.AddCenterLicenseVerifiedAt = &verifiedAt
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Str("license_url", url).Msg("business license uploaded")
	return url, nil
}

// CenterInput carries a new center submission
type CenterInput struct {
	Name           string                 `json:"name"`
	DiseaseID      string                 `json:"disease_id"`
	DiseaseName    string                 `json:"disease_name"`
	Address        string                 `json:"address"`
	City           string                 `json:"city"`
	State          string                 `json:"state"`
	Pincode        string                 `json:"pincode"`
	Latitude       *float64               `json:"lat"`
	Longitude      *float64               `json:"lng"`
	Phone          string                 `json:"phone"`
	Email          string                 `json:"email"`
	Website        string                 `json:"website"`
	Description    string                 `json:"description"`
	TreatmentType  entities.TreatmentType `json:"treatment_type"`
	ServiceDetails string                 `json:"service_details"`
	Photos         []string               `json:"photos"`
	BusinessName   string                 `json:"business_name"`
	LicenseNumber  string                 `json:"license_number"`
}

func (in CenterInput) validate() error {
	switch {
	case isBlank(in.Name):
		return apperrors.NewValidationError("Center name is required")
	case isBlank(in.DiseaseID):
		return apperrors.NewValidationError("Disease category is required")
	case isBlank(in.Address), isBlank(in.City), isBlank(in.State):
		return apperrors.NewValidationError("Complete location details are required")
	case isBlank(in.Phone):
		return apperrors.NewValidationError("Contact number is required")
	case isBlank(in.Email):
		return apperrors.NewValidationError("Email is required")
	case isBlank(in.Description):
		return apperrors.NewValidationError("Description is required")
	case in.TreatmentType != "" && !entities.ValidTreatmentType(in.TreatmentType):
		return apperrors.NewValidationError("Invalid treatment type")
	}
	return nil
}

// Create submits a pending center. The submitter must have verified a phone
// within AddCenterOTPWindow; business submitters also need a license upload.
// Both verifications are consumed.
func (s *CenterService) Create(ctx context.Context, userID string, input CenterInput) (*entities.Center, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !user.HasRecentOTPVerification(now, AddCenterOTPWindow) {
		return nil, apperrors.NewValidationError("Phone OTP verification is required before adding a center")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	disease, err := s.diseases.GetByID(ctx, strings.TrimSpace(input.DiseaseID))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewValidationError("Invalid disease selected")
		}
		return nil, err
	}

	center := &entities.Center{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		DiseaseID:   disease.ID,
		DiseaseName: strings.TrimSpace(input.DiseaseName),
		OwnerID:     user.ID,
		Location: entities.CenterLocation{
			Address:   strings.TrimSpace(input.Address),
			City:      strings.TrimSpace(input.City),
			State:     strings.TrimSpace(input.State),
			Pincode:   strings.TrimSpace(input.Pincode),
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
		},
		Contact: entities.CenterContact{
			Phone:   strings.TrimSpace(input.Phone),
			Email:   strings.TrimSpace(input.Email),
			Website: strings.TrimSpace(input.Website),
		},
		Description:   strings.TrimSpace(input.Description),
		TreatmentType: input.TreatmentType,
		PriceRange:    strings.TrimSpace(input.ServiceDetails),
		Photos:        input.Photos,
		Status:        entities.CenterStatusPending,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if center.DiseaseName == "" {
		center.DiseaseName = disease.Name
	}
	if center.TreatmentType == "" {
		center.TreatmentType = entities.TreatmentOther
	}
	if center.Photos == nil {
		center.Photos = []string{}
	}
	s.fillCoordinates(ctx, center)

	isBusiness := user.Role == entities.RoleBusiness
	if isBusiness {
		switch {
		case isBlank(input.BusinessName):
			return nil, apperrors.NewValidationError("Business name is required")
		case isBlank(input.LicenseNumber):
			return nil, apperrors.NewValidationError("License number is required")
		case isBlank(input.ServiceDetails):
			return nil, apperrors.NewValidationError("Service details are required")
		case !user.HasLicenseVerification():
			return nil, apperrors.NewValidationError("License verification is required before adding a business center")
		case strings.TrimSpace(user.LicenseNumber) != strings.TrimSpace(input.LicenseNumber):
			return nil, apperrors.NewValidationError("License number does not match uploaded license")
		}
		center.BusinessLicenseNumber = user.LicenseNumber
		center.LicenseURL = user.AddCenterLicenseURL
		center.IsVerified = user.IsLicenseVerified
	}

	if err := s.centers.Create(ctx, center); err != nil {
		return nil, err
	}

	user.AddCenterOTPVerifiedAt = nil
	user.AddCenterOTPVerifiedPhone = ""
	if isBusiness {
		user.AddCenterLicenseVerifiedAt = nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to clear add-center verification")
	}

	observability.LoggerFromContext(ctx).Info().
		Str("center_id", center.ID).
		Str("owner_id", user.ID).
		Bool("business", isBusiness).
		Msg("center submitted for review")
	return center, nil
}

func (s *CenterService) fillCoordinates(ctx context.Context, center *entities.Center) {
	if s.geocoder == nil || (center.Location.Latitude != nil && center.Location.Longitude != nil) {
		return
	}
	parts := make([]string, 0, 4)
	for _, part := range []string{center.Location.Address, center.Location.City, center.Location.State, center.Location.Pincode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	coords, err := s.geocoder.Geocode(ctx, strings.Join(parts, ", "))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("center_id", center.ID).Msg("failed to geocode center address")
		return
	}
	lat, lng := coords.Latitude, coords.Longitude
	center.Location.Latitude = &lat
	center.Location.Longitude = &lng
}

// Update edits a center. Edits by the owner send the center back to review.
func (s *CenterService) Update(ctx context.Context, caller *entities.User, id string, update entities.CenterUpdate) (*entities.Center, error) {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCenterOwner(caller, center); err != nil {
		return nil, err
	}
	if update.TreatmentType != nil && !entities.ValidTreatmentType(*update.TreatmentType) {
		return nil, apperrors.NewValidationError("Invalid treatment type")
	}
	if update.DiseaseID != nil && *update.DiseaseID != center.DiseaseID {
		if _, err := s.diseases.GetByID(ctx, *update.DiseaseID); err != nil {
			if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
				return nil, apperrors.NewValidationError("Invalid disease selected")
			}
			return nil, err
		}
	}

	update.Apply(center)
	if caller.ID == center.OwnerID {
		center.IsVerified = false
		center.Status = entities.CenterStatusPending
	}

	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	syncCenterIndex(ctx, s.index, center)
	return center, nil
}

// Delete removes a center owned by caller, or any center for admins
func (s *CenterService) Delete(ctx context.Context, caller *entities.User, id string) error {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeCenterOwner(caller, center); err != nil {
		return err
	}

	if err := s.centers.Delete(ctx, id); err != nil {
		return err
	}
	removeFromCenterIndex(ctx, s.index, id)
	return nil
}

func authorizeCenterOwner(caller *entities.User, center *entities.Center) error {
	if caller == nil {
		return apperrors.NewUnauthorizedError("Not authorized, no token")
	}
	if caller.ID != center.OwnerID && !caller.IsAdmin() {
		return apperrors.NewForbiddenError("Not authorized")
	}
	return nil
}

// syncCenterIndex keeps only approved centers searchable. Index failures are
// logged; the database stays authoritative.
func syncCenterIndex(ctx context.Context, index repositories.CenterSearchRepository, center *entities.Center) {
	if index == nil {
		return
	}
	if center.Status != entities.CenterStatusApproved {
		removeFromCenterIndex(ctx, index, center.ID)
		return
	}
	if err := index.Index(ctx, center); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("center_id", center.ID).Msg("failed to index center")
	}
}

func removeFromCenterIndex(ctx context.Context, index repositories.CenterSearchRepository, id string) {
	if index == nil {
		return
	}
	if err := index.Delete(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("center_id", id).Msg("center not removed from index")
	}
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
