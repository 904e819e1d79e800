package entities

import "time"

// CenterStatus is the moderation state of a center listing
type CenterStatus string

const (
	CenterStatusPending  CenterStatus = "pending"
	CenterStatusApproved CenterStatus = "approved"
	CenterStatusRejected CenterStatus = "rejected"
)

// TreatmentType is the therapeutic tradition a center practices
type TreatmentType string

const (
	TreatmentAyurveda     TreatmentType = "Ayurveda"
	TreatmentHerbal       TreatmentType = "Herbal"
	TreatmentAllopathic   TreatmentType = "Allopathic"
	TreatmentHomeopathy   TreatmentType = "Homeopathy"
	TreatmentYoga         TreatmentType = "Yoga"
	TreatmentLocalTherapy TreatmentType = "Local therapy"
	TreatmentOther        TreatmentType = "Other"
)

// ValidTreatmentType reports whether t is one of the known treatment types
func ValidTreatmentType(t TreatmentType) bool {
	switch t {
	case TreatmentAyurveda, TreatmentHerbal, TreatmentAllopathic, TreatmentHomeopathy,
		TreatmentYoga, TreatmentLocalTherapy, TreatmentOther:
		return true
	}
	return false
}

// Center is a community-submitted health service center listing
type Center struct {
	ID                    string         `json:"id" db:"id"`
	Name                  string         `json:"name" db:"name"`
	DiseaseID             string         `json:"disease_id" db:"disease_id"`
	DiseaseName           string         `json:"disease_name" db:"disease_name"`
	OwnerID               string         `json:"owner_id" db:"owner_id"`
	Location              CenterLocation `json:"location" db:"-"`
	Contact               CenterContact  `json:"contact" db:"-"`
	Description           string         `json:"description" db:"description"`
	TreatmentType         TreatmentType  `json:"treatment_type" db:"treatment_type"`
	PriceRange            string         `json:"price_range" db:"price_range"`
	Photos                []string       `json:"photos" db:"-"`
	BusinessLicenseNumber string         `json:"business_license_number" db:"business_license_number"`
	LicenseURL            string         `json:"license_url" db:"license_url"`
	IsVerified            bool           `json:"is_verified" db:"is_verified"`
	VerifiedBy            *string        `json:"verified_by,omitempty" db:"verified_by"`
	VerifiedAt            *time.Time     `json:"verified_at,omitempty" db:"verified_at"`
	Status                CenterStatus   `json:"status" db:"status"`
	RejectionReason       string         `json:"rejection_reason" db:"rejection_reason"`
	ViewCount             int            `json:"view_count" db:"view_count"`
	ReportCount           int            `json:"report_count" db:"report_count"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// CenterLocation is the postal address and optional coordinates of a center
type CenterLocation struct {
	Address   string   `json:"address" db:"address"`
	City      string   `json:"city" db:"city"`
	State     string   `json:"state" db:"state"`
	Pincode   string   `json:"pincode" db:"pincode"`
	Latitude  *float64 `json:"lat,omitempty" db:"latitude"`
	Longitude *float64 `json:"lng,omitempty" db:"longitude"`
}

// CenterContact holds how visitors reach a center
type CenterContact struct {
	Phone   string `json:"phone" db:"contact_phone"`
	Email   string `json:"email" db:"contact_email"`
	Website string `json:"website" db:"contact_website"`
}

// CenterUpdate carries a partial edit. Nil fields are left unchanged.
type CenterUpdate struct {
	Name          *string        `json:"name"`
	DiseaseID     *string        `json:"disease_id"`
	DiseaseName   *string        `json:"disease_name"`
	Address       *string        `json:"address"`
	City          *string        `json:"city"`
	State         *string        `json:"state"`
	Pincode       *string        `json:"pincode"`
	Phone         *string        `json:"phone"`
	Email         *string        `json:"email"`
	Website       *string        `json:"website"`
	Description   *string        `json:"description"`
	TreatmentType *TreatmentType `json:"treatment_type"`
	PriceRange    *string        `json:"price_range"`
	Photos        []string       `json:"photos"`
}

// Apply copies the non-nil fields of u onto c
func (u *CenterUpdate) Apply(c *Center) {
	setString(&c.Name, u.Name)
	setString(&c.DiseaseID, u.DiseaseID)
	setString(&c.DiseaseName, u.DiseaseName)
	setString(&c.Location.Address, u.Address)
	setString(&c.Location.City, u.City)
	setString(&c.Location.State, u.State)
	setString(&c.Location.Pincode, u.Pincode)
	setString(&c.Contact.Phone, u.Phone)
	setString(&c.Contact.Email, u.Email)
	setString(&c.Contact.Website, u.Website)
	setString(&c.Description, u.Description)
	setString(&c.PriceRange, u.PriceRange)
	if u.TreatmentType != nil {
		c.TreatmentType = *u.TreatmentType
	}
	if u.Photos != nil {
		c.Photos = u.Photos
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Pagination describes a page of search results
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// CenterSearchResult is a page of approved centers
type CenterSearchResult struct {
	Centers    []*Center  `json:"centers"`
	Pagination Pagination `json:"pagination"`
}
