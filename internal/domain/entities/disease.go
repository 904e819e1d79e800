package entities

import "time"

// DefaultDiseaseCategory is assigned when an admin creates a disease without a category
const DefaultDiseaseCategory = "General"

// Disease is a catalog entry that centers are listed under and that the
// symptom matcher ranks. Diseases form a tree through ParentID.
type Disease struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ParentID    *string   `json:"parent_id" db:"parent_id"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	Order       int       `json:"order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the disease has no parent
func (d *Disease) IsRoot() bool {
	return d.ParentID == nil || *d.ParentID == ""
}

// DiseaseNode is a disease together with its active subtypes
type DiseaseNode struct {
	*Disease
	Types []*DiseaseNode `json:"types"`
}

// DiseaseSuggestion is the compact shape returned by disease autocomplete
type DiseaseSuggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Category string  `json:"category"`
}

// Suggestion returns the autocomplete view of d
func (d *Disease) Suggestion() DiseaseSuggestion {
	return DiseaseSuggestion{
		ID:       d.ID,
		Name:     d.Name,
		ParentID: d.ParentID,
		Category: d.Category,
	}
}

// ScoredDisease pairs a catalog entry with a ranking score
type ScoredDisease struct {
	Disease *Disease
	Score   float64
}
