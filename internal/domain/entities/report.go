package entities

import "time"

// ReportStatus tracks whether an admin has looked at a report
type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusReviewed ReportStatus = "reviewed"
)

// Report flags an approved center for admin attention
type Report struct {
	ID         string       `json:"id" db:"id"`
	CenterID   string       `json:"center_id" db:"center_id"`
	ReportedBy string       `json:"reported_by" db:"reported_by"`
	Reason     string       `json:"reason" db:"reason"`
	Status     ReportStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}
