package models

import "time"

// Progress is the single per-(user, subcategory) course-completion record.
// It is seeded when a course payment is approved and only ever upserted,
// never duplicated.
type Progress struct {
	ID                string
	UserID            string
	SubcategoryID     string
	CompletedVideos   []string
	LastAccessedVideo *string
	LastAccessedAt    time.Time
	IsCompleted       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SupportStatus string

const (
	SupportStatusOpen     SupportStatus = "open"
	SupportStatusResolved SupportStatus = "resolved"
)

type Support struct {
	ID        string
	UserID    string
	Subject   string
	Message   string
	Status    SupportStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
