package models

import "time"

type Category struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	ImageKey    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Subcategory struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Video references a remote-hosted DRM asset by RemoteID. Local rows own
// the catalog truth: losing the remote asset never blocks local deletion.
type Video struct {
	ID            string
	Title         string
	Description   *string
	RemoteID      string
	DurationSecs  int
	Sequence      int
	SubcategoryID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PDF struct {
	ID            string
	Title         string
	Description   string
	CategoryID    string
	SubcategoryID string
	Price         float64
	FileURL       string
	FileSize      int64
	ObjectKey     string
	Downloads     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Book struct {
	ID          string
	Name        string
	Description string
	Price       float64
	ImageURL    string
	ImageKey    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
