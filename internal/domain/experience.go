package domain

import "time"

type Experience struct {
	ID               string
	Slug             string
	Title            string
	Description      string
	ShortDescription string
	SearchKeywords   string

	City       string
	PostalCode string
	Street     string
	Country    string
	Lat, Lon   *float64

	RetailPrice     int64 // cents
	TaxRate         float64
	Duration        int // minutes
	MaxParticipants *int

	CategoryID      string
	PartnerID       string
	Category        *Category
	Partner         *Partner
	PopularityScore int // 0-100
	IsActive        bool
	CreatedAt       time.Time
}

// Coords returns the experience location, or nil when either coordinate is missing.
func (e Experience) Coords() *Coords {
	if e.Lat == nil || e.Lon == nil {
		return nil
	}
	return &Coords{Lat: *e.Lat, Lon: *e.Lon}
}

type Category struct {
	ID   string
	Name string
	Slug string
}

type Partner struct {
	ID          string
	CompanyName string
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// ExperienceWithDistance is a search hit. DistanceKm is nil when either side lacks coordinates.
type ExperienceWithDistance struct {
	Experience
	DistanceKm   *float64
	WithinRadius bool
}
