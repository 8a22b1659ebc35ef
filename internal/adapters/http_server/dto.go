package httpserver

import "eventhour/internal/domain"

type categoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type partnerDTO struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
}

type experienceDTO struct {
	ID               string       `json:"id"`
	Slug             string       `json:"slug"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"shortDescription,omitempty"`
	City             string       `json:"city,omitempty"`
	PostalCode       string       `json:"postalCode,omitempty"`
	Country          string       `json:"country,omitempty"`
	Latitude         *float64     `json:"latitude,omitempty"`
	Longitude        *float64     `json:"longitude,omitempty"`
	RetailPrice      float64      `json:"retailPrice"` // euros
	Duration         int          `json:"duration"`
	MaxParticipants  *int         `json:"maxParticipants,omitempty"`
	PopularityScore  int          `json:"popularityScore"`
	Category         *categoryDTO `json:"category,omitempty"`
	Partner          *partnerDTO  `json:"partner,omitempty"`
	DistanceKm       *float64     `json:"distanceKm,omitempty"`
	WithinRadius     bool         `json:"withinRadius"`
}

type categoryFacetDTO struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type durationFacetDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type priceRangeDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type filtersDTO struct {
	Categories []categoryFacetDTO `json:"categories"`
	PriceRange priceRangeDTO      `json:"priceRange"`
	Durations  []durationFacetDTO `json:"durations"`
}

type searchLocationDTO struct {
	Query       string  `json:"query"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName,omitempty"`
	RadiusKm    float64 `json:"radius"`
}

type searchResponse struct {
	Experiences    []experienceDTO    `json:"experiences"`
	Total          int                `json:"total"`
	Page           int                `json:"page"`
	TotalPages     int                `json:"totalPages"`
	Filters        filtersDTO         `json:"filters"`
	SearchLocation *searchLocationDTO `json:"searchLocation,omitempty"`
}

func toSearchResponse(r domain.SearchResult) searchResponse {
	out := searchResponse{
		Experiences: make([]experienceDTO, 0, len(r.Experiences)),
		Total:       r.Total,
		Page:        r.Page,
		TotalPages:  r.TotalPages,
		Filters: filtersDTO{
			Categories: make([]categoryFacetDTO, 0, len(r.Filters.Categories)),
			PriceRange: priceRangeDTO{Min: centsToEuro(r.Filters.PriceRange.Min), Max: centsToEuro(r.Filters.PriceRange.Max)},
			Durations:  make([]durationFacetDTO, 0, len(r.Filters.Durations)),
		},
	}
	for _, h := range r.Experiences {
		out.Experiences = append(out.Experiences, toExperienceDTO(h))
	}
	for _, c := range r.Filters.Categories {
		out.Filters.Categories = append(out.Filters.Categories, categoryFacetDTO{ID: c.ID, Name: c.Name, Count: c.Count})
	}
	for _, d := range r.Filters.Durations {
		out.Filters.Durations = append(out.Filters.Durations, durationFacetDTO{Value: d.Value, Label: d.Label, Count: d.Count})
	}
	if l := r.SearchLocation; l != nil {
		out.SearchLocation = &searchLocationDTO{
			Query: l.Query, Lat: l.Coords.Lat, Lng: l.Coords.Lon,
			DisplayName: l.DisplayName, RadiusKm: l.RadiusKm,
		}
	}
	return out
}

func toExperienceDTO(h domain.ExperienceWithDistance) experienceDTO {
	e := h.Experience
	d := experienceDTO{
		ID:               e.ID,
		Slug:             e.Slug,
		Title:            e.Title,
		ShortDescription: e.ShortDescription,
		City:             e.City,
		PostalCode:       e.PostalCode,
		Country:          e.Country,
		Latitude:         e.Lat,
		Longitude:        e.Lon,
		RetailPrice:      centsToEuro(e.RetailPrice),
		Duration:         e.Duration,
		MaxParticipants:  e.MaxParticipants,
		PopularityScore:  e.PopularityScore,
		DistanceKm:       h.DistanceKm,
		WithinRadius:     h.WithinRadius,
	}
	if e.Category != nil {
		d.Category = &categoryDTO{ID: e.Category.ID, Name: e.Category.Name, Slug: e.Category.Slug}
	}
	if e.Partner != nil {
		d.Partner = &partnerDTO{ID: e.Partner.ID, CompanyName: e.Partner.CompanyName}
	}
	return d
}
