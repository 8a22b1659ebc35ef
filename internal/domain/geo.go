package domain

const (
	GeocodeErrNoLocation = "no location provided"
	GeocodeErrNotFound   = "location not found"
)

// GeocodeResult is a geocoding outcome. Coords is nil when the location did not resolve;
// Error then says why.
type GeocodeResult struct {
	Coords      *Coords `json:"coordinates"`
	DisplayName string  `json:"displayName,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func (r GeocodeResult) Resolved() bool { return r.Coords != nil }

// GeocodeMatch is one candidate returned by a geocoding provider.
type GeocodeMatch struct {
	Lat, Lon    float64
	DisplayName string
}

type PostalPlace struct {
	PostalCode string
	City       string
	Coords     Coords
}
