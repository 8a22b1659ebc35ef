package app

import (
	"strings"

	"eventhour/internal/domain"
)

// StaticPostalCodes is an in-memory postal-code table for one country.
type StaticPostalCodes struct {
	country string
	codes   map[string]domain.PostalPlace
}

// GermanPostalCodes covers the city-centre codes searched most often on the storefront.
func GermanPostalCodes() *StaticPostalCodes {
	return &StaticPostalCodes{
		country: "DE",
		codes: map[string]domain.PostalPlace{
			"10115": {PostalCode: "10115", City: "Berlin", Coords: domain.Coords{Lat: 52.5340, Lon: 13.3850}},
			"20095": {PostalCode: "20095", City: "Hamburg", Coords: domain.Coords{Lat: 53.5511, Lon: 9.9937}},
			"80331": {PostalCode: "80331", City: "München", Coords: domain.Coords{Lat: 48.1374, Lon: 11.5755}},
			"50667": {PostalCode: "50667", City: "Köln", Coords: domain.Coords{Lat: 50.9375, Lon: 6.9603}},
			"60311": {PostalCode: "60311", City: "Frankfurt am Main", Coords: domain.Coords{Lat: 50.1109, Lon: 8.6821}},
			"70173": {PostalCode: "70173", City: "Stuttgart", Coords: domain.Coords{Lat: 48.7758, Lon: 9.1829}},
			"40210": {PostalCode: "40210", City: "Düsseldorf", Coords: domain.Coords{Lat: 51.2217, Lon: 6.7762}},
			"44135": {PostalCode: "44135", City: "Dortmund", Coords: domain.Coords{Lat: 51.5136, Lon: 7.4653}},
			"04109": {PostalCode: "04109", City: "Leipzig", Coords: domain.Coords{Lat: 51.3397, Lon: 12.3731}},
			"01067": {PostalCode: "01067", City: "Dresden", Coords: domain.Coords{Lat: 51.0504, Lon: 13.7373}},
			"30159": {PostalCode: "30159", City: "Hannover", Coords: domain.Coords{Lat: 52.3759, Lon: 9.7320}},
			"90402": {PostalCode: "90402", City: "Nürnberg", Coords: domain.Coords{Lat: 49.4521, Lon: 11.0767}},
			"28195": {PostalCode: "28195", City: "Bremen", Coords: domain.Coords{Lat: 53.0793, Lon: 8.8017}},
		},
	}
}

func (s *StaticPostalCodes) Lookup(postalCode, country string) (domain.PostalPlace, bool) {
	if !strings.EqualFold(country, s.country) {
		return domain.PostalPlace{}, false
	}
	p, ok := s.codes[strings.TrimSpace(postalCode)]
	return p, ok
}
