package httpserver

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"eventhour/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 12
)

// searchParams is the query string as received; prices are euros. Upper bounds on page and
// prices keep the offset and the cent conversion inside int range.
type searchParams struct {
	Q          string   `validate:"max=200"`
	Categories []string `validate:"max=50,dive,required,max=64"`
	MinPrice   *float64 `validate:"omitempty,gte=0,lte=10000000"`
	MaxPrice   *float64 `validate:"omitempty,gte=0,lte=10000000"`
	Durations  []string `validate:"dive,oneof=short medium long multi_day"`
	Rating     *float64 `validate:"omitempty,gte=0,lte=5"`
	Location   string   `validate:"max=200"`
	Radius     float64  `validate:"gte=0,lte=1000"`
	Country    string   `validate:"omitempty,len=2,alpha"`
	Partner    string   `validate:"max=64"`
	SortBy     string   `validate:"omitempty,oneof=relevance price_asc price_desc rating newest distance"`
	Page       int      `validate:"gte=1,lte=10000"`
	Limit      int      `validate:"gte=1,lte=100"`
}

var validate = validator.New()

func parseSearchParams(v url.Values) (searchParams, error) {
	p := searchParams{
		Q:          strings.TrimSpace(v.Get("q")),
		Categories: nonEmpty(v["category"]),
		Durations:  nonEmpty(v["duration"]),
		Location:   strings.TrimSpace(v.Get("location")),
		Country:    strings.ToUpper(strings.TrimSpace(v.Get("country"))),
		Partner:    strings.TrimSpace(v.Get("partner")),
		SortBy:     strings.TrimSpace(v.Get("sortBy")),
		Page:       defaultPage,
		Limit:      defaultLimit,
	}

	var err error
	if p.MinPrice, err = optFloat(v, "minPrice"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = optFloat(v, "maxPrice"); err != nil {
		return p, err
	}
	if p.Rating, err = optFloat(v, "rating"); err != nil {
		return p, err
	}
	if r, err := optFloat(v, "radius"); err != nil {
		return p, err
	} else if r != nil {
		p.Radius = *r
	}
	if p.Page, err = intOr(v, "page", defaultPage); err != nil {
		return p, err
	}
	if p.Limit, err = intOr(v, "limit", defaultLimit); err != nil {
		return p, err
	}

	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, describe(err))
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return p, fmt.Errorf("%w: minPrice must not exceed maxPrice", domain.ErrInvalidRequest)
	}
	return p, nil
}

// toRequest converts boundary units: euros become cents here and nowhere else.
func (p searchParams) toRequest() domain.SearchRequest {
	sort, _ := domain.ParseSortMode(p.SortBy)
	return domain.SearchRequest{
		Query:       p.Q,
		CategoryIDs: p.Categories,
		MinPrice:    euroToCents(p.MinPrice),
		MaxPrice:    euroToCents(p.MaxPrice),
		Durations:   p.Durations,
		MinRating:   p.Rating,
		Location:    p.Location,
		Country:     p.Country,
		RadiusKm:    p.Radius,
		PartnerID:   p.Partner,
		Sort:        sort,
		Page:        p.Page,
		Limit:       p.Limit,
	}
}

func euroToCents(p *float64) *int64 {
	if p == nil {
		return nil
	}
	c := int64(math.Round(*p * 100))
	return &c
}

func centsToEuro(c int64) float64 { return float64(c) / 100 }

func optFloat(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidRequest, key)
	}
	return &f, nil
}

func intOr(v url.Values, key string, def int) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidRequest, key)
	}
	return n, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
