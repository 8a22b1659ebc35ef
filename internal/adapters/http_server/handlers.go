package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"eventhour/internal/adapters/observability"
	"eventhour/internal/app"
	"eventhour/internal/domain"
)

type Handlers struct {
	Search         *app.SearchService
	Suggest        *app.SuggestionService
	Geocoder       *app.Geocoder
	DefaultCountry string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/search", h.search)
	s.mux.Get("/v1/search/suggestions", h.suggestions)
	s.mux.Get("/v1/partners/{partnerID}/experiences", h.partnerExperiences)
	s.mux.Get("/v1/geocode", h.geocode)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the search error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	var qe *domain.QueryError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.As(err, &qe):
		log.Error().Err(err).Str("op", op).Msg("store query failed")
		writeProblem(w, http.StatusInternalServerError, "Search unavailable", "the experience store could not be queried")
	default:
		log.Error().Err(err).Str("op", op).Msg("unexpected error")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal error", "response encoding failed")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	p, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, "search", err)
		return
	}
	h.runSearch(w, r, p.toRequest())
}

// partnerExperiences is the partner-portal "my experiences" view: the partner scope comes
// from the path and overrides any partner query parameter.
func (h *Handlers) partnerExperiences(w http.ResponseWriter, r *http.Request) {
	p, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, "partner_experiences", err)
		return
	}
	req := p.toRequest()
	req.PartnerID = chi.URLParam(r, "partnerID")
	h.runSearch(w, r, req)
}

func (h *Handlers) runSearch(w http.ResponseWriter, r *http.Request, req domain.SearchRequest) {
	res, err := h.Search.Search(r.Context(), req)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	observability.ObserveSearch(res.Total, res.SearchLocation != nil)
	writeJSONWithETag(w, r, toSearchResponse(res))
}

func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) > 200 {
		writeProblem(w, http.StatusBadRequest, "Invalid request", "q must be at most 200 characters")
		return
	}
	out, err := h.Suggest.Suggest(r.Context(), q)
	if err != nil {
		writeError(w, "suggestions", err)
		return
	}
	writeJSONWithETag(w, r, map[string]any{"suggestions": out})
}

func (h *Handlers) geocode(w http.ResponseWriter, r *http.Request) {
	country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if country == "" {
		country = h.DefaultCountry
	}
	res := h.Geocoder.GeocodeWithFallback(r.Context(), r.URL.Query().Get("location"), country)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("failed to write geocode body")
	}
}
