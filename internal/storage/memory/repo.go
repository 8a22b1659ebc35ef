// Package memory is an in-process ExperienceRepository. It evaluates the same domain
// predicates the SQL store compiles, and backs tests and local demos.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"eventhour/internal/domain"
)

type Repo struct {
	mu          sync.RWMutex
	experiences []domain.Experience
	categories  map[string]domain.Category
}

func New(categories []domain.Category, experiences []domain.Experience) *Repo {
	r := &Repo{categories: make(map[string]domain.Category, len(categories))}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	for _, e := range experiences {
		if c, ok := r.categories[e.CategoryID]; ok && e.Category == nil {
			c := c
			e.Category = &c
		}
		r.experiences = append(r.experiences, e)
	}
	return r
}

type seedFile struct {
	Categories  []domain.Category   `json:"categories"`
	Experiences []domain.Experience `json:"experiences"`
}

// Load reads a JSON seed file with "categories" and "experiences" arrays.
func Load(path string) (*Repo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var s seedFile
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return New(s.Categories, s.Experiences), nil
}

func (r *Repo) matching(f domain.ExperienceFilter) []domain.Experience {
	var out []domain.Experience
	for _, e := range r.experiences {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Repo) FindExperiences(ctx context.Context, q domain.ExperienceQuery) (domain.ExperiencePage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExperiencePage{}, err
	}
	r.mu.RLock()
	items := r.matching(q.Filter)
	r.mu.RUnlock()

	domain.SortExperiences(items, domain.OrderFor(q.Sort, q.Filter.HasText()))
	total := len(items)
	if q.Limit > 0 {
		if q.Offset < 0 {
			q.Offset = 0
		}
		if q.Offset >= len(items) {
			items = nil
		} else {
			end := q.Offset + q.Limit
			if end > len(items) {
				end = len(items)
			}
			items = items[q.Offset:end]
		}
	}
	if items == nil {
		items = []domain.Experience{}
	}
	return domain.ExperiencePage{Items: items, Total: total}, nil
}

func (r *Repo) CategoryCounts(ctx context.Context, f domain.ExperienceFilter) ([]domain.CategoryFacet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, e := range r.matching(f) {
		counts[e.CategoryID]++
	}
	out := make([]domain.CategoryFacet, 0, len(counts))
	for id, n := range counts {
		out = append(out, domain.CategoryFacet{ID: id, Name: r.categories[id].Name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repo) DurationCounts(ctx context.Context, f domain.ExperienceFilter, buckets []domain.DurationBucket) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(buckets))
	for _, e := range r.matching(f) {
		for _, b := range buckets {
			if b.Contains(e.Duration) {
				out[b.Value]++
			}
		}
	}
	return out, nil
}

func (r *Repo) PriceRange(ctx context.Context, f domain.ExperienceFilter) (domain.PriceRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pr domain.PriceRange
	for i, e := range r.matching(f) {
		if i == 0 || e.RetailPrice < pr.Min {
			pr.Min = e.RetailPrice
		}
		if e.RetailPrice > pr.Max {
			pr.Max = e.RetailPrice
		}
	}
	return pr, nil
}

func (r *Repo) SuggestTitles(ctx context.Context, q string, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lq := strings.ToLower(q)
	out := []string{}
	seen := map[string]struct{}{}
	for _, e := range r.experiences {
		if !e.IsActive || !strings.Contains(strings.ToLower(e.Title), lq) {
			continue
		}
		if _, ok := seen[e.Title]; ok {
			continue
		}
		seen[e.Title] = struct{}{}
		out = append(out, e.Title)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Repo) ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]domain.Experience, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Experience
	for _, e := range r.experiences {
		if e.IsActive && e.Coords() == nil && e.ID > afterID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) UpdateCoordinates(ctx context.Context, id string, c domain.Coords) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.experiences {
		if r.experiences[i].ID == id {
			lat, lon := c.Lat, c.Lon
			r.experiences[i].Lat, r.experiences[i].Lon = &lat, &lon
			return nil
		}
	}
	return domain.ErrNotFound
}
