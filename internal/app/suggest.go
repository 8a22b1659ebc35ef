package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"eventhour/internal/domain"
)

const (
	minSuggestQueryLen  = 2
	defaultSuggestLimit = 10
)

// SuggestionService serves search-bar autocomplete from experience titles.
type SuggestionService struct {
	repo     domain.ExperienceRepository
	cache    domain.Cache
	cacheTTL time.Duration
	limit    int
}

func NewSuggestionService(r domain.ExperienceRepository, c domain.Cache, ttl time.Duration) *SuggestionService {
	return &SuggestionService{repo: r, cache: c, cacheTTL: ttl, limit: defaultSuggestLimit}
}

func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minSuggestQueryLen {
		return []string{}, nil
	}

	key := fmt.Sprintf("suggest:%d:%s", s.limit, strings.ToLower(q))
	if s.cache != nil {
		var cached []string
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("suggestion cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	titles, err := s.repo.SuggestTitles(ctx, q, s.limit)
	if err != nil {
		return nil, domain.NewQueryError("suggest titles", err)
	}
	titles = distinct(titles, s.limit)

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, titles, int(s.cacheTTL.Seconds()))
	}
	return titles, nil
}

func distinct(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
