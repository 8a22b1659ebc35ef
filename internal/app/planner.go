package app

import (
	"context"
	"strings"

	"eventhour/internal/domain"
)

// popularityPerStar converts a 0-5 star rating to the 0-100 popularity scale.
const popularityPerStar = 20

// QueryPlanner turns a SearchRequest into a store query and runs it.
type QueryPlanner struct {
	repo domain.ExperienceRepository
}

func NewQueryPlanner(r domain.ExperienceRepository) *QueryPlanner {
	return &QueryPlanner{repo: r}
}

func (p *QueryPlanner) Filter(req domain.SearchRequest) domain.ExperienceFilter {
	f := domain.ExperienceFilter{
		Query:       strings.TrimSpace(req.Query),
		CategoryIDs: req.CategoryIDs,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		PartnerID:   req.PartnerID,
	}
	for _, d := range req.Durations {
		if b, ok := domain.LookupDurationBucket(d); ok {
			f.Durations = append(f.Durations, b)
		}
	}
	if req.MinRating != nil {
		minPop := *req.MinRating * popularityPerStar
		f.MinPopularity = &minPop
	}
	return f
}

// Plan builds the query. With paginate false the whole filtered set is requested.
func (p *QueryPlanner) Plan(req domain.SearchRequest, paginate bool) (domain.ExperienceQuery, error) {
	if err := req.Validate(); err != nil {
		return domain.ExperienceQuery{}, err
	}
	q := domain.ExperienceQuery{Filter: p.Filter(req), Sort: req.Sort}
	if q.Sort == "" {
		q.Sort = domain.SortRelevance
	}
	if paginate {
		q.Offset = (req.Page - 1) * req.Limit
		q.Limit = req.Limit
	}
	return q, nil
}

func (p *QueryPlanner) Candidates(ctx context.Context, req domain.SearchRequest, paginate bool) (domain.ExperiencePage, error) {
	q, err := p.Plan(req, paginate)
	if err != nil {
		return domain.ExperiencePage{}, err
	}
	page, err := p.repo.FindExperiences(ctx, q)
	if err != nil {
		return domain.ExperiencePage{}, domain.NewQueryError("find experiences", err)
	}
	return page, nil
}
