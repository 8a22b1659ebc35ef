package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"

	"eventhour/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperience(rs rowScanner) (domain.Experience, error) {
	var e domain.Experience
	var (
		desc, short, keywords, street sql.NullString
		city, postal, country         sql.NullString
		lat, lon                      sql.NullFloat64
		maxPart                       sql.NullInt64
		catName, catSlug, partnerName sql.NullString
	)
	if err := rs.Scan(
		&e.ID, &e.Slug, &e.Title, &desc, &short, &keywords,
		&city, &postal, &street, &country, &lat, &lon,
		&e.RetailPrice, &e.TaxRate, &e.Duration, &maxPart,
		&e.CategoryID, &e.PartnerID, &e.PopularityScore, &e.IsActive, &e.CreatedAt,
		&catName, &catSlug, &partnerName,
	); err != nil {
		return domain.Experience{}, err
	}

	e.Description, e.ShortDescription, e.SearchKeywords = desc.String, short.String, keywords.String
	e.City, e.PostalCode, e.Street, e.Country = city.String, postal.String, street.String, country.String
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		e.Lat, e.Lon = &la, &lo
	}
	if maxPart.Valid {
		m := int(maxPart.Int64)
		e.MaxParticipants = &m
	}
	if catName.Valid {
		e.Category = &domain.Category{ID: e.CategoryID, Name: catName.String, Slug: catSlug.String}
	}
	if partnerName.Valid {
		e.Partner = &domain.Partner{ID: e.PartnerID, CompanyName: partnerName.String}
	}
	return e, nil
}

func (r *Repo) queryExperiences(ctx context.Context, ds *goqu.SelectDataset) ([]domain.Experience, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build experiences query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) FindExperiences(ctx context.Context, q domain.ExperienceQuery) (domain.ExperiencePage, error) {
	countSQL, countArgs, err := countExperiences(q.Filter).ToSQL()
	if err != nil {
		return domain.ExperiencePage{}, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.ExperiencePage{}, fmt.Errorf("count experiences: %w", err)
	}

	items := []domain.Experience{}
	if total > 0 && (q.Limit == 0 || q.Offset < total) {
		items, err = r.queryExperiences(ctx, selectExperiences(q))
		if err != nil {
			return domain.ExperiencePage{}, fmt.Errorf("select experiences: %w", err)
		}
	}

	log.Debug().
		Int("total", total).
		Int("returned", len(items)).
		Str("sort", string(q.Sort)).
		Msg("experiences query")
	return domain.ExperiencePage{Items: items, Total: total}, nil
}

func (r *Repo) CategoryCounts(ctx context.Context, f domain.ExperienceFilter) ([]domain.CategoryFacet, error) {
	query, args, err := selectCategoryCounts(f).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build category counts: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CategoryFacet{}
	for rows.Next() {
		var cf domain.CategoryFacet
		if err := rows.Scan(&cf.ID, &cf.Name, &cf.Count); err != nil {
			return nil, err
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func (r *Repo) DurationCounts(ctx context.Context, f domain.ExperienceFilter, buckets []domain.DurationBucket) (map[string]int, error) {
	query, args, err := selectDurationCounts(f, buckets).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build duration counts: %w", err)
	}
	counts := make([]int, len(buckets))
	dest := make([]any, len(buckets))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(buckets))
	for i, b := range buckets {
		out[b.Value] = counts[i]
	}
	return out, nil
}

func (r *Repo) PriceRange(ctx context.Context, f domain.ExperienceFilter) (domain.PriceRange, error) {
	query, args, err := selectPriceRange(f).ToSQL()
	if err != nil {
		return domain.PriceRange{}, fmt.Errorf("build price range: %w", err)
	}
	var pr domain.PriceRange
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&pr.Min, &pr.Max); err != nil {
		return domain.PriceRange{}, err
	}
	return pr, nil
}

func (r *Repo) SuggestTitles(ctx context.Context, q string, limit int) ([]string, error) {
	query, args, err := selectSuggestions(q, limit).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build suggestions: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]domain.Experience, error) {
	return r.queryExperiences(ctx, selectMissingCoordinates(afterID, limit))
}

func (r *Repo) UpdateCoordinates(ctx context.Context, id string, c domain.Coords) error {
	query, args, err := updateCoordinates(id, c).ToSQL()
	if err != nil {
		return fmt.Errorf("build coordinates update: %w", err)
	}
	// RowsAffected counts changed rows only, so an unchanged row is not reported as missing.
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
