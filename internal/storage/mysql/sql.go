package mysql

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"

	"eventhour/internal/domain"
)

// The mysql dialect renders ILike as LIKE, which is case-insensitive under the
// utf8mb4 *_ci collations used by the schema.
var dialect = goqu.Dialect("mysql")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string { return "%" + likeEscaper.Replace(s) + "%" }

var experienceColumns = []any{
	"e.id", "e.slug", "e.title", "e.description", "e.short_description", "e.search_keywords",
	"e.city", "e.postal_code", "e.street", "e.country", "e.latitude", "e.longitude",
	"e.retail_price", "e.tax_rate", "e.duration", "e.max_participants",
	"e.category_id", "e.partner_id", "e.popularity_score", "e.is_active", "e.created_at",
	"c.name", "c.slug", "p.company_name",
}

// baseDataset is the experiences read model joined with categories and partners.
func baseDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("experiences").As("e")).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("e.category_id")))).
		LeftJoin(goqu.T("partners").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("e.partner_id")))).
		Prepared(true)
}

// filterExpressions compiles an ExperienceFilter. is_active is always part of the WHERE clause.
func filterExpressions(f domain.ExperienceFilter) []exp.Expression {
	where := []exp.Expression{goqu.I("e.is_active").Eq(true)}

	if q := strings.TrimSpace(f.Query); q != "" {
		pat := containsPattern(q)
		where = append(where, goqu.Or(
			goqu.I("e.title").ILike(pat),
			goqu.I("e.description").ILike(pat),
			goqu.I("e.short_description").ILike(pat),
			goqu.I("e.search_keywords").ILike(pat),
		))
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, goqu.I("e.category_id").In(f.CategoryIDs))
	}
	if f.MinPrice != nil {
		where = append(where, goqu.I("e.retail_price").Gte(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, goqu.I("e.retail_price").Lte(*f.MaxPrice))
	}
	if len(f.Durations) > 0 {
		ors := make([]exp.Expression, 0, len(f.Durations))
		for _, b := range f.Durations {
			ors = append(ors, durationExpression(b))
		}
		where = append(where, goqu.Or(ors...))
	}
	if f.MinPopularity != nil {
		where = append(where, goqu.I("e.popularity_score").Gte(*f.MinPopularity))
	}
	if f.PartnerID != "" {
		where = append(where, goqu.I("e.partner_id").Eq(f.PartnerID))
	}
	return where
}

func durationExpression(b domain.DurationBucket) exp.Expression {
	lower := goqu.I("e.duration").Gte(b.Min)
	if b.Max == nil {
		return lower
	}
	return goqu.And(lower, goqu.I("e.duration").Lte(*b.Max))
}

func orderExpressions(terms []domain.OrderTerm) []exp.OrderedExpression {
	out := make([]exp.OrderedExpression, 0, len(terms))
	for _, t := range terms {
		col := goqu.I("e." + string(t.Field))
		if t.Desc {
			out = append(out, col.Desc())
		} else {
			out = append(out, col.Asc())
		}
	}
	return out
}

func selectExperiences(q domain.ExperienceQuery) *goqu.SelectDataset {
	ds := baseDataset().
		Select(experienceColumns...).
		Where(filterExpressions(q.Filter)...).
		Order(orderExpressions(domain.OrderFor(q.Sort, q.Filter.HasText()))...)
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit)).Offset(uint(q.Offset))
	}
	return ds
}

func countExperiences(f domain.ExperienceFilter) *goqu.SelectDataset {
	return baseDataset().Select(goqu.COUNT("*")).Where(filterExpressions(f)...)
}

func selectCategoryCounts(f domain.ExperienceFilter) *goqu.SelectDataset {
	return baseDataset().
		Select(goqu.I("c.id"), goqu.I("c.name"), goqu.COUNT("*").As("cnt")).
		Where(append(filterExpressions(f), goqu.I("c.id").IsNotNull())...).
		GroupBy(goqu.I("c.id"), goqu.I("c.name")).
		Order(goqu.I("c.name").Asc())
}

func selectDurationCounts(f domain.ExperienceFilter, buckets []domain.DurationBucket) *goqu.SelectDataset {
	cols := make([]any, 0, len(buckets))
	for _, b := range buckets {
		cols = append(cols, goqu.COALESCE(
			goqu.SUM(goqu.Case().When(durationExpression(b), 1).Else(0)), 0,
		).As("bucket_"+b.Value))
	}
	return baseDataset().Select(cols...).Where(filterExpressions(f)...)
}

func selectPriceRange(f domain.ExperienceFilter) *goqu.SelectDataset {
	return baseDataset().
		Select(
			goqu.COALESCE(goqu.MIN("e.retail_price"), 0).As("min_price"),
			goqu.COALESCE(goqu.MAX("e.retail_price"), 0).As("max_price"),
		).
		Where(filterExpressions(f)...)
}

func selectSuggestions(q string, limit int) *goqu.SelectDataset {
	return dialect.From(goqu.T("experiences").As("e")).
		Prepared(true).
		Select(goqu.I("e.title")).
		Distinct().
		Where(
			goqu.I("e.is_active").Eq(true),
			goqu.I("e.title").ILike(containsPattern(q)),
		).
		Limit(uint(limit))
}

func selectMissingCoordinates(afterID string, limit int) *goqu.SelectDataset {
	ds := baseDataset().
		Select(experienceColumns...).
		Where(
			goqu.I("e.is_active").Eq(true),
			goqu.Or(goqu.I("e.latitude").IsNull(), goqu.I("e.longitude").IsNull()),
			goqu.I("e.id").Gt(afterID),
		).
		Order(goqu.I("e.id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return ds
}

func updateCoordinates(id string, c domain.Coords) *goqu.UpdateDataset {
	return dialect.Update("experiences").
		Prepared(true).
		Set(goqu.Record{"latitude": c.Lat, "longitude": c.Lon}).
		Where(goqu.C("id").Eq(id))
}
