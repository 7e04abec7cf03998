package catalog

import (
	"unicode/utf8"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

type SortKey string

const (
	SortNone     SortKey = ""
	SortTime     SortKey = "time"
	SortCategory SortKey = "category"
)

// Criterion names the single constraint a FilterSpec compiles to.
type Criterion string

const (
	CriterionNone         Criterion = "none"
	CriterionPrefix       Criterion = "prefix"
	CriterionSortTime     Criterion = "sort_time"
	CriterionSortCategory Criterion = "sort_category"
	CriterionCategory     Criterion = "category"
	CriterionTime         Criterion = "time"
	CriterionVegetarian   Criterion = "vegetarian"
)

// FilterSpec describes the listing a screen wants. Zero values mean "not set".
type FilterSpec struct {
	TextPrefix     string           `json:"text_prefix,omitempty"`
	TimeBucket     model.TimeBucket `json:"time,omitempty"`
	Category       model.Category   `json:"category,omitempty"`
	VegetarianOnly bool             `json:"vegetarian,omitempty"`
	SortKey        SortKey          `json:"sort,omitempty"`
	Limit          int              `json:"limit,omitempty"`
}

func (f FilterSpec) Validate() error {
	if f.TimeBucket != "" && !f.TimeBucket.Valid() {
		return apperr.Validation("unknown time bucket %q", f.TimeBucket)
	}
	if f.Category != "" && !f.Category.Valid() {
		return apperr.Validation("unknown category %q", f.Category)
	}
	switch f.SortKey {
	case SortNone, SortTime, SortCategory:
	default:
		return apperr.Validation("unknown sort key %q", f.SortKey)
	}
	if f.Limit < 0 {
		return apperr.Validation("limit must not be negative")
	}
	if !utf8.ValidString(f.TextPrefix) {
		return apperr.Validation("search text is not valid UTF-8")
	}
	return nil
}

// Criterion reports which constraint takes effect. A non-empty text prefix
// wins over everything; otherwise the first set field in the order time
// sort, category sort, category, time bucket, vegetarian.
func (f FilterSpec) Criterion() Criterion {
	switch {
	case f.TextPrefix != "":
		return CriterionPrefix
	case f.SortKey == SortTime:
		return CriterionSortTime
	case f.SortKey == SortCategory:
		return CriterionSortCategory
	case f.Category != "":
		return CriterionCategory
	case f.TimeBucket != "":
		return CriterionTime
	case f.VegetarianOnly:
		return CriterionVegetarian
	}
	return CriterionNone
}

// Query compiles the spec into exactly one store request with at most one
// predicate or ordering.
func (f FilterSpec) Query() store.Query {
	q := store.Query{Limit: f.Limit}
	switch f.Criterion() {
	case CriterionPrefix:
		q.Where = &store.Condition{
			Field: store.FieldTitle,
			Op:    store.OpRange,
			Value: f.TextPrefix,
			Below: PrefixUpperBound(f.TextPrefix),
		}
	case CriterionSortTime:
		q.OrderBy = store.FieldTime
	case CriterionSortCategory:
		q.OrderBy = store.FieldCategory
	case CriterionCategory:
		q.Where = &store.Condition{Field: store.FieldCategory, Op: store.OpEqual, Value: f.Category}
	case CriterionTime:
		q.Where = &store.Condition{Field: store.FieldTime, Op: store.OpEqual, Value: f.TimeBucket}
	case CriterionVegetarian:
		q.Where = &store.Condition{Field: store.FieldVegetarian, Op: store.OpEqual, Value: true}
	}
	return q
}

// PrefixUpperBound is the exclusive upper end of the title range holding
// every string that starts with prefix. It stays valid UTF-8.
func PrefixUpperBound(prefix string) string {
	return prefix + string(utf8.MaxRune)
}
