// Package catalog is the recipe catalog: the query builder that turns a
// FilterSpec into one store request, the debounced Browser that re-runs it
// as a screen's filters change, and the LikeCoordinator that keeps the
// denormalized like counter in step with the users' like ledgers.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/metrics"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

// DefaultTimeout bounds every store call made by the catalog.
const DefaultTimeout = 10 * time.Second

type settings struct {
	timeout time.Duration
	metrics *metrics.Collector
}

type Option func(*settings)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *settings) { s.metrics = m }
}

func newSettings(opts []Option) settings {
	s := settings{timeout: DefaultTimeout}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Lister is what a Browser needs from the catalog.
type Lister interface {
	List(ctx context.Context, spec FilterSpec) ([]model.Recipe, error)
}

type Catalog struct {
	recipes store.RecipeStore
	settings
}

func New(recipes store.RecipeStore, opts ...Option) *Catalog {
	return &Catalog{recipes: recipes, settings: newSettings(opts)}
}

// List runs the single query described by spec.
//
// An empty result is an empty slice and a nil error. A failed read is an
// empty slice and an error wrapping apperr.ErrQueryFailed, so callers can
// tell the two apart.
func (c *Catalog) List(ctx context.Context, spec FilterSpec) ([]model.Recipe, error) {
	if err := spec.Validate(); err != nil {
		return []model.Recipe{}, err
	}
	criterion := spec.Criterion()
	log := logrus.WithFields(logrus.Fields{
		"criterion": criterion,
		"limit":     spec.Limit,
	})

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	recipes, err := c.recipes.FindRecipes(ctx, spec.Query())
	if err != nil {
		c.metrics.ObserveQuery(string(criterion), "error", time.Since(start))
		log.WithError(err).Error("Recipe listing failed")
		return []model.Recipe{}, apperr.Query("list recipes", err)
	}
	c.metrics.ObserveQuery(string(criterion), "ok", time.Since(start))
	log.WithField("count", len(recipes)).Debug("Recipes listed")

	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, nil
}

// ListByAuthor lists the recipes written by one chef.
func (c *Catalog) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	recipes, err := c.recipes.FindRecipes(ctx, store.Query{
		Where: &store.Condition{Field: store.FieldAuthor, Op: store.OpEqual, Value: authorID},
	})
	if err != nil {
		logrus.WithError(err).WithField("author_id", authorID).Error("Author listing failed")
		return []model.Recipe{}, apperr.Query("list author recipes", err)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, nil
}
