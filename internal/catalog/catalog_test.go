package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/metrics"
	"github.com/pageza/recetario/backend/internal/model"
)

func TestListByTimeBucketKeepsDefaultOrder(t *testing.T) {
	s := seed(t,
		newRecipe("Salad", model.TimeUnder15, model.CategoryStarter, true),
		newRecipe("Roast", model.TimeOver15, model.CategoryMainCourse, false),
		newRecipe("Toast", model.TimeUnder15, model.CategoryStarter, true),
	)
	c := catalog.New(s)

	got, err := c.List(context.Background(), catalog.FilterSpec{TimeBucket: model.TimeUnder15})
	require.NoError(t, err)
	assert.Equal(t, []string{"Salad", "Toast"}, titles(got))
}

func TestListByTextPrefix(t *testing.T) {
	s := seed(t,
		newRecipe("Chocolate Cake", model.TimeOver15, model.CategoryDessert, true),
		newRecipe("Apple Pie", model.TimeOver15, model.CategoryDessert, true),
		newRecipe("Choco Bites", model.TimeUnder15, model.CategoryDessert, true),
	)
	c := catalog.New(s)

	got, err := c.List(context.Background(), catalog.FilterSpec{
		TextPrefix: "Choc",
		// ignored once a prefix is set
		Category: model.CategoryMainCourse,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Bites"}, titles(got))
}

func TestListSortByTime(t *testing.T) {
	s := seed(t,
		newRecipe("Stew", model.TimeOver15, model.CategoryMainCourse, false),
		newRecipe("Omelette", model.TimeExactly15, model.CategoryMainCourse, true),
		newRecipe("Toast", model.TimeUnder15, model.CategoryStarter, true),
	)
	c := catalog.New(s)

	got, err := c.List(context.Background(), catalog.FilterSpec{SortKey: catalog.SortTime})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toast", "Omelette", "Stew"}, titles(got))

	got, err = c.List(context.Background(), catalog.FilterSpec{SortKey: catalog.SortCategory, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Stew", "Omelette"}, titles(got))
}

func TestListIsIdempotent(t *testing.T) {
	s := seed(t,
		newRecipe("Brownie", model.TimeOver15, model.CategoryDessert, true),
		newRecipe("Soup", model.TimeOver15, model.CategoryStarter, true),
		newRecipe("Steak", model.TimeUnder15, model.CategoryMainCourse, false),
	)
	c := catalog.New(s)
	spec := catalog.FilterSpec{VegetarianOnly: true}

	first, err := c.List(context.Background(), spec)
	require.NoError(t, err)
	second, err := c.List(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestListDistinguishesEmptyFromFailure(t *testing.T) {
	c := catalog.New(seed(t))
	got, err := c.List(context.Background(), catalog.FilterSpec{Category: model.CategoryDessert})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	broken := &brokenStore{RecipeStore: seed(t), failFind: true}
	m := metrics.New("test")
	c = catalog.New(broken, catalog.WithMetrics(m))
	got, err = c.List(context.Background(), catalog.FilterSpec{Category: model.CategoryDessert})
	assert.ErrorIs(t, err, apperr.ErrQueryFailed)
	assert.ErrorIs(t, err, errBackend)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogQueries.WithLabelValues("category", "error")))
}

func TestListRejectsInvalidSpecBeforeQuerying(t *testing.T) {
	broken := &brokenStore{RecipeStore: seed(t), failFind: true}
	c := catalog.New(broken)

	_, err := c.List(context.Background(), catalog.FilterSpec{Category: "Soup"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.NotErrorIs(t, err, apperr.ErrQueryFailed)
}

func TestListByAuthor(t *testing.T) {
	mine := newRecipe("Flan", model.TimeOver15, model.CategoryDessert, true)
	chef := uuid.New()
	mine.AuthorID = chef
	s := seed(t, mine, newRecipe("Tacos", model.TimeOver15, model.CategoryMainCourse, false))

	got, err := catalog.New(s).ListByAuthor(context.Background(), chef)
	require.NoError(t, err)
	assert.Equal(t, []string{"Flan"}, titles(got))
}
