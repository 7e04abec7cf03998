package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store/memory"
)

func TestApplyCommands(t *testing.T) {
	b := catalog.NewBrowser(catalog.New(memory.New()), catalog.WithDebounce(time.Hour))
	defer b.Close()

	assert.True(t, apply(b, ":time under15"))
	assert.True(t, apply(b, ":category Dessert"))
	assert.True(t, apply(b, ":veg on"))
	assert.True(t, apply(b, ":sort category"))
	assert.True(t, apply(b, ":limit 5"))
	assert.True(t, apply(b, ":limit five"))
	assert.True(t, apply(b, "Cho"))

	spec := b.Snapshot().Spec
	assert.Equal(t, catalog.FilterSpec{
		TextPrefix:     "Cho",
		TimeBucket:     model.TimeUnder15,
		Category:       model.CategoryDessert,
		VegetarianOnly: true,
		SortKey:        catalog.SortCategory,
		Limit:          5,
	}, spec)

	assert.True(t, apply(b, ":time -"))
	assert.Equal(t, model.TimeBucket(""), b.Snapshot().Spec.TimeBucket)

	assert.True(t, apply(b, ":reset"))
	assert.Equal(t, catalog.FilterSpec{}, b.Snapshot().Spec)

	assert.False(t, apply(b, ":quit"))
}

func TestRenderedBrowserLists(t *testing.T) {
	st := memory.New()
	r := &model.Recipe{Title: "Gazpacho", Time: model.TimeUnder15, Category: model.CategoryStarter, Vegetarian: true}
	assert.NoError(t, st.CreateRecipe(context.Background(), r))

	done := make(chan catalog.Snapshot, 1)
	b := catalog.NewBrowser(catalog.New(st), catalog.OnUpdate(func(s catalog.Snapshot) {
		render(s)
		done <- s
	}))
	defer b.Close()

	b.Refresh()
	select {
	case s := <-done:
		assert.Len(t, s.Results, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no listing")
	}
}
