package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
	"github.com/pageza/recetario/backend/internal/store/memory"
)

var errBackend = errors.New("backend unavailable")

func newRecipe(title string, bucket model.TimeBucket, category model.Category, veg bool) *model.Recipe {
	return &model.Recipe{
		Title:       title,
		Description: "A recipe for " + title,
		Ingredients: model.StringList{"flour", "sugar"},
		Steps:       model.StringList{"mix", "bake"},
		Time:        bucket,
		Category:    category,
		Vegetarian:  veg,
		AuthorID:    uuid.New(),
	}
}

func seed(t *testing.T, recipes ...*model.Recipe) *memory.Store {
	t.Helper()
	s := memory.New()
	for _, r := range recipes {
		require.NoError(t, s.CreateRecipe(context.Background(), r))
	}
	return s
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

// brokenStore fails every call it overrides and delegates the rest.
type brokenStore struct {
	store.RecipeStore
	failFind  bool
	failWrite bool
}

func (b *brokenStore) FindRecipes(ctx context.Context, q store.Query) ([]model.Recipe, error) {
	if b.failFind {
		return nil, errBackend
	}
	return b.RecipeStore.FindRecipes(ctx, q)
}

func (b *brokenStore) AddLikes(ctx context.Context, id uuid.UUID, delta int, liked bool) (int, error) {
	if b.failWrite {
		return 0, errBackend
	}
	return b.RecipeStore.AddLikes(ctx, id, delta, liked)
}

func (b *brokenStore) SetLikes(ctx context.Context, id uuid.UUID, likes int, liked bool) error {
	if b.failWrite {
		return errBackend
	}
	return b.RecipeStore.SetLikes(ctx, id, likes, liked)
}
