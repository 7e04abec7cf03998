// Package storetest is a conformance suite every store.Store implementation
// runs from its own tests.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"RecipeCRUD", testRecipeCRUD},
		{"UpdateKeepsLikes", testUpdateKeepsLikes},
		{"FindEquality", testFindEquality},
		{"FindTitleRange", testFindTitleRange},
		{"FindOrdering", testFindOrdering},
		{"FindLimit", testFindLimit},
		{"Likes", testLikes},
		{"ConcurrentAddLikes", testConcurrentAddLikes},
		{"Users", testUsers},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func chef(t *testing.T, s store.Store) uuid.UUID {
	t.Helper()
	u := &model.User{
		Name:         "Chef",
		Email:        uuid.NewString()[:8] + "@kitchen.test",
		PasswordHash: "x",
		Role:         model.RoleChef,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u.ID
}

func recipe(author uuid.UUID, title string, bucket model.TimeBucket, cat model.Category, veg bool) *model.Recipe {
	return &model.Recipe{
		Title:       title,
		Description: title + " description",
		Ingredients: model.StringList{"salt"},
		Steps:       model.StringList{"cook"},
		Time:        bucket,
		Category:    cat,
		Vegetarian:  veg,
		AuthorID:    author,
	}
}

func create(t *testing.T, s store.Store, recipes ...*model.Recipe) {
	t.Helper()
	for _, r := range recipes {
		require.NoError(t, s.CreateRecipe(context.Background(), r))
	}
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func testRecipeCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := chef(t, s)
	r := recipe(author, "Tortilla", model.TimeOver15, model.CategoryMainCourse, true)
	create(t, s, r)
	require.NotEqual(t, uuid.Nil, r.ID)

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tortilla", got.Title)
	assert.Equal(t, model.StringList{"salt"}, got.Ingredients)
	assert.Equal(t, model.TimeOver15, got.Time)
	assert.Equal(t, author, got.AuthorID)

	_, err = s.GetRecipe(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID))
	_, err = s.GetRecipe(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteRecipe(ctx, r.ID), store.ErrNotFound)
}

func testUpdateKeepsLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := recipe(chef(t, s), "Pisto", model.TimeOver15, model.CategoryMainCourse, true)
	create(t, s, r)
	_, err := s.AddLikes(ctx, r.ID, 3, true)
	require.NoError(t, err)

	edit := *r
	edit.Title = "Pisto manchego"
	edit.Time = model.TimeUnder15
	edit.Likes = 0
	require.NoError(t, s.UpdateRecipe(ctx, &edit))

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pisto manchego", got.Title)
	assert.Equal(t, model.TimeUnder15, got.Time)
	assert.Equal(t, 3, got.Likes)

	missing := *r
	missing.ID = uuid.New()
	assert.ErrorIs(t, s.UpdateRecipe(ctx, &missing), store.ErrNotFound)
}

func testFindEquality(t *testing.T, s store.Store) {
	ctx := context.Background()
	a, b := chef(t, s), chef(t, s)
	create(t, s,
		recipe(a, "Flan", model.TimeOver15, model.CategoryDessert, true),
		recipe(a, "Croquetas", model.TimeExactly15, model.CategoryStarter, false),
		recipe(b, "Churros", model.TimeUnder15, model.CategoryDessert, true),
	)

	cases := []struct {
		cond store.Condition
		want []string
	}{
		{store.Condition{Field: store.FieldCategory, Op: store.OpEqual, Value: model.CategoryDessert}, []string{"Flan", "Churros"}},
		{store.Condition{Field: store.FieldTime, Op: store.OpEqual, Value: model.TimeExactly15}, []string{"Croquetas"}},
		{store.Condition{Field: store.FieldVegetarian, Op: store.OpEqual, Value: true}, []string{"Flan", "Churros"}},
		{store.Condition{Field: store.FieldAuthor, Op: store.OpEqual, Value: b}, []string{"Churros"}},
		{store.Condition{Field: store.FieldTitle, Op: store.OpEqual, Value: "Flan"}, []string{"Flan"}},
	}
	for _, tc := range cases {
		cond := tc.cond
		got, err := s.FindRecipes(ctx, store.Query{Where: &cond})
		require.NoError(t, err)
		assert.ElementsMatch(t, tc.want, titles(got), "%s %v", cond.Field, cond.Value)
	}

	got, err := s.FindRecipes(ctx, store.Query{Where: &store.Condition{Field: store.FieldCategory, Op: store.OpEqual, Value: model.CategoryMainCourse}})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testFindTitleRange(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := chef(t, s)
	create(t, s,
		recipe(a, "Chocolate Cake", model.TimeOver15, model.CategoryDessert, true),
		recipe(a, "Apple Pie", model.TimeOver15, model.CategoryDessert, true),
		recipe(a, "Choco Bites", model.TimeUnder15, model.CategoryDessert, true),
		recipe(a, "Chorizo", model.TimeUnder15, model.CategoryStarter, false),
	)

	got, err := s.FindRecipes(ctx, store.Query{Where: &store.Condition{
		Field: store.FieldTitle,
		Op:    store.OpRange,
		Value: "Choc",
		Below: "Choc" + string(rune(0x10ffff)),
	}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Bites"}, titles(got))

	// an open range keeps everything from the bound on
	got, err = s.FindRecipes(ctx, store.Query{Where: &store.Condition{Field: store.FieldTitle, Op: store.OpRange, Value: "Choc"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Bites", "Chorizo"}, titles(got))
}

func testFindOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := chef(t, s)
	create(t, s,
		recipe(a, "Cocido", model.TimeOver15, model.CategoryMainCourse, false),
		recipe(a, "Tostada", model.TimeUnder15, model.CategoryStarter, true),
		recipe(a, "Tortilla", model.TimeExactly15, model.CategoryMainCourse, true),
		recipe(a, "Natillas", model.TimeOver15, model.CategoryDessert, true),
	)

	got, err := s.FindRecipes(ctx, store.Query{OrderBy: store.FieldTime})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Tostada", "Tortilla"}, titles(got)[:2])
	assert.ElementsMatch(t, []string{"Cocido", "Natillas"}, titles(got)[2:])

	got, err = s.FindRecipes(ctx, store.Query{OrderBy: store.FieldCategory})
	require.NoError(t, err)
	cats := make([]model.Category, len(got))
	for i, r := range got {
		cats[i] = r.Category
	}
	assert.Equal(t, []model.Category{model.CategoryDessert, model.CategoryMainCourse, model.CategoryMainCourse, model.CategoryStarter}, cats)

	again, err := s.FindRecipes(ctx, store.Query{OrderBy: store.FieldCategory})
	require.NoError(t, err)
	assert.Equal(t, titles(got), titles(again))
}

func testFindLimit(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := chef(t, s)
	for _, title := range []string{"A", "B", "C", "D"} {
		create(t, s, recipe(a, title, model.TimeUnder15, model.CategoryStarter, true))
	}
	got, err := s.FindRecipes(ctx, store.Query{OrderBy: store.FieldTitle, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(got))

	got, err = s.FindRecipes(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func testLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := recipe(chef(t, s), "Gazpacho", model.TimeUnder15, model.CategoryStarter, true)
	create(t, s, r)

	n, err := s.AddLikes(ctx, r.ID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.AddLikes(ctx, r.ID, -5, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.SetLikes(ctx, r.ID, 9, true))
	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Likes)
	assert.True(t, got.LikedByUser)

	_, err = s.AddLikes(ctx, uuid.New(), 1, true)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.SetLikes(ctx, uuid.New(), 1, true), store.ErrNotFound)
}

func testConcurrentAddLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := recipe(chef(t, s), "Salmorejo", model.TimeUnder15, model.CategoryStarter, true)
	create(t, s, r)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddLikes(ctx, r.ID, 1, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Likes)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := &model.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h1", Role: model.RoleConsumer}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEqual(t, uuid.Nil, u.ID)

	dup := &model.User{Name: "Ana 2", Email: "ana@example.com", PasswordHash: "h2", Role: model.RoleChef}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrConflict)

	got, err := s.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleConsumer, got.Role)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.UpdatePassword(ctx, u.ID, "h3"))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)

	_, err = s.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePassword(ctx, uuid.New(), "x"), store.ErrNotFound)
}
