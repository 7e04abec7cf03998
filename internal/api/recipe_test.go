package api_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/mocks"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/types"
)

func titlesOf(resp types.RecipeListResponse) []string {
	out := make([]string, 0, len(resp.Recipes))
	for _, r := range resp.Recipes {
		out = append(out, r.Title)
	}
	return out
}

func seedCatalog(t *testing.T, ta *testAPI) (chefToken, consumerToken string) {
	t.Helper()
	chefToken, _ = ta.register("chef@example.com", model.RoleChef)
	consumerToken, _ = ta.register("eater@example.com", model.RoleConsumer)

	ta.createRecipe(chefToken, recipeRequest("Chocolate Cake", model.TimeOver15, model.CategoryDessert, true))
	ta.createRecipe(chefToken, recipeRequest("Gazpacho", model.TimeUnder15, model.CategoryStarter, true))
	ta.createRecipe(chefToken, recipeRequest("Choco Mousse", model.TimeUnder15, model.CategoryDessert, true))
	ta.createRecipe(chefToken, recipeRequest("Paella", model.TimeExactly15, model.CategoryMainCourse, false))
	return chefToken, consumerToken
}

func TestListRecipes(t *testing.T) {
	ta := setupAPI(t)
	_, token := seedCatalog(t, ta)

	list := func(query string) types.RecipeListResponse {
		t.Helper()
		w := ta.doJSON(http.MethodGet, "/api/v1/recipes"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp types.RecipeListResponse
		decode(t, w, &resp)
		assert.Equal(t, len(resp.Recipes), resp.Count)
		return resp
	}

	assert.Len(t, list("").Recipes, 4)
	assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Mousse"}, titlesOf(list("?q=Choc")))
	assert.ElementsMatch(t, []string{"Chocolate Cake", "Choco Mousse"}, titlesOf(list("?q=Choc&category=Starter&vegetarian=false")))
	assert.ElementsMatch(t, []string{"Gazpacho", "Choco Mousse"}, titlesOf(list("?time=under15")))
	assert.NotContains(t, titlesOf(list("?vegetarian=true")), "Paella")
	assert.Len(t, list("?vegetarian=true").Recipes, 3)
	assert.Len(t, list("?vegetarian=false").Recipes, 4, "false means no vegetarian constraint")
	assert.Len(t, list("?limit=2").Recipes, 2)

	bySort := titlesOf(list("?sort=time&category=Starter"))
	require.Len(t, bySort, 4, "time sort wins over the category filter")
	assert.Equal(t, "Chocolate Cake", bySort[3])

	for _, query := range []string{"?time=forever", "?category=Soup", "?sort=likes", "?limit=x", "?limit=-1", "?vegetarian=maybe"} {
		w := ta.doJSON(http.MethodGet, "/api/v1/recipes"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}

	w := ta.doJSON(http.MethodGet, "/api/v1/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	ta := setupAPI(t)
	chef, consumer := seedCatalog(t, ta)

	w := ta.doForm(http.MethodPost, "/api/v1/recipes", consumer,
		recipeRequest("Tortilla", model.TimeOver15, model.CategoryMainCourse, true), pngImage(t))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ta.doForm(http.MethodPost, "/api/v1/recipes", chef,
		recipeRequest("Tortilla", model.TimeOver15, model.CategoryMainCourse, true), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "an image is required")

	w = ta.doForm(http.MethodPost, "/api/v1/recipes", chef, nil, pngImage(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	recipe := ta.createRecipe(chef, recipeRequest("Tortilla", model.TimeOver15, model.CategoryMainCourse, true))
	assert.True(t, ta.images.Has(recipe.ImageURL))
	assert.Equal(t, 0, recipe.Likes)

	w = ta.doJSON(http.MethodGet, "/api/v1/recipes/mine", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine types.RecipeListResponse
	decode(t, w, &mine)
	assert.Equal(t, 5, mine.Count)

	w = ta.doJSON(http.MethodGet, "/api/v1/recipes/mine", consumer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	path := "/api/v1/recipes/" + recipe.ID.String()
	edit := recipeRequest("Tortilla de patatas", model.TimeOver15, model.CategoryMainCourse, true)
	w = ta.doForm(http.MethodPut, path, consumer, edit, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ta.doForm(http.MethodPut, path, chef, edit, pngImage(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.Recipe
	decode(t, w, &updated)
	assert.Equal(t, "Tortilla de patatas", updated.Title)
	assert.NotEqual(t, recipe.ImageURL, updated.ImageURL)
	assert.False(t, ta.images.Has(recipe.ImageURL))

	w = ta.doJSON(http.MethodDelete, path, chef, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, ta.images.Has(updated.ImageURL))

	w = ta.doJSON(http.MethodGet, path, chef, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ta.doJSON(http.MethodGet, "/api/v1/recipes/not-a-uuid", chef, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeRoundTrip(t *testing.T) {
	ta := setupAPI(t)
	chef, consumer := seedCatalog(t, ta)
	recipe := ta.createRecipe(chef, recipeRequest("Flan", model.TimeOver15, model.CategoryDessert, true))
	path := "/api/v1/recipes/" + recipe.ID.String()

	detail := func() types.RecipeDetail {
		t.Helper()
		w := ta.doJSON(http.MethodGet, path, consumer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var d types.RecipeDetail
		decode(t, w, &d)
		return d
	}
	toggle := func() catalog.LikeResult {
		t.Helper()
		w := ta.doJSON(http.MethodPost, path+"/like", consumer, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res catalog.LikeResult
		decode(t, w, &res)
		return res
	}

	d := detail()
	assert.False(t, d.Liked)
	assert.Equal(t, 0, d.Likes)

	res := toggle()
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Likes)
	assert.True(t, detail().Liked)

	res = toggle()
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.Likes)
	assert.False(t, detail().Liked)

	w := ta.doJSON(http.MethodPost, "/api/v1/recipes/"+uuid.NewString()+"/like", consumer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ta.doJSON(http.MethodPost, path+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLikeRateLimit(t *testing.T) {
	ta := setupAPI(t, withLimiter(middleware.NewMemoryLimiter(middleware.RateLimitConfig{
		Window:    time.Hour,
		Limit:     5,
		KeyPrefix: "test",
	})))
	chef, consumer := seedCatalog(t, ta)
	recipe := ta.createRecipe(chef, recipeRequest("Flan", model.TimeOver15, model.CategoryDessert, true))
	path := "/api/v1/recipes/" + recipe.ID.String() + "/like"

	for i := 0; i < 5; i++ {
		w := ta.doJSON(http.MethodPost, path, consumer, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := ta.doJSON(http.MethodPost, path, consumer, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = ta.doJSON(http.MethodPost, path, chef, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "the chef spent the allowance seeding recipes")
}

func TestWriteFailureIsBadGateway(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.Write("create recipe", fmt.Errorf("connection reset")))
	ta := setupAPI(t, withRecipes(recipes))
	chef, _ := ta.register("chef@example.com", model.RoleChef)

	w := ta.doForm(http.MethodPost, "/api/v1/recipes", chef,
		recipeRequest("Tortilla", model.TimeOver15, model.CategoryMainCourse, true), pngImage(t))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, errorOf(t, w), "write failed")
	recipes.AssertExpectations(t)
}

func TestServeLocalImage(t *testing.T) {
	ta := setupAPI(t)
	chef, _ := seedCatalog(t, ta)
	recipe := ta.createRecipe(chef, recipeRequest("Tortilla", model.TimeOver15, model.CategoryMainCourse, true))

	path := strings.TrimPrefix(recipe.ImageURL, "http://images.test")
	require.True(t, strings.HasPrefix(path, "/images/"), recipe.ImageURL)

	w := ta.doJSON(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngImage(t), w.Body.Bytes())

	w = ta.doJSON(http.MethodGet, "/images/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ta := setupAPI(t)
	type health struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	w := ta.doJSON(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var up health
	decode(t, w, &up)
	assert.Equal(t, "ok", up.Status)
	assert.Equal(t, "up", up.Checks["store"])

	w = ta.doJSON(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")

	down := setupAPI(t, withChecks(map[string]api.Check{"redis": failingCheck}))
	w = down.doJSON(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var degraded health
	decode(t, w, &degraded)
	assert.Equal(t, "degraded", degraded.Status)
	assert.Equal(t, "down", degraded.Checks["redis"])
}
