package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/metrics"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/mocks"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/router"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/storage"
	"github.com/pageza/recetario/backend/internal/store/memory"
	"github.com/pageza/recetario/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "api-test-secret-api-test-secret-1234"

type testAPI struct {
	t       *testing.T
	router  *gin.Engine
	store   *memory.Store
	images  *storage.Memory
	mailer  *mocks.MockEmailService
	metrics *metrics.Collector
	// resetTokens collects the tokens handed to the mailer.
	resetTokens []string
}

type apiOption func(*api.Deps)

func withLimiter(l middleware.Limiter) apiOption {
	return func(d *api.Deps) { d.Limiter = l }
}

func withRecipes(r service.IRecipeService) apiOption {
	return func(d *api.Deps) { d.Recipes = r }
}

func withChecks(checks map[string]api.Check) apiOption {
	return func(d *api.Deps) { d.Checks = checks }
}

func setupAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	ta := &testAPI{
		t:       t,
		store:   memory.New(),
		images:  storage.NewMemory("http://images.test"),
		mailer:  new(mocks.MockEmailService),
		metrics: metrics.New("test"),
	}
	ta.mailer.On("SendWelcomeEmail", mock.Anything).Return(nil)
	ta.mailer.On("SendPasswordResetEmail", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			ta.resetTokens = append(ta.resetTokens, args.String(1))
		}).
		Return(nil)

	cat := catalog.New(ta.store, catalog.WithMetrics(ta.metrics))
	deps := api.Deps{
		Auth: service.NewAuthService(ta.store, testSecret,
			service.WithMailer(ta.mailer),
			service.WithBcryptCost(bcrypt.MinCost)),
		Recipes:     service.NewRecipeService(ta.store, ta.images, cat, 0),
		Catalog:     cat,
		Likes:       catalog.NewLikeCoordinator(ta.store, catalog.LikeAtomic, catalog.WithMetrics(ta.metrics)),
		Sessions:    session.NewMemoryRegistry(),
		LocalImages: ta.images,
		Checks: map[string]api.Check{
			"store": ta.store.Ping,
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	ta.router = router.SetupRouter(router.Options{Metrics: ta.metrics}, deps)
	return ta
}

func (ta *testAPI) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	ta.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ta.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return ta.do(req, token)
}

func (ta *testAPI) doForm(method, path, token string, recipe any, img []byte) *httptest.ResponseRecorder {
	ta.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if recipe != nil {
		b, err := json.Marshal(recipe)
		require.NoError(ta.t, err)
		require.NoError(ta.t, mw.WriteField("recipe", string(b)))
	}
	if img != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(ta.t, err)
		_, err = part.Write(img)
		require.NoError(ta.t, err)
	}
	require.NoError(ta.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ta.do(req, token)
}

// register creates an account through the API and returns its token.
func (ta *testAPI) register(email string, role model.Role) (string, *model.User) {
	ta.t.Helper()
	w := ta.doJSON(http.MethodPost, "/api/v1/auth/register", "", types.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret1",
		Role:     role,
	})
	require.Equal(ta.t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.AuthResponse
	decode(ta.t, w, &resp)
	return resp.Token, resp.User
}

func (ta *testAPI) createRecipe(token string, req types.RecipeRequest) model.Recipe {
	ta.t.Helper()
	w := ta.doForm(http.MethodPost, "/api/v1/recipes", token, req, pngImage(ta.t))
	require.Equal(ta.t, http.StatusCreated, w.Code, w.Body.String())
	var recipe model.Recipe
	decode(ta.t, w, &recipe)
	return recipe
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponse
	decode(t, w, &body)
	return body.Error
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func recipeRequest(title string, bucket model.TimeBucket, category model.Category, veg bool) types.RecipeRequest {
	return types.RecipeRequest{
		Title:       title,
		Description: "A recipe called " + title,
		Ingredients: []string{"flour", "water"},
		Steps:       []string{"mix", "cook"},
		Time:        bucket,
		Category:    category,
		Vegetarian:  veg,
	}
}

func failingCheck(context.Context) error { return context.DeadlineExceeded }
