package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	catalog       *catalog.Catalog
	likes         *catalog.LikeCoordinator
	maxImageBytes int64
}

func NewRecipeHandler(recipes service.IRecipeService, cat *catalog.Catalog, likes *catalog.LikeCoordinator, maxImageBytes int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		catalog:       cat,
		likes:         likes,
		maxImageBytes: maxImageBytes,
	}
}

// RegisterRoutes mounts the recipe routes. limit guards the routes that
// write: recipe creation and like toggles.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/mine", h.ListMine)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", limit, h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/like", limit, h.ToggleLike)
	}
}

// filterFromQuery reads a FilterSpec from q, time, category, vegetarian,
// sort and limit.
func filterFromQuery(c *gin.Context) (catalog.FilterSpec, error) {
	spec := catalog.FilterSpec{
		TextPrefix: c.Query("q"),
		TimeBucket: model.TimeBucket(c.Query("time")),
		Category:   model.Category(c.Query("category")),
		SortKey:    catalog.SortKey(c.Query("sort")),
	}
	if v := c.Query("vegetarian"); v != "" {
		veg, err := strconv.ParseBool(v)
		if err != nil {
			return spec, apperr.Validation("vegetarian must be a boolean")
		}
		spec.VegetarianOnly = veg
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return spec, apperr.Validation("limit must be an integer")
		}
		spec.Limit = limit
	}
	return spec, nil
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	spec, err := filterFromQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipes, err := h.catalog.List(c.Request.Context(), spec)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: recipes, Count: len(recipes)})
}

func (h *RecipeHandler) ListMine(c *gin.Context) {
	recipes, err := h.recipes.ListByAuthor(c.Request.Context(), middleware.Session(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: recipes, Count: len(recipes)})
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperr.Validation("invalid recipe id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

// GetRecipe returns the recipe with the caller's resolved like state.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	state, err := h.likes.State(c.Request.Context(), middleware.Session(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeDetail{Recipe: recipe, Liked: state == session.Liked})
}

// readRecipeForm reads the "recipe" JSON part and the optional "image" file.
func (h *RecipeHandler) readRecipeForm(c *gin.Context) (*types.RecipeRequest, []byte, error) {
	raw := c.PostForm("recipe")
	if strings.TrimSpace(raw) == "" {
		return nil, nil, apperr.Validation("recipe part is required")
	}
	var req types.RecipeRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, nil, apperr.Validation("invalid recipe part: %v", err)
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return &req, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.Validation("invalid image part: %v", err)
	}
	if header.Size > h.maxImageBytes {
		return nil, nil, apperr.Validation("image exceeds %d bytes", h.maxImageBytes)
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, apperr.Validation("unreadable image: %v", err)
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return nil, nil, apperr.Validation("unreadable image: %v", err)
	}
	return &req, image, nil
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, image, err := h.readRecipeForm(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.Session(c), req, image)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	req, image, err := h.readRecipeForm(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), middleware.Session(c), id, req, image)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), middleware.Session(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	result, err := h.likes.Toggle(c.Request.Context(), middleware.Session(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
