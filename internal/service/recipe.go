package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/storage"
	"github.com/pageza/recetario/backend/internal/store"
	"github.com/pageza/recetario/backend/internal/types"
)

// RecipeService handles the recipe lifecycle: chefs create, edit and
// delete their own recipes together with their images.
type RecipeService struct {
	recipes       store.RecipeStore
	images        storage.ImageStore
	catalog       *catalog.Catalog
	maxImageBytes int64
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(recipes store.RecipeStore, images storage.ImageStore, cat *catalog.Catalog, maxImageBytes int64) *RecipeService {
	if maxImageBytes <= 0 {
		maxImageBytes = storage.DefaultMaxBytes
	}
	if cat == nil {
		cat = catalog.New(recipes)
	}
	return &RecipeService{
		recipes:       recipes,
		images:        images,
		catalog:       cat,
		maxImageBytes: maxImageBytes,
	}
}

func requireChef(sess *session.Session) error {
	if !sess.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	if !sess.IsChef() {
		return fmt.Errorf("%w: only chefs can manage recipes", apperr.ErrForbidden)
	}
	return nil
}

// Create validates the recipe and its image, uploads the image and stores
// the recipe with no likes. The image is removed again if the recipe
// cannot be stored.
func (s *RecipeService) Create(ctx context.Context, sess *session.Session, req *types.RecipeRequest, image []byte) (*model.Recipe, error) {
	if err := requireChef(sess); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{AuthorID: sess.UserID}
	req.Apply(recipe)
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, apperr.Validation("image is required")
	}
	key, contentType, err := storage.Prepare(image, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, key, image, contentType)
	if err != nil {
		return nil, err
	}
	recipe.ImageURL = url

	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		s.discardImage(ctx, url)
		return nil, apperr.Write("create recipe", err)
	}

	logrus.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": recipe.AuthorID,
	}).Info("Recipe created")
	return recipe, nil
}

// Update replaces the editable fields of a recipe owned by the caller. A
// new image replaces the old one, which is deleted once the recipe is
// stored. The like counter is never touched.
func (s *RecipeService) Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *types.RecipeRequest, image []byte) (*model.Recipe, error) {
	if err := requireChef(sess); err != nil {
		return nil, err
	}
	current, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	req.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	var key, contentType string
	if len(image) > 0 {
		if key, contentType, err = storage.Prepare(image, s.maxImageBytes); err != nil {
			return nil, err
		}
		url, err := s.images.Upload(ctx, key, image, contentType)
		if err != nil {
			return nil, err
		}
		updated.ImageURL = url
	}

	if err := s.recipes.UpdateRecipe(ctx, &updated); err != nil {
		if updated.ImageURL != current.ImageURL {
			s.discardImage(ctx, updated.ImageURL)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("update recipe: %w", apperr.ErrNotFound)
		}
		return nil, apperr.Write("update recipe", err)
	}
	if updated.ImageURL != current.ImageURL {
		s.discardImage(ctx, current.ImageURL)
	}

	logrus.WithField("recipe_id", id).Info("Recipe updated")
	return &updated, nil
}

// Delete removes a recipe owned by the caller, then its image.
func (s *RecipeService) Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if err := requireChef(sess); err != nil {
		return err
	}
	current, err := s.owned(ctx, sess, id)
	if err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete recipe: %w", apperr.ErrNotFound)
		}
		return apperr.Write("delete recipe", err)
	}
	s.discardImage(ctx, current.ImageURL)

	logrus.WithField("recipe_id", id).Info("Recipe deleted")
	return nil
}

// Get retrieves a recipe by ID
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get recipe: %w", apperr.ErrNotFound)
		}
		return nil, apperr.Query("get recipe", err)
	}
	return recipe, nil
}

// ListByAuthor lists the caller's own recipes.
func (s *RecipeService) ListByAuthor(ctx context.Context, sess *session.Session) ([]model.Recipe, error) {
	if err := requireChef(sess); err != nil {
		return nil, err
	}
	return s.catalog.ListByAuthor(ctx, sess.UserID)
}

func (s *RecipeService) owned(ctx context.Context, sess *session.Session, id uuid.UUID) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != sess.UserID {
		return nil, fmt.Errorf("%w: recipe belongs to another chef", apperr.ErrForbidden)
	}
	return recipe, nil
}

// discardImage deletes an image best-effort. Failures are logged only.
func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(context.WithoutCancel(ctx), url); err != nil {
		logrus.WithError(err).WithField("image_url", url).Warn("Failed to delete image")
	}
}
