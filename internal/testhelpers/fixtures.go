package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

// TestPassword is the plain password of every user built by CreateTestUser.
const TestPassword = "testpassword123"

// CreateTestUser stores a user with a unique email and TestPassword.
func CreateTestUser(t *testing.T, users store.UserStore, role model.Role) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	id := uuid.New()
	user := &model.User{
		ID:           id,
		Name:         "Test User",
		Email:        fmt.Sprintf("testuser+%s@example.com", id.String()[:8]),
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, users.CreateUser(context.Background(), user))
	return user
}

// NewTestRecipe returns a valid, unsaved recipe.
func NewTestRecipe(authorID uuid.UUID, title string) *model.Recipe {
	return &model.Recipe{
		Title:       title,
		Description: "A test recipe",
		Ingredients: model.StringList{"ingredient1", "ingredient2"},
		Steps:       model.StringList{"step1", "step2"},
		Time:        model.TimeUnder15,
		Category:    model.CategoryMainCourse,
		AuthorID:    authorID,
	}
}

// CreateTestRecipe stores a valid recipe written by authorID.
func CreateTestRecipe(t *testing.T, recipes store.RecipeStore, authorID uuid.UUID, title string) *model.Recipe {
	t.Helper()
	recipe := NewTestRecipe(authorID, title)
	require.NoError(t, recipes.CreateRecipe(context.Background(), recipe))
	return recipe
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
