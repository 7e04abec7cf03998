package types

import (
	"github.com/pageza/recetario/backend/internal/model"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=6"`
	Role     model.Role `json:"role" binding:"required,oneof=chef consumer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RecipeRequest carries the author-editable fields of a recipe. It is the
// "recipe" part of the multipart create and update requests.
type RecipeRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Ingredients []string         `json:"ingredients"`
	Steps       []string         `json:"steps"`
	Time        model.TimeBucket `json:"time"`
	Category    model.Category   `json:"category"`
	Vegetarian  bool             `json:"is_vegetarian"`
}

// Apply copies the request onto r.
func (req *RecipeRequest) Apply(r *model.Recipe) {
	r.Title = req.Title
	r.Description = req.Description
	r.Ingredients = model.StringList(req.Ingredients)
	r.Steps = model.StringList(req.Steps)
	r.Time = req.Time
	r.Category = req.Category
	r.Vegetarian = req.Vegetarian
}

// RecipeDetail is a recipe together with the caller's like state.
type RecipeDetail struct {
	*model.Recipe
	Liked bool `json:"liked"`
}

type RecipeListResponse struct {
	Recipes []model.Recipe `json:"recipes"`
	Count   int            `json:"count"`
}
