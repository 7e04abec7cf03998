// Package store defines the document store the catalog runs against.
//
// A Query carries at most one predicate over a single field, one ascending
// ordering and a result limit. Implementations must not combine anything
// beyond that, so every backend sees the same request shape.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/model"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document conflicts with an existing one")
)

// Field names a queryable recipe attribute.
type Field string

const (
	FieldTitle      Field = "title"
	FieldTime       Field = "time"
	FieldCategory   Field = "category"
	FieldVegetarian Field = "vegetarian"
	FieldAuthor     Field = "author"
)

type Op string

const (
	// OpEqual matches documents whose field equals Value.
	OpEqual Op = "=="
	// OpRange matches Value <= field, and field < Below when Below is set.
	OpRange Op = "range"
)

// Condition is the single predicate of a Query.
type Condition struct {
	Field Field
	Op    Op
	Value any
	Below any
}

type Query struct {
	Where   *Condition
	OrderBy Field
	Limit   int
}

// RecipeStore is the recipe collection.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	// UpdateRecipe writes the author-editable fields. The like counter is untouched.
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	FindRecipes(ctx context.Context, q Query) ([]model.Recipe, error)
	// SetLikes overwrites the counter and the liked marker.
	SetLikes(ctx context.Context, id uuid.UUID, likes int, likedByUser bool) error
	// AddLikes applies delta to the counter in one store-side step, floored
	// at zero, and returns the resulting value.
	AddLikes(ctx context.Context, id uuid.UUID, delta int, likedByUser bool) (int, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// Store bundles both collections.
type Store interface {
	RecipeStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
