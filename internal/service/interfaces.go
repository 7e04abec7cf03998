package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password, name string, role model.Role) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, sess *session.Session, req *types.RecipeRequest, image []byte) (*model.Recipe, error)
	Update(ctx context.Context, sess *session.Session, id uuid.UUID, req *types.RecipeRequest, image []byte) (*model.Recipe, error)
	Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListByAuthor(ctx context.Context, sess *session.Session) ([]model.Recipe, error)
}

// IEmailService defines the interface for email operations
type IEmailService interface {
	SendEmail(to, subject, body string) error
	SendPasswordResetEmail(user *model.User, token string) error
	SendWelcomeEmail(user *model.User) error
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IRecipeService = (*RecipeService)(nil)
	_ IEmailService  = (*EmailService)(nil)
)
