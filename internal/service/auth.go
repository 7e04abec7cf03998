package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
	"github.com/pageza/recetario/backend/internal/types"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const (
	DefaultTokenTTL = 24 * time.Hour
	DefaultResetTTL = 30 * time.Minute
)

type AuthService struct {
	users     store.UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	resetTTL  time.Duration
	mailer    IEmailService
	cost      int
}

type AuthOption func(*AuthService)

func WithTokenTTL(access, reset time.Duration) AuthOption {
	return func(s *AuthService) {
		if access > 0 {
			s.tokenTTL = access
		}
		if reset > 0 {
			s.resetTTL = reset
		}
	}
}

// WithMailer sends welcome and password reset mail through m.
func WithMailer(m IEmailService) AuthOption {
	return func(s *AuthService) { s.mailer = m }
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(users store.UserStore, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  DefaultTokenTTL,
		resetTTL:  DefaultResetTTL,
		cost:      bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if err := model.Validator().Var(email, "required,email"); err != nil {
		return apperr.Validation("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role model.Role) (*model.User, string, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}
	if !role.Valid() {
		return nil, "", apperr.Validation("role must be chef or consumer")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, "", apperr.ErrUserExists
		}
		return nil, "", apperr.Write("create user", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User registered")

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send welcome email")
		}
	}

	token, err := s.GenerateToken(user, uuid.NewString())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and starts a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", apperr.Query("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user, uuid.NewString())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken signs an access token for user in the given session.
func (s *AuthService) GenerateToken(user *model.User, sessionID string) (string, error) {
	return s.sign(&types.TokenClaims{
		UserID:    user.ID,
		Role:      user.Role,
		SessionID: sessionID,
		Purpose:   types.PurposeAccess,
	}, s.tokenTTL)
}

func (s *AuthService) sign(claims *types.TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString, purpose string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthenticated)
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: token is not valid for %s", apperr.ErrUnauthenticated, purpose)
	}
	return claims, nil
}

// ValidateToken accepts access tokens only.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	return s.parse(tokenString, types.PurposeAccess)
}

// RequestPasswordReset issues a short-lived reset token for the account
// behind email and mails it when a mailer is configured. A mail failure is
// logged and the token is still returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("reset password: %w", apperr.ErrNotFound)
		}
		return "", apperr.Query("find user", err)
	}

	token, err := s.sign(&types.TokenClaims{UserID: user.ID, Purpose: types.PurposeReset}, s.resetTTL)
	if err != nil {
		return "", err
	}
	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(user, token); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send password reset email")
		}
	}
	logrus.WithField("user_id", user.ID).Info("Password reset requested")
	return token, nil
}

// ResetPassword sets a new password using a token from RequestPasswordReset.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	claims, err := s.parse(token, types.PurposeReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, claims.UserID, string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reset password: %w", apperr.ErrNotFound)
		}
		return apperr.Write("update password", err)
	}
	logrus.WithField("user_id", claims.UserID).Info("Password reset")
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get user: %w", apperr.ErrNotFound)
		}
		return nil, apperr.Query("get user", err)
	}
	return user, nil
}
