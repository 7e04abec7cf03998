package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/mocks"
	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/store/memory"
	"github.com/pageza/recetario/backend/internal/types"
)

const testSecret = "test-secret-with-enough-length-1234"

func setupAuthTest(t *testing.T, opts ...service.AuthOption) (*service.AuthService, *memory.Store) {
	t.Helper()
	users := memory.New()
	opts = append([]service.AuthOption{service.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return service.NewAuthService(users, testSecret, opts...), users
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := setupAuthTest(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, " Chef@Example.com ", "secret1", "Carmen", model.RoleChef)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleChef, claims.Role)
	assert.NotEmpty(t, claims.SessionID)
	assert.Equal(t, types.PurposeAccess, claims.Purpose)

	loggedIn, token2, err := auth.Login(ctx, "CHEF@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims2, err := auth.ValidateToken(token2)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID, claims2.SessionID, "each login starts a new session")
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := setupAuthTest(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"bad email", "not-an-email", "secret1", model.RoleChef},
		{"short password", "a@example.com", "12345", model.RoleChef},
		{"bad role", "a@example.com", "secret1", "admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.Register(ctx, tc.email, tc.password, "x", tc.role)
			assert.ErrorIs(t, err, apperr.ErrValidationFailed)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := setupAuthTest(t)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "dup@example.com", "secret1", "", model.RoleConsumer)
	require.NoError(t, err)
	_, _, err = auth.Register(ctx, "DUP@example.com", "secret2", "", model.RoleChef)
	assert.ErrorIs(t, err, apperr.ErrUserExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth, _ := setupAuthTest(t)
	ctx := context.Background()
	_, _, err := auth.Register(ctx, "ana@example.com", "secret1", "Ana", model.RoleConsumer)
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	auth, _ := setupAuthTest(t)

	_, err := auth.ValidateToken("garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	other := service.NewAuthService(memory.New(), "another-secret-another-secret-123")
	token, err := other.GenerateToken(&model.User{ID: uuid.New(), Role: model.RoleChef}, "sid")
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	expired, _ := setupAuthTest(t, service.WithTokenTTL(time.Nanosecond, 0))
	token, err = expired.GenerateToken(&model.User{ID: uuid.New()}, "sid")
	require.NoError(t, err)
	time.Sleep(time.Second)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{UserID: uuid.New(), Purpose: types.PurposeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ValidateToken(unsigned)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestPasswordReset(t *testing.T) {
	mailer := new(mocks.MockEmailService)
	mailer.On("SendWelcomeEmail", mock.Anything).Return(nil)
	mailer.On("SendPasswordResetEmail", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	auth, _ := setupAuthTest(t, service.WithMailer(mailer))
	ctx := context.Background()
	user, _, err := auth.Register(ctx, "reset@example.com", "secret1", "Rosa", model.RoleConsumer)
	require.NoError(t, err)

	token, err := auth.RequestPasswordReset(ctx, "reset@example.com")
	require.NoError(t, err)
	mailer.AssertCalled(t, "SendPasswordResetEmail", mock.Anything, token)

	// a reset token is not an access token
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	assert.ErrorIs(t, auth.ResetPassword(ctx, token, "123"), apperr.ErrValidationFailed)
	require.NoError(t, auth.ResetPassword(ctx, token, "newsecret"))

	_, _, err = auth.Login(ctx, "reset@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	loggedIn, _, err := auth.Login(ctx, "reset@example.com", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// access tokens cannot reset passwords
	_, access, err := auth.Login(ctx, "reset@example.com", "newsecret")
	require.NoError(t, err)
	assert.ErrorIs(t, auth.ResetPassword(ctx, access, "another1"), apperr.ErrUnauthenticated)

	_, err = auth.RequestPasswordReset(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMailFailuresDoNotFailAuth(t *testing.T) {
	mailer := new(mocks.MockEmailService)
	mailer.On("SendWelcomeEmail", mock.Anything).Return(assert.AnError)
	mailer.On("SendPasswordResetEmail", mock.Anything, mock.AnythingOfType("string")).Return(assert.AnError)

	auth, _ := setupAuthTest(t, service.WithMailer(mailer))
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "smtp-down@example.com", "secret1", "Pilar", model.RoleChef)
	require.NoError(t, err)

	token, err := auth.RequestPasswordReset(ctx, "smtp-down@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	mailer.AssertExpectations(t)

	require.NoError(t, auth.ResetPassword(ctx, token, "newsecret"))
}

func TestGetUserByID(t *testing.T) {
	auth, _ := setupAuthTest(t)
	user, _, err := auth.Register(context.Background(), "id@example.com", "secret1", "", model.RoleChef)
	require.NoError(t, err)
	assert.Equal(t, "id", user.Name)

	got, err := auth.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = auth.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
