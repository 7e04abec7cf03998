// Package session carries the caller's identity and like ledger explicitly
// through handlers. Nothing here is global.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/model"
)

// LikeState is the client-side like membership of one user on one recipe.
type LikeState string

const (
	Unknown LikeState = ""
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

// Resolve maps Unknown onto Unliked, the state of a recipe never touched.
func (s LikeState) Resolve() LikeState {
	if s == Liked {
		return Liked
	}
	return Unliked
}

// StateOf returns the state for a liked flag.
func StateOf(liked bool) LikeState {
	if liked {
		return Liked
	}
	return Unliked
}

// Entry is a ledger record. Pending is set between an optimistic flip and the
// store's confirmation.
type Entry struct {
	State   LikeState
	Pending bool
}

// Ledger holds like entries keyed by recipe and user.
type Ledger interface {
	Get(ctx context.Context, recipeID, userID uuid.UUID) (Entry, error)
	Put(ctx context.Context, recipeID, userID uuid.UUID, e Entry) error
	// CompareAndPut stores next only if the current entry equals old and
	// reports whether it did. A missing entry equals the zero Entry.
	CompareAndPut(ctx context.Context, recipeID, userID uuid.UUID, old, next Entry) (bool, error)
}

// Registry hands out the ledger belonging to a session id.
type Registry interface {
	Ledger(sessionID string) Ledger
}

type Session struct {
	ID     string
	UserID uuid.UUID
	Role   model.Role
	Ledger Ledger
}

// New builds a session. A nil ledger gets a fresh in-memory one.
func New(id string, userID uuid.UUID, role model.Role, ledger Ledger) *Session {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	return &Session{ID: id, UserID: userID, Role: role, Ledger: ledger}
}

// Anonymous is a session without a user. Operations that need identity reject it.
func Anonymous() *Session {
	return New("", uuid.Nil, "", nil)
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

func (s *Session) IsChef() bool {
	return s.Authenticated() && s.Role == model.RoleChef
}
