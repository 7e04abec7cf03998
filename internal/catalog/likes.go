package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/store"
)

// LikeMode selects how the counter is written.
type LikeMode string

const (
	// LikeAtomic applies the change as one store-side increment. Concurrent
	// toggles from different users never lose updates.
	LikeAtomic LikeMode = "atomic"
	// LikeReadModifyWrite reads the counter, computes the new value and
	// writes it back. The read and the write are separate requests, so two
	// concurrent toggles on the same recipe can both read the same value and
	// one increment is lost. Accepted as best effort.
	LikeReadModifyWrite LikeMode = "read-modify-write"
)

func ParseLikeMode(s string) (LikeMode, error) {
	switch LikeMode(s) {
	case LikeAtomic, LikeReadModifyWrite:
		return LikeMode(s), nil
	case "":
		return LikeAtomic, nil
	}
	return "", fmt.Errorf("unknown like mode %q", s)
}

// LikeResult is the confirmed state after a toggle.
type LikeResult struct {
	RecipeID uuid.UUID `json:"recipe_id"`
	Liked    bool      `json:"liked"`
	Likes    int       `json:"like"`
}

type LikeCoordinator struct {
	recipes store.RecipeStore
	mode    LikeMode
	settings
}

func NewLikeCoordinator(recipes store.RecipeStore, mode LikeMode, opts ...Option) *LikeCoordinator {
	if mode == "" {
		mode = LikeAtomic
	}
	return &LikeCoordinator{recipes: recipes, mode: mode, settings: newSettings(opts)}
}

func (lc *LikeCoordinator) Mode() LikeMode { return lc.mode }

// Toggle flips the caller's like on a recipe.
//
// The ledger entry is flipped first and marked pending, then the counter is
// written. On success the entry is confirmed; on failure it is rolled back
// to its previous state. While an entry is pending, further toggles of the
// same recipe in the session fail with apperr.ErrConflict and write nothing.
// A session without a user fails with apperr.ErrUnauthenticated before
// touching the ledger or the store.
func (lc *LikeCoordinator) Toggle(ctx context.Context, sess *session.Session, recipeID uuid.UUID) (LikeResult, error) {
	if !sess.Authenticated() {
		lc.metrics.ObserveLike(string(lc.mode), "unauthenticated")
		return LikeResult{}, apperr.ErrUnauthenticated
	}
	log := logrus.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"user_id":   sess.UserID,
		"mode":      lc.mode,
	})

	entry, err := sess.Ledger.Get(ctx, recipeID, sess.UserID)
	if err != nil {
		return LikeResult{}, apperr.Query("read like ledger", err)
	}
	if entry.Pending {
		lc.metrics.ObserveLike(string(lc.mode), "conflict")
		return LikeResult{}, fmt.Errorf("toggle like: %w", apperr.ErrConflict)
	}
	likedBefore := entry.State == session.Liked
	prior := session.Entry{State: entry.State.Resolve()}

	// optimistic flip, only from the state just read
	next := session.Entry{State: session.StateOf(!likedBefore), Pending: true}
	ok, err := sess.Ledger.CompareAndPut(ctx, recipeID, sess.UserID, entry, next)
	if err != nil {
		return LikeResult{}, apperr.Write("write like ledger", err)
	}
	if !ok {
		lc.metrics.ObserveLike(string(lc.mode), "conflict")
		return LikeResult{}, fmt.Errorf("toggle like: %w", apperr.ErrConflict)
	}

	wctx, cancel := context.WithTimeout(ctx, lc.timeout)
	likes, err := lc.apply(wctx, recipeID, likedBefore)
	cancel()
	if err != nil {
		// the caller's context may be gone; the rollback still has to land
		if rerr := sess.Ledger.Put(context.WithoutCancel(ctx), recipeID, sess.UserID, prior); rerr != nil {
			log.WithError(rerr).Error("Failed to roll back like ledger")
		}
		lc.metrics.ObserveLike(string(lc.mode), "error")
		log.WithError(err).Warn("Like toggle failed, ledger rolled back")
		return LikeResult{}, err
	}

	next.Pending = false
	if err := sess.Ledger.Put(context.WithoutCancel(ctx), recipeID, sess.UserID, next); err != nil {
		log.WithError(err).Error("Failed to confirm like ledger entry")
	}
	lc.metrics.ObserveLike(string(lc.mode), "ok")
	log.WithField("likes", likes).Debug("Like toggled")

	return LikeResult{RecipeID: recipeID, Liked: !likedBefore, Likes: likes}, nil
}

func (lc *LikeCoordinator) apply(ctx context.Context, recipeID uuid.UUID, likedBefore bool) (int, error) {
	delta := 1
	if likedBefore {
		delta = -1
	}

	if lc.mode == LikeAtomic {
		likes, err := lc.recipes.AddLikes(ctx, recipeID, delta, !likedBefore)
		if err != nil {
			return 0, writeErr("increment likes", err)
		}
		return likes, nil
	}

	recipe, err := lc.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("read likes: %w", apperr.ErrNotFound)
		}
		return 0, apperr.Query("read likes", err)
	}
	likes := recipe.Likes + delta
	if likes < 0 {
		likes = 0
	}
	if err := lc.recipes.SetLikes(ctx, recipeID, likes, !likedBefore); err != nil {
		return 0, writeErr("write likes", err)
	}
	return likes, nil
}

// State returns the caller's like state on a recipe, resolving Unknown to
// Unliked and recording it on first load.
func (lc *LikeCoordinator) State(ctx context.Context, sess *session.Session, recipeID uuid.UUID) (session.LikeState, error) {
	if !sess.Authenticated() {
		return session.Unknown, apperr.ErrUnauthenticated
	}
	entry, err := sess.Ledger.Get(ctx, recipeID, sess.UserID)
	if err != nil {
		return session.Unknown, apperr.Query("read like ledger", err)
	}
	if entry.State != session.Unknown {
		return entry.State, nil
	}
	resolved := session.Entry{State: entry.State.Resolve()}
	if err := sess.Ledger.Put(ctx, recipeID, sess.UserID, resolved); err != nil {
		return session.Unknown, apperr.Write("write like ledger", err)
	}
	return resolved.State, nil
}

func writeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return apperr.Write(op, err)
}
