// Package memory is an in-process document store. Documents keep their
// insertion order, which is the default order of unsorted queries.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]*model.Recipe
	order   []uuid.UUID
	users   map[uuid.UUID]*model.User
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		recipes: make(map[uuid.UUID]*model.Recipe),
		users:   make(map[uuid.UUID]*model.User),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	now := time.Now()
	recipe.CreatedAt, recipe.UpdatedAt = now, now
	recipe.Prepare()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[recipe.ID]; ok {
		return store.ErrConflict
	}
	s.recipes[recipe.ID] = cloneRecipe(recipe)
	s.order = append(s.order, recipe.ID)

	logrus.WithField("recipe_id", recipe.ID).Debug("Recipe stored in memory")
	return nil
}

func (s *Store) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (s *Store) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recipes[recipe.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := cloneRecipe(recipe)
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now()
	next.AuthorID = cur.AuthorID
	next.Likes = cur.Likes
	next.LikedByUser = cur.LikedByUser
	next.Prepare()
	s.recipes[recipe.ID] = next
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.recipes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) FindRecipes(ctx context.Context, q store.Query) ([]model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Where != nil {
		if err := checkCondition(q.Where); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	out := make([]model.Recipe, 0, len(s.order))
	for _, id := range s.order {
		r := s.recipes[id]
		if q.Where != nil && !matches(r, q.Where) {
			continue
		}
		out = append(out, *cloneRecipe(r))
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return less(&out[i], &out[j], q.OrderBy)
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) SetLikes(ctx context.Context, id uuid.UUID, likes int, likedByUser bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Likes = likes
	r.LikedByUser = likedByUser
	return nil
}

func (s *Store) AddLikes(ctx context.Context, id uuid.UUID, delta int, likedByUser bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	r.Likes += delta
	if r.Likes < 0 {
		r.Likes = 0
	}
	r.LikedByUser = likedByUser
	return r.Likes, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

func checkCondition(c *store.Condition) error {
	switch c.Op {
	case store.OpEqual:
	case store.OpRange:
		if c.Field != store.FieldTitle {
			return fmt.Errorf("range queries are only supported on %s, got %s", store.FieldTitle, c.Field)
		}
	default:
		return fmt.Errorf("unsupported operator %q", c.Op)
	}
	return nil
}

func matches(r *model.Recipe, c *store.Condition) bool {
	v := fieldValue(r, c.Field)
	switch c.Op {
	case store.OpEqual:
		return v == operand(c.Value)
	case store.OpRange:
		if v < operand(c.Value) {
			return false
		}
		return c.Below == nil || v < operand(c.Below)
	}
	return false
}

func fieldValue(r *model.Recipe, f store.Field) string {
	switch f {
	case store.FieldTitle:
		return r.Title
	case store.FieldTime:
		return string(r.Time)
	case store.FieldCategory:
		return string(r.Category)
	case store.FieldVegetarian:
		return strconv.FormatBool(r.Vegetarian)
	case store.FieldAuthor:
		return r.AuthorID.String()
	}
	return ""
}

func operand(v any) string {
	return fmt.Sprint(v)
}

func less(a, b *model.Recipe, f store.Field) bool {
	if f == store.FieldTime {
		return a.TimeRank < b.TimeRank
	}
	return fieldValue(a, f) < fieldValue(b, f)
}

func cloneRecipe(r *model.Recipe) *model.Recipe {
	c := *r
	c.Ingredients = append(model.StringList(nil), r.Ingredients...)
	c.Steps = append(model.StringList(nil), r.Steps...)
	return &c
}
