// Package gormstore implements the document store on a relational
// database through gorm. PostgreSQL is used in production and SQLite in
// tests and local runs.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/model"
	"github.com/pageza/recetario/backend/internal/store"
)

// columns maps queryable fields to their column names.
var columns = map[store.Field]string{
	store.FieldTitle:      "title",
	store.FieldTime:       "time_bucket",
	store.FieldCategory:   "category",
	store.FieldVegetarian: "vegetarian",
	store.FieldAuthor:     "author_id",
}

// orderColumns differ from columns where the stored value does not sort
// meaningfully.
var orderColumns = map[store.Field]string{
	store.FieldTitle:      "title",
	store.FieldTime:       "time_rank",
	store.FieldCategory:   "category",
	store.FieldVegetarian: "vegetarian",
	store.FieldAuthor:     "author_id",
}

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return translate(err)
	}
	logrus.WithField("recipe_id", recipe.ID).Debug("Recipe created")
	return nil
}

func (s *Store) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

func (s *Store) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipe.Prepare()
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&model.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]interface{}{
			"title":       recipe.Title,
			"description": recipe.Description,
			"ingredients": recipe.Ingredients,
			"steps":       recipe.Steps,
			"time_bucket": recipe.Time,
			"time_rank":   recipe.TimeRank,
			"category":    recipe.Category,
			"vegetarian":  recipe.Vegetarian,
			"image_url":   recipe.ImageURL,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindRecipes(ctx context.Context, q store.Query) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{})

	if c := q.Where; c != nil {
		col, ok := columns[c.Field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", c.Field)
		}
		switch c.Op {
		case store.OpEqual:
			query = query.Where(col+" = ?", operand(c.Value))
		case store.OpRange:
			query = query.Where(col+" >= ?", operand(c.Value))
			if c.Below != nil {
				query = query.Where(col+" < ?", operand(c.Below))
			}
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
	}

	if q.OrderBy != "" {
		col, ok := orderColumns[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("unknown order field %q", q.OrderBy)
		}
		// id breaks ties so repeated queries return the same order
		query = query.Order(col + " ASC").Order("id ASC")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, translate(err)
	}
	return recipes, nil
}

func (s *Store) SetLikes(ctx context.Context, id uuid.UUID, likes int, likedByUser bool) error {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&model.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"likes":         likes,
			"liked_by_user": likedByUser,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddLikes(ctx context.Context, id uuid.UUID, delta int, likedByUser bool) (int, error) {
	var likes int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&model.Recipe{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"likes":         gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta),
				"liked_by_user": likedByUser,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Model(&model.Recipe{}).Where("id = ?", id).Select("likes").Scan(&likes).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return likes, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// operand converts domain values to driver friendly ones.
func operand(v any) any {
	switch t := v.(type) {
	case model.TimeBucket:
		return string(t)
	case model.Category:
		return string(t)
	case uuid.UUID:
		return t.String()
	}
	return v
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrConflict
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrConflict, pqErr.Constraint)
	}
	return err
}
