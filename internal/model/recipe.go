package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList is an ordered list of strings stored as a JSON text column
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}

	return json.Unmarshal(bytes, a)
}

// TimeBucket is the coarse preparation time of a recipe.
type TimeBucket string

const (
	TimeUnder15   TimeBucket = "under15"
	TimeExactly15 TimeBucket = "exactly15"
	TimeOver15    TimeBucket = "over15"
)

// Rank orders buckets by duration. Unknown buckets rank 0.
func (b TimeBucket) Rank() int {
	switch b {
	case TimeUnder15:
		return 1
	case TimeExactly15:
		return 2
	case TimeOver15:
		return 3
	}
	return 0
}

func (b TimeBucket) Valid() bool { return b.Rank() > 0 }

// Category is the course a recipe belongs to.
type Category string

const (
	CategoryDessert    Category = "Dessert"
	CategoryStarter    Category = "Starter"
	CategoryMainCourse Category = "MainCourse"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDessert, CategoryStarter, CategoryMainCourse:
		return true
	}
	return false
}

// Recipe is a document of the "recipes" collection.
//
// Likes is a denormalized counter of the users currently liking the recipe.
// It is only changed through the like coordinator and never by edits.
type Recipe struct {
	ID          uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `gorm:"size:50;not null;index" json:"title" validate:"required,max=50"`
	Description string     `gorm:"size:250;not null" json:"description" validate:"required,max=250"`
	Ingredients StringList `gorm:"type:text;not null" json:"ingredients" validate:"required,min=1,max=20,dive,required,max=50"`
	Steps       StringList `gorm:"type:text;not null" json:"steps" validate:"required,min=1,max=20,dive,required,max=150"`
	Time        TimeBucket `gorm:"column:time_bucket;size:16;not null;index" json:"time" validate:"required,oneof=under15 exactly15 over15"`
	TimeRank    int        `gorm:"not null;default:0;index" json:"-"`
	Category    Category   `gorm:"size:16;not null;index" json:"category" validate:"required,oneof=Dessert Starter MainCourse"`
	Vegetarian  bool       `gorm:"not null;default:false;index" json:"is_vegetarian"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	AuthorID    uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"chef_id"`
	Likes       int        `gorm:"column:likes;not null;default:0" json:"like"`
	LikedByUser bool       `gorm:"not null;default:false" json:"liked_by_user"`
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return "recipes"
}

// BeforeCreate assigns the document identifier.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the hidden time rank in step with the bucket.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.Prepare()
	return nil
}

// Prepare fills derived fields. Stores that bypass gorm hooks call it directly.
func (r *Recipe) Prepare() {
	r.TimeRank = r.Time.Rank()
}
