package entities

import (
	"time"

	"github.com/google/uuid"
)

type Recipe struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Ingredients     string     `gorm:"type:text" json:"ingredients"`
	Instructions    string     `gorm:"type:text" json:"instructions"`
	PrepTimeMinutes int        `json:"prep_time_minutes"`
	CookTimeMinutes int        `json:"cook_time_minutes"`
	Servings        int        `json:"servings"`
	Difficulty      string     `json:"difficulty"` // "Easy", "Medium", "Hard"
	CuisineType     string     `json:"cuisine_type"`
	Tags            string     `gorm:"type:text" json:"tags"`
	DietaryTags     string     `gorm:"type:text" json:"dietary_tags"`
	ImageURL        string     `json:"image_url,omitempty"`
	RemixedFromID   *uuid.UUID `gorm:"type:uuid;index" json:"remixed_from_id,omitempty"`
	IsRemix         bool       `json:"is_remix"`
	LikeCount       int        `gorm:"not null;default:0" json:"like_count"`

	Author      *User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	RemixedFrom *Recipe `gorm:"foreignKey:RemixedFromID;constraint:OnDelete:SET NULL"`
	Timestamp
}

type RecipeLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_like_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_like_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

type RecipeSave struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_save_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_save_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}
