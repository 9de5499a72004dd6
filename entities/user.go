package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `gorm:"type:text" json:"bio,omitempty"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID"`
	Timestamp
}

type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_follower_followee"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_follower_followee"`
	CreatedAt  time.Time `gorm:"type:timestamp" json:"created_at"`

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followee *User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
}
