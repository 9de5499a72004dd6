package user

import (
	"context"
	"time"

	"omnom/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		UpdateUser(ctx context.Context, user *entities.User) error
		CountRecipes(ctx context.Context, userID string) (int64, error)

		// Follow edges
		CreateFollow(ctx context.Context, follow *entities.Follow) error
		DeleteFollow(ctx context.Context, followerID, followeeID string) (int64, error)
		IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
		GetFollowers(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
		GetFollowing(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
		CountFollowers(ctx context.Context, userID string) (int64, error)
		CountFollowing(ctx context.Context, userID string) (int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) CountRecipes(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) CreateFollow(ctx context.Context, follow *entities.Follow) error {
	if follow.ID == uuid.Nil {
		follow.ID = uuid.New()
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(follow).Error
}

// DeleteFollow reports the number of rows removed so the caller can tell a
// real unfollow apart from deleting an edge that never existed.
func (r *userRepository) DeleteFollow(ctx context.Context, followerID, followeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&entities.Follow{})
	return res.RowsAffected, res.Error
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Joins("JOIN follows ON users.id = follows.follower_id").
		Where("follows.followee_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON users.id = follows.follower_id").
		Where("follows.followee_id = ?", userID).
		Offset(offset).
		Limit(limit).
		Order("follows.created_at desc").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) GetFollowing(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Joins("JOIN follows ON users.id = follows.followee_id").
		Where("follows.follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON users.id = follows.followee_id").
		Where("follows.follower_id = ?", userID).
		Offset(offset).
		Limit(limit).
		Order("follows.created_at desc").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *userRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
