package user

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"omnom/domain"
	"omnom/entities"
	"omnom/internal/utils/mailing"
	"omnom/internal/utils/storage"
	"omnom/pkg/jwt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest, userID string) error
		UploadAvatar(ctx context.Context, req domain.UploadAvatarRequest, userID string) (string, error)
		GetProfile(ctx context.Context, targetID string, viewerID string) (domain.ProfileResponse, error)
		Follow(ctx context.Context, followerID, followeeID string) error
		Unfollow(ctx context.Context, followerID, followeeID string) error
		GetFollowers(ctx context.Context, userID string, page, limit int) (domain.FollowListResponse, error)
		GetFollowing(ctx context.Context, userID string, page, limit int) (domain.FollowListResponse, error)
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, domain.ErrSomethingWentWrong
	}

	user := &entities.User{
		ID:          uuid.New(),
		Email:       req.Email,
		Password:    string(hashed),
		DisplayName: req.DisplayName,
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RegisterResponse{}, domain.ErrEmailAlreadyRegistered
		}
		log.Errorf("register user: %v", err)
		return domain.RegisterResponse{}, domain.ErrSomethingWentWrong
	}

	return domain.RegisterResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		log.Errorf("login: %v", err)
		return domain.LoginResponse{}, domain.ErrSomethingWentWrong
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser)

	return domain.LoginResponse{
		Token: token,
		User:  toUserResponse(user, true),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		log.Errorf("get current user: %v", err)
		return domain.UserResponse{}, domain.ErrSomethingWentWrong
	}
	return toUserResponse(user, true), nil
}

func (s *userService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		log.Errorf("update profile: %v", err)
		return domain.ErrSomethingWentWrong
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		log.Errorf("update profile: %v", err)
		return domain.ErrSomethingWentWrong
	}
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, req domain.UploadAvatarRequest, userID string) (string, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		log.Errorf("upload avatar: %v", err)
		return "", domain.ErrSomethingWentWrong
	}

	objectKey := fmt.Sprintf("avatars/%s%s", user.ID.String(), filepath.Ext(req.Avatar.Filename))
	url, err := s.s3.UploadFile(ctx, storage.BucketAvatar, objectKey, req.Avatar)
	if err != nil {
		return "", err
	}

	if user.AvatarURL != "" && user.AvatarURL != url {
		if oldKey := s.s3.GetObjectKeyFromLink(user.AvatarURL); oldKey != "" {
			_ = s.s3.DeleteFile(ctx, storage.BucketAvatar, oldKey)
		}
	}

	user.AvatarURL = url
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		log.Errorf("upload avatar: %v", err)
		return "", domain.ErrSomethingWentWrong
	}
	return url, nil
}

func (s *userService) GetProfile(ctx context.Context, targetID string, viewerID string) (domain.ProfileResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProfileResponse{}, domain.ErrUserNotFound
		}
		log.Errorf("get profile: %v", err)
		return domain.ProfileResponse{}, domain.ErrSomethingWentWrong
	}

	recipeCount, err := s.userRepository.CountRecipes(ctx, targetID)
	if err != nil {
		log.Errorf("get profile: %v", err)
		return domain.ProfileResponse{}, domain.ErrSomethingWentWrong
	}
	followerCount, err := s.userRepository.CountFollowers(ctx, targetID)
	if err != nil {
		log.Errorf("get profile: %v", err)
		return domain.ProfileResponse{}, domain.ErrSomethingWentWrong
	}
	followingCount, err := s.userRepository.CountFollowing(ctx, targetID)
	if err != nil {
		log.Errorf("get profile: %v", err)
		return domain.ProfileResponse{}, domain.ErrSomethingWentWrong
	}

	isFollowing := false
	if viewerID != "" && viewerID != targetID {
		isFollowing, _ = s.userRepository.IsFollowing(ctx, viewerID, targetID)
	}

	return domain.ProfileResponse{
		UserResponse:   toUserResponse(user, false),
		RecipeCount:    recipeCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
	}, nil
}

func (s *userService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}

	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return domain.ErrParseUUID
	}
	followeeUUID, err := uuid.Parse(followeeID)
	if err != nil {
		return domain.ErrParseUUID
	}

	if _, err := s.userRepository.GetUserByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		log.Errorf("follow: %v", err)
		return domain.ErrSomethingWentWrong
	}

	follow := &entities.Follow{
		ID:         uuid.New(),
		FollowerID: followerUUID,
		FolloweeID: followeeUUID,
		CreatedAt:  time.Now(),
	}

	// The unique (follower, followee) index is the source of truth; a
	// duplicate insert means the edge already exists.
	if err := s.userRepository.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyFollows
		}
		log.Errorf("follow: %v", err)
		return domain.ErrSomethingWentWrong
	}
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	rows, err := s.userRepository.DeleteFollow(ctx, followerID, followeeID)
	if err != nil {
		log.Errorf("unfollow: %v", err)
		return domain.ErrSomethingWentWrong
	}
	if rows == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (s *userService) GetFollowers(ctx context.Context, userID string, page, limit int) (domain.FollowListResponse, error) {
	users, count, err := s.userRepository.GetFollowers(ctx, userID, page, limit)
	if err != nil {
		log.Errorf("get followers: %v", err)
		return domain.FollowListResponse{}, domain.ErrSomethingWentWrong
	}
	return toFollowListResponse(users, count, page, limit), nil
}

func (s *userService) GetFollowing(ctx context.Context, userID string, page, limit int) (domain.FollowListResponse, error) {
	users, count, err := s.userRepository.GetFollowing(ctx, userID, page, limit)
	if err != nil {
		log.Errorf("get following: %v", err)
		return domain.FollowListResponse{}, domain.ErrSomethingWentWrong
	}
	return toFollowListResponse(users, count, page, limit), nil
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the address is registered.
			return nil
		}
		log.Errorf("forgot password: %v", err)
		return domain.ErrSomethingWentWrong
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(
		map[string]any{"user_id": user.ID.String()},
		15*time.Minute,
	)
	if err != nil {
		log.Errorf("forgot password: %v", err)
		return domain.ErrSomethingWentWrong
	}

	if err := mailing.SendResetPasswordEmail(user.Email, user.DisplayName, token); err != nil {
		log.Errorf("forgot password: %v", err)
		return domain.ErrSomethingWentWrong
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		log.Errorf("reset password: %v", err)
		return domain.ErrSomethingWentWrong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrSomethingWentWrong
	}
	user.Password = string(hashed)

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		log.Errorf("reset password: %v", err)
		return domain.ErrSomethingWentWrong
	}
	return nil
}

func toUserResponse(user *entities.User, includeEmail bool) domain.UserResponse {
	res := domain.UserResponse{
		ID:          user.ID.String(),
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt,
	}
	if includeEmail {
		res.Email = user.Email
	}
	return res
}

func toFollowListResponse(users []*entities.User, count int64, page, limit int) domain.FollowListResponse {
	result := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u, false))
	}
	return domain.FollowListResponse{
		Users: result,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      count,
			TotalPages: (count + int64(limit) - 1) / int64(limit),
		},
	}
}
