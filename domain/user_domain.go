package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGetMe          = "success get current user"
	MessageSuccessUpdateProfile  = "profile updated successfully"
	MessageSuccessUploadAvatar   = "avatar uploaded successfully"
	MessageSuccessGetProfile     = "success get profile"
	MessageSuccessForgotPassword = "password reset email sent"
	MessageSuccessResetPassword  = "password reset successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetMe          = "failed to get current user"
	MessageFailedUpdateProfile  = "failed to update profile"
	MessageFailedUploadAvatar   = "failed to upload avatar"
	MessageFailedGetProfile     = "failed to get profile"
	MessageFailedForgotPassword = "failed to send password reset email"
	MessageFailedResetPassword  = "failed to reset password"

	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrCredentialsInvalid     = errors.New("invalid email or password")
	ErrUserNotFound           = errors.New("user not found")
)

type (
	RegisterRequest struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8"`
		DisplayName string `json:"display_name" validate:"required"`
	}

	RegisterResponse struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UserResponse struct {
		ID          string    `json:"id"`
		Email       string    `json:"email,omitempty"`
		DisplayName string    `json:"display_name"`
		AvatarURL   string    `json:"avatar_url,omitempty"`
		Bio         string    `json:"bio,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	UpdateProfileRequest struct {
		DisplayName string `json:"display_name" validate:"omitempty"`
		Bio         string `json:"bio" validate:"omitempty,max=500"`
	}

	UploadAvatarRequest struct {
		Avatar *multipart.FileHeader `json:"avatar" form:"avatar" validate:"required"`
	}

	ProfileResponse struct {
		UserResponse
		RecipeCount    int64 `json:"recipe_count"`
		FollowerCount  int64 `json:"follower_count"`
		FollowingCount int64 `json:"following_count"`
		IsFollowing    bool  `json:"is_following,omitempty"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
)
