package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessToggleLike  = "like toggled successfully"
	MessageSuccessToggleSave  = "save toggled successfully"
	MessageSuccessGetSaved    = "success get saved recipes"
	MessageSuccessAddComment  = "comment added successfully"
	MessageSuccessDelComment  = "comment deleted successfully"
	MessageSuccessGetComments = "success get comments"
	MessageSuccessFollow      = "followed successfully"
	MessageSuccessUnfollow    = "unfollowed successfully"
	MessageSuccessGetFollows  = "success get follow list"

	MessageFailedToggleLike  = "failed to toggle like"
	MessageFailedToggleSave  = "failed to toggle save"
	MessageFailedGetSaved    = "failed to get saved recipes"
	MessageFailedAddComment  = "failed to add comment"
	MessageFailedDelComment  = "failed to delete comment"
	MessageFailedGetComments = "failed to get comments"
	MessageFailedFollow      = "failed to follow user"
	MessageFailedUnfollow    = "failed to unfollow user"
	MessageFailedGetFollows  = "failed to get follow list"

	ErrCommentNotFound = errors.New("comment not found")
	ErrSelfFollow      = errors.New("you cannot follow yourself")
	ErrAlreadyFollows  = errors.New("already following this user")
	ErrNotFollowing    = errors.New("not following this user")
)

type (
	ToggleResponse struct {
		RecipeID  string `json:"recipe_id"`
		Active    bool   `json:"active"`
		LikeCount int    `json:"like_count,omitempty"`
	}

	AddCommentRequest struct {
		Content string `json:"content" validate:"required,max=1000"`
	}

	CommentResponse struct {
		ID        string        `json:"id"`
		Content   string        `json:"content"`
		Author    *UserResponse `json:"author,omitempty"`
		CreatedAt time.Time     `json:"created_at"`
	}

	CommentListResponse struct {
		Comments   []CommentResponse `json:"comments"`
		Pagination Pagination        `json:"pagination"`
	}

	FollowListResponse struct {
		Users      []UserResponse `json:"users"`
		Pagination Pagination     `json:"pagination"`
	}
)
