package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessUploadImage     = "recipe image uploaded successfully"
	MessageSuccessRecountLikes    = "like count recalculated successfully"

	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedUploadImage     = "failed to upload recipe image"
	MessageFailedRecountLikes    = "failed to recalculate like count"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("you do not have permission to modify this recipe")
	ErrRemixSourceNotFound      = errors.New("remix source recipe not found")
)

type (
	CreateRecipeRequest struct {
		Title           string   `json:"title" validate:"required,max=200"`
		Description     string   `json:"description" validate:"omitempty,max=2000"`
		Ingredients     []string `json:"ingredients" validate:"required,min=1,dive,required"`
		Instructions    []string `json:"instructions" validate:"required,min=1,dive,required"`
		PrepTimeMinutes int      `json:"prep_time_minutes" validate:"min=0"`
		CookTimeMinutes int      `json:"cook_time_minutes" validate:"min=0"`
		Servings        int      `json:"servings" validate:"omitempty,min=1"`
		Difficulty      string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
		CuisineType     string   `json:"cuisine_type" validate:"omitempty"`
		Tags            []string `json:"tags" validate:"omitempty"`
		DietaryTags     []string `json:"dietary_tags" validate:"omitempty"`
		RemixedFromID   string   `json:"remixed_from_id" validate:"omitempty,uuid"`
	}

	UpdateRecipeRequest struct {
		Title           string   `json:"title" validate:"omitempty,max=200"`
		Description     string   `json:"description" validate:"omitempty,max=2000"`
		Ingredients     []string `json:"ingredients" validate:"omitempty,min=1,dive,required"`
		Instructions    []string `json:"instructions" validate:"omitempty,min=1,dive,required"`
		PrepTimeMinutes *int     `json:"prep_time_minutes" validate:"omitempty,min=0"`
		CookTimeMinutes *int     `json:"cook_time_minutes" validate:"omitempty,min=0"`
		Servings        *int     `json:"servings" validate:"omitempty,min=1"`
		Difficulty      string   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
		CuisineType     string   `json:"cuisine_type" validate:"omitempty"`
		Tags            []string `json:"tags" validate:"omitempty"`
		DietaryTags     []string `json:"dietary_tags" validate:"omitempty"`
	}

	UploadRecipeImageRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	// ExploreRequest carries the feed filters. Search matches title and
	// description; Ingredients keeps only recipes mentioning every term.
	ExploreRequest struct {
		Search          string
		CuisineType     string
		Difficulty      string
		DietaryTag      string
		MaxTotalMinutes int
		Ingredients     []string
		Page            int
		Limit           int
	}

	RecipeResponse struct {
		ID              string        `json:"id"`
		Title           string        `json:"title"`
		Description     string        `json:"description"`
		ImageURL        string        `json:"image_url,omitempty"`
		PrepTimeMinutes int           `json:"prep_time_minutes"`
		CookTimeMinutes int           `json:"cook_time_minutes"`
		Servings        int           `json:"servings"`
		Difficulty      string        `json:"difficulty"`
		CuisineType     string        `json:"cuisine_type"`
		Tags            []string      `json:"tags,omitempty"`
		DietaryTags     []string      `json:"dietary_tags,omitempty"`
		LikeCount       int           `json:"like_count"`
		IsRemix         bool          `json:"is_remix"`
		RemixedFromID   string        `json:"remixed_from_id,omitempty"`
		Author          *UserResponse `json:"author,omitempty"`
		IsLiked         bool          `json:"is_liked"`
		IsSaved         bool          `json:"is_saved"`
		CreatedAt       time.Time     `json:"created_at"`
	}

	RecipeDetailResponse struct {
		RecipeResponse
		Ingredients  []string `json:"ingredients"`
		Instructions []string `json:"instructions"`
	}

	RecipeListResponse struct {
		Recipes    []RecipeResponse `json:"recipes"`
		Pagination Pagination       `json:"pagination"`
	}

	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
	}

	RecountLikesResponse struct {
		RecipeID  string `json:"recipe_id"`
		LikeCount int    `json:"like_count"`
	}
)
