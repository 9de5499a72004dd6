package recipe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"omnom/domain"
	"omnom/entities"
	"omnom/internal/utils/storage"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeDetailResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) error
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeDetailResponse, error)
		Explore(ctx context.Context, req domain.ExploreRequest, viewerID string) (domain.RecipeListResponse, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, page, limit int) (domain.RecipeListResponse, error)
		UploadRecipeImage(ctx context.Context, recipeID string, req domain.UploadRecipeImageRequest, userID string) (string, error)

		ToggleLike(ctx context.Context, recipeID, userID string) (domain.ToggleResponse, error)
		ToggleSave(ctx context.Context, recipeID, userID string) (domain.ToggleResponse, error)
		GetSavedRecipes(ctx context.Context, userID string, page, limit int) (domain.RecipeListResponse, error)
		RecountLikes(ctx context.Context, recipeID, userID string) (domain.RecountLikesResponse, error)

		AddComment(ctx context.Context, recipeID string, req domain.AddCommentRequest, userID string) (domain.CommentResponse, error)
		DeleteComment(ctx context.Context, commentID, userID string) error
		GetComments(ctx context.Context, recipeID string, page, limit int) (domain.CommentListResponse, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		s3               storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		s3:               s3,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeDetailResponse, error) {
	authorUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeDetailResponse{}, domain.ErrParseUUID
	}

	recipe := &entities.Recipe{
		ID:              uuid.New(),
		AuthorID:        authorUUID,
		Title:           req.Title,
		Description:     req.Description,
		Ingredients:     joinLines(req.Ingredients),
		Instructions:    joinLines(req.Instructions),
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Difficulty:      req.Difficulty,
		CuisineType:     req.CuisineType,
		Tags:            joinList(req.Tags),
		DietaryTags:     joinList(req.DietaryTags),
	}

	// A remix always references its source; the two fields move together.
	if req.RemixedFromID != "" {
		sourceUUID, err := uuid.Parse(req.RemixedFromID)
		if err != nil {
			return domain.RecipeDetailResponse{}, domain.ErrParseUUID
		}
		if _, err := s.recipeRepository.GetRecipeByID(ctx, req.RemixedFromID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.RecipeDetailResponse{}, domain.ErrRemixSourceNotFound
			}
			log.Errorf("create recipe: %v", err)
			return domain.RecipeDetailResponse{}, domain.ErrSomethingWentWrong
		}
		recipe.RemixedFromID = &sourceUUID
		recipe.IsRemix = true
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		log.Errorf("create recipe: %v", err)
		return domain.RecipeDetailResponse{}, domain.ErrSomethingWentWrong
	}

	return toRecipeDetailResponse(recipe, false, false), nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		log.Errorf("update recipe: %v", err)
		return domain.ErrSomethingWentWrong
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	if req.Title != "" {
		recipe.Title = req.Title
	}
	if req.Description != "" {
		recipe.Description = req.Description
	}
	if len(req.Ingredients) > 0 {
		recipe.Ingredients = joinLines(req.Ingredients)
	}
	if len(req.Instructions) > 0 {
		recipe.Instructions = joinLines(req.Instructions)
	}
	if req.PrepTimeMinutes != nil {
		recipe.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.CookTimeMinutes != nil {
		recipe.CookTimeMinutes = *req.CookTimeMinutes
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Difficulty != "" {
		recipe.Difficulty = req.Difficulty
	}
	if req.CuisineType != "" {
		recipe.CuisineType = req.CuisineType
	}
	if len(req.Tags) > 0 {
		recipe.Tags = joinList(req.Tags)
	}
	if len(req.DietaryTags) > 0 {
		recipe.DietaryTags = joinList(req.DietaryTags)
	}

	rows, err := s.recipeRepository.UpdateRecipe(ctx, recipe, userID)
	if err != nil {
		log.Errorf("update recipe: %v", err)
		return domain.ErrSomethingWentWrong
	}
	if rows == 0 {
		// The ownership filter silently matched nothing; this is a
		// permission failure, not a no-op success.
		return domain.ErrUnauthorizedRecipeAccess
	}
	return nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		log.Errorf("delete recipe: %v", err)
		return domain.ErrSomethingWentWrong
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	if recipe.ImageURL != "" {
		if objectKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL); objectKey != "" {
			_ = s.s3.DeleteFile(ctx, storage.BucketRecipe, objectKey)
		}
	}

	rows, err := s.recipeRepository.DeleteRecipe(ctx, recipeID, userID)
	if err != nil {
		log.Errorf("delete recipe: %v", err)
		return domain.ErrSomethingWentWrong
	}
	if rows == 0 {
		return domain.ErrUnauthorizedRecipeAccess
	}
	return nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeDetailResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeDetailResponse{}, domain.ErrRecipeNotFound
		}
		log.Errorf("get recipe detail: %v", err)
		return domain.RecipeDetailResponse{}, domain.ErrSomethingWentWrong
	}

	isLiked, isSaved := s.engagementFlags(ctx, viewerID, recipeID)
	return toRecipeDetailResponse(recipe, isLiked, isSaved), nil
}

func (s *recipeService) Explore(ctx context.Context, req domain.ExploreRequest, viewerID string) (domain.RecipeListResponse, error) {
	recipes, count, err := s.recipeRepository.ExploreRecipes(ctx, req)
	if err != nil {
		log.Errorf("explore recipes: %v", err)
		return domain.RecipeListResponse{}, domain.ErrSomethingWentWrong
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		if !matchesIngredients(recipe.Ingredients, req.Ingredients) {
			continue
		}
		isLiked, isSaved := s.engagementFlags(ctx, viewerID, recipe.ID.String())
		result = append(result, toRecipeResponse(recipe, isLiked, isSaved))
	}

	return domain.RecipeListResponse{
		Recipes:    result,
		Pagination: toPagination(req.Page, req.Limit, count),
	}, nil
}

func (s *recipeService) GetRecipesByAuthor(ctx context.Context, authorID string, page, limit int) (domain.RecipeListResponse, error) {
	recipes, count, err := s.recipeRepository.GetRecipesByAuthor(ctx, authorID, page, limit)
	if err != nil {
		log.Errorf("get recipes by author: %v", err)
		return domain.RecipeListResponse{}, domain.ErrSomethingWentWrong
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, toRecipeResponse(recipe, false, false))
	}

	return domain.RecipeListResponse{
		Recipes:    result,
		Pagination: toPagination(page, limit, count),
	}, nil
}

func (s *recipeService) UploadRecipeImage(ctx context.Context, recipeID string, req domain.UploadRecipeImageRequest, userID string) (string, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrRecipeNotFound
		}
		log.Errorf("upload recipe image: %v", err)
		return "", domain.ErrSomethingWentWrong
	}

	if recipe.AuthorID.String() != userID {
		return "", domain.ErrUnauthorizedRecipeAccess
	}

	objectKey := fmt.Sprintf("recipes/%s%s", recipe.ID.String(), filepath.Ext(req.Image.Filename))
	url, err := s.s3.UploadFile(ctx, storage.BucketRecipe, objectKey, req.Image)
	if err != nil {
		return "", err
	}

	if recipe.ImageURL != "" && recipe.ImageURL != url {
		if oldKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL); oldKey != "" {
			_ = s.s3.DeleteFile(ctx, storage.BucketRecipe, oldKey)
		}
	}

	rows, err := s.recipeRepository.UpdateRecipeImage(ctx, recipeID, userID, url)
	if err != nil {
		log.Errorf("upload recipe image: %v", err)
		return "", domain.ErrSomethingWentWrong
	}
	if rows == 0 {
		return "", domain.ErrUnauthorizedRecipeAccess
	}
	return url, nil
}

// ToggleLike flips the like edge for (userID, recipeID). The existence check
// is only a hint; the unique index on recipe_likes decides races, and a
// duplicate insert is folded back into the "liked" outcome.
func (s *recipeService) ToggleLike(ctx context.Context, recipeID, userID string) (domain.ToggleResponse, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ToggleResponse{}, domain.ErrRecipeNotFound
		}
		log.Errorf("toggle like: %v", err)
		return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ToggleResponse{}, domain.ErrParseUUID
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ToggleResponse{}, domain.ErrParseUUID
	}

	liked, err := s.recipeRepository.HasLiked(ctx, userID, recipeID)
	if err != nil {
		log.Errorf("toggle like: %v", err)
		return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
	}

	active := false
	if liked {
		// Zero rows here means a concurrent unlike already won; either
		// way the edge is gone.
		if _, err := s.recipeRepository.DeleteLike(ctx, userID, recipeID); err != nil {
			log.Errorf("toggle like: %v", err)
			return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
		}
	} else {
		like := &entities.RecipeLike{
			ID:        uuid.New(),
			UserID:    userUUID,
			RecipeID:  recipeUUID,
			CreatedAt: time.Now(),
		}
		if err := s.recipeRepository.CreateLike(ctx, like); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Errorf("toggle like: %v", err)
				return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
			}
		}
		active = true
	}

	count, err := s.recipeRepository.GetLikeCount(ctx, recipeID)
	if err != nil {
		log.Errorf("toggle like: %v", err)
		return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
	}

	return domain.ToggleResponse{
		RecipeID:  recipeID,
		Active:    active,
		LikeCount: count,
	}, nil
}

func (s *recipeService) ToggleSave(ctx context.Context, recipeID, userID string) (domain.ToggleResponse, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ToggleResponse{}, domain.ErrRecipeNotFound
		}
		log.Errorf("toggle save: %v", err)
		return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ToggleResponse{}, domain.ErrParseUUID
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ToggleResponse{}, domain.ErrParseUUID
	}

	saved, err := s.recipeRepository.HasSaved(ctx, userID, recipeID)
	if err != nil {
		log.Errorf("toggle save: %v", err)
		return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
	}

	active := false
	if saved {
		if _, err := s.recipeRepository.DeleteSave(ctx, userID, recipeID); err != nil {
			log.Errorf("toggle save: %v", err)
			return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
		}
	} else {
		save := &entities.RecipeSave{
			ID:        uuid.New(),
			UserID:    userUUID,
			RecipeID:  recipeUUID,
			CreatedAt: time.Now(),
		}
		if err := s.recipeRepository.CreateSave(ctx, save); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Errorf("toggle save: %v", err)
				return domain.ToggleResponse{}, domain.ErrSomethingWentWrong
			}
		}
		active = true
	}

	return domain.ToggleResponse{
		RecipeID: recipeID,
		Active:   active,
	}, nil
}

func (s *recipeService) GetSavedRecipes(ctx context.Context, userID string, page, limit int) (domain.RecipeListResponse, error) {
	recipes, count, err := s.recipeRepository.GetSavedRecipes(ctx, userID, page, limit)
	if err != nil {
		log.Errorf("get saved recipes: %v", err)
		return domain.RecipeListResponse{}, domain.ErrSomethingWentWrong
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		isLiked, _ := s.recipeRepository.HasLiked(ctx, userID, recipe.ID.String())
		res := toRecipeResponse(recipe, isLiked, true)
		result = append(result, res)
	}

	return domain.RecipeListResponse{
		Recipes:    result,
		Pagination: toPagination(page, limit, count),
	}, nil
}

func (s *recipeService) RecountLikes(ctx context.Context, recipeID, userID string) (domain.RecountLikesResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecountLikesResponse{}, domain.ErrRecipeNotFound
		}
		log.Errorf("recount likes: %v", err)
		return domain.RecountLikesResponse{}, domain.ErrSomethingWentWrong
	}

	if recipe.AuthorID.String() != userID {
		return domain.RecountLikesResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	count, err := s.recipeRepository.RecountLikes(ctx, recipeID)
	if err != nil {
		log.Errorf("recount likes: %v", err)
		return domain.RecountLikesResponse{}, domain.ErrSomethingWentWrong
	}

	return domain.RecountLikesResponse{
		RecipeID:  recipeID,
		LikeCount: count,
	}, nil
}

func (s *recipeService) AddComment(ctx context.Context, recipeID string, req domain.AddCommentRequest, userID string) (domain.CommentResponse, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CommentResponse{}, domain.ErrRecipeNotFound
		}
		log.Errorf("add comment: %v", err)
		return domain.CommentResponse{}, domain.ErrSomethingWentWrong
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.CommentResponse{}, domain.ErrParseUUID
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.CommentResponse{}, domain.ErrParseUUID
	}

	comment := &entities.Comment{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipeUUID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.recipeRepository.CreateComment(ctx, comment); err != nil {
		log.Errorf("add comment: %v", err)
		return domain.CommentResponse{}, domain.ErrSomethingWentWrong
	}

	return domain.CommentResponse{
		ID:        comment.ID.String(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *recipeService) DeleteComment(ctx context.Context, commentID, userID string) error {
	rows, err := s.recipeRepository.DeleteComment(ctx, commentID, userID)
	if err != nil {
		log.Errorf("delete comment: %v", err)
		return domain.ErrSomethingWentWrong
	}
	if rows == 0 {
		// Either the comment does not exist or it belongs to someone
		// else; the caller cannot tell which.
		return domain.ErrCommentNotFound
	}
	return nil
}

func (s *recipeService) GetComments(ctx context.Context, recipeID string, page, limit int) (domain.CommentListResponse, error) {
	comments, count, err := s.recipeRepository.GetComments(ctx, recipeID, page, limit)
	if err != nil {
		log.Errorf("get comments: %v", err)
		return domain.CommentListResponse{}, domain.ErrSomethingWentWrong
	}

	result := make([]domain.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		res := domain.CommentResponse{
			ID:        comment.ID.String(),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		}
		if comment.User != nil {
			res.Author = &domain.UserResponse{
				ID:          comment.User.ID.String(),
				DisplayName: comment.User.DisplayName,
				AvatarURL:   comment.User.AvatarURL,
				CreatedAt:   comment.User.CreatedAt,
			}
		}
		result = append(result, res)
	}

	return domain.CommentListResponse{
		Comments:   result,
		Pagination: toPagination(page, limit, count),
	}, nil
}

func (s *recipeService) engagementFlags(ctx context.Context, viewerID, recipeID string) (bool, bool) {
	if viewerID == "" {
		return false, false
	}
	isLiked, _ := s.recipeRepository.HasLiked(ctx, viewerID, recipeID)
	isSaved, _ := s.recipeRepository.HasSaved(ctx, viewerID, recipeID)
	return isLiked, isSaved
}

// matchesIngredients reports whether every search term appears somewhere in
// the recipe's ingredient list. Matching happens in memory over the current
// page rather than in SQL.
func matchesIngredients(ingredients string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(ingredients)
	for _, term := range terms {
		term = strings.TrimSpace(strings.ToLower(term))
		if term == "" {
			continue
		}
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}

func splitLines(blob string) []string {
	if blob == "" {
		return []string{}
	}
	return strings.Split(blob, "\n")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(blob string) []string {
	if blob == "" {
		return nil
	}
	return strings.Split(blob, ",")
}

func toRecipeResponse(recipe *entities.Recipe, isLiked, isSaved bool) domain.RecipeResponse {
	res := domain.RecipeResponse{
		ID:              recipe.ID.String(),
		Title:           recipe.Title,
		Description:     recipe.Description,
		ImageURL:        recipe.ImageURL,
		PrepTimeMinutes: recipe.PrepTimeMinutes,
		CookTimeMinutes: recipe.CookTimeMinutes,
		Servings:        recipe.Servings,
		Difficulty:      recipe.Difficulty,
		CuisineType:     recipe.CuisineType,
		Tags:            splitList(recipe.Tags),
		DietaryTags:     splitList(recipe.DietaryTags),
		LikeCount:       recipe.LikeCount,
		IsRemix:         recipe.IsRemix,
		IsLiked:         isLiked,
		IsSaved:         isSaved,
		CreatedAt:       recipe.CreatedAt,
	}
	if recipe.RemixedFromID != nil {
		res.RemixedFromID = recipe.RemixedFromID.String()
	}
	if recipe.Author != nil {
		res.Author = &domain.UserResponse{
			ID:          recipe.Author.ID.String(),
			DisplayName: recipe.Author.DisplayName,
			AvatarURL:   recipe.Author.AvatarURL,
			CreatedAt:   recipe.Author.CreatedAt,
		}
	}
	return res
}

func toRecipeDetailResponse(recipe *entities.Recipe, isLiked, isSaved bool) domain.RecipeDetailResponse {
	return domain.RecipeDetailResponse{
		RecipeResponse: toRecipeResponse(recipe, isLiked, isSaved),
		Ingredients:    splitLines(recipe.Ingredients),
		Instructions:   splitLines(recipe.Instructions),
	}
}

func toPagination(page, limit int, total int64) domain.Pagination {
	return domain.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
}
