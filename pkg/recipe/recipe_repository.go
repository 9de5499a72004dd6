package recipe

import (
	"context"

	"omnom/domain"
	"omnom/entities"

	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, authorID string) (int64, error)
		UpdateRecipeImage(ctx context.Context, recipeID, authorID, imageURL string) (int64, error)
		DeleteRecipe(ctx context.Context, id, authorID string) (int64, error)
		ExploreRecipes(ctx context.Context, req domain.ExploreRequest) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, page, limit int) ([]*entities.Recipe, int64, error)

		// Like edges. The like_count column on recipes is maintained by a
		// database trigger on recipe_likes, never from here.
		CreateLike(ctx context.Context, like *entities.RecipeLike) error
		DeleteLike(ctx context.Context, userID, recipeID string) (int64, error)
		HasLiked(ctx context.Context, userID, recipeID string) (bool, error)
		GetLikeCount(ctx context.Context, recipeID string) (int, error)
		RecountLikes(ctx context.Context, recipeID string) (int, error)

		// Save edges
		CreateSave(ctx context.Context, save *entities.RecipeSave) error
		DeleteSave(ctx context.Context, userID, recipeID string) (int64, error)
		HasSaved(ctx context.Context, userID, recipeID string) (bool, error)
		GetSavedRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error)

		// Comments
		CreateComment(ctx context.Context, comment *entities.Comment) error
		DeleteComment(ctx context.Context, commentID, userID string) (int64, error)
		GetComments(ctx context.Context, recipeID string, page, limit int) ([]*entities.Comment, int64, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe writes only rows owned by authorID and reports how many rows
// matched. Zero rows means the ownership filter rejected the write.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ? AND author_id = ?", recipe.ID, authorID).
		Select(
			"title", "description", "ingredients", "instructions",
			"prep_time_minutes", "cook_time_minutes", "servings",
			"difficulty", "cuisine_type", "tags", "dietary_tags",
		).
		Updates(recipe)
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) UpdateRecipeImage(ctx context.Context, recipeID, authorID, imageURL string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ? AND author_id = ?", recipeID, authorID).
		Update("image_url", imageURL)
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&entities.Recipe{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) ExploreRecipes(ctx context.Context, req domain.ExploreRequest) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (req.Page - 1) * req.Limit

	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if req.CuisineType != "" {
		query = query.Where("cuisine_type = ?", req.CuisineType)
	}
	if req.Difficulty != "" {
		query = query.Where("difficulty = ?", req.Difficulty)
	}
	if req.DietaryTag != "" {
		query = query.Where("dietary_tags ILIKE ?", "%"+req.DietaryTag+"%")
	}
	if req.MaxTotalMinutes > 0 {
		query = query.Where("prep_time_minutes + cook_time_minutes <= ?", req.MaxTotalMinutes)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Order("created_at desc").
		Offset(offset).
		Limit(req.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Where("author_id = ?", authorID)

	if err := query.Model(&entities.Recipe{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) CreateLike(ctx context.Context, like *entities.RecipeLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *recipeRepository) DeleteLike(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.RecipeLike{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) HasLiked(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeLike{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetLikeCount(ctx context.Context, recipeID string) (int, error) {
	var count int
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ?", recipeID).
		Pluck("like_count", &count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RecountLikes resets like_count from the edge table. Safe to call any number
// of times; used to correct drift when the trigger has been disabled.
func (r *recipeRepository) RecountLikes(ctx context.Context, recipeID string) (int, error) {
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE recipes
		 SET like_count = (SELECT COUNT(*) FROM recipe_likes WHERE recipe_id = ?)
		 WHERE id = ?`,
		recipeID, recipeID,
	).Error; err != nil {
		return 0, err
	}
	return r.GetLikeCount(ctx, recipeID)
}

func (r *recipeRepository) CreateSave(ctx context.Context, save *entities.RecipeSave) error {
	return r.db.WithContext(ctx).Create(save).Error
}

func (r *recipeRepository) DeleteSave(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.RecipeSave{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) HasSaved(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeSave{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetSavedRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Joins("JOIN recipe_saves ON recipes.id = recipe_saves.recipe_id").
		Where("recipe_saves.user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN recipe_saves ON recipes.id = recipe_saves.recipe_id").
		Where("recipe_saves.user_id = ?", userID).
		Offset(offset).
		Limit(limit).
		Order("recipe_saves.created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) CreateComment(ctx context.Context, comment *entities.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *recipeRepository) DeleteComment(ctx context.Context, commentID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&entities.Comment{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) GetComments(ctx context.Context, recipeID string, page, limit int) ([]*entities.Comment, int64, error) {
	var comments []*entities.Comment
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID)

	if err := query.Model(&entities.Comment{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("User").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, count, nil
}
