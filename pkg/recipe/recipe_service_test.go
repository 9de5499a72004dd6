package recipe

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"omnom/domain"
	"omnom/entities"
	"omnom/internal/utils/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRecipeRepository keeps everything in memory and mimics the two pieces of
// database behavior the service depends on: the unique index on like/save
// edges (duplicate inserts fail with gorm.ErrDuplicatedKey) and the trigger
// that moves like_count together with the edge table.
type fakeRecipeRepository struct {
	recipes  map[string]*entities.Recipe
	likes    map[string]map[string]bool
	saves    map[string]map[string]bool
	comments map[string]*entities.Comment

	// staleLikeCheck makes the next HasLiked report false regardless of
	// state, standing in for a concurrent like that landed between the
	// read and the insert.
	staleLikeCheck bool
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:  map[string]*entities.Recipe{},
		likes:    map[string]map[string]bool{},
		saves:    map[string]map[string]bool{},
		comments: map[string]*entities.Comment{},
	}
}

func (f *fakeRecipeRepository) CreateRecipe(_ context.Context, recipe *entities.Recipe) error {
	cp := *recipe
	f.recipes[recipe.ID.String()] = &cp
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(_ context.Context, id string) (*entities.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *recipe
	return &cp, nil
}

func (f *fakeRecipeRepository) UpdateRecipe(_ context.Context, recipe *entities.Recipe, authorID string) (int64, error) {
	stored, ok := f.recipes[recipe.ID.String()]
	if !ok || stored.AuthorID.String() != authorID {
		return 0, nil
	}
	stored.Title = recipe.Title
	stored.Description = recipe.Description
	stored.Ingredients = recipe.Ingredients
	stored.Instructions = recipe.Instructions
	stored.PrepTimeMinutes = recipe.PrepTimeMinutes
	stored.CookTimeMinutes = recipe.CookTimeMinutes
	stored.Servings = recipe.Servings
	stored.Difficulty = recipe.Difficulty
	stored.CuisineType = recipe.CuisineType
	stored.Tags = recipe.Tags
	stored.DietaryTags = recipe.DietaryTags
	return 1, nil
}

func (f *fakeRecipeRepository) UpdateRecipeImage(_ context.Context, recipeID, authorID, imageURL string) (int64, error) {
	stored, ok := f.recipes[recipeID]
	if !ok || stored.AuthorID.String() != authorID {
		return 0, nil
	}
	stored.ImageURL = imageURL
	return 1, nil
}

func (f *fakeRecipeRepository) DeleteRecipe(_ context.Context, id, authorID string) (int64, error) {
	stored, ok := f.recipes[id]
	if !ok || stored.AuthorID.String() != authorID {
		return 0, nil
	}
	delete(f.recipes, id)
	delete(f.likes, id)
	delete(f.saves, id)
	for commentID, comment := range f.comments {
		if comment.RecipeID.String() == id {
			delete(f.comments, commentID)
		}
	}
	// The SET NULL constraint on the remix back-reference: dependent
	// remixes survive, pointing at nothing.
	for _, recipe := range f.recipes {
		if recipe.RemixedFromID != nil && recipe.RemixedFromID.String() == id {
			recipe.RemixedFromID = nil
		}
	}
	return 1, nil
}

func (f *fakeRecipeRepository) ExploreRecipes(_ context.Context, req domain.ExploreRequest) ([]*entities.Recipe, int64, error) {
	var result []*entities.Recipe
	for _, recipe := range f.recipes {
		if req.Search != "" {
			needle := strings.ToLower(req.Search)
			if !strings.Contains(strings.ToLower(recipe.Title), needle) &&
				!strings.Contains(strings.ToLower(recipe.Description), needle) {
				continue
			}
		}
		if req.CuisineType != "" && recipe.CuisineType != req.CuisineType {
			continue
		}
		if req.Difficulty != "" && recipe.Difficulty != req.Difficulty {
			continue
		}
		if req.DietaryTag != "" &&
			!strings.Contains(strings.ToLower(recipe.DietaryTags), strings.ToLower(req.DietaryTag)) {
			continue
		}
		if req.MaxTotalMinutes > 0 && recipe.PrepTimeMinutes+recipe.CookTimeMinutes > req.MaxTotalMinutes {
			continue
		}
		cp := *recipe
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecipeRepository) GetRecipesByAuthor(_ context.Context, authorID string, _, _ int) ([]*entities.Recipe, int64, error) {
	var result []*entities.Recipe
	for _, recipe := range f.recipes {
		if recipe.AuthorID.String() == authorID {
			cp := *recipe
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecipeRepository) CreateLike(_ context.Context, like *entities.RecipeLike) error {
	recipeID := like.RecipeID.String()
	userID := like.UserID.String()
	if f.likes[recipeID] == nil {
		f.likes[recipeID] = map[string]bool{}
	}
	if f.likes[recipeID][userID] {
		return gorm.ErrDuplicatedKey
	}
	f.likes[recipeID][userID] = true
	f.recipes[recipeID].LikeCount++
	return nil
}

func (f *fakeRecipeRepository) DeleteLike(_ context.Context, userID, recipeID string) (int64, error) {
	if !f.likes[recipeID][userID] {
		return 0, nil
	}
	delete(f.likes[recipeID], userID)
	if f.recipes[recipeID].LikeCount > 0 {
		f.recipes[recipeID].LikeCount--
	}
	return 1, nil
}

func (f *fakeRecipeRepository) HasLiked(_ context.Context, userID, recipeID string) (bool, error) {
	if f.staleLikeCheck {
		f.staleLikeCheck = false
		return false, nil
	}
	return f.likes[recipeID][userID], nil
}

func (f *fakeRecipeRepository) GetLikeCount(_ context.Context, recipeID string) (int, error) {
	return f.recipes[recipeID].LikeCount, nil
}

func (f *fakeRecipeRepository) RecountLikes(_ context.Context, recipeID string) (int, error) {
	count := len(f.likes[recipeID])
	f.recipes[recipeID].LikeCount = count
	return count, nil
}

func (f *fakeRecipeRepository) CreateSave(_ context.Context, save *entities.RecipeSave) error {
	recipeID := save.RecipeID.String()
	userID := save.UserID.String()
	if f.saves[recipeID] == nil {
		f.saves[recipeID] = map[string]bool{}
	}
	if f.saves[recipeID][userID] {
		return gorm.ErrDuplicatedKey
	}
	f.saves[recipeID][userID] = true
	return nil
}

func (f *fakeRecipeRepository) DeleteSave(_ context.Context, userID, recipeID string) (int64, error) {
	if !f.saves[recipeID][userID] {
		return 0, nil
	}
	delete(f.saves[recipeID], userID)
	return 1, nil
}

func (f *fakeRecipeRepository) HasSaved(_ context.Context, userID, recipeID string) (bool, error) {
	return f.saves[recipeID][userID], nil
}

func (f *fakeRecipeRepository) GetSavedRecipes(_ context.Context, userID string, _, _ int) ([]*entities.Recipe, int64, error) {
	var result []*entities.Recipe
	for recipeID, users := range f.saves {
		if users[userID] {
			cp := *f.recipes[recipeID]
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecipeRepository) CreateComment(_ context.Context, comment *entities.Comment) error {
	cp := *comment
	f.comments[comment.ID.String()] = &cp
	return nil
}

func (f *fakeRecipeRepository) DeleteComment(_ context.Context, commentID, userID string) (int64, error) {
	comment, ok := f.comments[commentID]
	if !ok || comment.UserID.String() != userID {
		return 0, nil
	}
	delete(f.comments, commentID)
	return 1, nil
}

func (f *fakeRecipeRepository) GetComments(_ context.Context, recipeID string, _, _ int) ([]*entities.Comment, int64, error) {
	var result []*entities.Comment
	for _, comment := range f.comments {
		if comment.RecipeID.String() == recipeID {
			cp := *comment
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

type fakeS3 struct {
	deleted []string
}

func (f *fakeS3) UploadFile(_ context.Context, _ storage.Bucket, objectKey string, _ *multipart.FileHeader) (string, error) {
	return "https://bucket.s3.region.amazonaws.com/" + objectKey, nil
}

func (f *fakeS3) DeleteFile(_ context.Context, _ storage.Bucket, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	idx := strings.Index(link, ".amazonaws.com/")
	if idx == -1 {
		return ""
	}
	return link[idx+len(".amazonaws.com/"):]
}

func seedRecipe(repo *fakeRecipeRepository, authorID uuid.UUID, title string) *entities.Recipe {
	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       title,
		Ingredients: "2 eggs\n100g flour",
		Difficulty:  "Easy",
	}
	repo.recipes[recipe.ID.String()] = recipe
	return recipe
}

func TestCreateRecipe(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	author := uuid.New()

	res, err := service.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:           "Pasta Carbonara",
		Ingredients:     []string{"200g spaghetti", "2 eggs", "100g guanciale"},
		Instructions:    []string{"Boil the pasta", "Fry the guanciale", "Combine off heat"},
		PrepTimeMinutes: 10,
		CookTimeMinutes: 15,
		Servings:        2,
		Difficulty:      "Medium",
		CuisineType:     "Italian",
	}, author.String())

	require.NoError(t, err)
	assert.Equal(t, "Pasta Carbonara", res.Title)
	assert.Equal(t, []string{"200g spaghetti", "2 eggs", "100g guanciale"}, res.Ingredients)
	assert.Equal(t, []string{"Boil the pasta", "Fry the guanciale", "Combine off heat"}, res.Instructions)
	assert.False(t, res.IsRemix)
	assert.Zero(t, res.LikeCount)
}

func TestCreateRecipe_Remix(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	author := uuid.New()
	source := seedRecipe(repo, author, "Original Pasta")

	res, err := service.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:         "Spicy Pasta",
		Ingredients:   []string{"pasta", "chili"},
		Instructions:  []string{"Cook it"},
		Difficulty:    "Easy",
		RemixedFromID: source.ID.String(),
	}, uuid.New().String())

	require.NoError(t, err)
	assert.True(t, res.IsRemix)
	assert.Equal(t, source.ID.String(), res.RemixedFromID)
}

func TestCreateRecipe_RemixSourceMissing(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})

	_, err := service.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:         "Spicy Pasta",
		Ingredients:   []string{"pasta"},
		Instructions:  []string{"Cook it"},
		Difficulty:    "Easy",
		RemixedFromID: uuid.New().String(),
	}, uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrRemixSourceNotFound)
}

func TestUpdateRecipe_NotOwner(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	owner := uuid.New()
	recipe := seedRecipe(repo, owner, "Chef One's Pasta")

	err := service.UpdateRecipe(context.Background(), recipe.ID.String(), domain.UpdateRecipeRequest{
		Title: "Hijacked Pasta",
	}, uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	assert.Equal(t, "Chef One's Pasta", repo.recipes[recipe.ID.String()].Title)
}

func TestUpdateRecipe_Owner(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	owner := uuid.New()
	recipe := seedRecipe(repo, owner, "Plain Pasta")

	servings := 4
	err := service.UpdateRecipe(context.Background(), recipe.ID.String(), domain.UpdateRecipeRequest{
		Title:    "Improved Pasta",
		Servings: &servings,
	}, owner.String())

	require.NoError(t, err)
	stored := repo.recipes[recipe.ID.String()]
	assert.Equal(t, "Improved Pasta", stored.Title)
	assert.Equal(t, 4, stored.Servings)
	// Fields absent from the request keep their values.
	assert.Equal(t, "2 eggs\n100g flour", stored.Ingredients)
}

func TestDeleteRecipe_NotOwner(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Keeper")

	err := service.DeleteRecipe(context.Background(), recipe.ID.String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	assert.Contains(t, repo.recipes, recipe.ID.String())
}

func TestDeleteRecipe_OwnerCascades(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	owner := uuid.New()
	recipe := seedRecipe(repo, owner, "Doomed")
	recipeID := recipe.ID.String()

	fan := uuid.New()
	_, err := service.ToggleLike(context.Background(), recipeID, fan.String())
	require.NoError(t, err)
	_, err = service.AddComment(context.Background(), recipeID, domain.AddCommentRequest{Content: "Looks great"}, fan.String())
	require.NoError(t, err)

	require.NoError(t, service.DeleteRecipe(context.Background(), recipeID, owner.String()))

	assert.NotContains(t, repo.recipes, recipeID)
	assert.Empty(t, repo.likes[recipeID])
	assert.Empty(t, repo.comments)

	_, err = service.ToggleLike(context.Background(), recipeID, fan.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipe_NullsRemixBackReference(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	owner := uuid.New()
	source := seedRecipe(repo, owner, "Original Pasta")
	ctx := context.Background()

	remixer := uuid.New()
	remix, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Title:         "Spicy Pasta",
		Ingredients:   []string{"pasta", "chili"},
		Instructions:  []string{"Cook it"},
		Difficulty:    "Easy",
		RemixedFromID: source.ID.String(),
	}, remixer.String())
	require.NoError(t, err)

	require.NoError(t, service.DeleteRecipe(ctx, source.ID.String(), owner.String()))

	// The remix outlives its source: the back-reference is nulled, the
	// provenance flag stays.
	res, err := service.GetRecipeDetail(ctx, remix.ID, "")
	require.NoError(t, err)
	assert.True(t, res.IsRemix)
	assert.Empty(t, res.RemixedFromID)
}

func TestToggleLike_CountFollowsEdges(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Popular Pasta")
	recipeID := recipe.ID.String()
	alice := uuid.New().String()
	bob := uuid.New().String()
	ctx := context.Background()

	res, err := service.ToggleLike(ctx, recipeID, alice)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 1, res.LikeCount)

	res, err = service.ToggleLike(ctx, recipeID, bob)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 2, res.LikeCount)

	res, err = service.ToggleLike(ctx, recipeID, alice)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, 1, res.LikeCount)

	res, err = service.ToggleLike(ctx, recipeID, bob)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, 0, res.LikeCount)
}

func TestToggleLike_RaceFoldsIntoLiked(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Contended Pasta")
	recipeID := recipe.ID.String()
	alice := uuid.New().String()
	ctx := context.Background()

	_, err := service.ToggleLike(ctx, recipeID, alice)
	require.NoError(t, err)

	// The existence check misses the edge that is already there, so the
	// insert hits the unique index. The outcome is still "liked" with a
	// single counted edge.
	repo.staleLikeCheck = true
	res, err := service.ToggleLike(ctx, recipeID, alice)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, 1, res.LikeCount)
	assert.Len(t, repo.likes[recipeID], 1)
}

func TestToggleLike_RecipeNotFound(t *testing.T) {
	t.Parallel()
	service := NewRecipeService(newFakeRecipeRepository(), &fakeS3{})

	_, err := service.ToggleLike(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestToggleSave(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Weeknight Pasta")
	recipeID := recipe.ID.String()
	alice := uuid.New().String()
	ctx := context.Background()

	res, err := service.ToggleSave(ctx, recipeID, alice)
	require.NoError(t, err)
	assert.True(t, res.Active)

	saved, err := service.GetSavedRecipes(ctx, alice, 1, 20)
	require.NoError(t, err)
	require.Len(t, saved.Recipes, 1)
	assert.True(t, saved.Recipes[0].IsSaved)

	res, err = service.ToggleSave(ctx, recipeID, alice)
	require.NoError(t, err)
	assert.False(t, res.Active)

	saved, err = service.GetSavedRecipes(ctx, alice, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, saved.Recipes)
}

func TestRecountLikes_RepairsDrift(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	owner := uuid.New()
	recipe := seedRecipe(repo, owner, "Drifted Pasta")
	recipeID := recipe.ID.String()
	ctx := context.Background()

	_, err := service.ToggleLike(ctx, recipeID, uuid.New().String())
	require.NoError(t, err)
	_, err = service.ToggleLike(ctx, recipeID, uuid.New().String())
	require.NoError(t, err)

	// Skew the counter away from the edge table.
	repo.recipes[recipeID].LikeCount = 9

	res, err := service.RecountLikes(ctx, recipeID, owner.String())
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikeCount)
	assert.Equal(t, 2, repo.recipes[recipeID].LikeCount)

	// Recounting when nothing drifted is a no-op.
	res, err = service.RecountLikes(ctx, recipeID, owner.String())
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikeCount)
}

func TestRecountLikes_OwnerOnly(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Guarded Pasta")

	_, err := service.RecountLikes(context.Background(), recipe.ID.String(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
}

func TestDeleteComment(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	recipe := seedRecipe(repo, uuid.New(), "Discussed Pasta")
	author := uuid.New().String()
	ctx := context.Background()

	comment, err := service.AddComment(ctx, recipe.ID.String(), domain.AddCommentRequest{Content: "Tried it, loved it"}, author)
	require.NoError(t, err)

	// Someone else's delete looks identical to deleting a comment that
	// never existed.
	err = service.DeleteComment(ctx, comment.ID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)

	require.NoError(t, service.DeleteComment(ctx, comment.ID, author))

	err = service.DeleteComment(ctx, comment.ID, author)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestExplore_Filters(t *testing.T) {
	t.Parallel()
	repo := newFakeRecipeRepository()
	service := NewRecipeService(repo, &fakeS3{})
	author := uuid.New()

	pasta := seedRecipe(repo, author, "Pasta Carbonara")
	pasta.CuisineType = "Italian"
	pasta.Ingredients = "200g spaghetti\n2 eggs\n100g guanciale"

	curry := seedRecipe(repo, author, "Green Curry")
	curry.CuisineType = "Thai"
	curry.Ingredients = "chicken\ncoconut milk\ngreen curry paste"

	res, err := service.Explore(context.Background(), domain.ExploreRequest{
		CuisineType: "Italian",
		Page:        1,
		Limit:       20,
	}, "")
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, "Pasta Carbonara", res.Recipes[0].Title)

	res, err = service.Explore(context.Background(), domain.ExploreRequest{
		Ingredients: []string{"eggs", "spaghetti"},
		Page:        1,
		Limit:       20,
	}, "")
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, "Pasta Carbonara", res.Recipes[0].Title)
}

func TestMatchesIngredients(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ingredients string
		terms       []string
		want        bool
	}{
		{"no terms matches everything", "flour\nsugar", nil, true},
		{"single term present", "200g Spaghetti\n2 eggs", []string{"spaghetti"}, true},
		{"all terms must match", "spaghetti\neggs", []string{"spaghetti", "bacon"}, false},
		{"case insensitive", "Guanciale\nPECORINO", []string{"pecorino"}, true},
		{"blank terms are skipped", "flour", []string{" ", "flour"}, true},
		{"term absent", "rice\nbeans", []string{"pasta"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchesIngredients(tt.ingredients, tt.terms))
		})
	}
}

func TestPagination(t *testing.T) {
	t.Parallel()

	p := toPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, int64(3), p.TotalPages)

	p = toPagination(1, 20, 0)
	assert.Equal(t, int64(0), p.TotalPages)
}
