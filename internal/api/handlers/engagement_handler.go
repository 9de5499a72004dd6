package handlers

import (
	"omnom/domain"
	"omnom/internal/api/presenters"
	"omnom/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	EngagementHandler interface {
		ToggleLike(c *fiber.Ctx) error
		ToggleSave(c *fiber.Ctx) error
		GetSavedRecipes(c *fiber.Ctx) error
		AddComment(c *fiber.Ctx) error
		DeleteComment(c *fiber.Ctx) error
		GetComments(c *fiber.Ctx) error
	}

	engagementHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewEngagementHandler(recipeService recipe.RecipeService, validator *validator.Validate) EngagementHandler {
	return &engagementHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *engagementHandler) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	recipeID := c.Params("id")

	res, err := h.recipeService.ToggleLike(c.Context(), recipeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedToggleLike, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessToggleLike)
}

func (h *engagementHandler) ToggleSave(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	recipeID := c.Params("id")

	res, err := h.recipeService.ToggleSave(c.Context(), recipeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedToggleSave, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessToggleSave)
}

func (h *engagementHandler) GetSavedRecipes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := queryPage(c)

	res, err := h.recipeService.GetSavedRecipes(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetSaved, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSaved)
}

func (h *engagementHandler) AddComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	recipeID := c.Params("id")
	req := new(domain.AddCommentRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddComment, err)
	}

	res, err := h.recipeService.AddComment(c.Context(), recipeID, *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedAddComment, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddComment)
}

func (h *engagementHandler) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	commentID := c.Params("id")

	if err := h.recipeService.DeleteComment(c.Context(), commentID, userID); err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedDelComment, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDelComment)
}

func (h *engagementHandler) GetComments(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	page, limit := queryPage(c)

	res, err := h.recipeService.GetComments(c.Context(), recipeID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetComments, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetComments)
}
