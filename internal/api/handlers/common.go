package handlers

import (
	"errors"
	"strconv"

	"omnom/domain"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps domain errors onto HTTP statuses. Credential failures,
// permission failures and missing rows get their own codes; everything else is
// a bad request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrCredentialsInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorizedRecipeAccess),
		errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrRemixSourceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSomethingWentWrong):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func queryPage(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	return page, limit
}

func viewerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
