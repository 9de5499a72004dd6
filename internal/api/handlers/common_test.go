package handlers

import (
	"errors"
	"testing"

	"omnom/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", domain.ErrCredentialsInvalid, fiber.StatusUnauthorized},
		{"recipe permission", domain.ErrUnauthorizedRecipeAccess, fiber.StatusForbidden},
		{"generic permission", domain.ErrUserNotAllowed, fiber.StatusForbidden},
		{"recipe missing", domain.ErrRecipeNotFound, fiber.StatusNotFound},
		{"user missing", domain.ErrUserNotFound, fiber.StatusNotFound},
		{"comment missing", domain.ErrCommentNotFound, fiber.StatusNotFound},
		{"remix source missing", domain.ErrRemixSourceNotFound, fiber.StatusNotFound},
		{"masked internal error", domain.ErrSomethingWentWrong, fiber.StatusInternalServerError},
		{"validation fallthrough", errors.New("title too long"), fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
