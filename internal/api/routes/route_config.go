package routes

import (
	"omnom/internal/api/handlers"
	"omnom/internal/middleware"
	"omnom/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	RecipeHandler     handlers.RecipeHandler
	EngagementHandler handlers.EngagementHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Recipe()
	c.GuestRoute()
}

func (c *Config) User() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Post("/forget", c.UserHandler.ForgotPassword)
		user.Post("/reset", c.UserHandler.ResetPassword)
		user.Get("/me", auth, c.UserHandler.Me)
		user.Patch("/update", auth, c.UserHandler.UpdateProfile)
		user.Post("/avatar", auth, c.UserHandler.UploadAvatar)
		user.Get("/:id/profile", optional, c.UserHandler.GetProfile)
		user.Get("/:id/recipes", c.RecipeHandler.GetRecipesByAuthor)
		user.Get("/:id/followers", c.UserHandler.GetFollowers)
		user.Get("/:id/following", c.UserHandler.GetFollowing)
		user.Post("/:id/follow", auth, c.UserHandler.Follow)
		user.Delete("/:id/follow", auth, c.UserHandler.Unfollow)
	}
}

func (c *Config) Recipe() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	recipes := c.App.Group("/api/v1/recipes")
	{
		recipes.Get("", optional, c.RecipeHandler.Explore)
		recipes.Post("", auth, c.RecipeHandler.CreateRecipe)
		recipes.Get("/saved", auth, c.EngagementHandler.GetSavedRecipes)
		recipes.Get("/:id", optional, c.RecipeHandler.GetRecipeDetail)
		recipes.Put("/:id", auth, c.RecipeHandler.UpdateRecipe)
		recipes.Delete("/:id", auth, c.RecipeHandler.DeleteRecipe)
		recipes.Post("/:id/image", auth, c.RecipeHandler.UploadRecipeImage)
		recipes.Post("/:id/like", auth, c.EngagementHandler.ToggleLike)
		recipes.Post("/:id/save", auth, c.EngagementHandler.ToggleSave)
		recipes.Post("/:id/recount-likes", auth, c.RecipeHandler.RecountLikes)
		recipes.Get("/:id/comments", c.EngagementHandler.GetComments)
		recipes.Post("/:id/comments", auth, c.EngagementHandler.AddComment)
	}

	comments := c.App.Group("/api/v1/comments")
	{
		comments.Delete("/:id", auth, c.EngagementHandler.DeleteComment)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
