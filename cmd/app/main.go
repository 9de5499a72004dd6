package main

import (
	"log"

	"omnom/cmd/config"
	migration "omnom/cmd/database/migrate"
	"omnom/internal/utils"
)

func main() {
	utils.LoadConfig()
	utils.RequireConfig(
		"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT",
		"JWT_SECRET",
	)

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to set up application: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
