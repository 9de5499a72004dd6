package migration

import (
	"fmt"
	"log"

	"omnom/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Recipe{}); err != nil {
		log.Fatalf("Error migrating recipe database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeLike{}); err != nil {
		log.Fatalf("Error migrating recipe like database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeSave{}); err != nil {
		log.Fatalf("Error migrating recipe save database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Comment{}); err != nil {
		log.Fatalf("Error migrating comment database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Follow{}); err != nil {
		log.Fatalf("Error migrating follow database: %v", err)
		return err
	}

	if err := setupRecipeConstraints(db); err != nil {
		log.Fatalf("Error setting up recipe constraints: %v", err)
		return err
	}
	if err := setupLikeCountTrigger(db); err != nil {
		log.Fatalf("Error setting up like count trigger: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}

// setupRecipeConstraints enforces the remix invariant: only a remix may carry
// a remixed_from_id. The reverse direction is deliberately loose so that
// deleting a source recipe can SET NULL the back-reference while the dependent
// remix keeps its is_remix provenance flag.
func setupRecipeConstraints(db *gorm.DB) error {
	return db.Exec(`
		ALTER TABLE recipes DROP CONSTRAINT IF EXISTS chk_recipes_remix_consistency;
		ALTER TABLE recipes ADD CONSTRAINT chk_recipes_remix_consistency
			CHECK (is_remix OR remixed_from_id IS NULL);
	`).Error
}

// setupLikeCountTrigger keeps recipes.like_count in lockstep with the
// recipe_likes edge table. The counter moves in the same transaction as the
// edge mutation, so concurrent likes can never skew it; the decrement is
// floored at zero.
func setupLikeCountTrigger(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE OR REPLACE FUNCTION sync_recipe_like_count() RETURNS trigger AS $$
		BEGIN
			IF TG_OP = 'INSERT' THEN
				UPDATE recipes SET like_count = like_count + 1 WHERE id = NEW.recipe_id;
				RETURN NEW;
			ELSIF TG_OP = 'DELETE' THEN
				UPDATE recipes SET like_count = GREATEST(like_count - 1, 0) WHERE id = OLD.recipe_id;
				RETURN OLD;
			END IF;
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;
	`).Error; err != nil {
		return err
	}

	return db.Exec(`
		DROP TRIGGER IF EXISTS trg_recipe_like_count ON recipe_likes;
		CREATE TRIGGER trg_recipe_like_count
			AFTER INSERT OR DELETE ON recipe_likes
			FOR EACH ROW EXECUTE FUNCTION sync_recipe_like_count();
	`).Error
}
