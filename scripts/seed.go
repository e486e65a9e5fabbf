package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/bhamfamilies/directory/internal/adapters/database"
	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/infrastructure/clients/postgres"
	"github.com/bhamfamilies/directory/internal/infrastructure/observability"
	"github.com/bhamfamilies/directory/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger("seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database, *observability.GetLogger())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			email VARCHAR UNIQUE,
			first_name VARCHAR,
			last_name VARCHAR,
			profile_image_url VARCHAR,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL REFERENCES users(id),
			directory VARCHAR NOT NULL,
			listing_id VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS favorites_user_directory_listing_idx
			ON favorites (user_id, directory, listing_id);
	`)
	if err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				favorites,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	favoriteRepo := database.NewFavoriteAdapter(pgClient)

	users := []entities.User{
		{
			ID:        "demo-parent",
			Email:     "parent@example.com",
			FirstName: "Jordan",
			LastName:  "Avery",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		{
			ID:        "demo-caregiver",
			Email:     "caregiver@example.com",
			FirstName: "Sam",
			LastName:  "Reyes",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}

	for i := range users {
		if _, err := userRepo.Upsert(ctx, &users[i]); err != nil {
			log.Printf("Failed to upsert user %s: %v", users[i].Email, err)
		}
	}

	favorites := []entities.Favorite{
		{UserID: "demo-parent", Directory: entities.DirectoryChildcare, ListingID: "sunny-days-learning-center"},
		{UserID: "demo-parent", Directory: entities.DirectoryChildcare, ListingID: "homewood-montessori"},
		{UserID: "demo-parent", Directory: entities.DirectoryPediatricians, ListingID: "dr-ellis-pediatrics"},
		{UserID: "demo-caregiver", Directory: entities.DirectoryDentists, ListingID: "bright-smiles-pediatric-dental"},
		{UserID: "demo-caregiver", Directory: entities.DirectoryTherapists, ListingID: "magic-city-speech-ot"},
	}

	for i := range favorites {
		if _, err := favoriteRepo.Add(ctx, &favorites[i]); err != nil {
			log.Printf("Failed to add favorite %s: %v", favorites[i].Key(), err)
		}
	}

	log.Println("Seeding completed successfully")
}
