package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/linkbio/config"
	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/internal/domain/entity"
	pginfra "github.com/oksasatya/linkbio/internal/infrastructure/postgres"
	"github.com/oksasatya/linkbio/pkg/helpers"
)

// seed creates a demo account with two profiles through the account service,
// so slugs are allocated exactly as they are for real users.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:       2,
		ConnectTimeout: cfg.DBConnTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	deps := app.Deps{
		Repo:    pginfra.NewUserRepository(pool),
		Hasher:  helpers.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:  helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Logger:  helpers.NewDiscardLogger(),
		BaseURL: cfg.BaseURL,
	}
	accounts := app.NewAccountService(deps)
	profiles := app.NewProfileService(deps)

	email := "demo@linkbio.local"
	password := "password123"
	res, err := accounts.Register(ctx, app.RegisterInput{
		Email:    email,
		Password: password,
		Profile: app.ProfileFields{
			Name:  "Demo User",
			About: "Seeded demo account",
			Links: []entity.Link{
				{Platform: "github", URL: "https://github.com/oksasatya"},
				{Platform: "website", URL: "https://example.com", IsCustom: true, CustomTitle: "Homepage"},
			},
		},
	})
	if errors.Is(err, app.ErrEmailTaken) {
		fmt.Printf("demo user already exists: email=%s\n", email)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s url=%s\n", res.UserID, email, password, res.ProfileURL)

	url, err := profiles.CreateProfile(ctx, res.UserID, app.ProfileFields{
		Name:  "Demo Work",
		About: "Second profile of the demo account",
		Links: []entity.Link{{Platform: "linkedin", URL: "https://linkedin.com/in/demo", IsPrivate: true}},
	})
	if err != nil {
		log.Fatalf("failed to seed second profile: %v", err)
	}
	fmt.Printf("seeded profile: url=%s\n", url)
}
