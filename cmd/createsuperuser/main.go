package main

import (
	"context"
	"flag"
	"os"

	"github.com/yukikurage/tasktrack/internal/config"
	"github.com/yukikurage/tasktrack/internal/database"
	"github.com/yukikurage/tasktrack/internal/logging"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/services"
)

func main() {
	email := flag.String("email", "", "email address of the new superuser")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	cfg := config.Load()
	logger := logging.Setup(cfg)

	// The password is read from the environment so it stays out of shell history.
	password := os.Getenv("SUPERUSER_PASSWORD")
	if *email == "" || password == "" {
		logger.Fatal("Usage: SUPERUSER_PASSWORD=... createsuperuser -email admin@example.com")
	}

	if err := database.Connect(cfg); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()

	userRepo := repository.NewUserRepository(db)
	hasher := services.NewBcryptHasher()
	emailBackend, err := services.NewEmailBackend(userRepo, hasher)
	if err != nil {
		logger.Fatalf("Failed to create email backend: %v", err)
	}
	registry, err := services.NewBackendRegistry(emailBackend)
	if err != nil {
		logger.Fatalf("Failed to create backend registry: %v", err)
	}

	for _, problem := range services.ValidatePassword(password, services.PasswordAttributes{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
	}) {
		logger.Warn(problem)
	}

	ctx := context.Background()
	username, err := services.NewReferenceGenerator(repository.NewReferenceRepository(db)).GenerateUsername(ctx)
	if err != nil {
		logger.Fatalf("Failed to generate username: %v", err)
	}

	manager := services.NewUserManager(userRepo, hasher, registry)
	user, err := manager.CreateSuperuser(ctx, username, password, services.UserFields{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		logger.Fatalf("Failed to create superuser: %v", err)
	}

	logger.WithField("username", user.Username).Info("Superuser created successfully")
}
