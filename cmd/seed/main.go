package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todoapp/internal/config"
	"todoapp/internal/db"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

type seedUser struct {
	Email    string
	Password string
	Name     string
	Todos    []string
}

var demoUsers = []seedUser{
	{
		Email:    "alice@example.com",
		Password: "correcthorse",
		Name:     "Alice",
		Todos:    []string{"buy milk", "water the plants", "write weekly report"},
	},
	{
		Email:    "bob@example.com",
		Password: "batterystaple",
		Name:     "Bob",
		Todos:    []string{"renew gym membership"},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Todo{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)
	ctx := context.Background()

	created := 0
	for _, seed := range demoUsers {
		existing, err := userRepo.FindByEmail(ctx, seed.Email)
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to look up %s: %v", seed.Email, err)
		}
		if existing != nil {
			log.Printf("User %s already exists, skipping", seed.Email)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), 12)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", seed.Email, err)
		}

		user := &model.User{
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: string(hashed),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", seed.Email, err)
		}

		for _, text := range seed.Todos {
			todo := &model.Todo{UserID: user.ID, Text: text}
			if err := todoRepo.Create(ctx, todo); err != nil {
				log.Fatalf("Failed to create todo for %s: %v", seed.Email, err)
			}
		}

		log.Printf("Created user %s with %d todos", seed.Email, len(seed.Todos))
		created++
	}

	log.Printf("Seed complete: %d users created", created)
}
