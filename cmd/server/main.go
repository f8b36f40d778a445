package main

import (
	"log"
	"net/http"
	"os"

	_ "todoapp/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"todoapp/internal/auth"
	"todoapp/internal/cache"
	"todoapp/internal/config"
	"todoapp/internal/db"
	"todoapp/internal/handler"
	"todoapp/internal/metrics"
	"todoapp/internal/model"
	"todoapp/internal/repository"
	"todoapp/internal/router"
	"todoapp/internal/service"
)

// @title Todo API
// @version 1.0
// @description Todo API with cookie-session authentication and user-scoped todo CRUD.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Session token, either as "Bearer <token>" or via the session cookie.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Todo{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Todo{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SessionSecret, cfg.SessionTTL)
	sessionStore := auth.NewSessionStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, sessionStore)
	todoService := service.NewTodoService(todoRepo, cacheClient)

	// Initialize handlers
	userHandler := handler.NewUserHandler(authService, cfg.SessionTTL, cfg.CookieSecure)
	todoHandler := handler.NewTodoHandler(todoService)

	m := metrics.New()

	// Register routes
	router.Register(e, cfg, authService, userHandler, todoHandler, m)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
