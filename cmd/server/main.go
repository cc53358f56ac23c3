package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/config"
	"github.com/sujalbistaa/sonymous/internal/db"
	routes "github.com/sujalbistaa/sonymous/internal/http"
	"github.com/sujalbistaa/sonymous/internal/likeguard"
	"github.com/sujalbistaa/sonymous/internal/models"
	"github.com/sujalbistaa/sonymous/internal/sweeper"
	"github.com/sujalbistaa/sonymous/internal/ws"
)

func main() {
	// Running without a .env file is fine in production, where env vars are
	// set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	log.Println("Running database migrations...")
	if err := database.AutoMigrate(
		&models.Message{},
		&models.Admin{},
		&models.AdminToken{},
		&models.Announcement{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	if err := seedAdmin(database, cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := likeguard.New(nil)
	guard.StartJanitor(10*time.Minute, ctx.Done())

	go sweeper.New(database, nil).Run(ctx, cfg.SweepInterval)

	router := gin.New()
	env := &routes.Env{
		DB:     database,
		Hub:    hub,
		Guard:  guard,
		Secret: []byte(cfg.AppSecret),
	}
	routes.SetupRoutes(router, env, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// seedAdmin upserts the bootstrap moderator account by email, hashing the
// configured password. Without ADMIN_EMAIL it does nothing; admins can also
// be provisioned directly in the database.
func seedAdmin(database *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL set but ADMIN_PASSWORD empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin models.Admin
	err = database.Where("email = ?", cfg.AdminEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.Admin{
			Name:         cfg.AdminName,
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
		}
		if err := database.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("Seeded admin account %s", cfg.AdminEmail)
	case err != nil:
		return err
	default:
		updates := map[string]any{"password_hash": string(hash)}
		if cfg.AdminName != "" {
			updates["name"] = cfg.AdminName
		}
		if err := database.Model(&admin).Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}
