package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"daily-checkin/internal/config"
	"daily-checkin/internal/logger"
	"daily-checkin/internal/model"
	"daily-checkin/internal/service"
	"daily-checkin/internal/store"

	"gorm.io/gorm"
)

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	email := flag.String("email", "", "seed user email (optional)")
	password := flag.String("password", "", "seed user password")
	name := flag.String("name", "", "seed user display name")
	role := flag.String("role", "", "seed user role (member or caregiver)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		log.Fatal("db connect failed: ", err)
	}

	// Step 1: tables
	if err := store.Migrate(db, &model.User{}); err != nil {
		log.Fatal("migrate failed: ", err)
	}
	logger.Info("migrate.ok", "driver", cfg.Database.Driver)

	// Step 2: seed user
	if *email != "" {
		if err := seedUser(context.Background(), db, *email, *password, *name, *role); err != nil {
			log.Fatal("seed failed: ", err)
		}
	}

	logger.Info("=== all done ===")
}

func seedUser(ctx context.Context, db *gorm.DB, email, password, name, role string) error {
	if len(password) < 8 {
		return errors.New("seed password must be at least 8 characters")
	}
	auth := service.NewAuthService(db)
	u, err := auth.Signup(ctx, email, password, name)
	if errors.Is(err, service.ErrEmailTaken) {
		logger.Info("seed.exists", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	if err := auth.MarkVerified(ctx, u.UID); err != nil {
		return err
	}
	if role != "" {
		if err := auth.SetRole(ctx, u.UID, role); err != nil {
			return err
		}
	}
	logger.Info("seed.ok", "uid", u.UID, "email", u.Email)
	return nil
}
