package main

import (
	"flag"

	"autoparts-inventory/internal/config"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/database"
	"autoparts-inventory/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "admin@example.com", "account to reset")
	newPassword := flag.String("password", "admin123", "new password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "postgres" {
		dsn = cfg.Database.PostgresDSN()
	}
	db, err := database.Connect(database.Options{Driver: cfg.Database.Driver, DSN: dsn, MaxOpenConns: 1}, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(*email)
	if err != nil {
		log.Fatal("User not found", zap.String("email", *email), zap.Error(err))
	}
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}
	if err := users.UpdatePassword(user.ID, user.Password); err != nil {
		log.Fatal("Failed to update password", zap.Error(err))
	}
	// Open sessions are dropped.
	if err := users.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		log.Fatal("Failed to rotate session", zap.Error(err))
	}

	log.Info("Password reset", zap.String("email", *email))
}
