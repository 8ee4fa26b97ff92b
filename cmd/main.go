package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyv-dev/ledger-service/cmd/api"
	"github.com/andreyv-dev/ledger-service/cmd/logger"
	"github.com/andreyv-dev/ledger-service/cmd/models"
	"github.com/andreyv-dev/ledger-service/cmd/seed"
	"github.com/andreyv-dev/ledger-service/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "seed":
			runSeed()
			return
		default:
			logger.Log.Fatal("unknown command", zap.String("command", os.Args[1]))
		}
	}

	startServer()
}

func openStorage() *gorm.DB {
	DB, err := db.NewStorage()
	if err != nil {
		logger.Log.Fatal("database initialization error", zap.Error(err))
	}
	return DB
}

func closeStorage(DB *gorm.DB) {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Log.Error("database close skipped", zap.Error(err))
		return
	}
	sqlDB.Close()
	logger.Log.Info("database connection closed")
}

func runMigrations() {
	DB := openStorage()
	defer closeStorage(DB)

	if err := performMigrations(DB); err != nil {
		logger.Log.Fatal("migration error", zap.Error(err))
	}
	logger.Log.Info("migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {
	migrations := []struct {
		model any
		name  string
	}{
		{&models.User{}, "User"},
		{&models.Transaction{}, "Transaction"},
	}

	for _, m := range migrations {
		logger.Log.Info("migrating table", zap.String("table", m.name))
		if err := DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
	}
	return nil
}

func runSeed() {
	DB := openStorage()
	defer closeStorage(DB)

	if err := performMigrations(DB); err != nil {
		logger.Log.Fatal("migration error", zap.Error(err))
	}
	if err := seed.Run(DB); err != nil {
		logger.Log.Fatal("seed error", zap.Error(err))
	}
}

func startServer() {
	DB := openStorage()
	defer closeStorage(DB)
	logger.Log.Info("connected to the database")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Log.Info("shutting down server")
}
