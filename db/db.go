package db

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewStorage opens the database selected by DB_DRIVER. Postgres is the
// default; sqlite keeps parity with the original single-file deployment
// and is what local development runs on.
func NewStorage() (*gorm.DB, error) {
	// .env is optional; plain environment variables work without it.
	godotenv.Load()

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(os.Getenv("DB_URL"))
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "database.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)

	return db, nil
}
