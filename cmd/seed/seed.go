package seed

import (
	"github.com/andreyv-dev/ledger-service/cmd/logger"
	"github.com/andreyv-dev/ledger-service/cmd/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var demoUsers = []struct {
	Username string
	Email    string
	Balance  float64
}{
	{"alice", "alice@example.com", 1000},
	{"bob", "bob@example.com", 200},
	{"carol", "carol@example.com", 0},
}

// Run inserts demo users unless the table already has data. All inserts
// happen inside one transaction.
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Log.Info("seed skipped, users already present", zap.Int64("count", count))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, u := range demoUsers {
			user := models.User{
				Username:     u.Username,
				Email:        u.Email,
				PasswordHash: string(hash),
				Balance:      u.Balance,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info("seeded demo users",
		zap.Int("count", len(demoUsers)),
		zap.String("password", seedPassword))
	return nil
}
