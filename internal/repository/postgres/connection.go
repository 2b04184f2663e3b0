package postgres

import (
	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables backing the repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Hero{})
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Hero: NewHeroRepository(db),
	}
}
