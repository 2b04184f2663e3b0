package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/tour-of-heroes/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type heroRepository struct {
	db *gorm.DB
}

func NewHeroRepository(db *gorm.DB) *heroRepository {
	return &heroRepository{db: db}
}

func (r *heroRepository) GetAll(ctx context.Context) ([]*domain.Hero, error) {
	var heroes []*domain.Hero
	err := r.db.WithContext(ctx).Order("id ASC").Find(&heroes).Error
	if err != nil {
		return nil, err
	}
	return heroes, nil
}

func (r *heroRepository) GetByID(ctx context.Context, id int) (*domain.Hero, error) {
	var hero domain.Hero
	err := r.db.WithContext(ctx).First(&hero, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHeroNotFound
		}
		return nil, err
	}
	return &hero, nil
}

func (r *heroRepository) SearchByName(ctx context.Context, term string) ([]*domain.Hero, error) {
	var heroes []*domain.Hero
	pattern := "%" + likeEscaper.Replace(term) + "%"
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", pattern).
		Order("id ASC").
		Find(&heroes).Error
	if err != nil {
		return nil, err
	}
	return heroes, nil
}

func (r *heroRepository) Create(ctx context.Context, hero *domain.Hero) error {
	hero.ID = 0
	return r.db.WithContext(ctx).Create(hero).Error
}

func (r *heroRepository) Update(ctx context.Context, hero *domain.Hero) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Hero{}).
		Where("id = ?", hero.ID).
		Update("name", hero.Name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrHeroNotFound
	}
	return nil
}

func (r *heroRepository) Delete(ctx context.Context, id int) (*domain.Hero, error) {
	var hero domain.Hero
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&hero)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrHeroNotFound
	}
	return &hero, nil
}

func (r *heroRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Hero{}).Count(&count).Error
	return count, err
}

func (r *heroRepository) Seed(ctx context.Context, heroes []domain.Hero) error {
	if len(heroes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&heroes).Error; err != nil {
			return fmt.Errorf("insert seed heroes: %w", err)
		}

		// Explicit ids bypass the serial sequence; move it past them.
		err := tx.Exec("SELECT setval(pg_get_serial_sequence('heroes', 'id'), (SELECT MAX(id) FROM heroes))").Error
		if err != nil {
			return fmt.Errorf("advance hero id sequence: %w", err)
		}
		return nil
	})
}
