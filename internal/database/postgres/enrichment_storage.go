package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoArmGo/Weplash/internal/domain"
)

// GormEnrichmentStorage сохраняет результаты распознавания изображений
type GormEnrichmentStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormEnrichmentStorage(db *gorm.DB, logger *slog.Logger) *GormEnrichmentStorage {
	return &GormEnrichmentStorage{db: db, logger: logger}
}

// AttachHashTags привязывает теги к фото, создавая отсутствующие.
// Существующие связи не дублируются.
func (s *GormEnrichmentStorage) AttachHashTags(ctx context.Context, photoID uint, names []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Photo{}).Where("id = ?", photoID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNonExistingPhoto
		}

		for _, name := range names {
			tagID, err := getOrCreateHashTag(tx, name)
			if err != nil {
				return err
			}
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&domain.PhotoHashTag{PhotoID: photoID, HashTagID: tagID}).Error
			if err != nil {
				return fmt.Errorf("привязка тега %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка при сохранении тегов фото %d: %w", photoID, err)
	}
	return nil
}

// SetBackgroundColor назначает фото фоновый цвет, создавая его при необходимости
func (s *GormEnrichmentStorage) SetBackgroundColor(ctx context.Context, photoID uint, hex string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var color domain.BackGroundColor
		if err := tx.Where("name = ?", hex).Order("id").Limit(1).Find(&color).Error; err != nil {
			return err
		}
		if color.ID == 0 {
			color = domain.BackGroundColor{Name: hex}
			if err := tx.Create(&color).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&domain.Photo{}).Where("id = ?", photoID).Update("background_color_id", color.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNonExistingPhoto
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка при сохранении цвета фото %d: %w", photoID, err)
	}
	return nil
}
