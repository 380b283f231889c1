package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
)

// GormPhotoStorage реализует ports.PhotoStorage с использованием GORM
type GormPhotoStorage struct {
	db              *gorm.DB
	logger          *slog.Logger
	curatorUserName string
}

// NewGormPhotoStorage создаёт хранилище фото. curatorUserName — владелец
// редакционных коллекций, которые служат категориями ленты.
func NewGormPhotoStorage(db *gorm.DB, logger *slog.Logger, curatorUserName string) *GormPhotoStorage {
	return &GormPhotoStorage{db: db, logger: logger, curatorUserName: curatorUserName}
}

// CreateUploadedPhoto сохраняет фото, тег локации и связь с категорией в одной транзакции
func (s *GormPhotoStorage) CreateUploadedPhoto(ctx context.Context, photo *domain.Photo, locationTag string, categoryID uint) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("сохранение фото: %w", err)
		}

		tagID, err := getOrCreateHashTag(tx, locationTag)
		if err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.PhotoHashTag{PhotoID: photo.ID, HashTagID: tagID}).Error; err != nil {
			return fmt.Errorf("привязка тега локации: %w", err)
		}

		if err := tx.Create(&domain.PhotoCollection{PhotoID: photo.ID, CollectionID: categoryID}).Error; err != nil {
			return fmt.Errorf("привязка к категории: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to save uploaded photo", "error", err)
		return fmt.Errorf("ошибка при сохранении загруженного фото: %w", err)
	}

	s.logger.Info("photo saved successfully",
		"id", photo.ID,
		"category_id", categoryID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GormPhotoStorage) PhotoExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Photo{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ошибка проверки фото: %w", err)
	}
	return count > 0, nil
}

// ViewPhoto атомарно увеличивает счётчик просмотров и возвращает карточку фото
func (s *GormPhotoStorage) ViewPhoto(ctx context.Context, id uint, viewer auth.Viewer) (*domain.PhotoDetails, error) {
	db := s.db.WithContext(ctx)

	res := db.Model(&domain.Photo{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("ошибка при увеличении просмотров: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNonExistingPhoto
	}

	var photo domain.Photo
	if err := db.Preload("User").Preload("BackgroundColor").First(&photo, id).Error; err != nil {
		return nil, notFound(err, domain.ErrNonExistingPhoto)
	}

	tags, err := s.ListPhotoTags(ctx, id)
	if err != nil {
		return nil, err
	}

	items := []domain.FeedItem{domain.NewFeedItem(&photo)}
	if err := s.decorate(ctx, items, viewer); err != nil {
		return nil, err
	}

	return &domain.PhotoDetails{FeedItem: items[0], Tags: tags, CreatedAt: photo.CreatedAt}, nil
}

// IncrementDownloads увеличивает счётчик скачиваний и возвращает новое значение
func (s *GormPhotoStorage) IncrementDownloads(ctx context.Context, id uint) (int, error) {
	var photo domain.Photo
	res := s.db.WithContext(ctx).Model(&photo).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "downloads"}}}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("ошибка при увеличении скачиваний: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrNonExistingPhoto
	}
	return photo.Downloads, nil
}

// ListPhotoTags возвращает имена тегов фото в порядке привязки
func (s *GormPhotoStorage) ListPhotoTags(ctx context.Context, photoID uint) ([]string, error) {
	names := make([]string, 0)
	err := s.db.WithContext(ctx).
		Table("hashtags").
		Joins("JOIN photos_hashtags ph ON ph.hashtag_id = hashtags.id").
		Where("ph.photo_id = ?", photoID).
		Order("ph.id").
		Pluck("hashtags.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении тегов фото: %w", err)
	}
	return names, nil
}

// ListRelatedPhotos возвращает фото, у которых есть хотя бы один из тегов
func (s *GormPhotoStorage) ListRelatedPhotos(ctx context.Context, tags []string, exceptID uint, limit int) ([]domain.PhotoCard, error) {
	cards := make([]domain.PhotoCard, 0)
	if len(tags) == 0 {
		return cards, nil
	}

	db := s.db.WithContext(ctx)
	tagged := db.Table("photos_hashtags ph").
		Select("ph.photo_id").
		Joins("JOIN hashtags h ON h.id = ph.hashtag_id").
		Where("h.name IN ?", tags)

	var photos []domain.Photo
	err := db.Preload("User").
		Where("photos.id IN (?)", tagged).
		Where("photos.id <> ?", exceptID).
		Order("photos.id DESC").
		Limit(limit).
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске похожих фото: %w", err)
	}

	for i := range photos {
		cards = append(cards, domain.NewPhotoCard(&photos[i]))
	}
	return cards, nil
}

// ListUserPhotoImages возвращает адреса первых загруженных пользователем фото
func (s *GormPhotoStorage) ListUserPhotoImages(ctx context.Context, userID uint, limit int) ([]string, error) {
	images := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&domain.Photo{}).
		Where("user_id = ?", userID).
		Order("id").
		Limit(limit).
		Pluck("image", &images).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении фото пользователя: %w", err)
	}
	return images, nil
}
