package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/GoArmGo/Weplash/internal/domain"
)

// GormCollectionStorage реализует ports.CollectionStorage с использованием GORM
type GormCollectionStorage struct {
	db              *gorm.DB
	logger          *slog.Logger
	curatorUserName string
}

func NewGormCollectionStorage(db *gorm.DB, logger *slog.Logger, curatorUserName string) *GormCollectionStorage {
	return &GormCollectionStorage{db: db, logger: logger, curatorUserName: curatorUserName}
}

// EnsureCollections создаёт недостающие коллекции владельца с указанными именами
func (s *GormCollectionStorage) EnsureCollections(ctx context.Context, ownerID uint, names []string) error {
	db := s.db.WithContext(ctx)
	for _, name := range names {
		collection := domain.Collection{UserID: ownerID, Name: name}
		if err := db.Where(domain.Collection{UserID: ownerID, Name: name}).FirstOrCreate(&collection).Error; err != nil {
			return fmt.Errorf("ошибка при создании коллекции %q: %w", name, err)
		}
	}
	s.logger.Info("editorial collections ensured", "owner_id", ownerID, "count", len(names))
	return nil
}

// GetEditorialCollection возвращает коллекцию кураторского аккаунта по имени
func (s *GormCollectionStorage) GetEditorialCollection(ctx context.Context, name string) (*domain.Collection, error) {
	var collection domain.Collection
	err := s.db.WithContext(ctx).
		Joins("JOIN users u ON u.id = collections.user_id").
		Where("u.user_name = ? AND collections.name = ?", s.curatorUserName, name).
		Order("collections.id").
		First(&collection).Error
	if err != nil {
		return nil, notFound(err, domain.ErrNonExistingCollection)
	}
	return &collection, nil
}

func (s *GormCollectionStorage) GetCollection(ctx context.Context, id uint) (*domain.Collection, error) {
	var collection domain.Collection
	if err := s.db.WithContext(ctx).First(&collection, id).Error; err != nil {
		return nil, notFound(err, domain.ErrNonExistingCollection)
	}
	return &collection, nil
}

// CreateCollection создаёт коллекцию и, если задан photoID, сразу кладёт в неё фото
func (s *GormCollectionStorage) CreateCollection(ctx context.Context, collection *domain.Collection, photoID *uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(collection).Error; err != nil {
			return err
		}
		if photoID == nil {
			return nil
		}
		return tx.Create(&domain.PhotoCollection{PhotoID: *photoID, CollectionID: collection.ID}).Error
	})
	if err != nil {
		return fmt.Errorf("ошибка при создании коллекции: %w", err)
	}
	return nil
}

// ToggleCollectionPhoto кладёт фото в коллекцию или убирает его оттуда.
// Возвращает true, если фото теперь в коллекции.
func (s *GormCollectionStorage) ToggleCollectionPhoto(ctx context.Context, collectionID, photoID uint) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection_id = ? AND photo_id = ?", collectionID, photoID).Delete(&domain.PhotoCollection{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		added = true
		return tx.Create(&domain.PhotoCollection{PhotoID: photoID, CollectionID: collectionID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("ошибка при изменении коллекции: %w", err)
	}
	return added, nil
}

type relatedCollectionRow struct {
	ID            uint
	Name          string
	UserFirstName string
	UserLastName  string
	PhotosNumber  int64
}

// ListRelatedCollections возвращает публичные пользовательские коллекции,
// в которых лежит фото. Коллекции куратора не учитываются.
func (s *GormCollectionStorage) ListRelatedCollections(ctx context.Context, photoID uint, previewSize int) ([]domain.RelatedCollection, error) {
	db := s.db.WithContext(ctx)

	containing := db.Model(&domain.PhotoCollection{}).Select("collection_id").Where("photo_id = ?", photoID)

	var rows []relatedCollectionRow
	err := db.Table("collections c").
		Select(`c.id, c.name, u.first_name AS user_first_name, u.last_name AS user_last_name,
			(SELECT COUNT(*) FROM photos_collections x WHERE x.collection_id = c.id) AS photos_number`).
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.id IN (?)", containing).
		Where("u.user_name <> ? AND NOT c.private", s.curatorUserName).
		Order("c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении связанных коллекций: %w", err)
	}

	result := make([]domain.RelatedCollection, 0, len(rows))
	for _, row := range rows {
		images := make([]string, 0, previewSize)
		err := db.Table("photos p").
			Joins("JOIN photos_collections pc ON pc.photo_id = p.id").
			Where("pc.collection_id = ?", row.ID).
			Order("pc.id").
			Limit(previewSize).
			Pluck("p.image", &images).Error
		if err != nil {
			return nil, fmt.Errorf("ошибка при получении превью коллекции: %w", err)
		}

		firstPhoto := db.Model(&domain.PhotoCollection{}).
			Select("photo_id").
			Where("collection_id = ?", row.ID).
			Order("id").
			Limit(1)
		tags := make([]string, 0, previewSize)
		err = db.Table("hashtags h").
			Joins("JOIN photos_hashtags ph ON ph.hashtag_id = h.id").
			Where("ph.photo_id = (?)", firstPhoto).
			Order("ph.id").
			Limit(previewSize).
			Pluck("h.name", &tags).Error
		if err != nil {
			return nil, fmt.Errorf("ошибка при получении тегов коллекции: %w", err)
		}

		result = append(result, domain.RelatedCollection{
			ID:            row.ID,
			Images:        images,
			Name:          row.Name,
			PhotosNumber:  row.PhotosNumber,
			UserFirstName: row.UserFirstName,
			UserLastName:  row.UserLastName,
			Tags:          tags,
		})
	}
	return result, nil
}

// ListUserCollections возвращает коллекции пользователя с числом фото.
// Если photoID задан, Contains показывает, лежит ли это фото в коллекции.
func (s *GormCollectionStorage) ListUserCollections(ctx context.Context, userID uint, photoID *uint) ([]domain.CollectionSummary, error) {
	db := s.db.WithContext(ctx)

	contains := "FALSE"
	args := []any{}
	if photoID != nil {
		contains = "EXISTS (SELECT 1 FROM photos_collections y WHERE y.collection_id = c.id AND y.photo_id = ?)"
		args = append(args, *photoID)
	}

	summaries := make([]domain.CollectionSummary, 0)
	err := db.Table("collections c").
		Select(`c.id, c.name, c.private,
			(SELECT COUNT(*) FROM photos_collections x WHERE x.collection_id = c.id) AS photos_number,
			`+contains+` AS contains`, args...).
		Where("c.user_id = ?", userID).
		Order("c.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении коллекций пользователя: %w", err)
	}
	return summaries, nil
}
