package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
)

// ListFeed исполняет фильтр ленты: одна страница фото, новые первыми,
// с состоянием лайка и коллекции для зрителя.
// Неизвестный пользователь, тег или коллекция дают domain.ErrKey.
func (s *GormPhotoStorage) ListFeed(ctx context.Context, f feed.Filter, viewer auth.Viewer) ([]domain.FeedItem, error) {
	start := time.Now()
	items := make([]domain.FeedItem, 0)
	if f.Kind == feed.KindEmpty {
		return items, nil
	}

	db := s.db.WithContext(ctx)
	scope, err := s.feedScope(db, f, viewer)
	if err != nil {
		return nil, err
	}

	var photos []domain.Photo
	err = db.Scopes(scope).
		Preload("User").
		Preload("BackgroundColor").
		Order("photos.id DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении ленты: %w", err)
	}

	for i := range photos {
		items = append(items, domain.NewFeedItem(&photos[i]))
	}
	if err := s.decorate(ctx, items, viewer); err != nil {
		return nil, err
	}

	s.logger.Debug("feed listed",
		"kind", f.Kind.String(),
		"count", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

type scopeFunc = func(*gorm.DB) *gorm.DB

// feedScope переводит фильтр в условие на photos, заранее проверяя,
// что пользователь, тег или коллекция существуют
func (s *GormPhotoStorage) feedScope(db *gorm.DB, f feed.Filter, viewer auth.Viewer) (scopeFunc, error) {
	switch f.Kind {
	case feed.KindAll:
		return func(q *gorm.DB) *gorm.DB { return q }, nil

	case feed.KindEditorial:
		collectionID, err := s.resolveCollection(db, s.curatorUserName, f.Name, viewer)
		if err != nil {
			return nil, err
		}
		return inCollection(db, collectionID), nil

	case feed.KindFollowing:
		followed := db.Model(&domain.Follow{}).
			Select("to_user_id").
			Where("from_user_id = ? AND status", f.UserID)
		return func(q *gorm.DB) *gorm.DB { return q.Where("photos.user_id IN (?)", followed) }, nil

	case feed.KindUploads:
		userID, err := s.resolveUser(db, f.UserName, f.UserID)
		if err != nil {
			return nil, err
		}
		return func(q *gorm.DB) *gorm.DB { return q.Where("photos.user_id = ?", userID) }, nil

	case feed.KindLikes:
		userID, err := s.resolveUser(db, f.UserName, f.UserID)
		if err != nil {
			return nil, err
		}
		liked := db.Model(&domain.Like{}).
			Select("photo_id").
			Where("user_id = ? AND status", userID)
		return func(q *gorm.DB) *gorm.DB { return q.Where("photos.id IN (?)", liked) }, nil

	case feed.KindCollection:
		userID, err := s.resolveUser(db, f.UserName, f.UserID)
		if err != nil {
			return nil, err
		}
		collectionID, err := s.resolveUserCollection(db, userID, f.Name, viewer)
		if err != nil {
			return nil, err
		}
		return inCollection(db, collectionID), nil

	case feed.KindHashtag:
		var count int64
		if err := db.Model(&domain.HashTag{}).Where("name = ?", f.Name).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("ошибка поиска тега: %w", err)
		}
		if count == 0 {
			return nil, domain.ErrKey
		}
		tagged := db.Table("photos_hashtags ph").
			Select("ph.photo_id").
			Joins("JOIN hashtags h ON h.id = ph.hashtag_id").
			Where("h.name = ?", f.Name)
		return func(q *gorm.DB) *gorm.DB { return q.Where("photos.id IN (?)", tagged) }, nil
	}
	return nil, fmt.Errorf("неизвестный вид ленты: %s", f.Kind)
}

func inCollection(db *gorm.DB, collectionID uint) scopeFunc {
	members := db.Model(&domain.PhotoCollection{}).
		Select("photo_id").
		Where("collection_id = ?", collectionID)
	return func(q *gorm.DB) *gorm.DB { return q.Where("photos.id IN (?)", members) }
}

// resolveUser возвращает ID пользователя: по имени, если оно задано, иначе id как есть
func (s *GormPhotoStorage) resolveUser(db *gorm.DB, userName string, id uint) (uint, error) {
	if userName == "" {
		return id, nil
	}
	var user domain.User
	if err := db.Select("id").Where("user_name = ?", userName).First(&user).Error; err != nil {
		return 0, notFound(err, domain.ErrKey)
	}
	return user.ID, nil
}

func (s *GormPhotoStorage) resolveCollection(db *gorm.DB, ownerName, name string, viewer auth.Viewer) (uint, error) {
	ownerID, err := s.resolveUser(db, ownerName, 0)
	if err != nil {
		return 0, err
	}
	return s.resolveUserCollection(db, ownerID, name, viewer)
}

// resolveUserCollection ищет коллекцию владельца по имени.
// Чужая приватная коллекция считается несуществующей.
func (s *GormPhotoStorage) resolveUserCollection(db *gorm.DB, ownerID uint, name string, viewer auth.Viewer) (uint, error) {
	var collection domain.Collection
	err := db.Where("user_id = ? AND name = ?", ownerID, name).Order("id").First(&collection).Error
	if err != nil {
		return 0, notFound(err, domain.ErrKey)
	}
	if collection.Private && !viewer.Is(ownerID) {
		return 0, domain.ErrKey
	}
	return collection.ID, nil
}

// decorate заполняет Like и Collection двумя пакетными запросами на страницу
func (s *GormPhotoStorage) decorate(ctx context.Context, items []domain.FeedItem, viewer auth.Viewer) error {
	viewerID, ok := viewer.UserID()
	if !ok || len(items) == 0 {
		return nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	db := s.db.WithContext(ctx)

	var liked []uint
	err := db.Model(&domain.Like{}).
		Where("user_id = ? AND status AND photo_id IN ?", viewerID, ids).
		Pluck("photo_id", &liked).Error
	if err != nil {
		return fmt.Errorf("ошибка при получении лайков: %w", err)
	}

	var collected []uint
	err = db.Table("photos_collections pc").
		Joins("JOIN collections c ON c.id = pc.collection_id").
		Where("c.user_id = ? AND pc.photo_id IN ?", viewerID, ids).
		Pluck("pc.photo_id", &collected).Error
	if err != nil {
		return fmt.Errorf("ошибка при получении коллекций: %w", err)
	}

	likedSet := toSet(liked)
	collectedSet := toSet(collected)
	for i := range items {
		_, items[i].Like = likedSet[items[i].ID]
		_, items[i].Collection = collectedSet[items[i].ID]
	}
	return nil
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
