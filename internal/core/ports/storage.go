package ports

import (
	"context"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Методы Get* возвращают domain.ErrNonExistingUser, если пользователя нет.
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByKakaoID(ctx context.Context, kakaoID int64) (*domain.User, error)
	LinkKakaoID(ctx context.Context, userID uint, kakaoID int64) error
	UserExists(ctx context.Context, id uint) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UserNameExists(ctx context.Context, userName string) (bool, error)
	// GetOrCreateCurator возвращает ID кураторского аккаунта, создавая его при необходимости
	GetOrCreateCurator(ctx context.Context, userName string) (uint, error)
	ListInterests(ctx context.Context, userID uint) ([]string, error)
	ToggleInterest(ctx context.Context, userID uint, hashtag string) (bool, error)
	CountFollows(ctx context.Context, userID uint) (followers, followings int64, err error)
}

// SocialStorage хранит переключаемые связи: подписки и лайки
type SocialStorage interface {
	ToggleFollow(ctx context.Context, fromUserID, toUserID uint) (bool, error)
	IsFollowing(ctx context.Context, fromUserID, toUserID uint) (bool, error)
	ToggleLike(ctx context.Context, userID, photoID uint) (bool, error)
}

// PhotoStorage определяет методы для взаимодействия с хранилищем фотографий
type PhotoStorage interface {
	// CreateUploadedPhoto в одной транзакции сохраняет фото, тег локации и связь с категорией
	CreateUploadedPhoto(ctx context.Context, photo *domain.Photo, locationTag string, categoryID uint) error
	PhotoExists(ctx context.Context, id uint) (bool, error)
	// ViewPhoto увеличивает счётчик просмотров и возвращает карточку фото
	ViewPhoto(ctx context.Context, id uint, viewer auth.Viewer) (*domain.PhotoDetails, error)
	IncrementDownloads(ctx context.Context, id uint) (int, error)
	ListFeed(ctx context.Context, filter feed.Filter, viewer auth.Viewer) ([]domain.FeedItem, error)
	ListPhotoTags(ctx context.Context, photoID uint) ([]string, error)
	// ListRelatedPhotos возвращает фото, у которых есть хотя бы один из тегов, кроме exceptID
	ListRelatedPhotos(ctx context.Context, tags []string, exceptID uint, limit int) ([]domain.PhotoCard, error)
	ListUserPhotoImages(ctx context.Context, userID uint, limit int) ([]string, error)
}

// CollectionStorage определяет методы для работы с коллекциями
type CollectionStorage interface {
	EnsureCollections(ctx context.Context, ownerID uint, names []string) error
	GetEditorialCollection(ctx context.Context, name string) (*domain.Collection, error)
	GetCollection(ctx context.Context, id uint) (*domain.Collection, error)
	CreateCollection(ctx context.Context, collection *domain.Collection, photoID *uint) error
	ToggleCollectionPhoto(ctx context.Context, collectionID, photoID uint) (bool, error)
	ListRelatedCollections(ctx context.Context, photoID uint, previewSize int) ([]domain.RelatedCollection, error)
	ListUserCollections(ctx context.Context, userID uint, photoID *uint) ([]domain.CollectionSummary, error)
}

// EnrichmentStorage сохраняет результаты фонового обогащения фото
type EnrichmentStorage interface {
	AttachHashTags(ctx context.Context, photoID uint, names []string) error
	SetBackgroundColor(ctx context.Context, photoID uint, hex string) error
}

// HashTagCatalog отдаёт справочник тегов для строки поиска
type HashTagCatalog interface {
	ListHashTagNames(ctx context.Context) ([]string, error)
}
