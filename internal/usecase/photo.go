package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
// порт для хранения бинарных данных (самих изображений)
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его публичный URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет файл из хранилища по его ключу
	DeleteFile(ctx context.Context, key string) error
}

// VisionClient — порт сервиса распознавания изображений
type VisionClient interface {
	Tags(ctx context.Context, imageURL string) ([]domain.ImageTag, error)
	BackgroundColor(ctx context.Context, imageURL string) (string, error)
}

// UploadInput — загружаемый файл и поля формы
type UploadInput struct {
	File        io.Reader
	FileName    string
	ContentType string
	Location    string
	Category    string
}

// CreateCollectionInput — данные новой коллекции
type CreateCollectionInput struct {
	Name        string  `validate:"required,max=45"`
	Description *string `validate:"omitempty,max=200"`
	Private     bool
	PhotoID     *uint
}

// PhotoUseCase определяет интерфейс для бизнес-логики работы с фото и коллекциями
type PhotoUseCase interface {
	// Feed возвращает страницу ленты по параметрам запроса
	Feed(ctx context.Context, params feed.Params, viewer auth.Viewer) ([]domain.FeedItem, error)

	// ColorFeed — та же лента в компактном виде (id, image, background_color)
	ColorFeed(ctx context.Context, params feed.Params, viewer auth.Viewer) ([]domain.ColorItem, error)

	// PhotoDetails возвращает карточку фото и увеличивает счётчик просмотров
	PhotoDetails(ctx context.Context, photoID uint, viewer auth.Viewer) (*domain.PhotoDetails, error)

	// Download увеличивает счётчик скачиваний и возвращает новое значение
	Download(ctx context.Context, photoID uint) (int, error)

	RelatedPhotos(ctx context.Context, photoID uint) (*domain.RelatedPhotos, error)
	RelatedCollections(ctx context.Context, photoID uint) ([]domain.RelatedCollection, error)

	// SearchHashTags возвращает все теги для строки поиска
	SearchHashTags(ctx context.Context) ([]string, error)

	UserCard(ctx context.Context, userName string, viewer auth.Viewer) (*domain.UserCard, error)

	// Upload сохраняет фото зрителя и ставит задачи обогащения
	Upload(ctx context.Context, viewer auth.Viewer, in UploadInput) (*domain.Photo, error)

	ToggleLike(ctx context.Context, viewer auth.Viewer, photoID uint) (bool, error)
	ToggleCollectionPhoto(ctx context.Context, viewer auth.Viewer, collectionID, photoID uint) (bool, error)
	CreateCollection(ctx context.Context, viewer auth.Viewer, in CreateCollectionInput) (uint, error)

	// ViewerCollections возвращает коллекции зрителя; если photoID задан,
	// отмечает, в каких из них лежит это фото
	ViewerCollections(ctx context.Context, viewer auth.Viewer, photoID *uint) ([]domain.CollectionSummary, error)

	// EnsureEditorialCategories создаёт кураторский аккаунт и его категории
	EnsureEditorialCategories(ctx context.Context) error
}

// EnrichmentUseCase обрабатывает задачи фонового обогащения фото
type EnrichmentUseCase interface {
	HandleJob(ctx context.Context, job payloads.EnrichmentPayload) error
}
