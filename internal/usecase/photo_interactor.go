package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/core/ports"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
	"github.com/GoArmGo/Weplash/internal/metrics"
)

const (
	relatedPhotosLimit = 20
	previewSize        = 3
	objectKeyPrefix    = "photos/"
)

// PhotoOptions — настройки сценариев работы с фото
type PhotoOptions struct {
	CuratorUserName     string
	EditorialCategories []string
}

// photoUseCase implements PhotoUseCase
type photoUseCase struct {
	photos      ports.PhotoStorage
	collections ports.CollectionStorage
	users       ports.UserStorage
	social      ports.SocialStorage
	hashtags    ports.HashTagCatalog
	files       FileStorage
	publisher   ports.EnrichmentPublisher
	validate    *validator.Validate
	opts        PhotoOptions
	logger      *slog.Logger
}

// NewPhotoUseCase создает новый экземпляр PhotoUseCase
func NewPhotoUseCase(
	photos ports.PhotoStorage,
	collections ports.CollectionStorage,
	users ports.UserStorage,
	social ports.SocialStorage,
	hashtags ports.HashTagCatalog,
	files FileStorage,
	publisher ports.EnrichmentPublisher,
	opts PhotoOptions,
	logger *slog.Logger,
) PhotoUseCase {
	return &photoUseCase{
		photos:      photos,
		collections: collections,
		users:       users,
		social:      social,
		hashtags:    hashtags,
		files:       files,
		publisher:   publisher,
		validate:    validator.New(),
		opts:        opts,
		logger:      logger,
	}
}

func (uc *photoUseCase) Feed(ctx context.Context, params feed.Params, viewer auth.Viewer) ([]domain.FeedItem, error) {
	filter, err := feed.Build(params, viewer)
	if err != nil {
		return nil, err
	}
	return uc.photos.ListFeed(ctx, filter, viewer)
}

func (uc *photoUseCase) ColorFeed(ctx context.Context, params feed.Params, viewer auth.Viewer) ([]domain.ColorItem, error) {
	items, err := uc.Feed(ctx, params, viewer)
	if err != nil {
		return nil, err
	}
	colors := make([]domain.ColorItem, 0, len(items))
	for _, item := range items {
		colors = append(colors, domain.ColorItem{ID: item.ID, Image: item.Image, BackgroundColor: item.BackgroundColor})
	}
	return colors, nil
}

func (uc *photoUseCase) PhotoDetails(ctx context.Context, photoID uint, viewer auth.Viewer) (*domain.PhotoDetails, error) {
	return uc.photos.ViewPhoto(ctx, photoID, viewer)
}

func (uc *photoUseCase) Download(ctx context.Context, photoID uint) (int, error) {
	return uc.photos.IncrementDownloads(ctx, photoID)
}

func (uc *photoUseCase) requirePhoto(ctx context.Context, photoID uint) error {
	exists, err := uc.photos.PhotoExists(ctx, photoID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNonExistingPhoto
	}
	return nil
}

func (uc *photoUseCase) RelatedPhotos(ctx context.Context, photoID uint) (*domain.RelatedPhotos, error) {
	if err := uc.requirePhoto(ctx, photoID); err != nil {
		return nil, err
	}
	tags, err := uc.photos.ListPhotoTags(ctx, photoID)
	if err != nil {
		return nil, err
	}
	cards, err := uc.photos.ListRelatedPhotos(ctx, tags, photoID, relatedPhotosLimit)
	if err != nil {
		return nil, err
	}
	return &domain.RelatedPhotos{Tags: tags, Photos: cards}, nil
}

func (uc *photoUseCase) RelatedCollections(ctx context.Context, photoID uint) ([]domain.RelatedCollection, error) {
	if err := uc.requirePhoto(ctx, photoID); err != nil {
		return nil, err
	}
	return uc.collections.ListRelatedCollections(ctx, photoID, previewSize)
}

func (uc *photoUseCase) SearchHashTags(ctx context.Context) ([]string, error) {
	return uc.hashtags.ListHashTagNames(ctx)
}

func (uc *photoUseCase) UserCard(ctx context.Context, userName string, viewer auth.Viewer) (*domain.UserCard, error) {
	user, err := uc.users.GetUserByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	images, err := uc.photos.ListUserPhotoImages(ctx, user.ID, previewSize)
	if err != nil {
		return nil, err
	}

	follow := domain.FollowState{Self: viewer.Is(user.ID)}
	if viewerID, ok := viewer.UserID(); ok && !follow.Self {
		if follow.Following, err = uc.social.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}

	return &domain.UserCard{
		ID:               user.ID,
		UserFirstName:    user.FirstName,
		UserLastName:     user.LastName,
		UserName:         user.UserName,
		UserProfileImage: user.ProfileImage,
		Photos:           images,
		Follow:           follow,
	}, nil
}

// Upload проверяет изображение, кладёт файл в хранилище, сохраняет фото
// и публикует задачи обогащения. Если запись в БД не удалась, файл удаляется.
func (uc *photoUseCase) Upload(ctx context.Context, viewer auth.Viewer, in UploadInput) (photo *domain.Photo, err error) {
	start := time.Now()
	defer func() { metrics.RecordUpload(err) }()

	viewerID, ok := viewer.UserID()
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	location := strings.TrimSpace(in.Location)
	if in.File == nil || location == "" || in.Category == "" {
		return nil, domain.ErrKey
	}
	if err := uc.validate.Var(location, fmt.Sprintf("max=%d", domain.MaxLocationLength)); err != nil {
		return nil, domain.ErrValidation
	}

	category, err := uc.collections.GetEditorialCollection(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(in.File)
	if err != nil {
		return nil, fmt.Errorf("usecase: чтение файла: %w", err)
	}
	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}

	key := objectKey(in.FileName, format)
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "image/" + format
	}

	imageURL, err := uc.files.UploadFile(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("usecase: загрузка файла в хранилище: %w", err)
	}

	width, height := imgCfg.Width, imgCfg.Height
	photo = &domain.Photo{
		UserID:   &viewerID,
		Image:    imageURL,
		Location: &location,
		Width:    &width,
		Height:   &height,
	}
	if err = uc.photos.CreateUploadedPhoto(ctx, photo, location, category.ID); err != nil {
		if delErr := uc.files.DeleteFile(context.WithoutCancel(ctx), key); delErr != nil {
			uc.logger.Error("failed to delete orphaned file", "key", key, "error", delErr)
		}
		return nil, err
	}

	// фото уже сохранено: отключение клиента не должно отменять публикацию задач
	uc.publishEnrichment(context.WithoutCancel(ctx), photo)

	uc.logger.Info("photo uploaded",
		"photo_id", photo.ID,
		"user_id", viewerID,
		"category", category.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return photo, nil
}

// publishEnrichment ставит задачи тегов и цвета. Ошибки только логируются:
// фото уже сохранено.
func (uc *photoUseCase) publishEnrichment(ctx context.Context, photo *domain.Photo) {
	for _, job := range []payloads.Job{payloads.JobTags, payloads.JobColors} {
		payload := payloads.EnrichmentPayload{
			JobID:    uuid.NewString(),
			Job:      job,
			PhotoID:  photo.ID,
			ImageURL: photo.Image,
		}
		if err := uc.publisher.PublishEnrichmentJob(ctx, payload); err != nil {
			uc.logger.Error("failed to publish enrichment job", "job", job, "photo_id", photo.ID, "error", err)
		}
	}
}

// objectKey строит ключ объекта вида photos/<uuid><ext>
func objectKey(fileName, format string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = "." + format
	}
	return objectKeyPrefix + uuid.NewString() + ext
}

func (uc *photoUseCase) ToggleLike(ctx context.Context, viewer auth.Viewer, photoID uint) (bool, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return false, domain.ErrUnauthorized
	}
	if err := uc.requirePhoto(ctx, photoID); err != nil {
		return false, err
	}
	return uc.social.ToggleLike(ctx, viewerID, photoID)
}

func (uc *photoUseCase) ToggleCollectionPhoto(ctx context.Context, viewer auth.Viewer, collectionID, photoID uint) (bool, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return false, domain.ErrUnauthorized
	}
	collection, err := uc.collections.GetCollection(ctx, collectionID)
	if err != nil {
		return false, err
	}
	if collection.UserID != viewerID {
		return false, domain.ErrNonExistingCollection
	}
	if err := uc.requirePhoto(ctx, photoID); err != nil {
		return false, err
	}
	return uc.collections.ToggleCollectionPhoto(ctx, collectionID, photoID)
}

func (uc *photoUseCase) CreateCollection(ctx context.Context, viewer auth.Viewer, in CreateCollectionInput) (uint, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := uc.validate.Struct(in); err != nil {
		return 0, domain.ErrValidation
	}
	if in.PhotoID != nil {
		if err := uc.requirePhoto(ctx, *in.PhotoID); err != nil {
			return 0, err
		}
	}

	collection := &domain.Collection{
		UserID:      viewerID,
		Name:        in.Name,
		Description: in.Description,
		Private:     in.Private,
	}
	if err := uc.collections.CreateCollection(ctx, collection, in.PhotoID); err != nil {
		return 0, err
	}
	return collection.ID, nil
}

func (uc *photoUseCase) ViewerCollections(ctx context.Context, viewer auth.Viewer, photoID *uint) ([]domain.CollectionSummary, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return uc.collections.ListUserCollections(ctx, viewerID, photoID)
}

func (uc *photoUseCase) EnsureEditorialCategories(ctx context.Context) error {
	curatorID, err := uc.users.GetOrCreateCurator(ctx, uc.opts.CuratorUserName)
	if err != nil {
		return err
	}
	return uc.collections.EnsureCollections(ctx, curatorID, uc.opts.EditorialCategories)
}
