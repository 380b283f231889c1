package di

import (
	"context"
	"errors"
	"io"

	"github.com/GoArmGo/Weplash/internal/adapter/imagga"
	"github.com/GoArmGo/Weplash/internal/adapter/kakao"
	"github.com/GoArmGo/Weplash/internal/adapter/storage/minio"
	"github.com/GoArmGo/Weplash/internal/app"
	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/database/client"
	"github.com/GoArmGo/Weplash/internal/database/postgres"
	"github.com/GoArmGo/Weplash/internal/database/storage"
	"github.com/GoArmGo/Weplash/internal/handler"
	"github.com/GoArmGo/Weplash/internal/logger"
	"github.com/GoArmGo/Weplash/internal/rabbitmq"
	"github.com/GoArmGo/Weplash/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые соединения закрываются.
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "weplash",
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []io.Closer
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			err = errors.Join(err, closers[i].Close())
		}
	}()

	// 2. Подключения к PostgreSQL: sqlx для миграций и справочников, GORM для домена
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	gormDB, err := postgres.NewGormDB(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, app.CloserFunc(func() error { return postgres.CloseGormDB(gormDB) }))

	// 3. Инициализация хранилищ
	userStorage := postgres.NewGormUserStorage(gormDB, slogger)
	socialStorage := postgres.NewGormSocialStorage(gormDB, slogger)
	photoStorage := postgres.NewGormPhotoStorage(gormDB, slogger, cfg.CuratorUserName)
	collectionStorage := postgres.NewGormCollectionStorage(gormDB, slogger, cfg.CuratorUserName)
	enrichmentStorage := postgres.NewGormEnrichmentStorage(gormDB, slogger)
	hashTagStorage := storage.NewHashTagStorage(dbClient.DB, slogger)

	// 4. Инициализация клиентов внешних сервисов
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger) // S3 / MinIO адаптер
	if err != nil {
		return nil, err
	}
	imaggaClient := imagga.NewClient(cfg, slogger)
	kakaoClient := kakao.NewClient(cfg, slogger)

	// 5. RabbitMQ: один клиент и публикует, и потребляет задачи обогащения
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, rabbitMQClient)

	// 6. Авторизация
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	passwords := auth.NewPasswordHasher(cfg.BcryptCost)

	// 7. Инициализация бизнес-логики (usecases)
	accountUseCase := usecase.NewAccountUseCase(
		userStorage,
		socialStorage,
		tokens,
		passwords,
		kakaoClient,
		cfg.DefaultProfileImage,
		slogger.With("component", "account_usecase"),
	)
	photoUseCase := usecase.NewPhotoUseCase(
		photoStorage,
		collectionStorage,
		userStorage,
		socialStorage,
		hashTagStorage,
		fileStorage,
		rabbitMQClient,
		usecase.PhotoOptions{
			CuratorUserName:     cfg.CuratorUserName,
			EditorialCategories: cfg.EditorialCategories,
		},
		slogger.With("component", "photo_usecase"),
	)
	enrichmentUseCase := usecase.NewEnrichmentUseCase(imaggaClient, enrichmentStorage, slogger.With("component", "enrichment"))

	// 8. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, app.Components{
		Migrator:       dbClient,
		Photos:         photoUseCase,
		Enrichment:     enrichmentUseCase,
		Consumer:       rabbitMQClient,
		Gate:           handler.NewAuthGate(tokens, userStorage, slogger),
		AccountHandler: handler.NewAccountHandler(accountUseCase, slogger),
		PhotoHandler:   handler.NewPhotoHandler(photoUseCase, cfg.UploadConcurrency, cfg.MaxUploadSize, slogger),
		HealthHandler:  handler.NewHealthHandler(dbClient, slogger),
		Closers:        closers,
	})

	slogger.Info("all dependencies initialized")
	return application, nil
}
