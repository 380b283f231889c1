package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/core/ports"
	"github.com/GoArmGo/Weplash/internal/handler"
	"github.com/GoArmGo/Weplash/internal/usecase"
)

// Migrator применяет схему БД перед стартом сервера
type Migrator interface {
	ApplyMigrations(databaseURL string) error
}

// CloserFunc превращает функцию закрытия в io.Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// Components — всё, что собирает контейнер зависимостей
type Components struct {
	Migrator       Migrator
	Photos         usecase.PhotoUseCase
	Enrichment     usecase.EnrichmentUseCase
	Consumer       ports.EnrichmentConsumer
	Gate           *handler.AuthGate
	AccountHandler *handler.AccountHandler
	PhotoHandler   *handler.PhotoHandler
	HealthHandler  *handler.HealthHandler
	// Closers закрываются в обратном порядке при завершении
	Closers []io.Closer
}

type App struct {
	cfg    *config.Config
	logger *slog.Logger
	Components
}

func NewApp(cfg *config.Config, logger *slog.Logger, components Components) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		Components: components,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в режиме server или worker и блокируется до сигнала завершения
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case "server":
		err = a.runServer(ctx)
	case "worker":
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Close(); closeErr != nil {
		a.logger.Error("failed to release resources", "error", closeErr)
	}
	return err
}

// Close закрывает все ресурсы приложения
func (a *App) Close() error {
	var errs []error
	for i := len(a.Closers) - 1; i >= 0; i-- {
		if err := a.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.Closers = nil
	return errors.Join(errs...)
}
