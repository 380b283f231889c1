package app

import (
	"context"
	"fmt"
)

// runWorker потребляет задачи обогащения до отмены ctx
func (a *App) runWorker(ctx context.Context) error {
	if err := a.Consumer.StartConsumingEnrichmentJobs(ctx, a.Enrichment.HandleJob); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	a.logger.Info("worker started, waiting for enrichment jobs")

	<-ctx.Done()
	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}
