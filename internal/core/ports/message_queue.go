package ports

import (
	"context"

	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
)

// EnrichmentPublisher публикует задачи обогащения фото.
// Используется сценарием загрузки фото.
type EnrichmentPublisher interface {
	PublishEnrichmentJob(ctx context.Context, payload payloads.EnrichmentPayload) error
}

// EnrichmentConsumer используется воркером для получения задач из очереди
type EnrichmentConsumer interface {
	// StartConsumingEnrichmentJobs начинает прослушивание очереди;
	// handler вызывается для каждого полученного сообщения
	StartConsumingEnrichmentJobs(ctx context.Context, handler func(context.Context, payloads.EnrichmentPayload) error) error
}
