package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/GoArmGo/Weplash/internal/core/ports"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
	"github.com/GoArmGo/Weplash/internal/metrics"
)

// TagConfidenceThreshold — теги с уверенностью не выше порога отбрасываются
const TagConfidenceThreshold = 30.0

// enrichmentUseCase implements EnrichmentUseCase
type enrichmentUseCase struct {
	vision  VisionClient
	storage ports.EnrichmentStorage
	logger  *slog.Logger
}

// NewEnrichmentUseCase создает обработчик задач обогащения
func NewEnrichmentUseCase(vision VisionClient, storage ports.EnrichmentStorage, logger *slog.Logger) EnrichmentUseCase {
	return &enrichmentUseCase{vision: vision, storage: storage, logger: logger}
}

// HandleJob выполняет одну задачу. Ответ сервиса распознавания проверяется
// целиком до записи, так что при ошибке в БД ничего не попадает.
func (uc *enrichmentUseCase) HandleJob(ctx context.Context, job payloads.EnrichmentPayload) (err error) {
	start := time.Now()
	defer func() { metrics.RecordEnrichmentJob(string(job.Job), err) }()

	switch job.Job {
	case payloads.JobTags:
		err = uc.tags(ctx, job)
	case payloads.JobColors:
		err = uc.colors(ctx, job)
	default:
		err = fmt.Errorf("неизвестный вид задачи: %q", job.Job)
	}
	if err != nil {
		return err
	}

	uc.logger.Info("enrichment job done",
		"job", job.Job,
		"photo_id", job.PhotoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (uc *enrichmentUseCase) tags(ctx context.Context, job payloads.EnrichmentPayload) error {
	tags, err := uc.vision.Tags(ctx, job.ImageURL)
	if err != nil {
		return fmt.Errorf("получение тегов: %w", err)
	}

	names := confidentTagNames(tags)
	if len(names) == 0 {
		return nil
	}
	if err := uc.storage.AttachHashTags(ctx, job.PhotoID, names); err != nil {
		return err
	}
	metrics.EnrichmentTagsAttached.Add(float64(len(names)))
	return nil
}

func (uc *enrichmentUseCase) colors(ctx context.Context, job payloads.EnrichmentPayload) error {
	color, err := uc.vision.BackgroundColor(ctx, job.ImageURL)
	if err != nil {
		return fmt.Errorf("получение цвета: %w", err)
	}
	return uc.storage.SetBackgroundColor(ctx, job.PhotoID, color)
}

// confidentTagNames оставляет теги с уверенностью строго выше порога, без повторов.
// Теги длиннее колонки hashtags.name пропускаются.
func confidentTagNames(tags []domain.ImageTag) []string {
	seen := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Confidence <= TagConfidenceThreshold || utf8.RuneCountInString(t.Name) > domain.MaxHashTagLength {
			continue
		}
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		names = append(names, t.Name)
	}
	return names
}
