package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// HashTagStorage — справочник тегов на sqlx для строки поиска
type HashTagStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewHashTagStorage(db *sqlx.DB, logger *slog.Logger) *HashTagStorage {
	return &HashTagStorage{db: db, logger: logger}
}

// ListHashTagNames возвращает имена всех тегов без повторов, по алфавиту
func (s *HashTagStorage) ListHashTagNames(ctx context.Context) ([]string, error) {
	start := time.Now()

	names := make([]string, 0)
	query := `SELECT DISTINCT name FROM hashtags ORDER BY name`

	if err := s.db.SelectContext(ctx, &names, query); err != nil {
		s.logger.Error("failed to list hashtags", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка тегов: %w", err)
	}

	s.logger.Debug("hashtags listed",
		"count", len(names),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return names, nil
}
