package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoArmGo/Weplash/internal/domain"
)

// GormSocialStorage хранит подписки и лайки
type GormSocialStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormSocialStorage(db *gorm.DB, logger *slog.Logger) *GormSocialStorage {
	return &GormSocialStorage{db: db, logger: logger}
}

// ToggleFollow переключает подписку fromUserID на toUserID и возвращает новое состояние
func (s *GormSocialStorage) ToggleFollow(ctx context.Context, fromUserID, toUserID uint) (bool, error) {
	var status bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = toggleStatus(tx,
			domain.Follow{FromUserID: fromUserID, ToUserID: toUserID, Status: true},
			"from_user_id = ? AND to_user_id = ?", fromUserID, toUserID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ошибка при переключении подписки: %w", err)
	}
	s.logger.Debug("follow toggled", "from", fromUserID, "to", toUserID, "status", status)
	return status, nil
}

func (s *GormSocialStorage) IsFollowing(ctx context.Context, fromUserID, toUserID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("from_user_id = ? AND to_user_id = ? AND status", fromUserID, toUserID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке подписки: %w", err)
	}
	return count > 0, nil
}

// ToggleLike переключает лайк фото и возвращает новое состояние
func (s *GormSocialStorage) ToggleLike(ctx context.Context, userID, photoID uint) (bool, error) {
	var status bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = toggleStatus(tx,
			domain.Like{UserID: userID, PhotoID: photoID, Status: true},
			"user_id = ? AND photo_id = ?", userID, photoID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ошибка при переключении лайка: %w", err)
	}
	s.logger.Debug("like toggled", "user_id", userID, "photo_id", photoID, "status", status)
	return status, nil
}

type statusRow interface {
	domain.Follow | domain.Like
}

// toggleStatus переключает status связи внутри транзакции tx.
// Первая отметка вставляет строку fresh со status=true; повторные
// блокируют строку и инвертируют status. Строки не удаляются.
func toggleStatus[T statusRow](tx *gorm.DB, fresh T, where string, args ...any) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var current []bool
	err := tx.Model(new(T)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(where, args...).
		Pluck("status", &current).Error
	if err != nil {
		return false, err
	}
	if len(current) == 0 {
		return false, errors.New("строка связи пропала после вставки")
	}

	next := !current[0]
	if err := tx.Model(new(T)).Where(where, args...).Update("status", next).Error; err != nil {
		return false, err
	}
	return next, nil
}
