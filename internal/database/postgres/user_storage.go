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

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser вставляет пользователя. Нарушение уникальности возвращается
// как domain.ErrEmailExists или domain.ErrUserNameExists.
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.duplicateUserError(ctx, user.Email)
	}
	if err != nil {
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}
	return nil
}

// duplicateUserError определяет, какое уникальное поле уже занято.
// Email проверяется первым, как и при регистрации.
func (s *GormUserStorage) duplicateUserError(ctx context.Context, email string) error {
	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("ошибка при проверке email: %w", err)
	}
	if exists {
		return domain.ErrEmailExists
	}
	return domain.ErrUserNameExists
}

func (s *GormUserStorage) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, notFound(err, domain.ErrNonExistingUser)
	}
	return &user, nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *GormUserStorage) GetUserByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return s.getUser(ctx, "user_name = ?", userName)
}

func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *GormUserStorage) GetUserByKakaoID(ctx context.Context, kakaoID int64) (*domain.User, error) {
	return s.getUser(ctx, "kakao_id = ?", kakaoID)
}

// LinkKakaoID привязывает аккаунт Kakao к существующему пользователю
func (s *GormUserStorage) LinkKakaoID(ctx context.Context, userID uint, kakaoID int64) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("kakao_id", kakaoID)
	if res.Error != nil {
		return fmt.Errorf("ошибка при привязке kakao_id: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNonExistingUser
	}
	return nil
}

func (s *GormUserStorage) exists(ctx context.Context, model any, query string, arg any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, arg).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ошибка проверки существования: %w", err)
	}
	return count > 0, nil
}

func (s *GormUserStorage) UserExists(ctx context.Context, id uint) (bool, error) {
	return s.exists(ctx, &domain.User{}, "id = ?", id)
}

func (s *GormUserStorage) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, &domain.User{}, "email = ?", email)
}

func (s *GormUserStorage) UserNameExists(ctx context.Context, userName string) (bool, error) {
	return s.exists(ctx, &domain.User{}, "user_name = ?", userName)
}

// GetOrCreateCurator получает или создает кураторский аккаунт в бд
func (s *GormUserStorage) GetOrCreateCurator(ctx context.Context, userName string) (uint, error) {
	user := domain.User{
		UserName: userName,
		Email:    userName + "@curator.local",
		IsActive: true,
	}
	err := s.db.WithContext(ctx).
		Where(domain.User{UserName: userName}).
		Attrs(user).
		FirstOrCreate(&user).Error
	if err != nil {
		return 0, fmt.Errorf("ошибка при поиске или создании куратора: %w", err)
	}
	s.logger.Info("curator account ready", "user_name", userName, "id", user.ID)
	return user.ID, nil
}

// ListInterests возвращает теги, отмеченные пользователем как интересные
func (s *GormUserStorage) ListInterests(ctx context.Context, userID uint) ([]string, error) {
	names := make([]string, 0)
	err := s.db.WithContext(ctx).
		Table("hashtags").
		Joins("JOIN users_interests ui ON ui.hashtag_id = hashtags.id").
		Where("ui.user_id = ?", userID).
		Order("ui.id").
		Pluck("hashtags.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении интересов: %w", err)
	}
	return names, nil
}

// ToggleInterest добавляет тег в интересы пользователя или убирает его оттуда.
// Возвращает true, если интерес добавлен.
func (s *GormUserStorage) ToggleInterest(ctx context.Context, userID uint, hashtag string) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tagID, err := getOrCreateHashTag(tx, hashtag)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND hashtag_id = ?", userID, tagID).Delete(&domain.UserInterest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		added = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.UserInterest{UserID: userID, HashTagID: tagID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("ошибка при изменении интереса: %w", err)
	}
	return added, nil
}

// CountFollows считает активных подписчиков и подписки пользователя
func (s *GormUserStorage) CountFollows(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, followings int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&domain.Follow{}).Where("to_user_id = ? AND status", userID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта подписчиков: %w", err)
	}
	if err := db.Model(&domain.Follow{}).Where("from_user_id = ? AND status", userID).Count(&followings).Error; err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта подписок: %w", err)
	}
	return followers, followings, nil
}

// getOrCreateHashTag возвращает ID тега с таким именем, создавая его при необходимости.
// Имя тега не уникально в схеме, берётся самый старый.
func getOrCreateHashTag(tx *gorm.DB, name string) (uint, error) {
	var tag domain.HashTag
	err := tx.Where("name = ?", name).Order("id").Limit(1).Find(&tag).Error
	if err != nil {
		return 0, fmt.Errorf("ошибка поиска тега %q: %w", name, err)
	}
	if tag.ID != 0 {
		return tag.ID, nil
	}
	tag = domain.HashTag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		return 0, fmt.Errorf("ошибка создания тега %q: %w", name, err)
	}
	return tag.ID, nil
}
