package domain

import (
	"time"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	UserName     string    `json:"user_name" gorm:"uniqueIndex"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Password     string    `json:"-"`
	ProfileImage *string   `json:"profile_image"`
	IsActive     bool      `json:"is_active"`
	KakaoID      *int64    `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Follow — подписка from_user -> to_user. Строка не удаляется при отписке,
// меняется только Status.
type Follow struct {
	ID         uint `gorm:"primaryKey"`
	FromUserID uint
	ToUserID   uint
	Status     bool
}

func (Follow) TableName() string {
	return "follows"
}

// UserInterest связывает пользователя с хэштегами, которые ему интересны
type UserInterest struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint
	HashTagID uint `gorm:"column:hashtag_id"`
}

func (UserInterest) TableName() string {
	return "users_interests"
}

// KakaoProfile — данные пользователя, полученные от Kakao
type KakaoProfile struct {
	ID    int64
	Email string
	// EmailVerified — Kakao подтвердил, что адрес действителен и принадлежит владельцу
	EmailVerified bool
	Nickname      string
	ProfileImage  string
}
