package domain

import (
	"time"
)

// Photo представляет модель фотографии в системе,
// соответствует таблице photos в бд
type Photo struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	UserID            *uint            `json:"user_id"`
	User              *User            `json:"-" gorm:"foreignKey:UserID"`
	Image             string           `json:"image"`
	Location          *string          `json:"location"`
	Downloads         int              `json:"downloads"`
	Views             int              `json:"views"`
	Width             *int             `json:"width"`
	Height            *int             `json:"height"`
	BackgroundColorID *uint            `json:"-"`
	BackgroundColor   *BackGroundColor `json:"-" gorm:"foreignKey:BackgroundColorID"`
	CreatedAt         time.Time        `json:"created_at"`
}

func (Photo) TableName() string {
	return "photos"
}

// Ограничения длины в символах, совпадают с ширинами колонок в схеме
const (
	MaxLocationLength    = 200
	MaxHashTagLength     = 200
	MaxDescriptionLength = 200
)

// HashTag представляет модель тега. Имя не уникально на уровне схемы.
type HashTag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (HashTag) TableName() string {
	return "hashtags"
}

// PhotoHashTag связующая модель Many-to-Many между Photo и HashTag
type PhotoHashTag struct {
	ID        uint `gorm:"primaryKey"`
	PhotoID   uint
	HashTagID uint `gorm:"column:hashtag_id"`
}

func (PhotoHashTag) TableName() string {
	return "photos_hashtags"
}

// Collection — подборка фотографий пользователя.
// Коллекции кураторского аккаунта используются как категории ленты.
type Collection struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	UserID      uint    `json:"user_id"`
	User        *User   `json:"-" gorm:"foreignKey:UserID"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Private     bool    `json:"private"`
}

func (Collection) TableName() string {
	return "collections"
}

// PhotoCollection связующая модель между Photo и Collection
type PhotoCollection struct {
	ID           uint `gorm:"primaryKey"`
	PhotoID      uint
	CollectionID uint
}

func (PhotoCollection) TableName() string {
	return "photos_collections"
}

// Like — отметка "нравится". Как и Follow, только переключается.
type Like struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint
	PhotoID uint
	Status  bool
}

func (Like) TableName() string {
	return "likes"
}

// BackGroundColor — фоновый цвет фотографии (hex), заполняется асинхронно
type BackGroundColor struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (BackGroundColor) TableName() string {
	return "background_colors"
}

// ImageTag — тег, который вернул сервис распознавания изображений
type ImageTag struct {
	Name       string
	Confidence float64
}
