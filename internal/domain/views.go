package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// FeedItem — строка ленты вместе с состоянием лайка и коллекции текущего зрителя
type FeedItem struct {
	ID               uint    `json:"id"`
	Image            string  `json:"image"`
	Location         *string `json:"location"`
	Width            *int    `json:"width"`
	Height           *int    `json:"height"`
	Views            int     `json:"views"`
	Downloads        int     `json:"downloads"`
	BackgroundColor  *string `json:"background_color"`
	UserID           *uint   `json:"user_id"`
	UserName         string  `json:"user_name"`
	UserFirstName    string  `json:"user_first_name"`
	UserLastName     string  `json:"user_last_name"`
	UserProfileImage *string `json:"user_profile_image"`
	Like             bool    `json:"like"`
	Collection       bool    `json:"collection"`
}

// NewFeedItem собирает FeedItem из фото с подгруженными User и BackgroundColor
func NewFeedItem(p *Photo) FeedItem {
	item := FeedItem{
		ID:        p.ID,
		Image:     p.Image,
		Location:  p.Location,
		Width:     p.Width,
		Height:    p.Height,
		Views:     p.Views,
		Downloads: p.Downloads,
		UserID:    p.UserID,
	}
	if p.BackgroundColor != nil {
		color := p.BackgroundColor.Name
		item.BackgroundColor = &color
	}
	if p.User != nil {
		item.UserName = p.User.UserName
		item.UserFirstName = p.User.FirstName
		item.UserLastName = p.User.LastName
		item.UserProfileImage = p.User.ProfileImage
	}
	return item
}

// ColorItem — компактная проекция ленты для заглушек по фоновому цвету
type ColorItem struct {
	ID              uint    `json:"id"`
	Image           string  `json:"image"`
	BackgroundColor *string `json:"background_color"`
}

// PhotoDetails — карточка одной фотографии
type PhotoDetails struct {
	FeedItem
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoCard — фото в блоке "похожие"
type PhotoCard struct {
	ID               uint    `json:"id"`
	Image            string  `json:"image"`
	Location         *string `json:"location"`
	UserFirstName    string  `json:"user_first_name"`
	UserLastName     string  `json:"user_last_name"`
	UserName         string  `json:"user_name"`
	UserProfileImage *string `json:"user_profile_image"`
}

// NewPhotoCard собирает PhotoCard из фото с подгруженным User
func NewPhotoCard(p *Photo) PhotoCard {
	card := PhotoCard{ID: p.ID, Image: p.Image, Location: p.Location}
	if p.User != nil {
		card.UserFirstName = p.User.FirstName
		card.UserLastName = p.User.LastName
		card.UserName = p.User.UserName
		card.UserProfileImage = p.User.ProfileImage
	}
	return card
}

// RelatedPhotos — теги фото и другие фото с хотя бы одним общим тегом
type RelatedPhotos struct {
	Tags   []string    `json:"tags"`
	Photos []PhotoCard `json:"data"`
}

// RelatedCollection — пользовательская коллекция, в которой лежит фото
type RelatedCollection struct {
	ID            uint     `json:"id"`
	Images        []string `json:"image"`
	Name          string   `json:"name"`
	PhotosNumber  int64    `json:"photos_number"`
	UserFirstName string   `json:"user_first_name"`
	UserLastName  string   `json:"user_last_name"`
	Tags          []string `json:"tags"`
}

// CollectionSummary — коллекция зрителя в списке "добавить в коллекцию"
type CollectionSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Private      bool   `json:"private"`
	PhotosNumber int64  `json:"photos_number"`
	Contains     bool   `json:"contains"`
}

// FollowState сериализуется в "self", когда зритель смотрит на себя,
// и в true/false во всех остальных случаях.
type FollowState struct {
	Self      bool
	Following bool
}

const followSelf = "self"

func (s FollowState) MarshalJSON() ([]byte, error) {
	if s.Self {
		return json.Marshal(followSelf)
	}
	return json.Marshal(s.Following)
}

func (s *FollowState) UnmarshalJSON(data []byte) error {
	var self string
	if err := json.Unmarshal(data, &self); err == nil {
		*s = FollowState{Self: self == followSelf}
		return nil
	}
	var following bool
	if err := json.Unmarshal(data, &following); err != nil {
		return err
	}
	*s = FollowState{Following: following}
	return nil
}

// UserCard — краткая карточка автора
type UserCard struct {
	ID               uint        `json:"id"`
	UserFirstName    string      `json:"user_first_name"`
	UserLastName     string      `json:"user_last_name"`
	UserName         string      `json:"user_name"`
	UserProfileImage *string     `json:"user_profile_image"`
	Photos           []string    `json:"photos"`
	Follow           FollowState `json:"follow"`
}

// Profile — данные страницы профиля
type Profile struct {
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	UserName     string   `json:"user_name"`
	ProfileImage *string  `json:"profile_image"`
	Interests    []string `json:"interests"`
	Followers    int64    `json:"followers"`
	Followings   int64    `json:"followings"`
}
