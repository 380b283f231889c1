// Package feed переводит параметры запроса ленты в один фильтр по фотографиям.
package feed

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/GoArmGo/Weplash/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage ограничивает offset так, чтобы Page*Limit помещался в int32
	MaxPage = math.MaxInt32 / MaxLimit

	CategoryFollowing  = "Following"
	UserCategoryPhotos = "photos"
	UserCategoryLikes  = "likes"
)

// Params — параметры запроса ленты как они пришли от клиента
type Params struct {
	Category     string
	User         string
	UserCategory string
	Hashtag      string
	// Page — номер страницы (параметр offset), Limit — размер страницы.
	Page  int
	Limit int
}

// ParseParams читает параметры из query-строки.
// Нечисловые или отрицательные offset/limit и offset больше MaxPage дают domain.ErrValue.
func ParseParams(q url.Values) (Params, error) {
	p := Params{
		Category:     strings.TrimSpace(q.Get("category")),
		User:         strings.TrimSpace(q.Get("user")),
		UserCategory: strings.TrimSpace(q.Get("user_category")),
		Hashtag:      strings.TrimSpace(q.Get("search")),
		Limit:        DefaultLimit,
	}
	if p.Hashtag == "" {
		p.Hashtag = strings.TrimSpace(q.Get("hashtag"))
	}

	var err error
	if p.Page, err = parseNonNegative(q.Get("offset"), 0); err != nil {
		return Params{}, fmt.Errorf("offset: %w", err)
	}
	if p.Page > MaxPage {
		return Params{}, fmt.Errorf("offset: %w", domain.ErrValue)
	}
	if p.Limit, err = parseNonNegative(q.Get("limit"), DefaultLimit); err != nil {
		return Params{}, fmt.Errorf("limit: %w", err)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

func parseNonNegative(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.ErrValue
	}
	return n, nil
}
