// Package kakao получает профиль пользователя Kakao по его access token.
package kakao

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/domain"
)

// Client — клиент Kakao user-info API
type Client struct {
	httpClient  *http.Client
	userInfoURL string
	logger      *slog.Logger
}

// NewClient создаёт клиент Kakao
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Kakao.Timeout},
		userInfoURL: cfg.Kakao.UserInfoURL,
		logger:      logger.With("component", "kakao"),
	}
}

// UserProfile возвращает профиль владельца токена.
// Токен, который Kakao не принимает, даёт domain.ErrInvalidKakaoToken.
func (c *Client) UserProfile(ctx context.Context, accessToken string) (*domain.KakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения HTTP-запроса к Kakao: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, domain.ErrInvalidKakaoToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kakao API вернул статус %d: %s", resp.StatusCode, string(body))
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	profile, err := info.toDomain()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("kakao profile fetched", "kakao_id", profile.ID)
	return profile, nil
}
