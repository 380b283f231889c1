// Package imagga — клиент сервиса распознавания изображений Imagga.
package imagga

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/metrics"
)

const breakerName = "imagga-api"

// Client обращается к Imagga через ограничитель частоты и circuit breaker
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient создаёт клиент Imagga по конфигурации
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	logger = logger.With("component", "imagga")

	limit := rate.Inf
	if cfg.Imagga.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Imagga.RequestsPerSecond)
	}

	threshold := cfg.Imagga.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.Imagga.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Imagga.Timeout},
		baseURL:    strings.TrimRight(cfg.Imagga.BaseURL, "/"),
		apiKey:     cfg.Imagga.APIKey,
		apiSecret:  cfg.Imagga.APISecret,
		limiter:    rate.NewLimiter(limit, 1),
		cb:         cb,
		logger:     logger,
	}
}

// Tags возвращает все теги изображения с их уверенностью.
// Если хотя бы у одного тега нет имени или уверенности, возвращается domain.ErrMalformedResponse.
func (c *Client) Tags(ctx context.Context, imageURL string) ([]domain.ImageTag, error) {
	body, err := c.get(ctx, "/v2/tags", imageURL)
	if err != nil {
		return nil, err
	}
	var resp tagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return resp.toDomain()
}

// BackgroundColor возвращает hex-код первого фонового цвета изображения
func (c *Client) BackgroundColor(ctx context.Context, imageURL string) (string, error) {
	body, err := c.get(ctx, "/v2/colors", imageURL)
	if err != nil {
		return "", err
	}
	var resp colorsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return resp.backgroundColor()
}

func (c *Client) get(ctx context.Context, path, imageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("imagga rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, url.Values{"image_url": {imageURL}}.Encode())

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("imagga request rejected by circuit breaker", "path", path)
		}
		return nil, fmt.Errorf("imagga %s: %w", path, err)
	}
	c.logger.Debug("imagga request done", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения HTTP-запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagga API вернул статус %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
