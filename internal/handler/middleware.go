package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/metrics"
)

// RequestLogger — middleware для логирования HTTP-запросов и записи метрик.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.RecordHTTPRequest(r.Method, route, ww.statusCode, duration)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// TokenParser проверяет access token и возвращает ID пользователя
type TokenParser interface {
	ParseToken(token string) (uint, error)
}

// UserChecker проверяет, что пользователь из токена ещё существует
type UserChecker interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

// ViewerHandlerFunc — обработчик, которому явно передан зритель запроса
type ViewerHandlerFunc func(w http.ResponseWriter, r *http.Request, viewer auth.Viewer)

// AuthGate определяет зрителя по заголовку Authorization
type AuthGate struct {
	tokens TokenParser
	users  UserChecker
	logger *slog.Logger
}

func NewAuthGate(tokens TokenParser, users UserChecker, logger *slog.Logger) *AuthGate {
	return &AuthGate{tokens: tokens, users: users, logger: logger}
}

// Optional пропускает запрос без заголовка как анонимный.
// Невалидный токен даёт 400 INVALID_TOKEN, токен удалённого пользователя —
// 400 INVALID_USER; в обоих случаях next не вызывается.
func (g *AuthGate) Optional(next ViewerHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next(w, r, auth.Anonymous())
			return
		}

		userID, err := g.tokens.ParseToken(token)
		if err != nil {
			g.logger.Debug("invalid access token", "error", err)
			respondWithAppError(w, r, domain.ErrInvalidToken, g.logger)
			return
		}

		exists, err := g.users.UserExists(r.Context(), userID)
		if err != nil {
			respondWithAppError(w, r, err, g.logger)
			return
		}
		if !exists {
			respondWithAppError(w, r, domain.ErrInvalidUser, g.logger)
			return
		}

		next(w, r, auth.Authenticated(userID))
	}
}

// bearerToken достаёт токен из Authorization; префикс "Bearer " необязателен
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	return header
}
