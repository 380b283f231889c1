// Package handler содержит HTTP-обработчики и middleware сервиса.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/GoArmGo/Weplash/internal/domain"
)

const codeInternalError = "INTERNAL_ERROR"

// dataResponse — общий конверт ответов со списками
type dataResponse struct {
	Data any `json:"data"`
}

type statusResponse struct {
	Status bool `json:"status"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет ответ вида {"message": "<CODE>"}.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, errorResponse{Message: message}, logger)
}

// statusFor переводит вид прикладной ошибки в HTTP-статус
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound, domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError отвечает кодом прикладной ошибки или 500 INTERNAL_ERROR
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if appErr, ok := domain.AsError(err); ok {
		logger.Debug("request rejected", "path", r.URL.Path, "code", appErr.Code)
		respondWithError(w, statusFor(appErr.Kind), appErr.Code, logger)
		return
	}
	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	respondWithError(w, http.StatusInternalServerError, codeInternalError, logger)
}

// decodeJSON читает тело запроса в dst. Отсутствие одного из required
// ключей даёт domain.ErrKey, некорректный JSON или тип значения — domain.ErrValue.
func decodeJSON(r *http.Request, dst any, required ...string) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.ErrValue
		}
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.ErrValue
	}
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			return domain.ErrKey
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.ErrValue
	}
	return nil
}

// parseID разбирает положительный числовой идентификатор
func parseID(raw string, invalid error) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, invalid
	}
	return uint(id), nil
}
