package domain

import "errors"

// ErrorKind группирует прикладные ошибки по способу ответа клиенту.
type ErrorKind int

const (
	KindInvalid ErrorKind = iota + 1
	KindNotFound
	KindUnauthorized
	KindUnavailable
)

// Error — прикладная ошибка с кодом, который уходит клиенту как есть.
type Error struct {
	Kind ErrorKind
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

var (
	ErrValidation        = newError(KindInvalid, "VALIDATION_ERROR")
	ErrKey               = newError(KindInvalid, "KEY_ERROR")
	ErrValue             = newError(KindInvalid, "VALUE_ERROR")
	ErrEmailExists       = newError(KindInvalid, "THIS EMAIL ALREADY EXISTS")
	ErrUserNameExists    = newError(KindInvalid, "THIS USER_NAME ALREADY EXISTS")
	ErrInvalidUser       = newError(KindInvalid, "INVALID_USER")
	ErrInvalidToken      = newError(KindInvalid, "INVALID_TOKEN")
	ErrInvalidPhoto      = newError(KindInvalid, "INVALID_PHOTO")
	ErrInvalidCollection = newError(KindInvalid, "INVALID_COLLECTION")
	ErrInvalidImage      = newError(KindInvalid, "INVALID_IMAGE")

	ErrNonExistingUser       = newError(KindNotFound, "NON_EXISTING_USER")
	ErrNonExistingPhoto      = newError(KindNotFound, "NON_EXISTING_PHOTO")
	ErrNonExistingCollection = newError(KindNotFound, "NON_EXISTING_COLLECTION")

	ErrUnauthorized      = newError(KindUnauthorized, "UNAUTHORIZED")
	ErrInvalidKakaoToken = newError(KindUnauthorized, "INVALID_KAKAO_TOKEN")

	ErrTooManyUploads = newError(KindUnavailable, "TOO_MANY_UPLOADS")
)

// ErrMalformedResponse возвращается адаптерами внешних API, когда в ответе
// нет ожидаемого поля.
var ErrMalformedResponse = errors.New("malformed external response")

// AsError достаёт прикладную ошибку из цепочки, если она там есть.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
