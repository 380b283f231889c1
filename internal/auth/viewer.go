// Package auth содержит идентичность зрителя запроса, выпуск и проверку
// access-токенов и хэширование паролей.
package auth

// Viewer — тот, кто делает запрос: либо аноним, либо пользователь с ID.
// Нулевое значение — аноним.
type Viewer struct {
	userID        uint
	authenticated bool
}

// Anonymous возвращает анонимного зрителя
func Anonymous() Viewer {
	return Viewer{}
}

// Authenticated возвращает зрителя с подтверждённым токеном
func Authenticated(userID uint) Viewer {
	return Viewer{userID: userID, authenticated: true}
}

// UserID возвращает ID пользователя и false для анонима
func (v Viewer) UserID() (uint, bool) {
	return v.userID, v.authenticated
}

func (v Viewer) IsAnonymous() bool {
	return !v.authenticated
}

// Is сообщает, является ли зритель пользователем с данным ID
func (v Viewer) Is(userID uint) bool {
	return v.authenticated && v.userID == userID
}
