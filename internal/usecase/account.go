package usecase

import (
	"context"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
)

// TokenIssuer выпускает access token для пользователя
type TokenIssuer interface {
	IssueToken(userID uint) (string, error)
}

// PasswordHasher хэширует и сверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// KakaoClient — порт федеративного входа через Kakao
type KakaoClient interface {
	// UserProfile возвращает профиль владельца токена Kakao
	UserProfile(ctx context.Context, accessToken string) (*domain.KakaoProfile, error)
}

// SignUpInput — данные формы регистрации
type SignUpInput struct {
	FirstName string `validate:"max=45"`
	LastName  string `validate:"max=45"`
	UserName  string `validate:"required,max=45"`
	Email     string `validate:"required,email,max=200"`
	Password  string `validate:"min=6"`
}

// SignInInput — данные формы входа
type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

// AccountUseCase определяет бизнес-логику аккаунтов и социального графа
type AccountUseCase interface {
	// SignUp регистрирует пользователя и возвращает access token
	SignUp(ctx context.Context, in SignUpInput) (string, error)

	// SignIn проверяет email и пароль и возвращает access token.
	// Любая ошибка учётных данных даёт domain.ErrValidation.
	SignIn(ctx context.Context, in SignInInput) (string, error)

	// KakaoSignIn входит по токену Kakao, при необходимости создавая пользователя
	KakaoSignIn(ctx context.Context, kakaoToken string) (string, error)

	// Profile возвращает профиль пользователя userName (или зрителя, если имя пустое)
	// и признак того, что зритель смотрит на себя
	Profile(ctx context.Context, userName string, viewer auth.Viewer) (*domain.Profile, bool, error)

	// ToggleFollow переключает подписку зрителя на userName
	ToggleFollow(ctx context.Context, viewer auth.Viewer, userName string) (bool, error)

	// ToggleInterest переключает интерес зрителя к тегу
	ToggleInterest(ctx context.Context, viewer auth.Viewer, hashtag string) (bool, error)
}
