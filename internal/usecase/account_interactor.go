package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/core/ports"
	"github.com/GoArmGo/Weplash/internal/domain"
)

const (
	// bcrypt не принимает пароли длиннее 72 байт
	maxPasswordBytes = 72
	maxNameLength    = 45
)

// в имени пользователя допустимы только буквы (любого алфавита), цифры и подчёркивание
var userNameForbidden = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_]`)

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	users               ports.UserStorage
	social              ports.SocialStorage
	tokens              TokenIssuer
	passwords           PasswordHasher
	kakao               KakaoClient
	validate            *validator.Validate
	defaultProfileImage string
	logger              *slog.Logger
}

// NewAccountUseCase создает новый экземпляр AccountUseCase
func NewAccountUseCase(
	users ports.UserStorage,
	social ports.SocialStorage,
	tokens TokenIssuer,
	passwords PasswordHasher,
	kakao KakaoClient,
	defaultProfileImage string,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		users:               users,
		social:              social,
		tokens:              tokens,
		passwords:           passwords,
		kakao:               kakao,
		validate:            validator.New(),
		defaultProfileImage: defaultProfileImage,
		logger:              logger,
	}
}

func (uc *accountUseCase) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	if userNameForbidden.MatchString(in.UserName) || len(in.Password) > maxPasswordBytes {
		return "", domain.ErrValidation
	}
	// длины проверяются в символах, как их считает VARCHAR
	if err := uc.validate.Struct(in); err != nil {
		return "", domain.ErrValidation
	}

	exists, err := uc.users.EmailExists(ctx, in.Email)
	if err != nil {
		return "", fmt.Errorf("usecase: проверка email: %w", err)
	}
	if exists {
		return "", domain.ErrEmailExists
	}
	exists, err = uc.users.UserNameExists(ctx, in.UserName)
	if err != nil {
		return "", fmt.Errorf("usecase: проверка user_name: %w", err)
	}
	if exists {
		return "", domain.ErrUserNameExists
	}

	hash, err := uc.passwords.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("usecase: хэширование пароля: %w", err)
	}

	profileImage := uc.defaultProfileImage
	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		UserName:     in.UserName,
		Email:        in.Email,
		Password:     hash,
		ProfileImage: &profileImage,
	}
	// дубликат, проскочивший проверки выше, хранилище возвращает как domain.ErrEmailExists
	// или domain.ErrUserNameExists
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return "", err
	}

	uc.logger.Info("user signed up", "user_id", user.ID, "user_name", user.UserName)
	return uc.tokens.IssueToken(user.ID)
}

func (uc *accountUseCase) SignIn(ctx context.Context, in SignInInput) (string, error) {
	if err := uc.validate.Struct(in); err != nil {
		return "", domain.ErrValidation
	}

	user, err := uc.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNonExistingUser) {
		return "", domain.ErrValidation
	}
	if err != nil {
		return "", fmt.Errorf("usecase: поиск пользователя: %w", err)
	}

	ok, err := uc.passwords.Compare(user.Password, in.Password)
	if err != nil {
		return "", fmt.Errorf("usecase: проверка пароля: %w", err)
	}
	if !ok {
		return "", domain.ErrValidation
	}

	return uc.tokens.IssueToken(user.ID)
}

func (uc *accountUseCase) KakaoSignIn(ctx context.Context, kakaoToken string) (string, error) {
	if kakaoToken == "" {
		return "", domain.ErrInvalidKakaoToken
	}
	profile, err := uc.kakao.UserProfile(ctx, kakaoToken)
	if err != nil {
		return "", err
	}

	user, err := uc.findKakaoUser(ctx, profile)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = uc.createKakaoUser(ctx, profile)
		if isDuplicate(err) {
			// параллельный вход тем же аккаунтом Kakao успел создать пользователя
			user, err = uc.users.GetUserByKakaoID(ctx, profile.ID)
		}
		if err != nil {
			return "", err
		}
	}

	return uc.tokens.IssueToken(user.ID)
}

// findKakaoUser ищет пользователя по kakao_id, затем по email.
// По email ищем только если Kakao подтвердил адрес: иначе любой мог бы
// указать в Kakao чужую почту и войти в чужой аккаунт.
// Найденный по email пользователь привязывается к аккаунту Kakao.
func (uc *accountUseCase) findKakaoUser(ctx context.Context, profile *domain.KakaoProfile) (*domain.User, error) {
	user, err := uc.users.GetUserByKakaoID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNonExistingUser) {
		return nil, fmt.Errorf("usecase: поиск по kakao_id: %w", err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, nil
	}

	user, err = uc.users.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, domain.ErrNonExistingUser) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: поиск по email: %w", err)
	}
	if err := uc.users.LinkKakaoID(ctx, user.ID, profile.ID); err != nil {
		return nil, fmt.Errorf("usecase: привязка kakao_id: %w", err)
	}
	uc.logger.Info("kakao account linked", "user_id", user.ID)
	return user, nil
}

func (uc *accountUseCase) createKakaoUser(ctx context.Context, profile *domain.KakaoProfile) (*domain.User, error) {
	kakaoID := profile.ID
	// неподтверждённый адрес не занимаем: он может принадлежать другому человеку
	email := profile.Email
	if email == "" || !profile.EmailVerified {
		email = fmt.Sprintf("%d@kakao.weplash", kakaoID)
	}
	profileImage := profile.ProfileImage
	if profileImage == "" {
		profileImage = uc.defaultProfileImage
	}

	user := &domain.User{
		FirstName:    truncateRunes(profile.Nickname, maxNameLength),
		UserName:     fmt.Sprintf("kakao_%d", kakaoID),
		Email:        email,
		ProfileImage: &profileImage,
		IsActive:     true,
		KakaoID:      &kakaoID,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: создание пользователя kakao: %w", err)
	}
	uc.logger.Info("user signed up with kakao", "user_id", user.ID)
	return user, nil
}

func (uc *accountUseCase) Profile(ctx context.Context, userName string, viewer auth.Viewer) (*domain.Profile, bool, error) {
	var (
		user *domain.User
		err  error
	)
	if userName == "" {
		viewerID, ok := viewer.UserID()
		if !ok {
			return nil, false, domain.ErrUnauthorized
		}
		user, err = uc.users.GetUserByID(ctx, viewerID)
	} else {
		user, err = uc.users.GetUserByUserName(ctx, userName)
	}
	if err != nil {
		return nil, false, err
	}

	interests, err := uc.users.ListInterests(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	followers, followings, err := uc.users.CountFollows(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}

	return &domain.Profile{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		UserName:     user.UserName,
		ProfileImage: user.ProfileImage,
		Interests:    interests,
		Followers:    followers,
		Followings:   followings,
	}, viewer.Is(user.ID), nil
}

func (uc *accountUseCase) ToggleFollow(ctx context.Context, viewer auth.Viewer, userName string) (bool, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return false, domain.ErrUnauthorized
	}
	target, err := uc.users.GetUserByUserName(ctx, userName)
	if err != nil {
		return false, err
	}
	if target.ID == viewerID {
		return false, domain.ErrValidation
	}
	return uc.social.ToggleFollow(ctx, viewerID, target.ID)
}

func (uc *accountUseCase) ToggleInterest(ctx context.Context, viewer auth.Viewer, hashtag string) (bool, error) {
	viewerID, ok := viewer.UserID()
	if !ok {
		return false, domain.ErrUnauthorized
	}
	hashtag = strings.TrimSpace(hashtag)
	if err := uc.validate.Var(hashtag, fmt.Sprintf("required,max=%d", domain.MaxHashTagLength)); err != nil {
		return false, domain.ErrValidation
	}
	return uc.users.ToggleInterest(ctx, viewerID, hashtag)
}

func isDuplicate(err error) bool {
	return errors.Is(err, domain.ErrEmailExists) || errors.Is(err, domain.ErrUserNameExists)
}

// truncateRunes обрезает строку до n символов
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
