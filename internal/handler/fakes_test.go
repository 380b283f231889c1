package handler

import (
	"context"
	"errors"
	"io"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/usecase"
)

var errBoom = errors.New("boom")

type fakeTokens struct {
	tokens map[string]uint
}

func (f fakeTokens) ParseToken(token string) (uint, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return 0, domain.ErrInvalidToken
}

type fakeUserChecker struct {
	existing map[uint]bool
	err      error
}

func (f fakeUserChecker) UserExists(_ context.Context, id uint) (bool, error) {
	return f.existing[id], f.err
}

// fakeAccounts реализует только вызываемые тестами методы
type fakeAccounts struct {
	usecase.AccountUseCase
	signUpIn  usecase.SignUpInput
	signUpErr error
	profile   *domain.Profile
	isOwner   bool
	err       error
}

func (f *fakeAccounts) SignUp(_ context.Context, in usecase.SignUpInput) (string, error) {
	f.signUpIn = in
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	return "token-1", nil
}

func (f *fakeAccounts) Profile(_ context.Context, _ string, viewer auth.Viewer) (*domain.Profile, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.profile, f.isOwner, nil
}

func (f *fakeAccounts) ToggleFollow(_ context.Context, viewer auth.Viewer, _ string) (bool, error) {
	return true, f.err
}

type fakePhotos struct {
	usecase.PhotoUseCase
	feedParams feed.Params
	feedViewer auth.Viewer
	items      []domain.FeedItem
	card       *domain.UserCard
	uploadIn   usecase.UploadInput
	uploadBody []byte
	err        error
}

func (f *fakePhotos) Feed(_ context.Context, params feed.Params, viewer auth.Viewer) ([]domain.FeedItem, error) {
	f.feedParams = params
	f.feedViewer = viewer
	return f.items, f.err
}

func (f *fakePhotos) UserCard(_ context.Context, _ string, _ auth.Viewer) (*domain.UserCard, error) {
	return f.card, f.err
}

func (f *fakePhotos) Upload(_ context.Context, _ auth.Viewer, in usecase.UploadInput) (*domain.Photo, error) {
	f.uploadIn = in
	if in.File == nil || in.Location == "" || in.Category == "" {
		return nil, domain.ErrKey
	}
	body, err := io.ReadAll(in.File)
	if err != nil {
		return nil, err
	}
	f.uploadBody = body
	return &domain.Photo{ID: 1}, f.err
}

func (f *fakePhotos) ToggleLike(_ context.Context, _ auth.Viewer, photoID uint) (bool, error) {
	if photoID == 0 {
		return false, domain.ErrNonExistingPhoto
	}
	return true, f.err
}
