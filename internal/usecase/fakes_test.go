package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/core/ports"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
)

// fakeUsers хранит пользователей в памяти. Методы, которые тест не
// реализует, паникуют через встроенный nil-интерфейс.
type fakeUsers struct {
	ports.UserStorage
	byID      map[uint]*domain.User
	nextID    uint
	interests map[uint][]string
	// beforeCreate выполняется перед вставкой: так тест подкладывает
	// конкурирующую запись между проверкой и вставкой
	beforeCreate func()
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint]*domain.User{}, nextID: 100, interests: map[uint][]string{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range f.byID {
		if match(u) {
			return u, nil
		}
	}
	return nil, domain.ErrNonExistingUser
}

// CreateUser ведёт себя как уникальные индексы users: email проверяется первым
func (f *fakeUsers) CreateUser(ctx context.Context, user *domain.User) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
		f.beforeCreate = nil
	}
	if _, err := f.GetUserByEmail(ctx, user.Email); err == nil {
		return domain.ErrEmailExists
	}
	if _, err := f.GetUserByUserName(ctx, user.UserName); err == nil {
		return domain.ErrUserNameExists
	}
	if user.KakaoID != nil {
		if _, err := f.GetUserByKakaoID(ctx, *user.KakaoID); err == nil {
			return domain.ErrUserNameExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetUserByUserName(_ context.Context, name string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.UserName == name })
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetUserByKakaoID(_ context.Context, id int64) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.KakaoID != nil && *u.KakaoID == id })
}

func (f *fakeUsers) LinkKakaoID(_ context.Context, userID uint, kakaoID int64) error {
	f.byID[userID].KakaoID = &kakaoID
	return nil
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) UserNameExists(ctx context.Context, name string) (bool, error) {
	_, err := f.GetUserByUserName(ctx, name)
	return err == nil, nil
}

func (f *fakeUsers) GetOrCreateCurator(ctx context.Context, name string) (uint, error) {
	if u, err := f.GetUserByUserName(ctx, name); err == nil {
		return u.ID, nil
	}
	u := &domain.User{UserName: name, Email: name + "@curator.local"}
	_ = f.CreateUser(ctx, u)
	return u.ID, nil
}

func (f *fakeUsers) ListInterests(_ context.Context, userID uint) ([]string, error) {
	return append([]string{}, f.interests[userID]...), nil
}

func (f *fakeUsers) CountFollows(context.Context, uint) (int64, int64, error) {
	return 2, 3, nil
}

// fakeSocial — toggles в памяти
type fakeSocial struct {
	follows map[[2]uint]bool
	likes   map[[2]uint]bool
}

func newFakeSocial() *fakeSocial {
	return &fakeSocial{follows: map[[2]uint]bool{}, likes: map[[2]uint]bool{}}
}

func (f *fakeSocial) ToggleFollow(_ context.Context, from, to uint) (bool, error) {
	k := [2]uint{from, to}
	f.follows[k] = !f.follows[k]
	return f.follows[k], nil
}

func (f *fakeSocial) IsFollowing(_ context.Context, from, to uint) (bool, error) {
	return f.follows[[2]uint{from, to}], nil
}

func (f *fakeSocial) ToggleLike(_ context.Context, userID, photoID uint) (bool, error) {
	k := [2]uint{userID, photoID}
	f.likes[k] = !f.likes[k]
	return f.likes[k], nil
}

type fakeTokens struct{}

func (fakeTokens) IssueToken(userID uint) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (fakeHasher) Compare(hash, pw string) (bool, error) { return hash == "hashed:"+pw, nil }

type fakeKakao struct {
	profile *domain.KakaoProfile
	err     error
}

func (f fakeKakao) UserProfile(context.Context, string) (*domain.KakaoProfile, error) {
	return f.profile, f.err
}

// fakePhotos — хранилище фото в памяти
type fakePhotos struct {
	ports.PhotoStorage
	photos     map[uint]*domain.Photo
	tags       map[uint][]string
	createErr  error
	created    []*domain.Photo
	lastFilter feed.Filter
	feed       []domain.FeedItem
}

func newFakePhotos(ids ...uint) *fakePhotos {
	f := &fakePhotos{photos: map[uint]*domain.Photo{}, tags: map[uint][]string{}}
	for _, id := range ids {
		f.photos[id] = &domain.Photo{ID: id}
	}
	return f
}

func (f *fakePhotos) CreateUploadedPhoto(_ context.Context, photo *domain.Photo, _ string, _ uint) error {
	if f.createErr != nil {
		return f.createErr
	}
	photo.ID = uint(len(f.photos) + 1)
	f.photos[photo.ID] = photo
	f.created = append(f.created, photo)
	return nil
}

func (f *fakePhotos) PhotoExists(_ context.Context, id uint) (bool, error) {
	_, ok := f.photos[id]
	return ok, nil
}

func (f *fakePhotos) ListFeed(_ context.Context, filter feed.Filter, _ auth.Viewer) ([]domain.FeedItem, error) {
	f.lastFilter = filter
	if filter.Kind == feed.KindEmpty {
		return []domain.FeedItem{}, nil
	}
	return f.feed, nil
}

func (f *fakePhotos) ListPhotoTags(_ context.Context, id uint) ([]string, error) {
	return f.tags[id], nil
}

func (f *fakePhotos) ListRelatedPhotos(_ context.Context, tags []string, exceptID uint, _ int) ([]domain.PhotoCard, error) {
	cards := []domain.PhotoCard{}
	for id, photoTags := range f.tags {
		if id == exceptID {
			continue
		}
		for _, t := range photoTags {
			if contains(tags, t) {
				cards = append(cards, domain.PhotoCard{ID: id})
				break
			}
		}
	}
	return cards, nil
}

func (f *fakePhotos) ListUserPhotoImages(context.Context, uint, int) ([]string, error) {
	return []string{"a.jpg"}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// fakeCollections — коллекции в памяти
type fakeCollections struct {
	ports.CollectionStorage
	byID      map[uint]*domain.Collection
	editorial map[string]*domain.Collection
	members   map[[2]uint]bool
	ensured   []string
}

func newFakeCollections() *fakeCollections {
	return &fakeCollections{
		byID:      map[uint]*domain.Collection{},
		editorial: map[string]*domain.Collection{},
		members:   map[[2]uint]bool{},
	}
}

func (f *fakeCollections) GetEditorialCollection(_ context.Context, name string) (*domain.Collection, error) {
	c, ok := f.editorial[name]
	if !ok {
		return nil, domain.ErrNonExistingCollection
	}
	return c, nil
}

func (f *fakeCollections) GetCollection(_ context.Context, id uint) (*domain.Collection, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNonExistingCollection
	}
	return c, nil
}

func (f *fakeCollections) CreateCollection(_ context.Context, c *domain.Collection, photoID *uint) error {
	c.ID = uint(len(f.byID) + 1)
	f.byID[c.ID] = c
	if photoID != nil {
		f.members[[2]uint{c.ID, *photoID}] = true
	}
	return nil
}

func (f *fakeCollections) ToggleCollectionPhoto(_ context.Context, collectionID, photoID uint) (bool, error) {
	k := [2]uint{collectionID, photoID}
	f.members[k] = !f.members[k]
	return f.members[k], nil
}

func (f *fakeCollections) EnsureCollections(_ context.Context, _ uint, names []string) error {
	f.ensured = append(f.ensured, names...)
	return nil
}

// fakeFiles — файловое хранилище в памяти
type fakeFiles struct {
	objects map[string][]byte
	deleted []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func (f *fakeFiles) UploadFile(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "http://files/" + key, nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakePublisher запоминает опубликованные задачи
type fakePublisher struct {
	mu      sync.Mutex
	jobs    []payloads.EnrichmentPayload
	ctxErrs []error
	err     error
}

func (f *fakePublisher) PublishEnrichmentJob(ctx context.Context, p payloads.EnrichmentPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, p)
	return nil
}

// fakeVision возвращает заранее заданный ответ
type fakeVision struct {
	tags  []domain.ImageTag
	color string
	err   error
}

func (f fakeVision) Tags(context.Context, string) ([]domain.ImageTag, error) {
	return f.tags, f.err
}

func (f fakeVision) BackgroundColor(context.Context, string) (string, error) {
	return f.color, f.err
}

// fakeEnrichmentStorage запоминает записанные результаты
type fakeEnrichmentStorage struct {
	attached map[uint][]string
	colors   map[uint]string
}

func newFakeEnrichmentStorage() *fakeEnrichmentStorage {
	return &fakeEnrichmentStorage{attached: map[uint][]string{}, colors: map[uint]string{}}
}

func (f *fakeEnrichmentStorage) AttachHashTags(_ context.Context, photoID uint, names []string) error {
	f.attached[photoID] = append(f.attached[photoID], names...)
	return nil
}

func (f *fakeEnrichmentStorage) SetBackgroundColor(_ context.Context, photoID uint, hex string) error {
	f.colors[photoID] = hex
	return nil
}

var errBoom = errors.New("boom")
