package postgres

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/database/client"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresPort  = "5432/tcp"
	curatorName   = "weplash"
)

// testDB остаётся nil, если Docker недоступен: тесты хранилища тогда пропускаются
var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	if testing.Short() {
		return m.Run()
	}

	ctx := context.Background()
	container, dsn, err := startPostgres(ctx)
	if err != nil {
		log.Printf("postgres container unavailable, storage tests will be skipped: %v", err)
		return m.Run()
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}()

	cfg := &config.Config{DatabaseURL: dsn, LogLevel: "warn"}
	db, err := openMigrated(cfg)
	if err != nil {
		log.Printf("failed to prepare database: %v", err)
		return 1
	}
	defer CloseGormDB(db) //nolint:errcheck

	testDB = db
	return m.Run()
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     "weplash",
			"POSTGRES_PASSWORD": "weplash",
			"POSTGRES_DB":       "weplash",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://weplash:weplash@%s:%s/weplash?sslmode=disable", host, port.Port())
	return container, dsn, nil
}

// openMigrated применяет миграции и открывает GORM так же, как при старте сервиса
func openMigrated(cfg *config.Config) (*gorm.DB, error) {
	c, err := client.NewClient(cfg, logger.Discard())
	if err != nil {
		return nil, err
	}
	defer c.Close() //nolint:errcheck

	if err := c.ApplyMigrations(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	return NewGormDB(cfg, logger.Discard())
}

// newTestDB отдаёт чистую базу: все таблицы очищаются перед каждым тестом
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("Skipping storage test: postgres container not available")
	}
	err := testDB.Exec(`TRUNCATE users, follows, hashtags, users_interests, background_colors,
		photos, photos_hashtags, collections, photos_collections, likes RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
	return testDB
}

type storages struct {
	users       *GormUserStorage
	social      *GormSocialStorage
	photos      *GormPhotoStorage
	collections *GormCollectionStorage
	enrichment  *GormEnrichmentStorage
}

func newStorages(t *testing.T) storages {
	db := newTestDB(t)
	discard := logger.Discard()
	return storages{
		users:       NewGormUserStorage(db, discard),
		social:      NewGormSocialStorage(db, discard),
		photos:      NewGormPhotoStorage(db, discard, curatorName),
		collections: NewGormCollectionStorage(db, discard, curatorName),
		enrichment:  NewGormEnrichmentStorage(db, discard),
	}
}

func createUser(t *testing.T, s storages, name string) uint {
	t.Helper()
	user := &domain.User{UserName: name, Email: name + "@example.com", IsActive: true}
	require.NoError(t, s.users.CreateUser(context.Background(), user))
	return user.ID
}

func createPhoto(t *testing.T, s storages, userID uint, image string, tags ...string) uint {
	t.Helper()
	photo := &domain.Photo{UserID: &userID, Image: image}
	require.NoError(t, s.photos.db.Create(photo).Error)
	if len(tags) > 0 {
		require.NoError(t, s.enrichment.AttachHashTags(context.Background(), photo.ID, tags))
	}
	return photo.ID
}

func feedIDs(items []domain.FeedItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestCreateUser_DuplicateTranslated(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	createUser(t, s, "alice")

	err := s.users.CreateUser(ctx, &domain.User{UserName: "other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	err = s.users.CreateUser(ctx, &domain.User{UserName: "alice", Email: "new@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserNameExists)

	kakaoID := int64(77)
	require.NoError(t, s.users.CreateUser(ctx, &domain.User{UserName: "kakao_77", Email: "77@kakao.weplash", KakaoID: &kakaoID}))
	err = s.users.CreateUser(ctx, &domain.User{UserName: "kakao_77b", Email: "77b@kakao.weplash", KakaoID: &kakaoID})
	assert.ErrorIs(t, err, domain.ErrUserNameExists)
}

func TestToggleFollow_TwoCycles(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice, bob := createUser(t, s, "alice"), createUser(t, s, "bob")

	for _, want := range []bool{true, false, true, false} {
		got, err := s.social.ToggleFollow(ctx, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		following, err := s.social.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, want, following)
	}

	var rows int64
	require.NoError(t, s.social.db.Model(&domain.Follow{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestToggleLike_TwoCycles(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	photo := createPhoto(t, s, alice, "a.jpg")

	for _, want := range []bool{true, false, true, false} {
		got, err := s.social.ToggleLike(ctx, alice, photo)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var rows int64
	require.NoError(t, s.social.db.Model(&domain.Like{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestListFeed_FollowingWithoutFollows(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice, bob := createUser(t, s, "alice"), createUser(t, s, "bob")
	createPhoto(t, s, bob, "b.jpg")

	f := feed.Filter{Kind: feed.KindFollowing, UserID: alice, Limit: 20}
	items, err := s.photos.ListFeed(ctx, f, auth.Authenticated(alice))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.social.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	items, err = s.photos.ListFeed(ctx, f, auth.Authenticated(alice))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// отписка возвращает ленту к пустой
	_, err = s.social.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	items, err = s.photos.ListFeed(ctx, f, auth.Authenticated(alice))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListFeed_Likes(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice, bob := createUser(t, s, "alice"), createUser(t, s, "bob")
	p1 := createPhoto(t, s, bob, "1.jpg")
	p2 := createPhoto(t, s, bob, "2.jpg")
	p3 := createPhoto(t, s, bob, "3.jpg")

	for _, id := range []uint{p1, p3, p2} {
		_, err := s.social.ToggleLike(ctx, alice, id)
		require.NoError(t, err)
	}
	// повторный лайк снимает отметку
	_, err := s.social.ToggleLike(ctx, alice, p2)
	require.NoError(t, err)

	items, err := s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindLikes, UserName: "alice", Limit: 20}, auth.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []uint{p3, p1}, feedIDs(items))

	_, err = s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindLikes, UserName: "nobody", Limit: 20}, auth.Anonymous())
	assert.ErrorIs(t, err, domain.ErrKey)
}

func TestListFeed_Collections(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice, bob := createUser(t, s, "alice"), createUser(t, s, "bob")
	p1 := createPhoto(t, s, bob, "1.jpg")
	p2 := createPhoto(t, s, bob, "2.jpg")

	public := &domain.Collection{UserID: alice, Name: "Trips"}
	require.NoError(t, s.collections.CreateCollection(ctx, public, &p1))
	private := &domain.Collection{UserID: alice, Name: "Secret", Private: true}
	require.NoError(t, s.collections.CreateCollection(ctx, private, &p2))

	items, err := s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindCollection, UserName: "alice", Name: "Trips", Limit: 20}, auth.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []uint{p1}, feedIDs(items))

	secret := feed.Filter{Kind: feed.KindCollection, UserName: "alice", Name: "Secret", Limit: 20}
	_, err = s.photos.ListFeed(ctx, secret, auth.Authenticated(bob))
	assert.ErrorIs(t, err, domain.ErrKey)
	_, err = s.photos.ListFeed(ctx, secret, auth.Anonymous())
	assert.ErrorIs(t, err, domain.ErrKey)

	items, err = s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindCollection, UserID: alice, Name: "Secret", Limit: 20}, auth.Authenticated(alice))
	require.NoError(t, err)
	assert.Equal(t, []uint{p2}, feedIDs(items))

	_, err = s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindCollection, UserName: "alice", Name: "Missing", Limit: 20}, auth.Anonymous())
	assert.ErrorIs(t, err, domain.ErrKey)
}

func TestListFeed_DecoratesViewerState(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	alice, bob := createUser(t, s, "alice"), createUser(t, s, "bob")
	p1 := createPhoto(t, s, bob, "1.jpg")
	p2 := createPhoto(t, s, bob, "2.jpg")
	p3 := createPhoto(t, s, bob, "3.jpg")

	_, err := s.social.ToggleLike(ctx, alice, p1)
	require.NoError(t, err)
	_, err = s.social.ToggleLike(ctx, bob, p2)
	require.NoError(t, err)
	require.NoError(t, s.collections.CreateCollection(ctx, &domain.Collection{UserID: alice, Name: "Mine"}, &p2))
	require.NoError(t, s.collections.CreateCollection(ctx, &domain.Collection{UserID: bob, Name: "His"}, &p3))

	all := feed.Filter{Kind: feed.KindAll, Limit: 20}
	items, err := s.photos.ListFeed(ctx, all, auth.Authenticated(alice))
	require.NoError(t, err)
	require.Len(t, items, 3)

	state := map[uint][2]bool{}
	for _, item := range items {
		state[item.ID] = [2]bool{item.Like, item.Collection}
	}
	assert.Equal(t, [2]bool{true, false}, state[p1])
	assert.Equal(t, [2]bool{false, true}, state[p2])
	assert.Equal(t, [2]bool{false, false}, state[p3])

	items, err = s.photos.ListFeed(ctx, all, auth.Anonymous())
	require.NoError(t, err)
	for _, item := range items {
		assert.False(t, item.Like)
		assert.False(t, item.Collection)
	}
}

func TestListFeed_Pagination(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	bob := createUser(t, s, "bob")
	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, createPhoto(t, s, bob, fmt.Sprintf("%d.jpg", i)))
	}

	items, err := s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindUploads, UserName: "bob", Page: 1, Limit: 2}, auth.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[2], ids[1]}, feedIDs(items))

	items, err = s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindAll, Page: feed.MaxPage, Limit: feed.MaxLimit}, auth.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListRelatedPhotos_ExcludesSelf(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	bob := createUser(t, s, "bob")
	self := createPhoto(t, s, bob, "self.jpg", "sea", "sky")
	near := createPhoto(t, s, bob, "near.jpg", "sea")
	createPhoto(t, s, bob, "far.jpg", "forest")

	cards, err := s.photos.ListRelatedPhotos(ctx, []string{"sea", "sky"}, self, 10)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, near, cards[0].ID)
	assert.Equal(t, "bob", cards[0].UserName)

	cards, err = s.photos.ListRelatedPhotos(ctx, nil, self, 10)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCreateUploadedPhoto_LongLocation(t *testing.T) {
	s := newStorages(t)
	ctx := context.Background()
	bob := createUser(t, s, "bob")
	curator := createUser(t, s, curatorName)
	require.NoError(t, s.collections.EnsureCollections(ctx, curator, []string{"Nature"}))
	category, err := s.collections.GetEditorialCollection(ctx, "Nature")
	require.NoError(t, err)

	location := strings.Repeat("서", domain.MaxLocationLength)
	photo := &domain.Photo{UserID: &bob, Image: "x.jpg", Location: &location}
	require.NoError(t, s.photos.CreateUploadedPhoto(ctx, photo, location, category.ID))

	tags, err := s.photos.ListPhotoTags(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{location}, tags)

	items, err := s.photos.ListFeed(ctx, feed.Filter{Kind: feed.KindEditorial, Name: "Nature", Limit: 20}, auth.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []uint{photo.ID}, feedIDs(items))
}
