package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type imageStoreStub struct {
	storeImage func(ctx context.Context, data []byte, contentType string) (string, error)
	deleted    []string
}

func (s *imageStoreStub) StoreImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.storeImage(ctx, data, contentType)
}

func (s *imageStoreStub) DeleteImage(_ context.Context, ref string) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []LikeEvent
}

func (n *recordingNotifier) PublishLike(event LikeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []LikeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]LikeEvent(nil), n.events...)
}

type fixture struct {
	store   *memory.Store
	engine  *ranking.Engine
	photos  *PhotoService
	words   *WordService
	likes   *LikeService
	events  *recordingNotifier
	ownerID int64
}

func newFixture(t *testing.T, images ImageStore) *fixture {
	t.Helper()
	store := memory.New()
	engine := ranking.NewEngine(store.Photos(), store.Words(), nil)
	events := &recordingNotifier{}

	owner, err := store.Users().Create(context.Background(), models.NewUser{Username: "u1", Password: "x"})
	require.NoError(t, err)

	return &fixture{
		store:   store,
		engine:  engine,
		photos:  NewPhotoService(store.Photos(), engine, images),
		words:   NewWordService(store.Words(), engine),
		likes:   NewLikeService(store.Photos(), store.Words(), engine, events),
		events:  events,
		ownerID: owner.ID,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestPhotoService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	photo, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: " A ", ImageURL: "u1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", photo.Title)
	assert.Equal(t, "u1", photo.ImageURL)
	assert.Nil(t, photo.Description)
	assert.Equal(t, int64(0), photo.Likes)

	got, err := f.photos.Get(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo, got)
}

func TestPhotoService_CreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "   "}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "image_url")

	count, err := f.store.Photos().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPhotoService_CreateWithUpload(t *testing.T) {
	var gotType string
	images := &imageStoreStub{storeImage: func(ctx context.Context, data []byte, contentType string) (string, error) {
		gotType = contentType
		return "https://cdn.example.com/photos/1.png", nil
	}}
	f := newFixture(t, images)

	photo, err := f.photos.Create(context.Background(), f.ownerID, CreatePhotoRequest{Title: "Fuji"}, pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "https://cdn.example.com/photos/1.png", photo.ImageURL)
}

func TestPhotoService_CreateUploadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads disabled", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "Fuji"}, pngBytes(t))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image")
	})

	t.Run("not an image", func(t *testing.T) {
		f := newFixture(t, &imageStoreStub{})
		_, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "Fuji"}, []byte("plain text"))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "only image files are allowed", verr.Fields["image"])
	})

	t.Run("store down", func(t *testing.T) {
		f := newFixture(t, &imageStoreStub{storeImage: func(context.Context, []byte, string) (string, error) {
			return "", errors.New("connection reset")
		}})
		_, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "Fuji"}, pngBytes(t))
		assert.ErrorIs(t, err, repository.ErrUnavailable)

		count, err := f.store.Photos().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestPhotoService_CreateUnknownOwner(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.photos.Create(context.Background(), 999, CreatePhotoRequest{Title: "A", ImageURL: "u"}, nil)
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
}

func TestPhotoService_CreateFailureDeletesUpload(t *testing.T) {
	const url = "https://cdn.example.com/photos/2026/10/orphan.png"
	images := &imageStoreStub{storeImage: func(context.Context, []byte, string) (string, error) {
		return url, nil
	}}
	f := newFixture(t, images)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.photos.Create(ctx, 999, CreatePhotoRequest{Title: "Fuji"}, pngBytes(t))
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
	assert.Equal(t, []string{url}, images.deleted)

	// a linked url is not ours to delete
	_, err = f.photos.Create(ctx, 999, CreatePhotoRequest{Title: "Fuji", ImageURL: "https://elsewhere.example/a.png"}, nil)
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
	assert.Len(t, images.deleted, 1)

	// a successful create keeps its upload
	_, err = f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "Fuji"}, pngBytes(t))
	require.NoError(t, err)
	assert.Len(t, images.deleted, 1)
}

func TestCreatePhotoRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		req    CreatePhotoRequest
		fields []string
	}{
		{"linked image", CreatePhotoRequest{Title: "Fuji", ImageURL: "u"}, nil},
		{"uploaded image", CreatePhotoRequest{Title: "Fuji", hasImage: true}, nil},
		{"no image", CreatePhotoRequest{Title: "Fuji"}, []string{"image_url"}},
		{"no title", CreatePhotoRequest{ImageURL: "u"}, []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, validationError(err), &verr)
			for _, field := range tt.fields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestWordService_CreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.words.Create(ctx, f.ownerID, CreateWordRequest{Original: "間", Description: "too short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"description": "description must be 10-500 characters"}, verr.Fields)

	word, err := f.words.Create(ctx, f.ownerID, CreateWordRequest{
		Original:    "間 - ま",
		Translation: "",
		Description: "負の空間や間隔の概念。",
	})
	require.NoError(t, err)
	assert.Nil(t, word.Translation)
	assert.Equal(t, f.ownerID, word.UserID)
}

func TestLikeService_LikePhoto(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	photo, err := f.photos.Create(ctx, f.ownerID, CreatePhotoRequest{Title: "A", ImageURL: "u1"}, nil)
	require.NoError(t, err)

	for range 3 {
		_, err := f.likes.LikePhoto(ctx, photo.ID)
		require.NoError(t, err)
	}

	top, err := f.photos.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, photo.ID, top[0].ID)
	assert.Equal(t, int64(3), top[0].Likes)

	events := f.events.Events()
	require.Len(t, events, 3)
	assert.Equal(t, LikeEvent{Kind: models.KindPhoto, ID: photo.ID, Likes: 3}, events[2])
}

func TestLikeService_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.likes.LikePhoto(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.likes.LikeWord(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.events.Events())
}

func TestLikeService_ConcurrentLikes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	word, err := f.words.Create(ctx, f.ownerID, CreateWordRequest{Original: "もったいない", Description: "無駄にしないという精神。"})
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			_, err := f.likes.LikeWord(ctx, word.ID)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	got, err := f.words.Get(ctx, word.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Likes)
	assert.Len(t, f.events.Events(), n)
}

func TestSeeder_Seed(t *testing.T) {
	store := memory.New()
	seeder := NewSeeder(store)
	seeder.hashCost = bcrypt.MinCost
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	photos, err := store.Photos().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, photos, len(samplePhotos))
	assert.Equal(t, "春の桜と富士山", photos[0].Title)
	assert.Equal(t, int64(1500), photos[0].Likes)
	assert.Equal(t, int64(900), photos[3].Likes)

	words, err := store.Words().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, words, len(sampleWords))
	assert.Equal(t, int64(600), words[0].Likes)

	experiences, err := store.Experiences().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, experiences, len(sampleExperiences))

	taro, err := store.Users().GetByUsername(ctx, "taro_yamada")
	require.NoError(t, err)
	assert.True(t, taro.IsJapanese)
	assert.Equal(t, taro.ID, photos[0].UserID)
}
