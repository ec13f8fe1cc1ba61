package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDetectImage(t *testing.T) {
	contentType, err := DetectImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = DetectImage([]byte("just some text"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = DetectImage(make([]byte, MaxImageSize+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("7f1c2f7e-4a3b-4c55-9d1e-2b7e6f1a9c10")
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "photos/2024/03/7f1c2f7e-4a3b-4c55-9d1e-2b7e6f1a9c10.jpg", ObjectKey(now, id, "image/jpeg"))
	assert.Equal(t, "photos/2024/03/7f1c2f7e-4a3b-4c55-9d1e-2b7e6f1a9c10", ObjectKey(now, id, "image/x-icon"))
}

func TestNewS3Store_PublicURL(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Config{
		Region:    "ap-northeast-1",
		Bucket:    "thisisjapan",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://thisisjapan.s3.ap-northeast-1.amazonaws.com", store.publicURL)

	store, err = NewS3Store(context.Background(), S3Config{
		Region:    "ru-1",
		Bucket:    "media",
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  "https://s3.example.com",
		PublicURL: "https://cdn.example.com/media/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media", store.publicURL)
}

func TestS3Store_StoreThenDelete(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Store(context.Background(), S3Config{
		Region:    "us-east-1",
		Bucket:    "media",
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  server.URL,
		PublicURL: "https://cdn.example.com/media",
	})
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC) }

	url, err := store.StoreImage(context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/photos/2026/10/"), url)
	key := strings.TrimPrefix(url, "https://cdn.example.com/media/")

	require.NoError(t, store.DeleteImage(context.Background(), url))

	err = store.DeleteImage(context.Background(), "https://elsewhere.example/photos/a.png")
	assert.ErrorIs(t, err, ErrForeignImage)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /media/" + key,
		"DELETE /media/" + key,
	}, requests)
}
