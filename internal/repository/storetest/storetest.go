// Package storetest holds the behavioral contract every repository.Store
// implementation must satisfy. Implementations run it from their own tests.
package storetest

import (
	"context"
	"sync"
	"testing"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for one subtest
type Factory func(t *testing.T) repository.Store

// Run executes the contract against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"UserCreateAndLookup", testUserCreateAndLookup},
		{"UserDuplicateUsername", testUserDuplicateUsername},
		{"UserConcurrentSameUsername", testUserConcurrentSameUsername},
		{"PhotoCreateThenGet", testPhotoCreateThenGet},
		{"PhotoUnknownOwner", testPhotoUnknownOwner},
		{"PhotoNotFound", testPhotoNotFound},
		{"PhotoLikeMissingLeavesOthers", testPhotoLikeMissingLeavesOthers},
		{"PhotoConcurrentLikes", testPhotoConcurrentLikes},
		{"PhotoGetAllRanked", testPhotoGetAllRanked},
		{"WordCreateThenGet", testWordCreateThenGet},
		{"WordEqualLikesOrderedByID", testWordEqualLikesOrderedByID},
		{"WordConcurrentLikes", testWordConcurrentLikes},
		{"ExperienceInsertionOrder", testExperienceInsertionOrder},
		{"CancelledContext", testCancelledContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func createUser(t *testing.T, s repository.Store, username string) *models.User {
	t.Helper()
	user, err := s.Users().Create(context.Background(), models.NewUser{
		Username: username,
		Password: "hash",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func testUserCreateAndLookup(t *testing.T, s repository.Store) {
	ctx := context.Background()

	user, err := s.Users().Create(ctx, models.NewUser{Username: "taro", Password: "hash", IsJapanese: true})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "taro", byID.Username)
	assert.True(t, byID.IsJapanese)

	byName, err := s.Users().GetByUsername(ctx, "taro")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = s.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testUserDuplicateUsername(t *testing.T, s repository.Store) {
	ctx := context.Background()
	first := createUser(t, s, "emma")

	_, err := s.Users().Create(ctx, models.NewUser{Username: "emma", Password: "other"})
	require.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.Users().GetByUsername(ctx, "emma")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "hash", got.Password)
}

func testUserConcurrentSameUsername(t *testing.T, s repository.Store) {
	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Users().Create(context.Background(), models.NewUser{Username: "same", Password: "hash"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, repository.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func testPhotoCreateThenGet(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")

	created, err := s.Photos().Create(ctx, models.NewPhoto{
		Title:       "A",
		Description: strPtr("spring"),
		ImageURL:    "u1",
		UserID:      owner.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Zero(t, created.Likes)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Photos().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "A", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "spring", *got.Description)
	assert.Equal(t, "u1", got.ImageURL)
	assert.Equal(t, owner.ID, got.UserID)
	assert.Zero(t, got.Likes)

	second, err := s.Photos().Create(ctx, models.NewPhoto{Title: "B", ImageURL: "u2", UserID: owner.ID})
	require.NoError(t, err)
	assert.Greater(t, second.ID, created.ID)
	assert.Nil(t, second.Description)

	total, err := s.Photos().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func testPhotoUnknownOwner(t *testing.T, s repository.Store) {
	_, err := s.Photos().Create(context.Background(), models.NewPhoto{Title: "A", ImageURL: "u1", UserID: 999})
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
}

func testPhotoNotFound(t *testing.T, s repository.Store) {
	_, err := s.Photos().GetByID(context.Background(), 12345)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testPhotoLikeMissingLeavesOthers(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")
	photo, err := s.Photos().Create(ctx, models.NewPhoto{Title: "A", ImageURL: "u1", UserID: owner.ID})
	require.NoError(t, err)
	_, err = s.Photos().IncrementLikes(ctx, photo.ID)
	require.NoError(t, err)

	_, err = s.Photos().IncrementLikes(ctx, photo.ID+100)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.Photos().GetByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Likes)
}

func testPhotoConcurrentLikes(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")
	photo, err := s.Photos().Create(ctx, models.NewPhoto{Title: "A", ImageURL: "u1", UserID: owner.ID})
	require.NoError(t, err)

	const likes = 50
	var wg sync.WaitGroup
	for i := 0; i < likes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Photos().IncrementLikes(ctx, photo.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Photos().GetByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.EqualValues(t, likes, got.Likes)
}

func testPhotoGetAllRanked(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")

	var ids []int64
	for _, title := range []string{"first", "second", "third"} {
		photo, err := s.Photos().Create(ctx, models.NewPhoto{Title: title, ImageURL: "u", UserID: owner.ID})
		require.NoError(t, err)
		ids = append(ids, photo.ID)
	}
	// third gets 2 likes, first and second stay tied at 0
	for i := 0; i < 2; i++ {
		_, err := s.Photos().IncrementLikes(ctx, ids[2])
		require.NoError(t, err)
	}

	photos, err := s.Photos().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, []int64{photos[0].ID, photos[1].ID, photos[2].ID})
}

func testWordCreateThenGet(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")

	created, err := s.Words().Create(ctx, models.NewWord{
		Original:    "もったいない",
		Translation: strPtr("Mottainai"),
		Description: "Respect for resources and avoiding waste.",
		UserID:      owner.ID,
	})
	require.NoError(t, err)
	assert.Zero(t, created.Likes)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Words().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "もったいない", got.Original)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "Mottainai", *got.Translation)
	assert.Equal(t, owner.ID, got.UserID)

	_, err = s.Words().Create(ctx, models.NewWord{Original: "x", Description: "long enough", UserID: owner.ID + 50})
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)

	_, err = s.Words().IncrementLikes(ctx, created.ID+50)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testWordEqualLikesOrderedByID(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")

	first, err := s.Words().Create(ctx, models.NewWord{Original: "一期一会", Description: "One time, one meeting.", UserID: owner.ID})
	require.NoError(t, err)
	second, err := s.Words().Create(ctx, models.NewWord{Original: "侘寂", Description: "Beauty in imperfection.", UserID: owner.ID})
	require.NoError(t, err)

	words, err := s.Words().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, first.ID, words[0].ID)
	assert.Equal(t, second.ID, words[1].ID)
}

func testWordConcurrentLikes(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")
	word, err := s.Words().Create(ctx, models.NewWord{Original: "和", Description: "Harmony within a group.", UserID: owner.ID})
	require.NoError(t, err)

	const likes = 40
	var wg sync.WaitGroup
	for i := 0; i < likes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Words().IncrementLikes(ctx, word.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Words().GetByID(ctx, word.ID)
	require.NoError(t, err)
	assert.EqualValues(t, likes, got.Likes)
}

func testExperienceInsertionOrder(t *testing.T, s repository.Store) {
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"茶道体験", "着物着付け体験", "寿司作り"} {
		experience, err := s.Experiences().Create(ctx, models.NewExperience{
			Title:       title,
			Description: "desc",
			ImageURL:    "img",
			Location:    "京都, 日本",
		})
		require.NoError(t, err)
		ids = append(ids, experience.ID)
	}

	experiences, err := s.Experiences().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, experiences, 3)
	for i, experience := range experiences {
		assert.Equal(t, ids[i], experience.ID)
	}

	got, err := s.Experiences().GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "着物着付け体験", got.Title)

	_, err = s.Experiences().GetByID(ctx, ids[2]+10)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testCancelledContext(t *testing.T, s repository.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Photos().GetAll(ctx)
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Words().IncrementLikes(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}
