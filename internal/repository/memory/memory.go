// Package memory provides a map-backed entity store. It is safe for
// concurrent use and is intended for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
)

// Store is an in-memory implementation of repository.Store
type Store struct {
	mu sync.RWMutex

	users       map[int64]models.User
	usernames   map[string]int64
	photos      map[int64]models.Photo
	words       map[int64]models.Word
	experiences map[int64]models.Experience

	nextUserID       int64
	nextPhotoID      int64
	nextWordID       int64
	nextExperienceID int64

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)
var _ repository.UserStore = userStore{}
var _ repository.PhotoStore = photoStore{}
var _ repository.WordStore = wordStore{}
var _ repository.ExperienceStore = experienceStore{}

// New creates an empty store
func New() *Store {
	return &Store{
		users:            make(map[int64]models.User),
		usernames:        make(map[string]int64),
		photos:           make(map[int64]models.Photo),
		words:            make(map[int64]models.Word),
		experiences:      make(map[int64]models.Experience),
		nextUserID:       1,
		nextPhotoID:      1,
		nextWordID:       1,
		nextExperienceID: 1,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserStore             { return userStore{s} }
func (s *Store) Photos() repository.PhotoStore           { return photoStore{s} }
func (s *Store) Words() repository.WordStore             { return wordStore{s} }
func (s *Store) Experiences() repository.ExperienceStore { return experienceStore{s} }

// Ping reports whether ctx is still live; the map itself is always reachable.
func (s *Store) Ping(ctx context.Context) error { return checkContext(ctx) }

// Close is a no-op
func (s *Store) Close() {}

// checkContext surfaces a cancelled or expired caller context as ErrUnavailable.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return nil
}

// Users -----------------------------------------------------------------------

type userStore struct{ s *Store }

func (u userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	return &user, nil
}

func (u userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.usernames[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	user := u.s.users[id]
	return &user, nil
}

func (u userStore) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, exists := u.s.usernames[in.Username]; exists {
		return nil, fmt.Errorf("username %q: %w", in.Username, repository.ErrConflict)
	}

	user := models.User{
		ID:         u.s.nextUserID,
		Username:   in.Username,
		Password:   in.Password,
		IsJapanese: in.IsJapanese,
		CreatedAt:  u.s.now(),
	}
	u.s.nextUserID++
	u.s.users[user.ID] = user
	u.s.usernames[user.Username] = user.ID
	return &user, nil
}

// Photos ----------------------------------------------------------------------

type photoStore struct{ s *Store }

func (p photoStore) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	photo, ok := p.s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %d: %w", id, repository.ErrNotFound)
	}
	return clonePhoto(photo), nil
}

func (p photoStore) GetAll(ctx context.Context) ([]*models.Photo, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	p.s.mu.RLock()
	photos := make([]*models.Photo, 0, len(p.s.photos))
	for _, photo := range p.s.photos {
		photos = append(photos, clonePhoto(photo))
	}
	p.s.mu.RUnlock()

	ranking.Sort(photos)
	return photos, nil
}

func (p photoStore) Create(ctx context.Context, in models.NewPhoto) (*models.Photo, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.users[in.UserID]; !ok {
		return nil, fmt.Errorf("user %d: %w", in.UserID, repository.ErrOwnerNotFound)
	}

	photo := models.Photo{
		ID:          p.s.nextPhotoID,
		Title:       in.Title,
		Description: cloneString(in.Description),
		ImageURL:    in.ImageURL,
		UserID:      in.UserID,
		CreatedAt:   p.s.now(),
	}
	p.s.nextPhotoID++
	p.s.photos[photo.ID] = photo
	return clonePhoto(photo), nil
}

func (p photoStore) IncrementLikes(ctx context.Context, id int64) (*models.Photo, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	photo, ok := p.s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %d: %w", id, repository.ErrNotFound)
	}
	photo.Likes++
	p.s.photos[id] = photo
	return clonePhoto(photo), nil
}

func (p photoStore) Count(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	return int64(len(p.s.photos)), nil
}

// Words -----------------------------------------------------------------------

type wordStore struct{ s *Store }

func (w wordStore) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()

	word, ok := w.s.words[id]
	if !ok {
		return nil, fmt.Errorf("word %d: %w", id, repository.ErrNotFound)
	}
	return cloneWord(word), nil
}

func (w wordStore) GetAll(ctx context.Context) ([]*models.Word, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	w.s.mu.RLock()
	words := make([]*models.Word, 0, len(w.s.words))
	for _, word := range w.s.words {
		words = append(words, cloneWord(word))
	}
	w.s.mu.RUnlock()

	ranking.Sort(words)
	return words, nil
}

func (w wordStore) Create(ctx context.Context, in models.NewWord) (*models.Word, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if _, ok := w.s.users[in.UserID]; !ok {
		return nil, fmt.Errorf("user %d: %w", in.UserID, repository.ErrOwnerNotFound)
	}

	word := models.Word{
		ID:          w.s.nextWordID,
		Original:    in.Original,
		Translation: cloneString(in.Translation),
		Description: in.Description,
		UserID:      in.UserID,
		CreatedAt:   w.s.now(),
	}
	w.s.nextWordID++
	w.s.words[word.ID] = word
	return cloneWord(word), nil
}

func (w wordStore) IncrementLikes(ctx context.Context, id int64) (*models.Word, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	word, ok := w.s.words[id]
	if !ok {
		return nil, fmt.Errorf("word %d: %w", id, repository.ErrNotFound)
	}
	word.Likes++
	w.s.words[id] = word
	return cloneWord(word), nil
}

func (w wordStore) Count(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	return int64(len(w.s.words)), nil
}

// Experiences -----------------------------------------------------------------

type experienceStore struct{ s *Store }

func (e experienceStore) GetByID(ctx context.Context, id int64) (*models.Experience, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	experience, ok := e.s.experiences[id]
	if !ok {
		return nil, fmt.Errorf("experience %d: %w", id, repository.ErrNotFound)
	}
	return &experience, nil
}

func (e experienceStore) GetAll(ctx context.Context) ([]*models.Experience, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	// ids are dense and assigned in insertion order
	experiences := make([]*models.Experience, 0, len(e.s.experiences))
	for id := int64(1); id < e.s.nextExperienceID; id++ {
		if experience, ok := e.s.experiences[id]; ok {
			experiences = append(experiences, &experience)
		}
	}
	return experiences, nil
}

func (e experienceStore) Create(ctx context.Context, in models.NewExperience) (*models.Experience, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	experience := models.Experience{
		ID:          e.s.nextExperienceID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Location:    in.Location,
		CreatedAt:   e.s.now(),
	}
	e.s.nextExperienceID++
	e.s.experiences[experience.ID] = experience
	return &experience, nil
}

func (e experienceStore) Count(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	return int64(len(e.s.experiences)), nil
}

func clonePhoto(photo models.Photo) *models.Photo {
	photo.Description = cloneString(photo.Description)
	return &photo
}

func cloneWord(word models.Word) *models.Word {
	word.Translation = cloneString(word.Translation)
	return &word
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
