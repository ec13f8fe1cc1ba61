package services

import (
	"context"
	"errors"
	"fmt"

	"thisisjapan-backend/internal/models"
	"thisisjapan-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const samplePassword = "password123"

type samplePhoto struct {
	title, description, imageURL string
}

type sampleWord struct {
	original, translation, description string
}

var samplePhotos = []samplePhoto{
	{"春の桜と富士山", "山梨県からの富士山の眺め。日本の象徴と春の象徴が重なる瞬間。", "https://images.unsplash.com/photo-1528360983277-13d401cdc186"},
	{"秋の清水寺", "京都の歴史的な寺院と紅葉の美しい風景。", "https://images.unsplash.com/photo-1545569341-9eb8b30979d9"},
	{"東京の夜景", "輝く東京の街並みと都市の光。", "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e"},
	{"嵐山の竹林", "京都嵐山の静かで神秘的な竹林の小道。", "https://images.unsplash.com/photo-1504198453319-5ce911bafcde"},
}

var sampleWords = []sampleWord{
	{"一期一会 - いちごいちえ", "One time, one meeting", "人との出会いを大切にし、その瞬間は二度と訪れないという日本の哲学。すべての出会いを唯一無二のものとして尊重する考え方。"},
	{"侘寂 - わびさび", "Wabi-sabi", "完璧ではない美しさを見出す美意識。シンプルさ、自然な風合い、年月の痕跡を尊ぶ考え方。"},
	{"もったいない", "Mottainai", "物を大切にし、無駄にしないという日本の精神。資源を尊重し、感謝する心を表す言葉。"},
}

var sampleExperiences = []models.NewExperience{
	{
		Title:       "茶道体験",
		Description: "伝統的な日本の茶道を体験しながら、禅の精神と日本文化の深い理解を得られます。",
		ImageURL:    "https://images.unsplash.com/photo-1565532806166-c2a74c772249",
		Location:    "京都, 日本",
	},
	{
		Title:       "着物着付け体験",
		Description: "伝統的な日本の民族衣装である着物を着て、古都を散策しながら日本の美意識を体感できます。",
		ImageURL:    "https://images.unsplash.com/photo-1611032977401-60bde1d18f38",
		Location:    "東京, 日本",
	},
}

// Seeder fills empty stores with sample content
type Seeder struct {
	store    repository.Store
	hashCost int
}

// NewSeeder creates a new seeder
func NewSeeder(store repository.Store) *Seeder {
	return &Seeder{
		store:    store,
		hashCost: bcrypt.DefaultCost,
	}
}

// Seed creates the sample users and any content type that is still empty.
// Running it again leaves existing data untouched.
func (s *Seeder) Seed(ctx context.Context) error {
	hash, err := HashPassword(samplePassword, s.hashCost)
	if err != nil {
		return err
	}

	taro, err := s.ensureUser(ctx, models.NewUser{Username: "taro_yamada", Password: hash, IsJapanese: true})
	if err != nil {
		return err
	}
	emma, err := s.ensureUser(ctx, models.NewUser{Username: "emma_wilson", Password: hash})
	if err != nil {
		return err
	}

	if err := s.seedPhotos(ctx, taro.ID); err != nil {
		return err
	}
	if err := s.seedExperiences(ctx); err != nil {
		return err
	}
	return s.seedWords(ctx, emma.ID)
}

func (s *Seeder) ensureUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	users := s.store.Users()

	user, err := users.GetByUsername(ctx, in.Username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user %s: %w", in.Username, err)
	}

	user, err = users.Create(ctx, in)
	if errors.Is(err, repository.ErrConflict) {
		return users.GetByUsername(ctx, in.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", in.Username, err)
	}
	log.Info().Str("username", user.Username).Msg("Sample user created")
	return user, nil
}

func (s *Seeder) seedPhotos(ctx context.Context, userID int64) error {
	photos := s.store.Photos()

	count, err := photos.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count photos: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, sample := range samplePhotos {
		photo, err := photos.Create(ctx, models.NewPhoto{
			Title:       sample.title,
			Description: optional(sample.description),
			ImageURL:    sample.imageURL,
			UserID:      userID,
		})
		if err != nil {
			return fmt.Errorf("failed to create sample photo: %w", err)
		}
		for range 1500 - i*200 {
			if _, err := photos.IncrementLikes(ctx, photo.ID); err != nil {
				return fmt.Errorf("failed to like sample photo: %w", err)
			}
		}
	}

	log.Info().Int("count", len(samplePhotos)).Msg("Sample photos created")
	return nil
}

func (s *Seeder) seedWords(ctx context.Context, userID int64) error {
	words := s.store.Words()

	count, err := words.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count words: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, sample := range sampleWords {
		word, err := words.Create(ctx, models.NewWord{
			Original:    sample.original,
			Translation: optional(sample.translation),
			Description: sample.description,
			UserID:      userID,
		})
		if err != nil {
			return fmt.Errorf("failed to create sample word: %w", err)
		}
		for range 600 - i*100 {
			if _, err := words.IncrementLikes(ctx, word.ID); err != nil {
				return fmt.Errorf("failed to like sample word: %w", err)
			}
		}
	}

	log.Info().Int("count", len(sampleWords)).Msg("Sample words created")
	return nil
}

func (s *Seeder) seedExperiences(ctx context.Context) error {
	experiences := s.store.Experiences()

	count, err := experiences.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count experiences: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, sample := range sampleExperiences {
		if _, err := experiences.Create(ctx, sample); err != nil {
			return fmt.Errorf("failed to create sample experience: %w", err)
		}
	}

	log.Info().Int("count", len(sampleExperiences)).Msg("Sample experiences created")
	return nil
}
