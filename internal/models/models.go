package models

import "time"

// Kind identifies a likeable entity type
type Kind string

// Likeable kinds
const (
	// KindPhoto identifies photos
	KindPhoto Kind = "photo"
	// KindWord identifies words
	KindWord Kind = "word"
)

// User represents a registered user
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Password   string    `json:"-"`
	IsJapanese bool      `json:"is_japanese"`
	CreatedAt  time.Time `json:"created_at"`
}

// Photo represents a photo posted by a user
type Photo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	UserID      int64     `json:"user_id"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Word represents a short cultural phrase posted by a user
type Word struct {
	ID          int64     `json:"id"`
	Original    string    `json:"original"`
	Translation *string   `json:"translation,omitempty"`
	Description string    `json:"description"`
	UserID      int64     `json:"user_id"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Experience represents curated cultural content
type Experience struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser holds the fields needed to create a user
type NewUser struct {
	Username   string
	Password   string
	IsJapanese bool
}

// NewPhoto holds the fields needed to create a photo
type NewPhoto struct {
	Title       string
	Description *string
	ImageURL    string
	UserID      int64
}

// NewWord holds the fields needed to create a word
type NewWord struct {
	Original    string
	Translation *string
	Description string
	UserID      int64
}

// NewExperience holds the fields needed to create an experience
type NewExperience struct {
	Title       string
	Description string
	ImageURL    string
	Location    string
}

// RankKey returns the like count and id used for ranking
func (p Photo) RankKey() (int64, int64) { return p.Likes, p.ID }

// RankKey returns the like count and id used for ranking
func (w Word) RankKey() (int64, int64) { return w.Likes, w.ID }
