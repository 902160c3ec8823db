package models

import (
	"strings"
	"time"
)

// VideoAsset represents a catalog record for a playable video
type VideoAsset struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	VideoURL    string    `json:"videoUrl" db:"video_url"`
	Duration    int       `json:"duration" db:"duration"`
	Category    string    `json:"category" db:"category"`
	Rating      float64   `json:"rating" db:"rating"`
	ReleaseYear int       `json:"releaseYear" db:"release_year"`
	Cast        []string  `json:"cast" db:"cast"`
	Director    string    `json:"director" db:"director"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Category constants
const (
	CategoryMovie       = "movie"
	CategorySeries      = "series"
	CategoryDocumentary = "documentary"
	CategoryKids        = "kids"
)

// Categories lists the valid video categories
var Categories = []string{CategoryMovie, CategorySeries, CategoryDocumentary, CategoryKids}

// IsValidCategory reports whether c is a known category
func IsValidCategory(c string) bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// SplitCast parses a comma-separated cast string into an ordered list of names
func SplitCast(cast string) []string {
	if cast == "" {
		return []string{}
	}

	parts := strings.Split(cast, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// VideoList is a paginated page of catalog records
type VideoList struct {
	Videos      []*VideoAsset `json:"videos"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// VideoUpdate holds optional field updates for a catalog record.
// Nil fields are left untouched.
type VideoUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Duration    *int      `json:"duration"`
	Rating      *float64  `json:"rating"`
	ReleaseYear *int      `json:"releaseYear"`
	Cast        *[]string `json:"cast"`
	Director    *string   `json:"director"`
}
