package domain

import (
	"math"
	"time"
)

// Rating bounds for book reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rated opinion a user leaves on a book. A user may review the
// same book more than once.
type Review struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
}

// ValidRating reports whether r is within the accepted rating scale.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AverageRating returns the mean rating rounded half-up to one decimal place.
// A book with no reviews averages 0.0.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0.0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Floor(mean*10+0.5) / 10
}
