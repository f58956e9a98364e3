package domain

import (
	"slices"
	"time"
)

// Default shelves created for every locally registered user.
const (
	ShelfNameRead       = "Read"
	ShelfNameWantToRead = "Want to Read"
	ShelfNameReading    = "Reading"
)

// Shelf is a user-curated list of books. Each shelf belongs to exactly one
// user; public shelves are visible to everyone, private ones only to their
// owner.
type Shelf struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Public      bool      `json:"public"`
	BookIDs     []string  `json:"book_ids"` // insertion order, oldest first
}

// OwnedBy reports whether the shelf belongs to the given user.
func (s *Shelf) OwnedBy(userID string) bool {
	return s.OwnerID == userID
}

// AddBook appends a book ID to the shelf. Adding a book that is already
// present is a no-op. Returns whether the shelf changed.
func (s *Shelf) AddBook(bookID string) bool {
	if slices.Contains(s.BookIDs, bookID) {
		return false
	}
	s.BookIDs = append(s.BookIDs, bookID)
	s.UpdatedAt = time.Now()
	return true
}

// RemoveBook removes a book ID from the shelf. Returns false if the book was
// not present.
func (s *Shelf) RemoveBook(bookID string) bool {
	for i, id := range s.BookIDs {
		if id == bookID {
			s.BookIDs = append(s.BookIDs[:i], s.BookIDs[i+1:]...)
			s.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// ContainsBook reports whether the shelf holds the given book.
func (s *Shelf) ContainsBook(bookID string) bool {
	return slices.Contains(s.BookIDs, bookID)
}

// DefaultShelves returns the three starter shelves for a new user, all public.
func DefaultShelves(ownerID string) []Shelf {
	names := []string{ShelfNameRead, ShelfNameWantToRead, ShelfNameReading}
	shelves := make([]Shelf, 0, len(names))
	now := time.Now()
	for _, name := range names {
		shelves = append(shelves, Shelf{
			CreatedAt: now,
			UpdatedAt: now,
			OwnerID:   ownerID,
			Name:      name,
			Public:    true,
		})
	}
	return shelves
}
