package domain

import "time"

// Book represents a catalog entry.
type Book struct {
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Description string      `json:"description,omitempty"`
	ISBN        string      `json:"isbn,omitempty"`
	Price       float64     `json:"price"`
	Categories  []Category  `json:"categories,omitempty"`
	Images      []BookImage `json:"images,omitempty"`
}

// Category is a catalog taxonomy label. Books and categories are many-to-many.
type Category struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// BookImage is cover or gallery artwork attached to a book. Images belong to
// exactly one book and are removed with it.
type BookImage struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text,omitempty"`
}

// HasCategory reports whether the book carries the named category.
func (b *Book) HasCategory(categoryID string) bool {
	for _, c := range b.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
