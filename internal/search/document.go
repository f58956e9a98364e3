// Package search provides full-text catalog search using Bleve.
// It complements the substring filter on listings with stemmed, typo-tolerant
// matching over titles, authors, and descriptions.
package search

import "github.com/booknook/booknook-server/internal/domain"

// BookDocument is the shape of a book in the Bleve index.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Price       float64  `json:"price"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
	UpdatedAt   int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names by default, which would not match the
// lowercase names used in the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"price":      d.Price,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}
	return m
}

// BookToDocument converts a domain Book to its index document.
func BookToDocument(book *domain.Book) *BookDocument {
	categories := make([]string, 0, len(book.Categories))
	for _, c := range book.Categories {
		categories = append(categories, c.Name)
	}
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		Categories:  categories,
		Price:       book.Price,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}
