// Package main provides a tool to seed the database with sample catalog data.
//
// This creates books, categories, and optionally test users with shelves and
// reviews, for exercising the API during development.
//
// Usage:
//
//	DATA_PATH=~/booknook go run ./cmd/seed
//	DATA_PATH=~/booknook go run ./cmd/seed --create-users  # Also create test users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/store/sqlite"
)

var createUsers = flag.Bool("create-users", false, "Create test users with shelves and reviews")

type seedBook struct {
	title       string
	author      string
	description string
	isbn        string
	price       float64
	categories  []string
}

var seedCategories = []string{
	"Fantasy", "Science Fiction", "Mystery", "History", "Programming",
}

var seedBooks = []seedBook{
	{"The Name of the Wind", "Patrick Rothfuss", "A young man grows into legend.", "9780756404741", 14.99, []string{"Fantasy"}},
	{"A Memory Called Empire", "Arkady Martine", "An ambassador untangles her predecessor's death.", "9781250186430", 17.99, []string{"Science Fiction", "Mystery"}},
	{"The Big Sleep", "Raymond Chandler", "Philip Marlowe takes a blackmail case.", "9780394758282", 9.99, []string{"Mystery"}},
	{"SPQR", "Mary Beard", "A history of ancient Rome.", "9781631492228", 19.99, []string{"History"}},
	{"The Go Programming Language", "Alan A. A. Donovan", "The definitive Go reference.", "9780134190440", 39.99, []string{"Programming"}},
	{"Piranesi", "Susanna Clarke", "A man lives in a house with infinite halls.", "9781635575637", 16.99, []string{"Fantasy"}},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "./data"
	}
	dbPath := filepath.Join(dataPath, "booknook.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()

	// Create categories, reusing any that already exist by name.
	existing, err := s.ListCategories(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	categoryIDs := make(map[string]string)
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}
	for _, name := range seedCategories {
		if _, ok := categoryIDs[name]; ok {
			continue
		}
		category := &domain.Category{
			ID:        id.MustGenerate("cat"),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateCategory(ctx, category); err != nil {
			log.Fatalf("Failed to create category %q: %v", name, err)
		}
		categoryIDs[name] = category.ID
		fmt.Printf("Created category: %s\n", name)
	}

	bookIDs := make([]string, 0, len(seedBooks))
	for _, sb := range seedBooks {
		book := &domain.Book{
			ID:          id.MustGenerate("book"),
			Title:       sb.title,
			Author:      sb.author,
			Description: sb.description,
			ISBN:        sb.isbn,
			Price:       sb.price,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateBook(ctx, book); err != nil {
			log.Fatalf("Failed to create book %q: %v", sb.title, err)
		}
		for _, name := range sb.categories {
			if err := s.AttachCategory(ctx, book.ID, categoryIDs[name]); err != nil {
				log.Fatalf("Failed to attach category %q to %q: %v", name, sb.title, err)
			}
		}
		bookIDs = append(bookIDs, book.ID)
		fmt.Printf("Created book: %s by %s\n", sb.title, sb.author)
	}

	if *createUsers {
		seedTestUsers(ctx, s, bookIDs)
	}

	fmt.Println("Done. Restart the server to pick up the search index rebuild.")
}

// seedTestUsers creates a handful of accounts with starter shelves and leaves
// a few reviews so averages and listings have data.
func seedTestUsers(ctx context.Context, s *sqlite.Store, bookIDs []string) {
	now := time.Now()
	names := []string{"alice", "bob", "carol"}

	hash, err := auth.HashPassword("password123!")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, name := range names {
		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: hash,
			DisplayName:  name,
			AuthProvider: domain.AuthProviderLocal,
			Roles:        []domain.Role{domain.RoleUser},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		shelves := []domain.Shelf{
			{OwnerID: user.ID, Name: domain.ShelfNameWantToRead, Public: true, CreatedAt: now, UpdatedAt: now},
			{OwnerID: user.ID, Name: domain.ShelfNameReading, Public: true, CreatedAt: now, UpdatedAt: now},
			{OwnerID: user.ID, Name: domain.ShelfNameRead, Public: true, CreatedAt: now, UpdatedAt: now},
		}
		if err := s.CreateUserWithShelves(ctx, user, shelves); err != nil {
			fmt.Printf("Skipping user %s: %v\n", name, err)
			continue
		}
		fmt.Printf("Created user: %s (password: password123!)\n", name)

		// A couple of reviews per user on random books.
		for range 2 {
			review := &domain.Review{
				ID:        id.MustGenerate("review"),
				BookID:    bookIDs[rand.Intn(len(bookIDs))],
				UserID:    user.ID,
				Rating:    3 + rand.Intn(3),
				Text:      "Seeded review.",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.CreateReview(ctx, review); err != nil {
				log.Fatalf("Failed to create review: %v", err)
			}
		}
	}
}
