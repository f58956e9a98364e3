// Package store defines the persistence interface and its sentinel errors.
// Implementations live in subpackages; services translate these sentinels
// into domain errors with user-facing messages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
)

// Sentinel errors returned by store implementations.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUsernameExists and ErrEmailExists narrow ErrAlreadyExists for user
	// creation so callers can report which field collided.
	ErrUsernameExists = errors.New("store: username already exists")
	ErrEmailExists    = errors.New("store: email already exists")
)

// Store is the persistence contract for the catalog.
type Store interface {
	UserStore
	BookStore
	CategoryStore
	ShelfStore
	ReviewStore

	Close() error
}

// UserStore persists accounts and their roles.
type UserStore interface {
	// CreateUser inserts a user and its role assignments.
	CreateUser(ctx context.Context, user *domain.User) error
	// CreateUserWithShelves atomically inserts a user, its roles, and a set
	// of starter shelves. The shelves receive generated IDs.
	CreateUserWithShelves(ctx context.Context, user *domain.User, shelves []domain.Shelf) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByAuthSub locates a federated account by provider and subject.
	GetUserByAuthSub(ctx context.Context, provider, sub string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// BookStore persists catalog entries and their images.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error

	AddBookImage(ctx context.Context, image *domain.BookImage) error
	DeleteBookImage(ctx context.Context, bookID, imageID string) error
}

// CategoryStore persists the catalog taxonomy.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	AttachCategory(ctx context.Context, bookID, categoryID string) error
	DetachCategory(ctx context.Context, bookID, categoryID string) error
}

// ShelfPatch is a partial shelf update. Nil fields keep their stored value.
type ShelfPatch struct {
	Name        *string
	Image       *string
	Description *string
	Public      *bool
}

// ShelfStore persists user shelves and their ordered contents.
type ShelfStore interface {
	CreateShelf(ctx context.Context, shelf *domain.Shelf) error
	GetShelf(ctx context.Context, id string) (*domain.Shelf, error)
	// GetShelfByOwner retrieves a shelf scoped to its owner. A shelf that
	// exists but belongs to someone else reports ErrNotFound.
	GetShelfByOwner(ctx context.Context, ownerID, shelfID string) (*domain.Shelf, error)
	ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)
	ListPublicShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)
	ListPrivateShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)
	// UpdateShelf applies the patch in a single statement so concurrent
	// updates to different fields cannot overwrite each other.
	UpdateShelf(ctx context.Context, shelfID string, updatedAt time.Time, patch ShelfPatch) error
	DeleteShelf(ctx context.Context, id string) error

	// AddBookToShelf appends a book to the shelf's ordering. Adding a book
	// already on the shelf is a no-op.
	AddBookToShelf(ctx context.Context, shelfID, bookID string) error
	RemoveBookFromShelf(ctx context.Context, shelfID, bookID string) error
}

// ReviewPatch is a partial review update. Nil fields keep their stored value.
type ReviewPatch struct {
	Rating *int
	Text   *string
}

// ReviewStore persists book reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	// UpdateReview applies the patch in a single statement so concurrent
	// updates to different fields cannot overwrite each other.
	UpdateReview(ctx context.Context, reviewID string, updatedAt time.Time, patch ReviewPatch) error
	DeleteReview(ctx context.Context, id string) error
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error)
	ListAllReviews(ctx context.Context) ([]*domain.Review, error)
}
