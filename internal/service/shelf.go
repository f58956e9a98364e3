package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/store"
)

// ShelfService manages user shelves. Reads are scoped to the acting user, so
// shelves belonging to others read as missing; mutations of a shelf that
// exists but belongs to someone else are rejected as forbidden.
type ShelfService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShelfService creates a shelf service.
func NewShelfService(st store.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{store: st, logger: logger}
}

// CreateShelfRequest contains new shelf data.
type CreateShelfRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Image       string `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description string `json:"description,omitempty" validate:"max=1024"`
	Public      bool   `json:"public"`
}

// CreateShelf creates a shelf owned by the acting user.
func (s *ShelfService) CreateShelf(ctx context.Context, ownerID string, req CreateShelfRequest) (*domain.Shelf, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	shelfID, err := id.Generate("shelf")
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	now := time.Now()
	shelf := &domain.Shelf{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          shelfID,
		OwnerID:     ownerID,
		Name:        req.Name,
		Image:       req.Image,
		Description: req.Description,
		Public:      req.Public,
	}
	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		return nil, fmt.Errorf("create shelf: %w", err)
	}

	s.logger.Info("shelf created", "shelf_id", shelfID, "owner_id", ownerID)
	return shelf, nil
}

// GetOwnShelf retrieves one of the acting user's shelves.
func (s *ShelfService) GetOwnShelf(ctx context.Context, ownerID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.store.GetShelfByOwner(ctx, ownerID, shelfID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("shelf %s not found", shelfID)
	}
	return shelf, err
}

// ListOwnShelves returns every shelf the acting user owns.
func (s *ShelfService) ListOwnShelves(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.store.ListShelvesByOwner(ctx, ownerID)
}

// ListOwnPrivateShelves returns only the acting user's private shelves.
func (s *ShelfService) ListOwnPrivateShelves(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.store.ListPrivateShelvesByOwner(ctx, ownerID)
}

// getShelfForMutation loads a shelf for a write operation. A missing shelf is
// not found; a shelf that exists but belongs to someone else is forbidden.
func (s *ShelfService) getShelfForMutation(ctx context.Context, userID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.store.GetShelf(ctx, shelfID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("shelf %s not found", shelfID)
	}
	if err != nil {
		return nil, err
	}
	if err := requireOwner(shelf, userID); err != nil {
		return nil, err
	}
	return shelf, nil
}

// ListUserShelves returns another user's shelves as visible to the viewer:
// everything for the owner, public shelves only for anyone else.
func (s *ShelfService) ListUserShelves(ctx context.Context, viewerID, ownerID string) ([]*domain.Shelf, error) {
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", ownerID)
		}
		return nil, err
	}

	if viewerID == ownerID {
		return s.store.ListShelvesByOwner(ctx, ownerID)
	}
	return s.store.ListPublicShelvesByOwner(ctx, ownerID)
}

// UpdateShelfRequest contains a partial shelf update. Nil fields keep their
// stored value.
type UpdateShelfRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Image       *string `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024"`
	Public      *bool   `json:"public,omitempty"`
}

// UpdateShelf applies a partial update to a shelf the acting user owns. The
// store applies the patch in one statement, so fields absent from the request
// cannot clobber a concurrent update.
func (s *ShelfService) UpdateShelf(ctx context.Context, ownerID, shelfID string, req UpdateShelfRequest) (*domain.Shelf, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	shelf, err := s.getShelfForMutation(ctx, ownerID, shelfID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.store.UpdateShelf(ctx, shelfID, now, store.ShelfPatch{
		Name:        req.Name,
		Image:       req.Image,
		Description: req.Description,
		Public:      req.Public,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("shelf %s not found", shelfID)
	}
	if err != nil {
		return nil, fmt.Errorf("update shelf: %w", err)
	}

	if req.Name != nil {
		shelf.Name = *req.Name
	}
	if req.Image != nil {
		shelf.Image = *req.Image
	}
	if req.Description != nil {
		shelf.Description = *req.Description
	}
	if req.Public != nil {
		shelf.Public = *req.Public
	}
	shelf.UpdatedAt = now
	return shelf, nil
}

// DeleteShelf removes a shelf the acting user owns.
func (s *ShelfService) DeleteShelf(ctx context.Context, ownerID, shelfID string) error {
	if _, err := s.getShelfForMutation(ctx, ownerID, shelfID); err != nil {
		return err
	}
	return s.store.DeleteShelf(ctx, shelfID)
}

// AddBook puts a book on a shelf the acting user owns and returns the book
// that was added. Adding a book already on the shelf succeeds without
// changing anything.
func (s *ShelfService) AddBook(ctx context.Context, ownerID, shelfID, bookID string) (*domain.Book, error) {
	if _, err := s.getShelfForMutation(ctx, ownerID, shelfID); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.AddBookToShelf(ctx, shelfID, bookID); err != nil {
		return nil, fmt.Errorf("add book to shelf: %w", err)
	}
	return book, nil
}

// RemoveBook takes a book off a shelf the acting user owns.
func (s *ShelfService) RemoveBook(ctx context.Context, ownerID, shelfID, bookID string) error {
	if _, err := s.getShelfForMutation(ctx, ownerID, shelfID); err != nil {
		return err
	}

	err := s.store.RemoveBookFromShelf(ctx, shelfID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("book %s is not on shelf %s", bookID, shelfID)
	}
	return err
}
