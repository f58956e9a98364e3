package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
	domainerrors "github.com/booknook/booknook-server/internal/errors"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/normalize"
	"github.com/booknook/booknook-server/internal/search"
	"github.com/booknook/booknook-server/internal/store"
)

// Sort keys accepted by SortedBooks. Any other key leaves catalog order.
const (
	SortPriceAsc    = "priceAsc"
	SortPriceDesc   = "priceDesc"
	SortRatingsAsc  = "ratingsAsc"
	SortRatingsDesc = "ratingsDesc"
)

// CatalogService manages books, categories, and images, and keeps the
// full-text index in step with the catalog.
type CatalogService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(st store.Store, index *search.Index, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: st, index: index, logger: logger}
}

// ListBooks returns the whole catalog in creation order.
func (s *CatalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// GetBook returns a single catalog entry.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return book, err
}

// SearchBooks filters the catalog by caseless substring on title or
// description. A blank query matches nothing, not everything.
func (s *CatalogService) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	if strings.TrimSpace(query) == "" {
		return []*domain.Book{}, nil
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*domain.Book, 0)
	for _, book := range books {
		if normalize.ContainsFold(book.Title, query) || normalize.ContainsFold(book.Description, query) {
			matches = append(matches, book)
		}
	}
	return matches, nil
}

// FullTextSearch runs a stemmed, typo-tolerant query against the Bleve index.
func (s *CatalogService) FullTextSearch(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// SortedBooks returns the catalog ordered by the given key. An unknown key
// returns the catalog unsorted rather than erroring, so clients can pass
// user input through directly.
func (s *CatalogService) SortedBooks(ctx context.Context, key string) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	switch key {
	case SortPriceAsc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Price < books[j].Price })
	case SortPriceDesc:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Price > books[j].Price })
	case SortRatingsAsc, SortRatingsDesc:
		ratings, err := s.averageRatings(ctx)
		if err != nil {
			return nil, err
		}
		if key == SortRatingsAsc {
			sort.SliceStable(books, func(i, j int) bool { return ratings[books[i].ID] < ratings[books[j].ID] })
		} else {
			sort.SliceStable(books, func(i, j int) bool { return ratings[books[i].ID] > ratings[books[j].ID] })
		}
	}
	return books, nil
}

// averageRatings computes the mean rating per book across all reviews.
// Books without reviews are absent from the map and read as 0.0.
func (s *CatalogService) averageRatings(ctx context.Context) (map[string]float64, error) {
	reviews, err := s.store.ListAllReviews(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Review)
	for _, r := range reviews {
		grouped[r.BookID] = append(grouped[r.BookID], *r)
	}

	averages := make(map[string]float64, len(grouped))
	for bookID, bookReviews := range grouped {
		averages[bookID] = domain.AverageRating(bookReviews)
	}
	return averages, nil
}

// CreateBookRequest contains new catalog entry data.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required,max=512"`
	Author      string   `json:"author" validate:"max=256"`
	Description string   `json:"description,omitempty" validate:"max=10000"`
	ISBN        string   `json:"isbn,omitempty" validate:"max=32"`
	Price       float64  `json:"price" validate:"gte=0"`
	CategoryIDs []string `json:"category_ids,omitempty"`
}

// CreateBook adds an entry to the catalog and indexes it.
func (s *CatalogService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          bookID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Price:       req.Price,
	}

	for _, categoryID := range req.CategoryIDs {
		category, err := s.store.GetCategory(ctx, categoryID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("category %s not found", categoryID)
		}
		if err != nil {
			return nil, err
		}
		book.Categories = append(book.Categories, *category)
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.reindex(book)
	s.logger.Info("book created", "book_id", bookID, "title", book.Title)
	return book, nil
}

// UpdateBookRequest contains a partial book update. Nil fields keep their
// stored value.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=512"`
	Author      *string  `json:"author,omitempty" validate:"omitempty,max=256"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	ISBN        *string  `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// UpdateBook applies a partial update and reindexes the book.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	book.UpdatedAt = time.Now()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.reindex(book)
	return book, nil
}

// DeleteBook removes a catalog entry and its index document. Shelf entries
// and images go with it; reviews keep their own lifecycle and remain.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	err := s.store.DeleteBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return err
	}

	if err := s.index.DeleteBook(bookID); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}
	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// CategoryRequest contains category data for create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// CreateCategory adds a taxonomy label. Names are unique under Unicode case
// folding, so "Fiction" and "fiction" are the same label.
func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{CreatedAt: now, UpdatedAt: now, ID: categoryID, Name: req.Name}

	err = s.store.CreateCategory(ctx, category)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExists("category name already in use")
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns the taxonomy sorted by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// RenameCategory changes a category's name. Recasing an existing name is
// allowed; colliding with another category's name under case folding is not.
func (s *CatalogService) RenameCategory(ctx context.Context, categoryID string, req CategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(ctx, req.Name, categoryID); err != nil {
		return nil, err
	}

	category, err := s.store.GetCategory(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("category %s not found", categoryID)
	}
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.UpdatedAt = time.Now()

	err = s.store.UpdateCategory(ctx, category)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.AlreadyExists("category name already in use")
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ensureCategoryNameFree rejects a name already carried by another category
// under case folding. The store's unique index still backstops the exact-case
// race between the check and the insert.
func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name, excludeID string) error {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		if category.ID != excludeID && normalize.EqualFold(category.Name, name) {
			return domainerrors.AlreadyExists("category name already in use")
		}
	}
	return nil
}

// DeleteCategory removes a taxonomy label; book links cascade.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	err := s.store.DeleteCategory(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("category %s not found", categoryID)
	}
	return err
}

// AttachCategory links a category to a book and reindexes the book.
func (s *CatalogService) AttachCategory(ctx context.Context, bookID, categoryID string) (*domain.Book, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("category %s not found", categoryID)
		}
		return nil, err
	}

	if err := s.store.AttachCategory(ctx, bookID, categoryID); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	s.reindex(book)
	return book, nil
}

// DetachCategory unlinks a category from a book and reindexes the book.
func (s *CatalogService) DetachCategory(ctx context.Context, bookID, categoryID string) (*domain.Book, error) {
	err := s.store.DetachCategory(ctx, bookID, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("book does not carry that category")
	}
	if err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	s.reindex(book)
	return book, nil
}

// AddImageRequest contains artwork data for a book.
type AddImageRequest struct {
	URL     string `json:"url" validate:"required,url,max=2048"`
	AltText string `json:"alt_text,omitempty" validate:"max=512"`
}

// AddImage attaches artwork to a book.
func (s *CatalogService) AddImage(ctx context.Context, bookID string, req AddImageRequest) (*domain.BookImage, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	imageID, err := id.Generate("img")
	if err != nil {
		return nil, fmt.Errorf("generate image ID: %w", err)
	}

	image := &domain.BookImage{
		CreatedAt: time.Now(),
		ID:        imageID,
		BookID:    bookID,
		URL:       req.URL,
		AltText:   req.AltText,
	}
	if err := s.store.AddBookImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

// RemoveImage detaches artwork from a book.
func (s *CatalogService) RemoveImage(ctx context.Context, bookID, imageID string) error {
	err := s.store.DeleteBookImage(ctx, bookID, imageID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("image %s not found on book %s", imageID, bookID)
	}
	return err
}

// RebuildIndex drops and repopulates the full-text index from the store.
// Called at startup so the index never drifts from the catalog.
func (s *CatalogService) RebuildIndex(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return err
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return err
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.BookToDocument(book))
	}
	if err := s.index.IndexBooks(docs); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "books", len(docs))
	return nil
}

// reindex updates a book's index document, logging failures instead of
// surfacing them. The catalog is the source of truth; the index catches up
// on the next rebuild.
func (s *CatalogService) reindex(book *domain.Book) {
	if err := s.index.IndexBook(search.BookToDocument(book)); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}
