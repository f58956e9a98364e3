package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/search"
	"github.com/booknook/booknook-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the catalog; filter with q (caseless substring) or order with sort (priceAsc, priceDesc, ratingsAsc, ratingsDesc)",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Full-text search",
		Description: "Runs a stemmed, typo-tolerant query over the catalog with optional category filter",
		Tags:        []string{"Books"},
	}, s.handleFullTextSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a catalog entry with its categories and images",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a catalog entry (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update to a catalog entry (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a catalog entry together with its reviews, images, and shelf placements (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "attachBookCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/categories/{categoryID}",
		Summary:     "Attach category",
		Description: "Links a category to a book (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAttachCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "detachBookCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/categories/{categoryID}",
		Summary:     "Detach category",
		Description: "Unlinks a category from a book (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDetachCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/images",
		Summary:     "Add book image",
		Description: "Attaches artwork to a book (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBookImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookImage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/images/{imageID}",
		Summary:     "Remove book image",
		Description: "Detaches artwork from a book (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveBookImage)
}

// === DTOs ===

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID   string `json:"id" doc:"Category ID"`
	Name string `json:"name" doc:"Category name"`
}

// ImageResponse contains book image data in API responses.
type ImageResponse struct {
	ID      string `json:"id" doc:"Image ID"`
	URL     string `json:"url" doc:"Image URL"`
	AltText string `json:"alt_text,omitempty" doc:"Alternative text"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID          string             `json:"id" doc:"Book ID"`
	Title       string             `json:"title" doc:"Title"`
	Author      string             `json:"author,omitempty" doc:"Author"`
	Description string             `json:"description,omitempty" doc:"Description"`
	ISBN        string             `json:"isbn,omitempty" doc:"ISBN"`
	Price       float64            `json:"price" doc:"Price"`
	Categories  []CategoryResponse `json:"categories" doc:"Attached categories"`
	Images      []ImageResponse    `json:"images" doc:"Attached images"`
	CreatedAt   time.Time          `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time          `json:"updated_at" doc:"Last update time"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListResponse contains a list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"List of books"`
}

// BookListOutput wraps the book list response for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// ListBooksInput contains parameters for listing the catalog.
type ListBooksInput struct {
	Q    string `query:"q" doc:"Caseless substring matched against title or description"`
	Sort string `query:"sort" doc:"Sort key: priceAsc, priceDesc, ratingsAsc, ratingsDesc"`
}

// FullTextSearchInput contains parameters for full-text search.
type FullTextSearchInput struct {
	Q        string `query:"q" doc:"Search query"`
	Category string `query:"category" doc:"Exact category name filter"`
	Limit    int    `query:"limit" doc:"Page size (default 20)"`
	Offset   int    `query:"offset" doc:"Page offset"`
}

// SearchOutput wraps full-text search results for Huma.
type SearchOutput struct {
	Body search.Result
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required,max=512" doc:"Title"`
	Author      string   `json:"author,omitempty" validate:"max=256" doc:"Author"`
	Description string   `json:"description,omitempty" validate:"max=10000" doc:"Description"`
	ISBN        string   `json:"isbn,omitempty" validate:"max=32" doc:"ISBN"`
	Price       float64  `json:"price" validate:"gte=0" doc:"Price"`
	CategoryIDs []string `json:"category_ids,omitempty" doc:"Categories to attach"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=512" doc:"Title"`
	Author      *string  `json:"author,omitempty" validate:"omitempty,max=256" doc:"Author"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=10000" doc:"Description"`
	ISBN        *string  `json:"isbn,omitempty" validate:"omitempty,max=32" doc:"ISBN"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0" doc:"Price"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookCategoryInput contains parameters for attaching or detaching a category.
type BookCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	CategoryID    string `path:"categoryID" doc:"Category ID"`
}

// AddImageRequest is the request body for attaching artwork.
type AddImageRequest struct {
	URL     string `json:"url" validate:"required,url,max=2048" doc:"Image URL"`
	AltText string `json:"alt_text,omitempty" validate:"max=512" doc:"Alternative text"`
}

// AddImageInput wraps the add image request for Huma.
type AddImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          AddImageRequest
}

// ImageOutput wraps an image response for Huma.
type ImageOutput struct {
	Body ImageResponse
}

// RemoveImageInput contains parameters for removing artwork.
type RemoveImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	ImageID       string `path:"imageID" doc:"Image ID"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	var books []*domain.Book
	var err error

	switch {
	case input.Q != "":
		books, err = s.services.Catalog.SearchBooks(ctx, input.Q)
	case input.Sort != "":
		books, err = s.services.Catalog.SortedBooks(ctx, input.Sort)
	default:
		books, err = s.services.Catalog.ListBooks(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: mapBookListResponse(books)}, nil
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *FullTextSearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Q
	params.Category = input.Category
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset

	result, err := s.services.Catalog.FullTextSearch(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, service.CreateBookRequest{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Description: input.Body.Description,
		ISBN:        input.Body.ISBN,
		Price:       input.Body.Price,
		CategoryIDs: input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, input.ID, service.UpdateBookRequest{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Description: input.Body.Description,
		ISBN:        input.Body.ISBN,
		Price:       input.Body.Price,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "book deleted"}}, nil
}

func (s *Server) handleAttachCategory(ctx context.Context, input *BookCategoryInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.AttachCategory(ctx, input.ID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDetachCategory(ctx context.Context, input *BookCategoryInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.DetachCategory(ctx, input.ID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleAddBookImage(ctx context.Context, input *AddImageInput) (*ImageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	image, err := s.services.Catalog.AddImage(ctx, input.ID, service.AddImageRequest{
		URL:     input.Body.URL,
		AltText: input.Body.AltText,
	})
	if err != nil {
		return nil, err
	}
	return &ImageOutput{Body: mapImageResponse(image)}, nil
}

func (s *Server) handleRemoveBookImage(ctx context.Context, input *RemoveImageInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.RemoveImage(ctx, input.ID, input.ImageID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "image removed"}}, nil
}

// === Mapping ===

func mapBookResponse(book *domain.Book) BookResponse {
	categories := make([]CategoryResponse, len(book.Categories))
	for i, c := range book.Categories {
		categories[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}

	images := make([]ImageResponse, len(book.Images))
	for i, img := range book.Images {
		images[i] = mapImageResponse(&img)
	}

	return BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		ISBN:        book.ISBN,
		Price:       book.Price,
		Categories:  categories,
		Images:      images,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
}

func mapImageResponse(image *domain.BookImage) ImageResponse {
	return ImageResponse{
		ID:      image.ID,
		URL:     image.URL,
		AltText: image.AltText,
	}
}

func mapBookListResponse(books []*domain.Book) BookListResponse {
	resp := make([]BookResponse, len(books))
	for i, book := range books {
		resp[i] = mapBookResponse(book)
	}
	return BookListResponse{Books: resp}
}
