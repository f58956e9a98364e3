package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves",
		Summary:     "List own shelves",
		Description: "Returns every shelf the current user owns",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves",
		Summary:     "Create shelf",
		Description: "Creates a shelf owned by the current user",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPrivateShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/private",
		Summary:     "List own private shelves",
		Description: "Returns only the current user's private shelves",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPrivateShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Get shelf",
		Description: "Returns one of the current user's shelves with its books in insertion order",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateShelf",
		Method:      http.MethodPatch,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Update shelf",
		Description: "Applies a partial update to one of the current user's shelves",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShelf",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Delete shelf",
		Description: "Removes one of the current user's shelves",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "addShelfBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/{id}/books",
		Summary:     "Add book to shelf",
		Description: "Appends a book to the shelf; re-adding keeps its original position",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddShelfBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeShelfBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelves/{id}/books/{bookID}",
		Summary:     "Remove book from shelf",
		Description: "Takes a book off the shelf",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveShelfBook)
}

// === DTOs ===

// ShelfResponse contains shelf data in API responses.
type ShelfResponse struct {
	ID          string    `json:"id" doc:"Shelf ID"`
	OwnerID     string    `json:"owner_id" doc:"Owning user ID"`
	Name        string    `json:"name" doc:"Shelf name"`
	Image       string    `json:"image,omitempty" doc:"Cover image URL"`
	Description string    `json:"description,omitempty" doc:"Shelf description"`
	Public      bool      `json:"public" doc:"Whether the shelf is visible to other users"`
	BookIDs     []string  `json:"book_ids" doc:"Books in insertion order"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// ShelfOutput wraps a shelf response for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// ShelfListResponse contains a list of shelves.
type ShelfListResponse struct {
	Shelves []ShelfResponse `json:"shelves" doc:"List of shelves"`
}

// ShelfListOutput wraps the shelf list response for Huma.
type ShelfListOutput struct {
	Body ShelfListResponse
}

// ListShelvesInput contains parameters for listing own shelves.
type ListShelvesInput struct {
	Authorization string `header:"Authorization"`
}

// CreateShelfRequest is the request body for creating a shelf.
type CreateShelfRequest struct {
	Name        string `json:"name" validate:"required,max=128" doc:"Shelf name"`
	Image       string `json:"image,omitempty" validate:"omitempty,max=2048" doc:"Cover image URL"`
	Description string `json:"description,omitempty" validate:"max=1024" doc:"Shelf description"`
	Public      bool   `json:"public" doc:"Whether the shelf is visible to other users"`
}

// CreateShelfInput wraps the create shelf request for Huma.
type CreateShelfInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateShelfRequest
}

// GetShelfInput contains parameters for getting a shelf.
type GetShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
}

// UpdateShelfRequest is the request body for updating a shelf.
type UpdateShelfRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128" doc:"Shelf name"`
	Image       *string `json:"image,omitempty" validate:"omitempty,max=2048" doc:"Cover image URL"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024" doc:"Shelf description"`
	Public      *bool   `json:"public,omitempty" doc:"Whether the shelf is visible to other users"`
}

// UpdateShelfInput wraps the update shelf request for Huma.
type UpdateShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
	Body          UpdateShelfRequest
}

// DeleteShelfInput contains parameters for deleting a shelf.
type DeleteShelfInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
}

// AddShelfBookRequest is the request body for adding a book to a shelf.
type AddShelfBookRequest struct {
	BookID string `json:"book_id" validate:"required" doc:"Book ID to add"`
}

// AddShelfBookInput wraps the add book request for Huma.
type AddShelfBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
	Body          AddShelfBookRequest
}

// RemoveShelfBookInput contains parameters for removing a book from a shelf.
type RemoveShelfBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListShelves(ctx context.Context, input *ListShelvesInput) (*ShelfListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListOwnShelves(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ShelfListOutput{Body: mapShelfListResponse(shelves)}, nil
}

func (s *Server) handleListPrivateShelves(ctx context.Context, input *ListShelvesInput) (*ShelfListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListOwnPrivateShelves(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ShelfListOutput{Body: mapShelfListResponse(shelves)}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*ShelfOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.CreateShelf(ctx, user.ID, service.CreateShelfRequest{
		Name:        input.Body.Name,
		Image:       input.Body.Image,
		Description: input.Body.Description,
		Public:      input.Body.Public,
	})
	if err != nil {
		return nil, err
	}
	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleGetShelf(ctx context.Context, input *GetShelfInput) (*ShelfOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.GetOwnShelf(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleUpdateShelf(ctx context.Context, input *UpdateShelfInput) (*ShelfOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.UpdateShelf(ctx, user.ID, input.ID, service.UpdateShelfRequest{
		Name:        input.Body.Name,
		Image:       input.Body.Image,
		Description: input.Body.Description,
		Public:      input.Body.Public,
	})
	if err != nil {
		return nil, err
	}
	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleDeleteShelf(ctx context.Context, input *DeleteShelfInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.DeleteShelf(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "shelf deleted"}}, nil
}

func (s *Server) handleAddShelfBook(ctx context.Context, input *AddShelfBookInput) (*BookOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Shelf.AddBook(ctx, user.ID, input.ID, input.Body.BookID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleRemoveShelfBook(ctx context.Context, input *RemoveShelfBookInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.RemoveBook(ctx, user.ID, input.ID, input.BookID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "book removed from shelf"}}, nil
}

// === Mapping ===

func mapShelfResponse(shelf *domain.Shelf) ShelfResponse {
	bookIDs := shelf.BookIDs
	if bookIDs == nil {
		bookIDs = []string{}
	}

	return ShelfResponse{
		ID:          shelf.ID,
		OwnerID:     shelf.OwnerID,
		Name:        shelf.Name,
		Image:       shelf.Image,
		Description: shelf.Description,
		Public:      shelf.Public,
		BookIDs:     bookIDs,
		CreatedAt:   shelf.CreatedAt,
		UpdatedAt:   shelf.UpdatedAt,
	}
}

func mapShelfListResponse(shelves []*domain.Shelf) ShelfListResponse {
	resp := make([]ShelfResponse, len(shelves))
	for i, shelf := range shelves {
		resp[i] = mapShelfResponse(shelf)
	}
	return ShelfListResponse{Shelves: resp}
}
