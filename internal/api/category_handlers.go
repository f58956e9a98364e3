package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booknook/booknook-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the category taxonomy sorted by name",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Adds a category with a unique name (admin only)",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Rename category",
		Description: "Changes a category's name (admin only)",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Removes a category; links from books are dropped (admin only)",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryListResponse contains the category taxonomy.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"Categories sorted by name"`
}

// CategoryListOutput wraps the category list for Huma.
type CategoryListOutput struct {
	Body CategoryListResponse
}

// CategoryRequest is the request body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=128" doc:"Category name"`
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CategoryRequest
}

// RenameCategoryInput wraps the rename category request for Huma.
type RenameCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          CategoryRequest
}

// DeleteCategoryInput contains parameters for deleting a category.
type DeleteCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

// CategoryOutput wraps a category response for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoryListOutput, error) {
	categories, err := s.services.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	return &CategoryListOutput{Body: CategoryListResponse{Categories: resp}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.CreateCategory(ctx, service.CategoryRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: CategoryResponse{ID: category.ID, Name: category.Name}}, nil
}

func (s *Server) handleRenameCategory(ctx context.Context, input *RenameCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.RenameCategory(ctx, input.ID, service.CategoryRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: CategoryResponse{ID: category.ID, Name: category.Name}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "category deleted"}}, nil
}
