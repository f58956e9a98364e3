package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the account behind the presented token, provisioning federated identities on first sight",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/shelves",
		Summary:     "Get a user's shelves",
		Description: "Returns another user's shelves; only public shelves are visible to non-owners",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/reviews",
		Summary:     "Get a user's reviews",
		Description: "Returns every review written by a user, newest first",
		Tags:        []string{"Users"},
	}, s.handleGetUserReviews)
}

// === DTOs ===

// CurrentUserInput contains parameters for the current user lookup.
type CurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserShelvesInput contains parameters for listing a user's shelves.
type UserShelvesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// UserReviewsInput contains parameters for listing a user's reviews.
type UserReviewsInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ReviewListOutput wraps a list of reviews for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// ReviewListResponse contains a list of reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *CurrentUserInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleGetUserShelves(ctx context.Context, input *UserShelvesInput) (*ShelfListOutput, error) {
	viewer, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListUserShelves(ctx, viewer.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ShelfListOutput{Body: mapShelfListResponse(shelves)}, nil
}

func (s *Server) handleGetUserReviews(ctx context.Context, input *UserReviewsInput) (*ReviewListOutput, error) {
	reviews, err := s.services.Review.ListUserReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]ReviewResponse, len(reviews))
	for i, review := range reviews {
		resp[i] = mapReviewResponse(review)
	}
	return &ReviewListOutput{Body: ReviewListResponse{Reviews: resp}}, nil
}
