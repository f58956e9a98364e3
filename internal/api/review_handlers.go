package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Get book reviews",
		Description: "Returns a book's reviews, newest first, with the average rating",
		Tags:        []string{"Reviews"},
	}, s.handleGetBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Create review",
		Description: "Adds a review by the current user; a user may review the same book more than once",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Update review",
		Description: "Applies a partial update to a review the current user owns",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete review",
		Description: "Removes a review the current user owns",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	BookID    string    `json:"book_id" doc:"Reviewed book ID"`
	UserID    string    `json:"user_id" doc:"Author user ID"`
	Rating    int       `json:"rating" doc:"Rating from 1 to 5"`
	Text      string    `json:"text,omitempty" doc:"Review text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ReviewOutput wraps a review response for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// BookReviewsInput contains parameters for listing a book's reviews.
type BookReviewsInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookReviewsResponse contains a book's reviews with the aggregate rating.
type BookReviewsResponse struct {
	BookID        string           `json:"book_id" doc:"Book ID"`
	AverageRating float64          `json:"average_rating" doc:"Mean rating rounded to one decimal, 0.0 when unreviewed"`
	Reviews       []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// BookReviewsOutput wraps the book reviews response for Huma.
type BookReviewsOutput struct {
	Body BookReviewsResponse
}

// CreateReviewRequest is the request body for creating a review.
type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5" doc:"Rating from 1 to 5"`
	Text   string `json:"text,omitempty" validate:"max=10000" doc:"Review text"`
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          CreateReviewRequest
}

// UpdateReviewRequest is the request body for updating a review.
type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5" doc:"Rating from 1 to 5"`
	Text   *string `json:"text,omitempty" validate:"omitempty,max=10000" doc:"Review text"`
}

// UpdateReviewInput wraps the update review request for Huma.
type UpdateReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
	Body          UpdateReviewRequest
}

// DeleteReviewInput contains parameters for deleting a review.
type DeleteReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleGetBookReviews(ctx context.Context, input *BookReviewsInput) (*BookReviewsOutput, error) {
	result, err := s.services.Review.ListBookReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewResponse, len(result.Reviews))
	for i, review := range result.Reviews {
		reviews[i] = mapReviewResponse(review)
	}

	return &BookReviewsOutput{
		Body: BookReviewsResponse{
			BookID:        result.BookID,
			AverageRating: result.AverageRating,
			Reviews:       reviews,
		},
	}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.CreateReview(ctx, user.ID, input.ID, service.CreateReviewRequest{
		Rating: input.Body.Rating,
		Text:   input.Body.Text,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UpdateReview(ctx, user.ID, input.ID, service.UpdateReviewRequest{
		Rating: input.Body.Rating,
		Text:   input.Body.Text,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "review deleted"}}, nil
}

// mapReviewResponse converts a domain review to its API shape.
func mapReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		BookID:    review.BookID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
