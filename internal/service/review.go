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

// ReviewService manages book reviews. Reading reviews is open; changing a
// review requires owning it.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a review service.
func NewReviewService(st store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: st, logger: logger}
}

// reviewOwner adapts a review to the ownership guard.
type reviewOwner struct{ review *domain.Review }

func (r reviewOwner) OwnedBy(userID string) bool { return r.review.UserID == userID }

// CreateReviewRequest contains new review data.
type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text,omitempty" validate:"max=10000"`
}

// CreateReview adds a review by the acting user. A user may review the same
// book any number of times.
func (s *ReviewService) CreateReview(ctx context.Context, userID, bookID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, err
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	now := time.Now()
	review := &domain.Review{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        reviewID,
		BookID:    bookID,
		UserID:    userID,
		Rating:    req.Rating,
		Text:      req.Text,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created", "review_id", reviewID, "book_id", bookID, "user_id", userID)
	return review, nil
}

// UpdateReviewRequest contains a partial review update. Nil fields keep
// their stored value.
type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Text   *string `json:"text,omitempty" validate:"omitempty,max=10000"`
}

// UpdateReview applies a partial update to a review the acting user owns.
// The store applies the patch in one statement, so fields absent from the
// request cannot clobber a concurrent update.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, req UpdateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(reviewOwner{review}, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.store.UpdateReview(ctx, reviewID, now, store.ReviewPatch{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("review %s not found", reviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	review.UpdatedAt = now
	return review, nil
}

// DeleteReview removes a review the acting user owns.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := requireOwner(reviewOwner{review}, userID); err != nil {
		return err
	}
	return s.store.DeleteReview(ctx, reviewID)
}

// BookReviews is a book's review list with its aggregate rating.
type BookReviews struct {
	BookID        string           `json:"book_id"`
	AverageRating float64          `json:"average_rating"`
	Reviews       []*domain.Review `json:"reviews"`
}

// ListBookReviews returns a book's reviews, newest first, with the mean
// rating rounded to one decimal place. A book with no reviews averages 0.0.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID string) (*BookReviews, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, err
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	values := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		values = append(values, *r)
	}

	return &BookReviews{
		BookID:        bookID,
		AverageRating: domain.AverageRating(values),
		Reviews:       reviews,
	}, nil
}

// ListUserReviews returns every review written by a user, newest first.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string) ([]*domain.Review, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, err
	}
	return s.store.ListReviewsByUser(ctx, userID)
}

func (s *ReviewService) getReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("review %s not found", reviewID)
	}
	return review, err
}
