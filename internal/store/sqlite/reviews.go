package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/store"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `id, created_at, updated_at, book_id, user_id, rating, review`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review

	var (
		createdAt string
		updatedAt string
		text      sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.BookID,
		&r.UserID,
		&r.Rating,
		&text,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if text.Valid {
		r.Text = text.String
	}

	return &r, nil
}

// CreateReview inserts a review.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_reviews (
			id, created_at, updated_at, book_id, user_id, rating, review
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
		review.BookID,
		review.UserID,
		review.Rating,
		nullString(review.Text),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetReview retrieves a review by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM book_reviews WHERE id = ?`, reviewID)

	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReview patches a review's rating and text in a single statement;
// absent patch fields keep their stored value.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateReview(ctx context.Context, reviewID string, updatedAt time.Time, patch store.ReviewPatch) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE book_reviews SET
			updated_at = ?,
			rating = CASE WHEN ? THEN ? ELSE rating END,
			review = CASE WHEN ? THEN ? ELSE review END
		WHERE id = ?`,
		formatTime(updatedAt),
		patch.Rating != nil, intValue(patch.Rating),
		patch.Text != nil, nullString(stringValue(patch.Text)),
		reviewID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteReview removes a review.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM book_reviews WHERE id = ?`, reviewID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListReviewsByBook returns a book's reviews, newest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM book_reviews WHERE book_id = ? ORDER BY created_at DESC`,
		bookID)
}

// ListReviewsByUser returns a user's reviews, newest first.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM book_reviews WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
}

// ListAllReviews returns every review. Rating aggregation loads them all and
// groups by book in memory.
func (s *Store) ListAllReviews(ctx context.Context) ([]*domain.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM book_reviews ORDER BY created_at ASC`)
}

func (s *Store) listReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
