package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/store"
)

// scanCategory scans a category row. Column order: id, created_at, updated_at, name.
func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category
	var createdAt, updatedAt string

	if err := scanner.Scan(&c.ID, &createdAt, &updatedAt, &c.Name); err != nil {
		return nil, err
	}

	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a taxonomy label.
// Returns store.ErrAlreadyExists on duplicate ID or name.
func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, created_at, updated_at, name)
		VALUES (?, ?, ?, ?)`,
		category.ID,
		formatTime(category.CreatedAt),
		formatTime(category.UpdatedAt),
		category.Name,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, name FROM categories WHERE id = ?`, categoryID)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns all categories sorted by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
// Returns store.ErrNotFound if it does not exist, store.ErrAlreadyExists if
// the new name is taken.
func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET updated_at = ?, name = ? WHERE id = ?`,
		formatTime(category.UpdatedAt),
		category.Name,
		category.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
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

// DeleteCategory removes a category; book links cascade.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, categoryID)
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

// AttachCategory links a category to a book. Attaching twice is a no-op.
func (s *Store) AttachCategory(ctx context.Context, bookID, categoryID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO book_categories (book_id, category_id)
		VALUES (?, ?)`,
		bookID, categoryID)
	return err
}

// DetachCategory unlinks a category from a book.
// Returns store.ErrNotFound if the link did not exist.
func (s *Store) DetachCategory(ctx context.Context, bookID, categoryID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM book_categories WHERE book_id = ? AND category_id = ?`,
		bookID, categoryID)
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
