package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/store"
)

// shelfColumns is the ordered list of columns selected in shelf queries.
// Must match the scan order in scanShelf.
const shelfColumns = `id, created_at, updated_at, owner_id, name, image, description, public`

// scanShelf scans a sql.Row (or sql.Rows via its Scan method) into a domain.Shelf.
func scanShelf(scanner interface{ Scan(dest ...any) error }) (*domain.Shelf, error) {
	var sh domain.Shelf

	var (
		createdAt   string
		updatedAt   string
		image       sql.NullString
		description sql.NullString
		public      int
	)

	err := scanner.Scan(
		&sh.ID,
		&createdAt,
		&updatedAt,
		&sh.OwnerID,
		&sh.Name,
		&image,
		&description,
		&public,
	)
	if err != nil {
		return nil, err
	}

	sh.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sh.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		sh.Image = image.String
	}
	if description.Valid {
		sh.Description = description.String
	}
	sh.Public = public != 0

	return &sh, nil
}

// insertShelf writes a shelf row and its book associations inside tx.
func insertShelf(ctx context.Context, tx *sql.Tx, shelf *domain.Shelf) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shelves (
			id, created_at, updated_at, owner_id, name, image, description, public
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		shelf.ID,
		formatTime(shelf.CreatedAt),
		formatTime(shelf.UpdatedAt),
		shelf.OwnerID,
		shelf.Name,
		nullString(shelf.Image),
		nullString(shelf.Description),
		boolToInt(shelf.Public),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for i, bookID := range shelf.BookIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shelf_books (shelf_id, book_id, sort_order)
			VALUES (?, ?, ?)`,
			shelf.ID, bookID, i,
		)
		if err != nil {
			return fmt.Errorf("insert shelf_book %s: %w", bookID, err)
		}
	}

	return nil
}

// loadShelfBookIDs loads the ordered book IDs for a shelf.
func (s *Store) loadShelfBookIDs(ctx context.Context, shelfID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id FROM shelf_books WHERE shelf_id = ? ORDER BY sort_order`, shelfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookIDs []string
	for rows.Next() {
		var bookID string
		if err := rows.Scan(&bookID); err != nil {
			return nil, err
		}
		bookIDs = append(bookIDs, bookID)
	}
	return bookIDs, rows.Err()
}

// CreateShelf inserts a shelf and its book associations.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertShelf(ctx, tx, shelf); err != nil {
		return err
	}
	return tx.Commit()
}

// GetShelf retrieves a shelf by ID, including ordered book IDs.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) GetShelf(ctx context.Context, shelfID string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE id = ?`, shelfID)
	return s.finishShelf(ctx, row)
}

// GetShelfByOwner retrieves a shelf scoped to its owner. A shelf belonging
// to someone else reports store.ErrNotFound, not a permission error, so the
// response does not reveal the shelf's existence.
func (s *Store) GetShelfByOwner(ctx context.Context, ownerID, shelfID string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE id = ? AND owner_id = ?`,
		shelfID, ownerID)
	return s.finishShelf(ctx, row)
}

func (s *Store) finishShelf(ctx context.Context, row *sql.Row) (*domain.Shelf, error) {
	sh, err := scanShelf(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.BookIDs, err = s.loadShelfBookIDs(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// ListShelvesByOwner returns all shelves owned by a user, oldest first.
func (s *Store) ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.listShelves(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? ORDER BY created_at ASC`,
		ownerID)
}

// ListPublicShelvesByOwner returns a user's public shelves, oldest first.
func (s *Store) ListPublicShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.listShelves(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? AND public = 1 ORDER BY created_at ASC`,
		ownerID)
}

// ListPrivateShelvesByOwner returns a user's private shelves, oldest first.
func (s *Store) ListPrivateShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.listShelves(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? AND public = 0 ORDER BY created_at ASC`,
		ownerID)
}

func (s *Store) listShelves(ctx context.Context, query string, args ...any) ([]*domain.Shelf, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []*domain.Shelf
	for rows.Next() {
		sh, err := scanShelf(rows)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sh := range shelves {
		sh.BookIDs, err = s.loadShelfBookIDs(ctx, sh.ID)
		if err != nil {
			return nil, err
		}
	}
	return shelves, nil
}

// UpdateShelf patches a shelf's metadata in a single statement; absent patch
// fields keep their stored value. Book associations are managed through
// AddBookToShelf and RemoveBookFromShelf.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) UpdateShelf(ctx context.Context, shelfID string, updatedAt time.Time, patch store.ShelfPatch) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shelves SET
			updated_at = ?,
			name = CASE WHEN ? THEN ? ELSE name END,
			image = CASE WHEN ? THEN ? ELSE image END,
			description = CASE WHEN ? THEN ? ELSE description END,
			public = CASE WHEN ? THEN ? ELSE public END
		WHERE id = ?`,
		formatTime(updatedAt),
		patch.Name != nil, stringValue(patch.Name),
		patch.Image != nil, nullString(stringValue(patch.Image)),
		patch.Description != nil, nullString(stringValue(patch.Description)),
		patch.Public != nil, boolToInt(boolValue(patch.Public)),
		shelfID,
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

// DeleteShelf removes a shelf; shelf_books rows cascade.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) DeleteShelf(ctx context.Context, shelfID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, shelfID)
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

// AddBookToShelf appends a book to the end of the shelf's ordering.
// Adding a book already on the shelf is a no-op.
func (s *Store) AddBookToShelf(ctx context.Context, shelfID, bookID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO shelf_books (shelf_id, book_id, sort_order)
		VALUES (?, ?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM shelf_books WHERE shelf_id = ?))`,
		shelfID, bookID, shelfID)
	return err
}

// RemoveBookFromShelf removes a book from a shelf.
// Returns store.ErrNotFound if the book was not on the shelf.
func (s *Store) RemoveBookFromShelf(ctx context.Context, shelfID, bookID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM shelf_books WHERE shelf_id = ? AND book_id = ?`, shelfID, bookID)
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
