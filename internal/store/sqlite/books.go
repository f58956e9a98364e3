package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, author, description, isbn, price`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
		isbn        sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Author,
		&description,
		&isbn,
		&b.Price,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		b.Description = description.String
	}
	if isbn.Valid {
		b.ISBN = isbn.String
	}

	return &b, nil
}

// CreateBook inserts a catalog entry. Categories present on the book are
// attached; they must already exist.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at, title, author, description, isbn, price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.ISBN),
		book.Price,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, category := range book.Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO book_categories (book_id, category_id)
			VALUES (?, ?)`,
			book.ID, category.ID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBook retrieves a book by ID with its categories and images.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachBookRelations(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books with categories and images, oldest first.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range books {
		if err := s.attachBookRelations(ctx, b); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// UpdateBook performs a full row update on an existing book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			author = ?,
			description = ?,
			isbn = ?,
			price = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.ISBN),
		book.Price,
		book.ID,
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

// DeleteBook removes a book. Category links, images, and shelf entries
// cascade; reviews are not tied to the book row and stay behind.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
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

// AddBookImage attaches an image to a book.
func (s *Store) AddBookImage(ctx context.Context, image *domain.BookImage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_images (id, created_at, book_id, url, alt_text)
		VALUES (?, ?, ?, ?, ?)`,
		image.ID,
		formatTime(image.CreatedAt),
		image.BookID,
		image.URL,
		nullString(image.AltText),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteBookImage removes an image from a book.
// Returns store.ErrNotFound if the image does not exist on that book.
func (s *Store) DeleteBookImage(ctx context.Context, bookID, imageID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM book_images WHERE id = ? AND book_id = ?`, imageID, bookID)
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

// attachBookRelations loads categories and images onto a book.
func (s *Store) attachBookRelations(ctx context.Context, b *domain.Book) error {
	categories, err := s.listBookCategories(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Categories = categories

	images, err := s.listBookImages(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Images = images
	return nil
}

func (s *Store) listBookCategories(ctx context.Context, bookID string) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.created_at, c.updated_at, c.name
		FROM categories c
		JOIN book_categories bc ON bc.category_id = c.id
		WHERE bc.book_id = ?
		ORDER BY c.name ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *Store) listBookImages(ctx context.Context, bookID string) ([]domain.BookImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, book_id, url, alt_text
		FROM book_images WHERE book_id = ?
		ORDER BY created_at ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.BookImage
	for rows.Next() {
		var img domain.BookImage
		var createdAt string
		var altText sql.NullString

		if err := rows.Scan(&img.ID, &createdAt, &img.BookID, &img.URL, &altText); err != nil {
			return nil, err
		}
		img.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		if altText.Valid {
			img.AltText = altText.String
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
