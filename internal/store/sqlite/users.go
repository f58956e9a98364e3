package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/booknook/booknook-server/internal/domain"
	"github.com/booknook/booknook-server/internal/id"
	"github.com/booknook/booknook-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, password_hash,
	display_name, auth_provider, auth_sub`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt    string
		updatedAt    string
		email        sql.NullString
		passwordHash sql.NullString
		displayName  sql.NullString
		authSub      sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&email,
		&passwordHash,
		&displayName,
		&u.AuthProvider,
		&authSub,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		u.Email = email.String
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	if displayName.Valid {
		u.DisplayName = displayName.String
	}
	if authSub.Valid {
		u.AuthSub = authSub.String
	}

	return &u, nil
}

// insertUser writes the user row and its role assignments inside tx.
func insertUser(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, username, email, password_hash,
			display_name, auth_provider, auth_sub
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		nullString(user.Email),
		nullString(user.PasswordHash),
		nullString(user.DisplayName),
		user.AuthProvider,
		nullString(user.AuthSub),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return store.ErrUsernameExists
		case isUniqueViolation(err, "users.email"):
			return store.ErrEmailExists
		case isUniqueViolation(err, ""):
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, role := range user.Roles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT ?, id FROM roles WHERE name = ?`,
			user.ID, string(role),
		)
		if err != nil {
			return fmt.Errorf("assign role %s: %w", role, err)
		}
	}

	return nil
}

// loadUserRoles loads the role names assigned to a user.
func (s *Store) loadUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, domain.Role(name))
	}
	return roles, rows.Err()
}

// CreateUser inserts a user and its role assignments.
// Returns store.ErrUsernameExists or store.ErrEmailExists on collisions.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.CreateUserWithShelves(ctx, user, nil)
}

// CreateUserWithShelves atomically inserts a user, its roles, and starter
// shelves. Shelves without IDs receive generated ones.
func (s *Store) CreateUserWithShelves(ctx context.Context, user *domain.User, shelves []domain.Shelf) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}

	for i := range shelves {
		shelf := &shelves[i]
		if shelf.ID == "" {
			shelf.ID, err = id.Generate("shelf")
			if err != nil {
				return fmt.Errorf("generate shelf ID: %w", err)
			}
		}
		shelf.OwnerID = user.ID
		if err := insertShelf(ctx, tx, shelf); err != nil {
			return fmt.Errorf("create starter shelf %q: %w", shelf.Name, err)
		}
	}

	return tx.Commit()
}

// GetUser retrieves a user by ID, including roles.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	return s.finishUser(ctx, row)
}

// GetUserByUsername retrieves a user by exact username match.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return s.finishUser(ctx, row)
}

// GetUserByAuthSub retrieves a federated user by provider and subject.
// Returns store.ErrNotFound if no such account has been provisioned.
func (s *Store) GetUserByAuthSub(ctx context.Context, provider, sub string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_provider = ? AND auth_sub = ?`,
		provider, sub)
	return s.finishUser(ctx, row)
}

// finishUser scans a user row and attaches its roles.
func (s *Store) finishUser(ctx context.Context, row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Roles, err = s.loadUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser performs a full row update on an existing user. Role
// assignments are replaced to match user.Roles.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?,
			username = ?,
			email = ?,
			password_hash = ?,
			display_name = ?,
			auth_provider = ?,
			auth_sub = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Username,
		nullString(user.Email),
		nullString(user.PasswordHash),
		nullString(user.DisplayName),
		user.AuthProvider,
		nullString(user.AuthSub),
		user.ID,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return store.ErrUsernameExists
		case isUniqueViolation(err, "users.email"):
			return store.ErrEmailExists
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, user.ID); err != nil {
		return err
	}
	for _, role := range user.Roles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT ?, id FROM roles WHERE name = ?`,
			user.ID, string(role),
		)
		if err != nil {
			return fmt.Errorf("assign role %s: %w", role, err)
		}
	}

	return tx.Commit()
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, u := range users {
		u.Roles, err = s.loadUserRoles(ctx, u.ID)
		if err != nil {
			return nil, err
		}
	}
	return users, nil
}
