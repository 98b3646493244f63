package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

// UserStore implements repository.UserRepository on SQLite.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements the interface
var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, email, name, role, password_hash, github_id, avatar_url, created_at, updated_at`

// Create inserts a new user. The ID (xid — sortable, URL-safe) and
// timestamps are generated here and written back through the pointer.
// A duplicate email is reported as a conflict before hitting the UNIQUE
// constraint, so the caller gets a clean taxonomy error rather than a
// driver-specific one.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	var existing string
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ?`, user.Email,
	).Scan(&existing)
	if err == nil {
		return apperror.DuplicateEmail(user.Email)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking email %s: %w", user.Email, err)
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.PasswordHash,
		user.GitHubID,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getWhere(ctx, `id = ?`, id, "user", id)
}

// GetByEmail retrieves a user by email (case-insensitive, per the schema's
// COLLATE NOCASE).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getWhere(ctx, `email = ?`, email, "user", email)
}

// GetByGitHubID retrieves a user by their GitHub account ID.
func (s *UserStore) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return s.getWhere(ctx, `github_id = ? AND github_id != 0`, githubID,
		"user", fmt.Sprintf("github:%d", githubID))
}

func (s *UserStore) getWhere(ctx context.Context, where string, arg any, resource, id string) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PasswordHash,
		&u.GitHubID,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(resource, id)
		}
		return nil, fmt.Errorf("sqlite: getting %s %s: %w", resource, id, err)
	}

	return &u, nil
}

// UpsertGitHub inserts the user on first GitHub login and refreshes the
// profile fields on later logins. The internal ID, role, and CreatedAt of an
// existing account are preserved — only GitHub-sourced profile data changes.
func (s *UserStore) UpsertGitHub(ctx context.Context, user *model.User) error {
	existing, err := s.GetByGitHubID(ctx, user.GitHubID)
	if err == nil {
		user.ID = existing.ID
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()

		_, err = s.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Name,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	return s.Create(ctx, user)
}

// List returns all users, oldest account first.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
			&u.GitHubID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// UpdateRole sets the user's role and returns the updated record.
// RowsAffected distinguishes "no such user" from a successful no-op.
func (s *UserStore) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating role for user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return s.GetByID(ctx, id)
}
