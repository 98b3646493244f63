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

// CommentStore implements repository.CommentRepository on SQLite.
type CommentStore struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentStore)(nil)

const commentColumns = `id, content, author_id, author_name, article_id, created_at, updated_at`

// Create inserts a new comment, generating the ID and timestamps.
// The article's comment counter is maintained separately by the service via
// ArticleRepository.AddCommentCount.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Content,
		comment.AuthorID,
		comment.AuthorName,
		comment.ArticleID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment.
func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment

	err := s.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.Content,
		&c.AuthorID,
		&c.AuthorName,
		&c.ArticleID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

// ListByArticle returns the article's comments oldest-first.
func (s *CommentStore) ListByArticle(ctx context.Context, articleID string) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE article_id = ?
		 ORDER BY created_at ASC, id ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for article %s: %w", articleID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.Content, &c.AuthorID, &c.AuthorName,
			&c.ArticleID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment by ID.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
