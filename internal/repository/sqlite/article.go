package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

// ArticleStore implements repository.ArticleRepository on SQLite.
type ArticleStore struct {
	conn *sql.DB
}

var _ repository.ArticleRepository = (*ArticleStore)(nil)

const articleColumns = `id, title, content, summary, category, tags, author_id, author_name,
	status, image_url, published_at, created_at, updated_at, likes_count, comments_count`

// Create inserts a new article, generating the ID and timestamps.
// Status, PublishedAt, and the counters must already be set by the service —
// the store does not apply workflow rules.
func (s *ArticleStore) Create(ctx context.Context, article *model.Article) error {
	now := time.Now()
	article.ID = xid.New().String()
	article.CreatedAt = now
	article.UpdatedAt = now

	tags, err := encodeTags(article.Tags)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.Title,
		article.Content,
		article.Summary,
		article.Category,
		tags,
		article.AuthorID,
		article.AuthorName,
		article.Status,
		article.ImageURL,
		nullableTime(article.PublishedAt),
		article.CreatedAt,
		article.UpdatedAt,
		article.LikesCount,
		article.CommentsCount,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating article: %w", err)
	}

	return nil
}

// GetByID retrieves a single article. Visibility rules are the service's
// concern; the store returns whatever exists.
func (s *ArticleStore) GetByID(ctx context.Context, id string) (*model.Article, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article", id)
		}
		return nil, fmt.Errorf("sqlite: getting article %s: %w", id, err)
	}

	return article, nil
}

// List returns articles matching the query's exact-match criteria, newest
// created first. Richer filtering, display-date ordering, and pagination
// happen in the service layer.
func (s *ArticleStore) List(ctx context.Context, q repository.ArticleQuery) ([]model.Article, error) {
	var (
		where []string
		args  []any
	)

	if len(q.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.Statuses)), ", ")
		where = append(where, fmt.Sprintf("status IN (%s)", placeholders))
		for _, st := range q.Statuses {
			args = append(args, st)
		}
	}
	if q.AuthorID != "" {
		where = append(where, "author_id = ?")
		args = append(args, q.AuthorID)
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating articles: %w", err)
	}

	return articles, nil
}

// Update overwrites the article's mutable fields. UpdatedAt is set here so
// every write path stamps it consistently.
func (s *ArticleStore) Update(ctx context.Context, article *model.Article) error {
	article.UpdatedAt = time.Now()

	tags, err := encodeTags(article.Tags)
	if err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE articles
		 SET title = ?, content = ?, summary = ?, category = ?, tags = ?,
		     status = ?, image_url = ?, published_at = ?, updated_at = ?,
		     likes_count = ?, comments_count = ?
		 WHERE id = ?`,
		article.Title,
		article.Content,
		article.Summary,
		article.Category,
		tags,
		article.Status,
		article.ImageURL,
		nullableTime(article.PublishedAt),
		article.UpdatedAt,
		article.LikesCount,
		article.CommentsCount,
		article.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating article %s: %w", article.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("article", article.ID)
	}

	return nil
}

// Delete removes the article and all of its comments in one transaction.
// The comments FK also carries ON DELETE CASCADE, but the explicit delete
// keeps the cascade visible and independent of the foreign_keys pragma.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE article_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting comments of article %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting article %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("article", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of article %s: %w", id, err)
	}

	return nil
}

// AddCommentCount adjusts the comment counter by delta. MAX(0, ...) floors
// the counter so a decrement can never drive it negative.
func (s *ArticleStore) AddCommentCount(ctx context.Context, articleID string, delta int) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE articles SET comments_count = MAX(0, comments_count + ?) WHERE id = ?`,
		delta, articleID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adjusting comment count for article %s: %w", articleID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("article", articleID)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*model.Article, error) {
	var (
		a           model.Article
		tags        string
		publishedAt sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Summary,
		&a.Category,
		&tags,
		&a.AuthorID,
		&a.AuthorName,
		&a.Status,
		&a.ImageURL,
		&publishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.LikesCount,
		&a.CommentsCount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of article %s: %w", a.ID, err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}

	return &a, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(encoded), nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
