package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/newsdesk/internal/model"
)

// newTestDB opens a fresh in-memory database per test; t.Cleanup closes it
// even when subtests fail.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: "$2a$04$fakehashfakehashfakehash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

func createTestArticle(t *testing.T, db *DB, author *model.User, title string, status model.Status) *model.Article {
	t.Helper()
	article := &model.Article{
		Title:      title,
		Content:    "body",
		Summary:    "summary",
		Category:   "Technology",
		Tags:       []string{"go", "testing"},
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Status:     status,
	}
	if err := db.Articles().Create(context.Background(), article); err != nil {
		t.Fatalf("failed to create test article %s: %v", title, err)
	}
	return article
}

func createTestComment(t *testing.T, db *DB, author *model.User, articleID, content string) *model.Comment {
	t.Helper()
	comment := &model.Comment{
		Content:    content,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		ArticleID:  articleID,
	}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}
