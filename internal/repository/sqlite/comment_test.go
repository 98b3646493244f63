package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/model"
)

func TestCommentCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	commenter := createTestUser(t, db, "commenter@example.com", model.RoleReader)
	article := createTestArticle(t, db, author, "Post", model.StatusApproved)

	created := createTestComment(t, db, commenter, article.ID, "well said")
	if created.ID == "" {
		t.Fatal("Create() did not set comment.ID")
	}

	found, err := db.Comments().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Content != "well said" {
		t.Errorf("Content = %q, want %q", found.Content, "well said")
	}
	if found.ArticleID != article.ID {
		t.Errorf("ArticleID = %s, want %s", found.ArticleID, article.ID)
	}
}

func TestCommentListByArticle_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	commenter := createTestUser(t, db, "commenter@example.com", model.RoleReader)
	article := createTestArticle(t, db, author, "Post", model.StatusApproved)

	first := createTestComment(t, db, commenter, article.ID, "first")
	time.Sleep(2 * time.Millisecond)
	second := createTestComment(t, db, commenter, article.ID, "second")

	comments, err := db.Comments().ListByArticle(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("ListByArticle() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].ID != first.ID || comments[1].ID != second.ID {
		t.Error("comments should be ordered oldest first")
	}
}

func TestCommentListByArticle_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	article := createTestArticle(t, db, author, "Quiet", model.StatusApproved)

	comments, err := db.Comments().ListByArticle(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("ListByArticle() error = %v", err)
	}
	// An empty slice serializes as [] rather than null.
	if comments == nil {
		t.Error("ListByArticle() should return an empty slice, not nil")
	}
}

func TestCommentDelete(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	commenter := createTestUser(t, db, "commenter@example.com", model.RoleReader)
	article := createTestArticle(t, db, author, "Post", model.StatusApproved)
	comment := createTestComment(t, db, commenter, article.ID, "delete me")

	if err := db.Comments().Delete(context.Background(), comment.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Comments().GetByID(context.Background(), comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}

	if err := db.Comments().Delete(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown id: error = %v, want ErrNotFound", err)
	}
}
