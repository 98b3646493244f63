package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

func TestArticleCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)

	created := createTestArticle(t, db, author, "First Post", model.StatusPending)
	if created.ID == "" {
		t.Fatal("Create() did not set article.ID")
	}

	found, err := db.Articles().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Title != "First Post" {
		t.Errorf("Title = %q, want %q", found.Title, "First Post")
	}
	// Tags round-trip through their JSON column in order.
	if len(found.Tags) != 2 || found.Tags[0] != "go" || found.Tags[1] != "testing" {
		t.Errorf("Tags = %v, want [go testing]", found.Tags)
	}
	if found.PublishedAt != nil {
		t.Error("unpublished article should have nil PublishedAt")
	}
}

func TestArticleGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Articles().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestArticleList_Narrowing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com", model.RoleEmployee)
	bob := createTestUser(t, db, "bob@example.com", model.RoleEmployee)

	createTestArticle(t, db, alice, "alice approved", model.StatusApproved)
	createTestArticle(t, db, alice, "alice pending", model.StatusPending)
	createTestArticle(t, db, bob, "bob approved", model.StatusApproved)

	all, err := db.Articles().List(context.Background(), repository.ArticleQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered: got %d, want 3", len(all))
	}

	approved, err := db.Articles().List(context.Background(), repository.ArticleQuery{
		Statuses: []model.Status{model.StatusApproved},
	})
	if err != nil {
		t.Fatalf("List(approved) error = %v", err)
	}
	if len(approved) != 2 {
		t.Errorf("approved: got %d, want 2", len(approved))
	}

	aliceOnly, err := db.Articles().List(context.Background(), repository.ArticleQuery{
		AuthorID: alice.ID,
		Statuses: []model.Status{model.StatusPending, model.StatusApproved},
	})
	if err != nil {
		t.Fatalf("List(alice) error = %v", err)
	}
	if len(aliceOnly) != 2 {
		t.Errorf("alice: got %d, want 2", len(aliceOnly))
	}
}

func TestArticleUpdate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	article := createTestArticle(t, db, author, "Original", model.StatusPending)

	article.Title = "Updated"
	article.Status = model.StatusApproved
	if err := db.Articles().Update(context.Background(), article); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, _ := db.Articles().GetByID(context.Background(), article.ID)
	if found.Title != "Updated" || found.Status != model.StatusApproved {
		t.Errorf("got %q/%s, want Updated/approved", found.Title, found.Status)
	}
	if found.UpdatedAt.Before(found.CreatedAt) {
		t.Error("UpdatedAt should never precede CreatedAt")
	}
}

func TestArticleUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Articles().Update(context.Background(), &model.Article{ID: "missing"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestArticleDelete_CascadesComments(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	commenter := createTestUser(t, db, "commenter@example.com", model.RoleReader)

	article := createTestArticle(t, db, author, "Doomed", model.StatusApproved)
	createTestComment(t, db, commenter, article.ID, "first")
	createTestComment(t, db, commenter, article.ID, "second")

	if err := db.Articles().Delete(context.Background(), article.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Articles().GetByID(context.Background(), article.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("article: error = %v, want ErrNotFound", err)
	}

	comments, err := db.Comments().ListByArticle(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("ListByArticle() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived the cascade: %d left", len(comments))
	}
}

func TestArticleAddCommentCount(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RoleEmployee)
	article := createTestArticle(t, db, author, "Counted", model.StatusApproved)

	for i := 0; i < 2; i++ {
		if err := db.Articles().AddCommentCount(context.Background(), article.ID, 1); err != nil {
			t.Fatalf("AddCommentCount(+1) error = %v", err)
		}
	}

	found, _ := db.Articles().GetByID(context.Background(), article.ID)
	if found.CommentsCount != 2 {
		t.Errorf("CommentsCount = %d, want 2", found.CommentsCount)
	}

	// The counter floors at zero even if decremented past it.
	for i := 0; i < 5; i++ {
		if err := db.Articles().AddCommentCount(context.Background(), article.ID, -1); err != nil {
			t.Fatalf("AddCommentCount(-1) error = %v", err)
		}
	}
	found, _ = db.Articles().GetByID(context.Background(), article.ID)
	if found.CommentsCount != 0 {
		t.Errorf("CommentsCount = %d, want floor 0", found.CommentsCount)
	}
}
