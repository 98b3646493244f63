package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory mocks. The services only see the repository interfaces, so these
// swap in for SQLite without the service noticing.
// ---------------------------------------------------------------------------

type mockArticleRepo struct {
	articles map[string]*model.Article
	nextID   int
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: make(map[string]*model.Article)}
}

func (m *mockArticleRepo) Create(_ context.Context, a *model.Article) error {
	m.nextID++
	a.ID = fmt.Sprintf("article-%d", m.nextID)
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := *a
	m.articles[a.ID] = &stored
	return nil
}

func (m *mockArticleRepo) GetByID(_ context.Context, id string) (*model.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, apperror.NotFound("article", id)
	}
	result := *a
	return &result, nil
}

func (m *mockArticleRepo) List(_ context.Context, q repository.ArticleQuery) ([]model.Article, error) {
	var result []model.Article
	for _, a := range m.articles {
		if q.AuthorID != "" && a.AuthorID != q.AuthorID {
			continue
		}
		if len(q.Statuses) > 0 {
			match := false
			for _, st := range q.Statuses {
				if a.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockArticleRepo) Update(_ context.Context, a *model.Article) error {
	if _, ok := m.articles[a.ID]; !ok {
		return apperror.NotFound("article", a.ID)
	}
	a.UpdatedAt = time.Now()
	stored := *a
	m.articles[a.ID] = &stored
	return nil
}

func (m *mockArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.articles[id]; !ok {
		return apperror.NotFound("article", id)
	}
	delete(m.articles, id)
	return nil
}

func (m *mockArticleRepo) AddCommentCount(_ context.Context, id string, delta int) error {
	a, ok := m.articles[id]
	if !ok {
		return apperror.NotFound("article", id)
	}
	a.CommentsCount += delta
	if a.CommentsCount < 0 {
		a.CommentsCount = 0
	}
	return nil
}

type mockCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	m.nextID++
	c.ID = fmt.Sprintf("comment-%d", m.nextID)
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := *c
	m.comments[c.ID] = &stored
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *c
	return &result, nil
}

func (m *mockCommentRepo) ListByArticle(_ context.Context, articleID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.ArticleID == articleID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	admin    = &model.User{ID: "u-admin", Name: "Alice Admin", Role: model.RoleAdmin}
	employee = &model.User{ID: "u-emp", Name: "Eve Employee", Role: model.RoleEmployee}
	reader   = &model.User{ID: "u-reader", Name: "Rob Reader", Role: model.RoleReader}
)

func newTestContent(t *testing.T) (*ContentService, *mockArticleRepo, *mockCommentRepo) {
	t.Helper()
	articles := newMockArticleRepo()
	comments := newMockCommentRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewContentService(articles, comments, logger), articles, comments
}

func validInput(title string) CreateArticleInput {
	return CreateArticleInput{
		Title:    title,
		Content:  "body",
		Summary:  "summary",
		Category: "Technology",
	}
}

func mustCreate(t *testing.T, svc *ContentService, caller *model.User, title string) *model.Article {
	t.Helper()
	a, err := svc.Create(context.Background(), caller, validInput(title))
	if err != nil {
		t.Fatalf("setup: Create(%q) error = %v", title, err)
	}
	return a
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreateArticle_EmployeeGoesPending(t *testing.T) {
	svc, _, _ := newTestContent(t)

	a := mustCreate(t, svc, employee, "by employee")

	if a.Status != model.StatusPending {
		t.Errorf("Status = %s, want pending", a.Status)
	}
	if a.PublishedAt != nil {
		t.Error("pending article should have no PublishedAt")
	}
	if a.AuthorID != employee.ID || a.AuthorName != employee.Name {
		t.Errorf("author = %s/%s, want %s/%s", a.AuthorID, a.AuthorName, employee.ID, employee.Name)
	}
}

func TestCreateArticle_AdminPublishesImmediately(t *testing.T) {
	svc, _, _ := newTestContent(t)

	a := mustCreate(t, svc, admin, "by admin")

	if a.Status != model.StatusApproved {
		t.Errorf("Status = %s, want approved", a.Status)
	}
	if a.PublishedAt == nil {
		t.Error("approved article should have PublishedAt set")
	}
}

func TestCreateArticle_ReaderForbidden(t *testing.T) {
	svc, _, _ := newTestContent(t)

	_, err := svc.Create(context.Background(), reader, validInput("nope"))
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestCreateArticle_AnonymousUnauthenticated(t *testing.T) {
	svc, _, _ := newTestContent(t)

	_, err := svc.Create(context.Background(), nil, validInput("nope"))
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestCreateArticle_Validation(t *testing.T) {
	svc, _, _ := newTestContent(t)

	bad := validInput("ok")
	bad.Title = ""
	if _, err := svc.Create(context.Background(), employee, bad); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty title: error = %v, want ErrValidation", err)
	}

	bad = validInput("ok")
	bad.Tags = make([]string, model.MaxTags+1)
	for i := range bad.Tags {
		bad.Tags[i] = fmt.Sprintf("t%d", i)
	}
	if _, err := svc.Create(context.Background(), employee, bad); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("too many tags: error = %v, want ErrValidation", err)
	}
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

func TestGetByID_ApprovedIsPublic(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "public")

	got, err := svc.GetByID(context.Background(), nil, a.ID)
	if err != nil {
		t.Fatalf("anonymous GetByID() error = %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("ID = %s, want %s", got.ID, a.ID)
	}
}

func TestGetByID_PendingHiddenAsNotFound(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "pending")

	// Anonymous and unrelated callers get the same error as for a missing
	// article, so existence can't be probed.
	for _, caller := range []*model.User{nil, reader} {
		_, err := svc.GetByID(context.Background(), caller, a.ID)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("caller %v: error = %v, want ErrNotFound", caller, err)
		}
	}
}

func TestGetByID_AuthorAndAdminSeePending(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "pending")

	for _, caller := range []*model.User{employee, admin} {
		if _, err := svc.GetByID(context.Background(), caller, a.ID); err != nil {
			t.Errorf("caller %s: GetByID() error = %v", caller.ID, err)
		}
	}
}

func TestList_DefaultVisibility(t *testing.T) {
	svc, _, _ := newTestContent(t)
	mustCreate(t, svc, admin, "approved one")
	mustCreate(t, svc, employee, "pending one")

	// Anonymous: approved only.
	page, err := svc.List(context.Background(), nil, 1, 10, Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("anonymous Total = %d, want 1", page.Total)
	}

	// Admin: everything.
	page, err = svc.List(context.Background(), admin, 1, 10, Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("admin Total = %d, want 2", page.Total)
	}
}

func TestList_ExplicitStatusFilter(t *testing.T) {
	svc, _, _ := newTestContent(t)
	mustCreate(t, svc, admin, "approved")
	mustCreate(t, svc, employee, "pending")

	// An author reviewing their own queue.
	page, err := svc.List(context.Background(), employee, 1, 10, Filters{
		Status:   model.StatusPending,
		AuthorID: employee.ID,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestList_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestContent(t)

	_, err := svc.List(context.Background(), nil, 1, 10, Filters{Status: "bogus"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestList_ClampsPageSize(t *testing.T) {
	svc, _, _ := newTestContent(t)

	page, err := svc.List(context.Background(), nil, -3, 9999, Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if page.PageSize != MaxPageSize {
		t.Errorf("PageSize = %d, want %d", page.PageSize, MaxPageSize)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func strPtr(s string) *string { return &s }

func statusPtr(s model.Status) *model.Status { return &s }

func TestUpdate_AuthorEditsOwn(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "original")

	updated, err := svc.Update(context.Background(), employee, a.ID, UpdateArticleInput{
		Title: strPtr("revised"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "revised" {
		t.Errorf("Title = %q, want %q", updated.Title, "revised")
	}
	// Untouched fields survive a partial update.
	if updated.Summary != "summary" {
		t.Errorf("Summary = %q, want unchanged", updated.Summary)
	}
}

func TestUpdate_EmployeeCannotEditOthers(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "not yours")

	_, err := svc.Update(context.Background(), employee, a.ID, UpdateArticleInput{
		Title: strPtr("hijack"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestUpdate_EmployeeCannotChangeStatus(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "mine")

	_, err := svc.Update(context.Background(), employee, a.ID, UpdateArticleInput{
		Status: statusPtr(model.StatusApproved),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("self-approval: error = %v, want ErrForbidden", err)
	}
}

func TestUpdate_AdminApprovalSetsPublishedAt(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "pending")

	approved, err := svc.Update(context.Background(), admin, a.ID, UpdateArticleInput{
		Status: statusPtr(model.StatusApproved),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("Status = %s, want approved", approved.Status)
	}
	if approved.PublishedAt == nil {
		t.Fatal("approval should set PublishedAt")
	}

	// Re-approving after a rejection keeps the original publication time.
	first := *approved.PublishedAt
	if _, err := svc.Update(context.Background(), admin, a.ID, UpdateArticleInput{
		Status: statusPtr(model.StatusRejected),
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	again, err := svc.Update(context.Background(), admin, a.ID, UpdateArticleInput{
		Status: statusPtr(model.StatusApproved),
	})
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if again.PublishedAt == nil || !again.PublishedAt.Equal(first) {
		t.Errorf("PublishedAt = %v, want original %v", again.PublishedAt, first)
	}
}

func TestUpdate_ReaderForbidden(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "article")

	_, err := svc.Update(context.Background(), reader, a.ID, UpdateArticleInput{
		Title: strPtr("nope"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestContent(t)

	_, err := svc.Update(context.Background(), admin, "missing", UpdateArticleInput{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete_AuthorDeletesOwn(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "mine")

	if err := svc.Delete(context.Background(), employee, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(context.Background(), admin, a.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_AdminDeletesAny(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "theirs")

	if err := svc.Delete(context.Background(), admin, a.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestDelete_EmployeeCannotDeleteOthers(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "not yours")

	err := svc.Delete(context.Background(), employee, a.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestCreateComment_IncrementsCount(t *testing.T) {
	svc, articles, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "commented")

	c, err := svc.CreateComment(context.Background(), reader, a.ID, "nice article")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if c.AuthorName != reader.Name {
		t.Errorf("AuthorName = %q, want %q", c.AuthorName, reader.Name)
	}

	stored, _ := articles.GetByID(context.Background(), a.ID)
	if stored.CommentsCount != 1 {
		t.Errorf("CommentsCount = %d, want 1", stored.CommentsCount)
	}
}

func TestCreateComment_RequiresAuth(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "commented")

	_, err := svc.CreateComment(context.Background(), nil, a.ID, "drive-by")
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestCreateComment_HiddenArticleIsNotFound(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "pending")

	_, err := svc.CreateComment(context.Background(), reader, a.ID, "can I see this?")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateComment_EmptyContent(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "commented")

	_, err := svc.CreateComment(context.Background(), reader, a.ID, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDeleteComment_AuthorOrAdmin(t *testing.T) {
	svc, articles, _ := newTestContent(t)
	a := mustCreate(t, svc, admin, "commented")

	mine, _ := svc.CreateComment(context.Background(), reader, a.ID, "mine")
	other, _ := svc.CreateComment(context.Background(), employee, a.ID, "theirs")

	// A reader cannot delete someone else's comment.
	if err := svc.DeleteComment(context.Background(), reader, other.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("foreign delete: error = %v, want ErrForbidden", err)
	}

	// Author deletes their own; admin deletes anyone's.
	if err := svc.DeleteComment(context.Background(), reader, mine.ID); err != nil {
		t.Errorf("own delete: error = %v", err)
	}
	if err := svc.DeleteComment(context.Background(), admin, other.ID); err != nil {
		t.Errorf("admin delete: error = %v", err)
	}

	stored, _ := articles.GetByID(context.Background(), a.ID)
	if stored.CommentsCount != 0 {
		t.Errorf("CommentsCount = %d, want 0", stored.CommentsCount)
	}
}

func TestListComments_HiddenArticleIsNotFound(t *testing.T) {
	svc, _, _ := newTestContent(t)
	a := mustCreate(t, svc, employee, "pending")

	_, err := svc.ListComments(context.Background(), nil, a.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestStats_AdminOnly(t *testing.T) {
	svc, _, _ := newTestContent(t)

	if _, err := svc.Stats(context.Background(), employee); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("employee: error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Stats(context.Background(), nil); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("anonymous: error = %v, want ErrUnauthenticated", err)
	}
}

func TestStats_Counts(t *testing.T) {
	svc, _, _ := newTestContent(t)
	mustCreate(t, svc, admin, "approved one")
	mustCreate(t, svc, employee, "pending")
	mustCreate(t, svc, employee, "rejected one")

	// Reject the third article.
	all, _ := svc.List(context.Background(), admin, 1, 10, Filters{Status: model.StatusPending})
	for _, art := range all.Items {
		if art.Title == "rejected one" {
			if _, err := svc.Update(context.Background(), admin, art.ID, UpdateArticleInput{
				Status: statusPtr(model.StatusRejected),
			}); err != nil {
				t.Fatalf("setup reject: %v", err)
			}
		}
	}

	stats, err := svc.Stats(context.Background(), admin)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	// Rejected articles count toward the total and category breakdown even
	// though they have no dedicated field.
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Approved != 1 || stats.Pending != 1 || stats.Drafts != 0 {
		t.Errorf("Approved/Pending/Drafts = %d/%d/%d, want 1/1/0",
			stats.Approved, stats.Pending, stats.Drafts)
	}
	if stats.ByCategory["Technology"] != 3 {
		t.Errorf("ByCategory[Technology] = %d, want 3", stats.ByCategory["Technology"])
	}
}
