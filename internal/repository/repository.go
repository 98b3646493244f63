// Package repository defines the storage interfaces the services depend on.
// The sqlite subpackage is the production implementation; tests inject
// in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/newsdesk/internal/model"
)

// ArticleQuery narrows an article listing at the storage layer. Only cheap
// exact-match criteria live here; category/search/tag matching, sorting, and
// pagination are pure functions in the service layer, independent of the
// storage technology.
type ArticleQuery struct {
	// Statuses restricts to articles in any of the given states. Empty means
	// all states.
	Statuses []model.Status
	// AuthorID restricts to one author's articles. Empty means all authors.
	AuthorID string
}

type UserRepository interface {
	// Create inserts a new user, generating ID and timestamps. Returns a
	// conflict error if the email is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// UpsertGitHub inserts a user on first GitHub login and refreshes the
	// profile fields on subsequent logins, preserving the internal ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	GetByID(ctx context.Context, id string) (*model.Article, error)
	List(ctx context.Context, q ArticleQuery) ([]model.Article, error)
	Update(ctx context.Context, article *model.Article) error
	// Delete removes the article and all of its comments atomically.
	Delete(ctx context.Context, id string) error
	// AddCommentCount adjusts the article's comment counter by delta,
	// flooring the result at zero.
	AddCommentCount(ctx context.Context, articleID string, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// ListByArticle returns the article's comments oldest-first, so a
	// conversation reads top to bottom.
	ListByArticle(ctx context.Context, articleID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}
