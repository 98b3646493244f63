package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/metrics"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	maxTitleLength   = 200
	maxSummaryLength = 500
	maxCommentLength = 2000
)

// ContentService handles the article lifecycle and comments.
type ContentService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewContentService(
	articles repository.ArticleRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		articles: articles,
		comments: comments,
		logger:   logger,
	}
}

// ArticlePage is one page of a filtered article listing. Total counts the
// whole filtered set, not just this page.
type ArticlePage struct {
	Items    []model.Article `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// List returns a page of articles matching f, ordered most-recent first by
// display date.
//
// Visibility: with no status filter, non-admin callers (including anonymous
// ones) see only approved articles; admins see everything. An explicit status
// filter overrides the default — combined with an authorID filter it is how
// authors review their own pending and rejected work.
func (s *ContentService) List(ctx context.Context, caller *model.User, page, pageSize int, f Filters) (*ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	q := repository.ArticleQuery{AuthorID: f.AuthorID}
	switch {
	case f.Status != "":
		if !model.ValidStatus(f.Status) {
			return nil, apperror.ValidationFailed("status", "status must be draft, pending, approved, or rejected")
		}
		q.Statuses = []model.Status{f.Status}
	case !caller.HasRole(model.RoleAdmin):
		q.Statuses = []model.Status{model.StatusApproved}
	}

	articles, err := s.articles.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	articles = filterArticles(articles, f)
	sortByDisplayDate(articles)
	items, total := paginate(articles, page, pageSize)

	return &ArticlePage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetByID returns one article if the caller may see it. Articles hidden from
// the caller produce the same not-found error as articles that don't exist,
// so restricted content cannot be probed for existence.
func (s *ContentService) GetByID(ctx context.Context, caller *model.User, id string) (*model.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !visibleTo(caller, article) {
		return nil, apperror.NotFound("article", id)
	}

	return article, nil
}

// visibleTo implements the single-article visibility rule: approved articles
// are public; everything else is visible to admins and to the article's own
// author.
func visibleTo(caller *model.User, a *model.Article) bool {
	if a.Status == model.StatusApproved {
		return true
	}
	if caller == nil {
		return false
	}
	return caller.HasRole(model.RoleAdmin) || caller.ID == a.AuthorID
}

// CreateArticleInput is the payload for article creation.
type CreateArticleInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}

func (in CreateArticleInput) validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Summary, validation.Required, validation.Length(1, maxSummaryLength)),
		validation.Field(&in.Category, validation.Required),
		validation.Field(&in.Tags, validation.Length(0, model.MaxTags)),
		validation.Field(&in.ImageURL, is.URL),
	))
}

// Create submits a new article. Employee submissions enter the review queue
// as pending; admin submissions are published immediately. AuthorName is
// snapshotted from the caller so bylines survive later profile changes.
func (s *ContentService) Create(ctx context.Context, caller *model.User, in CreateArticleInput) (*model.Article, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required to create articles")
	}
	if !caller.CanCreateArticles() {
		return nil, apperror.Forbidden("readers cannot create articles")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	if err := in.validate(); err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:      in.Title,
		Content:    in.Content,
		Summary:    in.Summary,
		Category:   in.Category,
		Tags:       in.Tags,
		ImageURL:   in.ImageURL,
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		Status:     model.StatusPending,
	}
	if caller.CanPublishArticles() {
		article.Status = model.StatusApproved
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	metrics.ArticlesCreated.WithLabelValues(string(article.Status)).Inc()
	s.logger.Info("article created",
		"article_id", article.ID, "author_id", caller.ID, "status", article.Status)

	return article, nil
}

// UpdateArticleInput is a partial update: nil fields are left unchanged.
type UpdateArticleInput struct {
	Title    *string       `json:"title"`
	Content  *string       `json:"content"`
	Summary  *string       `json:"summary"`
	Category *string       `json:"category"`
	Tags     *[]string     `json:"tags"`
	ImageURL *string       `json:"imageUrl"`
	Status   *model.Status `json:"status"`
}

// Update applies a partial update to an article.
//
// Permissions: admins may edit any article; employees only their own; readers
// none. Changing the status is an editorial act reserved for admins, whoever
// wrote the article. Approving an article that has never been published
// stamps its publication time.
func (s *ContentService) Update(ctx context.Context, caller *model.User, id string, in UpdateArticleInput) (*model.Article, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required to update articles")
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.CanCreateArticles() {
		return nil, apperror.Forbidden("readers cannot update articles")
	}
	if !caller.HasRole(model.RoleAdmin) && article.AuthorID != caller.ID {
		return nil, apperror.Forbidden("you can only update your own articles")
	}

	if in.Status != nil && *in.Status != article.Status {
		if !model.ValidStatus(*in.Status) {
			return nil, apperror.ValidationFailed("status", "status must be draft, pending, approved, or rejected")
		}
		if !caller.CanPublishArticles() {
			return nil, apperror.Forbidden("only admins can change article status")
		}

		metrics.ArticleStatusChanges.WithLabelValues(
			string(article.Status), string(*in.Status)).Inc()
		article.Status = *in.Status

		if article.Status == model.StatusApproved && article.PublishedAt == nil {
			now := time.Now()
			article.PublishedAt = &now
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, apperror.ValidationFailed("title", fmt.Sprintf("title must be 1-%d characters", maxTitleLength))
		}
		article.Title = title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, apperror.ValidationFailed("content", "content cannot be empty")
		}
		article.Content = *in.Content
	}
	if in.Summary != nil {
		summary := strings.TrimSpace(*in.Summary)
		if summary == "" || len(summary) > maxSummaryLength {
			return nil, apperror.ValidationFailed("summary", fmt.Sprintf("summary must be 1-%d characters", maxSummaryLength))
		}
		article.Summary = summary
	}
	if in.Category != nil {
		if *in.Category == "" {
			return nil, apperror.ValidationFailed("category", "category cannot be empty")
		}
		article.Category = *in.Category
	}
	if in.Tags != nil {
		if len(*in.Tags) > model.MaxTags {
			return nil, apperror.ValidationFailed("tags", fmt.Sprintf("at most %d tags allowed", model.MaxTags))
		}
		article.Tags = *in.Tags
	}
	if in.ImageURL != nil {
		article.ImageURL = *in.ImageURL
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article updated",
		"article_id", article.ID, "updated_by", caller.ID, "status", article.Status)

	return article, nil
}

// Delete removes an article and all of its comments. Admins may delete any
// article; employees only their own.
func (s *ContentService) Delete(ctx context.Context, caller *model.User, id string) error {
	if caller == nil {
		return apperror.Unauthenticated("authentication required to delete articles")
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !caller.CanCreateArticles() {
		return apperror.Forbidden("readers cannot delete articles")
	}
	if !caller.HasRole(model.RoleAdmin) && article.AuthorID != caller.ID {
		return apperror.Forbidden("you can only delete your own articles")
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("article deleted", "article_id", id, "deleted_by", caller.ID)

	return nil
}

// ListComments returns an article's comments oldest-first. The article must
// be visible to the caller.
func (s *ContentService) ListComments(ctx context.Context, caller *model.User, articleID string) ([]model.Comment, error) {
	if _, err := s.GetByID(ctx, caller, articleID); err != nil {
		return nil, err
	}
	return s.comments.ListByArticle(ctx, articleID)
}

// CreateComment posts a comment on an article visible to the caller. Any
// authenticated user may comment; the article's comment counter is bumped.
func (s *ContentService) CreateComment(ctx context.Context, caller *model.User, articleID, content string) (*model.Comment, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required to comment")
	}
	if !caller.CanComment() {
		return nil, apperror.Forbidden("commenting is not allowed for this account")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment cannot be empty")
	}
	if len(content) > maxCommentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}

	// Visibility check doubles as the existence check.
	if _, err := s.GetByID(ctx, caller, articleID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:    content,
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		ArticleID:  articleID,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.articles.AddCommentCount(ctx, articleID, 1); err != nil {
		return nil, fmt.Errorf("bumping comment count: %w", err)
	}

	metrics.CommentsCreated.Inc()
	s.logger.Info("comment created",
		"comment_id", comment.ID, "article_id", articleID, "author_id", caller.ID)

	return comment, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and for
// admins; the article's comment counter is decremented (floored at zero).
func (s *ContentService) DeleteComment(ctx context.Context, caller *model.User, commentID string) error {
	if caller == nil {
		return apperror.Unauthenticated("authentication required to delete comments")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != caller.ID && !caller.HasRole(model.RoleAdmin) {
		return apperror.Forbidden("you can only delete your own comments")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	if err := s.articles.AddCommentCount(ctx, comment.ArticleID, -1); err != nil {
		// The comment is gone; a stale counter on a missing article is not
		// worth failing the request over.
		if !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("decrementing comment count: %w", err)
		}
	}

	s.logger.Info("comment deleted",
		"comment_id", commentID, "article_id", comment.ArticleID, "deleted_by", caller.ID)

	return nil
}

// ArticleStats is the editorial dashboard summary.
type ArticleStats struct {
	Total      int            `json:"total"`
	Approved   int            `json:"approved"`
	Pending    int            `json:"pending"`
	Drafts     int            `json:"drafts"`
	ByCategory map[string]int `json:"byCategory"`
}

// Stats aggregates article counts across all statuses. Admin only. Total and
// the per-category counts include rejected articles even though they have no
// dedicated field.
func (s *ContentService) Stats(ctx context.Context, caller *model.User) (*ArticleStats, error) {
	if err := requireAdmin(caller, "view article stats"); err != nil {
		return nil, err
	}

	articles, err := s.articles.List(ctx, repository.ArticleQuery{})
	if err != nil {
		return nil, fmt.Errorf("loading articles for stats: %w", err)
	}

	stats := &ArticleStats{ByCategory: map[string]int{}}
	for _, a := range articles {
		stats.Total++
		switch a.Status {
		case model.StatusApproved:
			stats.Approved++
		case model.StatusPending:
			stats.Pending++
		case model.StatusDraft:
			stats.Drafts++
		}
		stats.ByCategory[a.Category]++
	}

	return stats, nil
}
