package model

import "time"

// Status is an article's position in the moderation workflow.
//
// Transitions:
//
//	draft → pending              (writer submits for review)
//	pending → approved|rejected  (admin decision)
//	rejected → approved          (admin override)
//
// There is no rejected → pending resubmission path; a rejected article stays
// rejected until an admin acts on it.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every workflow state.
var Statuses = []Status{StatusDraft, StatusPending, StatusApproved, StatusRejected}

// ValidStatus reports whether s is a known workflow state.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// MaxTags is the maximum number of tags an article may carry.
const MaxTags = 10

// Categories is the curated category list offered to writers. The category
// field itself is free-form text; this list only drives the UI picker and the
// /api/categories endpoint.
var Categories = []string{
	"Technology",
	"Environment",
	"Business",
	"Healthcare",
	"Education",
	"Science",
	"Sports",
	"Entertainment",
	"Politics",
	"Finance",
}

// Article is a piece of content moving through the moderation workflow.
//
// AuthorName is a snapshot of the author's display name taken at creation
// time, so bylines stay stable even if the account is later renamed.
//
// PublishedAt is set when (and only when) the article is approved; it is the
// public display date. CommentsCount tracks the live number of comments and
// is maintained by the content service.
type Article struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Summary       string     `json:"summary"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	AuthorID      string     `json:"authorId"`
	AuthorName    string     `json:"authorName"`
	Status        Status     `json:"status"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LikesCount    int        `json:"likesCount"`
	CommentsCount int        `json:"commentsCount"`
}

// DisplayDate is the single effective date an article sorts and displays by:
// the publication time when published, the creation time otherwise.
func (a *Article) DisplayDate() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
