package model

import "time"

// Comment is a reader's comment on an article.
//
// AuthorName mirrors the snapshot behaviour of Article.AuthorName. Comments
// are deleted together with their article.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	ArticleID  string    `json:"articleId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
