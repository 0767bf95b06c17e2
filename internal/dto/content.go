package dto

import "time"

type ContentRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Slug       string   `json:"slug" binding:"omitempty,max=220"`
	Type       string   `json:"type" binding:"required,oneof=blog case-study"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	Body       string   `json:"body"`
	CoverImage string   `json:"coverImage" binding:"omitempty,max=500"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

type ContentResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Type        string     `json:"type"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body,omitempty"`
	CoverImage  string     `json:"coverImage"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	AuthorID    uint       `json:"authorId"`
	AuthorName  string     `json:"authorName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ContentFilter narrows content listings. PublishedOnly is forced on the
// public routes.
type ContentFilter struct {
	Type          string
	Tag           string
	Status        string
	Search        string
	PublishedOnly bool
}
