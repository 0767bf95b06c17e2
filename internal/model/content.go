package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeBlog      ContentType = "blog"
	ContentTypeCaseStudy ContentType = "case-study"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Content is a blog post or case study.
type Content struct {
	gorm.Model
	Title       string                      `gorm:"column:title;size:200;not null"`
	Slug        string                      `gorm:"column:slug;size:220;uniqueIndex:idx_contents_slug;not null"`
	Type        ContentType                 `gorm:"column:type;size:20;not null;index:idx_contents_type_status"`
	Excerpt     string                      `gorm:"column:excerpt;size:500"`
	Body        string                      `gorm:"column:body;type:text"`
	CoverImage  string                      `gorm:"column:cover_image;size:500"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags"`
	Status      ContentStatus               `gorm:"column:status;size:20;not null;default:draft;index:idx_contents_type_status"`
	PublishedAt *time.Time                  `gorm:"column:published_at"`
	AuthorID    uint                        `gorm:"column:author_id;not null"`
	Author      *User                       `gorm:"foreignKey:AuthorID"`
}

// IsPublished reports whether anonymous readers may see the content.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}
