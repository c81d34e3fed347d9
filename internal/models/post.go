package models

import "time"

// Post sources.
const (
	SourceAdmin     = "admin"
	SourceIngestion = "ingestion"
)

// PostModel is a blog post or an imported job listing.
type PostModel struct {
	Base
	SEOFields
	CategoryID    *string        `json:"category_id"            gorm:"type:char(36);index"`
	Category      *CategoryModel `json:"category,omitempty"     gorm:"foreignKey:CategoryID"`
	Title         string         `json:"title"                  gorm:"not null;index"`
	Slug          string         `json:"slug"                   gorm:"size:191;uniqueIndex;not null"`
	Description   string         `json:"description"            gorm:"type:text"`
	Content       string         `json:"content"                gorm:"type:longtext"`
	FeaturedImage string         `json:"featured_image"`
	URL           string         `json:"url"`
	URLLabel      string         `json:"url_label"`
	AuthorID      *string        `json:"author_id"              gorm:"type:char(36);index"`
	Status        Status         `json:"status"                 gorm:"size:16;index;not null;default:'draft'"`
	PublishedAt   *time.Time     `json:"published_at"           gorm:"index"`
	Source        string         `json:"source"                 gorm:"size:16;not null;default:'admin'"`
	// Fingerprint is set for ingested posts only; NULLs do not collide in the unique index.
	Fingerprint *string    `json:"-"                      gorm:"column:content_fingerprint;size:64;uniqueIndex"`
	Tags        []TagModel `json:"tags"                   gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
}

func (PostModel) TableName() string { return "posts" }

// IsPublished reports whether the post is visible on the public site.
func (p *PostModel) IsPublished() bool {
	return p.Status == StatusPublished
}

// PostTag is the post/tag association row.
type PostTag struct {
	PostID    string    `gorm:"type:char(36);primaryKey"`
	TagID     string    `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PostTag) TableName() string { return "post_tags" }
