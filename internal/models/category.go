package models

// CategoryModel groups posts. The "jobs" category receives ingested listings.
type CategoryModel struct {
	Base
	Name            string `json:"name"             gorm:"size:191;uniqueIndex;not null"`
	Slug            string `json:"slug"             gorm:"size:191;uniqueIndex;not null"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description" gorm:"type:text"`
}

func (CategoryModel) TableName() string { return "categories" }

// TagModel is a free-form label attached to posts.
type TagModel struct {
	Base
	Name string `json:"name" gorm:"size:191;uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"size:191;uniqueIndex;not null"`
}

func (TagModel) TableName() string { return "tags" }
