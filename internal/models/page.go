package models

// PageModel is a standalone page (terms, privacy, contact...).
type PageModel struct {
	Base
	SEOFields
	Title        string `json:"title"          gorm:"not null"`
	Slug         string `json:"slug"           gorm:"size:191;uniqueIndex;not null"`
	Description  string `json:"description"    gorm:"type:text"`
	Content      string `json:"content"        gorm:"type:longtext"`
	Status       Status `json:"status"         gorm:"size:16;index;not null;default:'draft'"`
	IsFooterPage bool   `json:"is_footer_page" gorm:"default:false;index"`
	FooterOrder  *int   `json:"footer_order"`
}

func (PageModel) TableName() string { return "pages" }
