package models

// Singleton tables hold at most one row; services always read the first.

const (
	LogoTypeImage = "image"
	LogoTypeText  = "text"
)

type BrandingModel struct {
	Base
	LogoType  string `json:"logo_type"  gorm:"size:8;not null;default:'text'"`
	LogoImage string `json:"logo_image"`
	LogoText  string `json:"logo_text"`
	Favicon   string `json:"favicon"`
}

func (BrandingModel) TableName() string { return "branding" }

type SEOModel struct {
	Base
	MetaTitle         string `json:"meta_title"`
	MetaDescription   string `json:"meta_description"    gorm:"type:text"`
	MetaKeywords      string `json:"meta_keywords"       gorm:"type:text"`
	OGTitle           string `json:"og_title"`
	OGDescription     string `json:"og_description"      gorm:"type:text"`
	OGImage           string `json:"og_image"`
	TwitterCard       string `json:"twitter_card"`
	GoogleAnalyticsID string `json:"google_analytics_id"`
	BingWebmasterID   string `json:"bing_webmaster_id"`
	RobotsTxt         string `json:"robots_txt"          gorm:"type:text"`
	SitemapURL        string `json:"sitemap_url"`
}

func (SEOModel) TableName() string { return "seo" }

type AboutUsModel struct {
	Base
	Content string `json:"content" gorm:"type:longtext;not null"`
}

func (AboutUsModel) TableName() string { return "about_us" }

type CopyrightModel struct {
	Base
	CopyrightText string `json:"copyright_text" gorm:"not null"`
	Year          string `json:"year"           gorm:"size:4;not null"`
}

func (CopyrightModel) TableName() string { return "copyright" }

// Supported social platforms.
var SocialPlatforms = []string{"facebook", "twitter", "instagram", "linkedin", "telegram"}

type SocialMediaModel struct {
	Base
	Platform string `json:"platform" gorm:"size:32;uniqueIndex;not null"`
	URL      string `json:"url"      gorm:"not null"`
}

func (SocialMediaModel) TableName() string { return "social_media" }
