package post

import "github.com/jobboard/cms/internal/models"

// ListQuery holds the filters accepted by the list endpoints.
type ListQuery struct {
	Category string        `form:"category" binding:"omitempty,max=180"`
	Tag      string        `form:"tag"      binding:"omitempty,max=180"`
	Q        string        `form:"q"        binding:"omitempty,max=200"`
	Status   models.Status `form:"status"   binding:"omitempty,oneof=draft published archived"`
}

type CreatePostDTO struct {
	Title           string        `json:"title"            binding:"required,max=255"`
	Slug            string        `json:"slug"             binding:"omitempty,max=180"`
	Description     string        `json:"description"      binding:"max=2000"`
	Content         string        `json:"content"          binding:"required"`
	CategoryID      *string       `json:"category_id"      binding:"omitempty,uuid"`
	FeaturedImage   string        `json:"featured_image"   binding:"max=500"`
	URL             string        `json:"url"              binding:"omitempty,url,max=500"`
	URLLabel        string        `json:"url_label"        binding:"max=100"`
	Status          models.Status `json:"status"           binding:"omitempty,oneof=draft published archived"`
	MetaTitle       string        `json:"meta_title"       binding:"max=255"`
	MetaDescription string        `json:"meta_description" binding:"max=500"`
	MetaKeywords    string        `json:"meta_keywords"    binding:"max=500"`
	Tags            []string      `json:"tags"             binding:"omitempty,max=20,dive,max=100"`
}

type UpdatePostDTO struct {
	Title           *string        `json:"title"            binding:"omitempty,min=1,max=255"`
	Slug            *string        `json:"slug"             binding:"omitempty,max=180"`
	Description     *string        `json:"description"      binding:"omitempty,max=2000"`
	Content         *string        `json:"content"`
	CategoryID      *string        `json:"category_id"      binding:"omitempty,uuid"`
	FeaturedImage   *string        `json:"featured_image"   binding:"omitempty,max=500"`
	URL             *string        `json:"url"              binding:"omitempty,url,max=500"`
	URLLabel        *string        `json:"url_label"        binding:"omitempty,max=100"`
	Status          *models.Status `json:"status"           binding:"omitempty,oneof=draft published archived"`
	MetaTitle       *string        `json:"meta_title"       binding:"omitempty,max=255"`
	MetaDescription *string        `json:"meta_description" binding:"omitempty,max=500"`
	MetaKeywords    *string        `json:"meta_keywords"    binding:"omitempty,max=500"`
	Tags            *[]string      `json:"tags"             binding:"omitempty,max=20,dive,max=100"`
}

type StatusDTO struct {
	Status models.Status `json:"status" binding:"required,oneof=draft published archived"`
}

// redirectResponse tells clients that a slug moved.
type redirectResponse struct {
	Redirect bool   `json:"redirect"`
	Slug     string `json:"slug"`
}
