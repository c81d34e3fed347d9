package seo

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
	"gorm.io/gorm"
)

type UpdateSEODTO struct {
	MetaTitle         string `json:"meta_title"          binding:"max=255"`
	MetaDescription   string `json:"meta_description"    binding:"max=500"`
	MetaKeywords      string `json:"meta_keywords"       binding:"max=500"`
	OGTitle           string `json:"og_title"            binding:"max=255"`
	OGDescription     string `json:"og_description"      binding:"max=500"`
	OGImage           string `json:"og_image"            binding:"omitempty,max=500"`
	TwitterCard       string `json:"twitter_card"        binding:"omitempty,oneof=summary summary_large_image app player"`
	GoogleAnalyticsID string `json:"google_analytics_id" binding:"max=64"`
	BingWebmasterID   string `json:"bing_webmaster_id"   binding:"max=64"`
	RobotsTxt         string `json:"robots_txt"          binding:"max=10000"`
	SitemapURL        string `json:"sitemap_url"         binding:"omitempty,url,max=500"`
}

type Service struct {
	db      *gorm.DB
	siteURL string
}

func NewService(db *gorm.DB, siteURL string) *Service {
	return &Service{db: db, siteURL: strings.TrimRight(siteURL, "/")}
}

// Get returns the stored settings, or nil when none were saved yet.
func (s *Service) Get() (*models.SEOModel, error) {
	var row models.SEOModel
	if err := s.db.Order("created_at ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *Service) Upsert(dto *UpdateSEODTO) (*models.SEOModel, error) {
	row, err := s.Get()
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.SEOModel{}
	}
	row.MetaTitle = dto.MetaTitle
	row.MetaDescription = dto.MetaDescription
	row.MetaKeywords = dto.MetaKeywords
	row.OGTitle = dto.OGTitle
	row.OGDescription = dto.OGDescription
	row.OGImage = dto.OGImage
	row.TwitterCard = dto.TwitterCard
	row.GoogleAnalyticsID = dto.GoogleAnalyticsID
	row.BingWebmasterID = dto.BingWebmasterID
	row.RobotsTxt = dto.RobotsTxt
	row.SitemapURL = dto.SitemapURL
	if err := s.db.Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// RobotsTxt returns the stored robots.txt or an allow-all default that
// points crawlers at the sitemap.
func (s *Service) RobotsTxt() (string, error) {
	row, err := s.Get()
	if err != nil {
		return "", err
	}
	if row != nil && strings.TrimSpace(row.RobotsTxt) != "" {
		return row.RobotsTxt, nil
	}
	sitemap := s.siteURL + "/sitemap.xml"
	if row != nil && row.SitemapURL != "" {
		sitemap = row.SitemapURL
	}
	return "User-agent: *\nAllow: /\n\nSitemap: " + sitemap + "\n", nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/seo", h.get)
	rg.PUT("/seo", authMW, h.update)
}

// RegisterRobots mounts /robots.txt at the engine root.
func (h *Handler) RegisterRobots(r gin.IRoutes) {
	r.GET("/robots.txt", h.robots)
}

func (h *Handler) get(c *gin.Context) {
	row, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		row = &models.SEOModel{}
	}
	response.OK(c, row)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSEODTO
	if !validation.Bind(c, &dto) {
		return
	}
	row, err := h.svc.Upsert(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

func (h *Handler) robots(c *gin.Context) {
	body, err := h.svc.RobotsTxt()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.String(http.StatusOK, body)
}
