package page

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/modules/system/util/slugtracker"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/slug"
	"github.com/jobboard/cms/internal/pkg/validation"
	"gorm.io/gorm"
)

type CreatePageDTO struct {
	Title           string        `json:"title"            binding:"required,max=255"`
	Slug            string        `json:"slug"             binding:"omitempty,max=180"`
	Description     string        `json:"description"      binding:"max=2000"`
	Content         string        `json:"content"          binding:"required"`
	Status          models.Status `json:"status"           binding:"omitempty,oneof=draft published archived"`
	IsFooterPage    bool          `json:"is_footer_page"`
	FooterOrder     *int          `json:"footer_order"     binding:"omitempty,min=0"`
	MetaTitle       string        `json:"meta_title"       binding:"max=255"`
	MetaDescription string        `json:"meta_description" binding:"max=500"`
	MetaKeywords    string        `json:"meta_keywords"    binding:"max=500"`
}

type UpdatePageDTO struct {
	Title           *string        `json:"title"            binding:"omitempty,min=1,max=255"`
	Slug            *string        `json:"slug"             binding:"omitempty,max=180"`
	Description     *string        `json:"description"      binding:"omitempty,max=2000"`
	Content         *string        `json:"content"`
	Status          *models.Status `json:"status"           binding:"omitempty,oneof=draft published archived"`
	IsFooterPage    *bool          `json:"is_footer_page"`
	FooterOrder     *int           `json:"footer_order"     binding:"omitempty,min=0"`
	MetaTitle       *string        `json:"meta_title"       binding:"omitempty,max=255"`
	MetaDescription *string        `json:"meta_description" binding:"omitempty,max=500"`
	MetaKeywords    *string        `json:"meta_keywords"    binding:"omitempty,max=500"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, isAdmin bool) ([]models.PageModel, response.Pagination, error) {
	tx := s.db.Model(&models.PageModel{}).Order("created_at DESC")
	if !isAdmin {
		tx = tx.Where("status = ?", models.StatusPublished)
	}
	var pages []models.PageModel
	pag, err := pagination.Paginate(tx, q, &pages)
	return pages, pag, err
}

// Footer returns the published footer pages in display order.
func (s *Service) Footer() ([]models.PageModel, error) {
	var pages []models.PageModel
	err := s.db.Where("is_footer_page = ? AND status = ?", true, models.StatusPublished).
		Order("footer_order IS NULL, footer_order ASC, title ASC").
		Find(&pages).Error
	return pages, err
}

func (s *Service) GetByID(id string, isAdmin bool) (*models.PageModel, error) {
	return s.first(s.db.Where("id = ?", id), isAdmin)
}

// GetBySlug follows slug history when the slug is no longer current.
func (s *Service) GetBySlug(value string, isAdmin bool) (*models.PageModel, error) {
	page, err := s.first(s.db.Where("slug = ?", value), isAdmin)
	if err != nil || page != nil {
		return page, err
	}
	targetID, err := slugtracker.NewService(s.db).FindBySlug(value, slugtracker.TypePage)
	if err != nil || targetID == "" {
		return nil, err
	}
	return s.GetByID(targetID, isAdmin)
}

func (s *Service) first(tx *gorm.DB, isAdmin bool) (*models.PageModel, error) {
	if !isAdmin {
		tx = tx.Where("status = ?", models.StatusPublished)
	}
	var page models.PageModel
	if err := tx.First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (s *Service) Create(dto *CreatePageDTO) (*models.PageModel, error) {
	status := dto.Status
	if status == "" {
		status = models.StatusDraft
	}
	page := models.PageModel{
		SEOFields: models.SEOFields{
			MetaTitle:       dto.MetaTitle,
			MetaDescription: dto.MetaDescription,
			MetaKeywords:    dto.MetaKeywords,
		},
		Title:        strings.TrimSpace(dto.Title),
		Description:  dto.Description,
		Content:      dto.Content,
		Status:       status,
		IsFooterPage: dto.IsFooterPage,
		FooterOrder:  dto.FooterOrder,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		next, err := uniqueSlug(tx, baseSlug(dto.Slug, page.Title), "")
		if err != nil {
			return err
		}
		page.Slug = next
		return tx.Create(&page).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Update(id string, dto *UpdatePageDTO) (*models.PageModel, error) {
	var page models.PageModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		title := page.Title
		if dto.Title != nil {
			title = strings.TrimSpace(*dto.Title)
			updates["title"] = title
		}
		if dto.Slug != nil {
			base := baseSlug(*dto.Slug, title)
			if base != page.Slug {
				next, err := uniqueSlug(tx, base, page.ID)
				if err != nil {
					return err
				}
				if err := slugtracker.Track(tx, page.Slug, slugtracker.TypePage, page.ID); err != nil {
					return err
				}
				updates["slug"] = next
			}
		}
		if dto.Description != nil {
			updates["description"] = *dto.Description
		}
		if dto.Content != nil {
			updates["content"] = *dto.Content
		}
		if dto.Status != nil {
			updates["status"] = *dto.Status
		}
		if dto.IsFooterPage != nil {
			updates["is_footer_page"] = *dto.IsFooterPage
		}
		if dto.FooterOrder != nil {
			updates["footer_order"] = *dto.FooterOrder
		}
		if dto.MetaTitle != nil {
			updates["meta_title"] = *dto.MetaTitle
		}
		if dto.MetaDescription != nil {
			updates["meta_description"] = *dto.MetaDescription
		}
		if dto.MetaKeywords != nil {
			updates["meta_keywords"] = *dto.MetaKeywords
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&page).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := slugtracker.DeleteByTarget(tx, slugtracker.TypePage, id); err != nil {
			return err
		}
		res := tx.Delete(&models.PageModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func uniqueSlug(tx *gorm.DB, base, excludeID string) (string, error) {
	var taken []string
	q := tx.Model(&models.PageModel{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", err
	}
	known := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		known[s] = struct{}{}
	}
	return slug.UniqueFrom(base, known), nil
}

func baseSlug(raw, title string) string {
	if s := slug.Normalize(raw); s != "" {
		return s
	}
	return slug.Base(title)
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/pages")
	g.GET("", h.list)
	g.GET("/footer", h.footer)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

// list GET /pages, or a single page with ?slug=
func (h *Handler) list(c *gin.Context) {
	isAdmin := middleware.IsAuthenticated(c)
	if value := c.Query("slug"); value != "" {
		page, err := h.svc.GetBySlug(value, isAdmin)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if page == nil {
			response.NotFound(c)
			return
		}
		response.OK(c, page)
		return
	}

	pages, pag, err := h.svc.List(pagination.FromContext(c), isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if pages == nil {
		pages = []models.PageModel{}
	}
	response.Paged(c, pages, pag)
}

func (h *Handler) footer(c *gin.Context) {
	pages, err := h.svc.Footer()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if pages == nil {
		pages = []models.PageModel{}
	}
	response.OK(c, pages)
}

func (h *Handler) get(c *gin.Context) {
	page, err := h.svc.GetByID(c.Param("id"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if page == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, page)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePageDTO
	if !validation.Bind(c, &dto) {
		return
	}
	page, err := h.svc.Create(&dto)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, page)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePageDTO
	if !validation.Bind(c, &dto) {
		return
	}
	page, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, page)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}
