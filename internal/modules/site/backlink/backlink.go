package backlink

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
	"gorm.io/gorm"
)

type CreateBacklinkDTO struct {
	URL          string `json:"url"           binding:"required,url,max=500"`
	AnchorText   string `json:"anchor_text"   binding:"required,max=255"`
	TargetURL    string `json:"target_url"    binding:"required,url,max=500"`
	RelAttribute string `json:"rel_attribute" binding:"omitempty,oneof=follow nofollow"`
	IsActive     *bool  `json:"is_active"`
}

type UpdateBacklinkDTO struct {
	URL          *string `json:"url"           binding:"omitempty,url,max=500"`
	AnchorText   *string `json:"anchor_text"   binding:"omitempty,min=1,max=255"`
	TargetURL    *string `json:"target_url"    binding:"omitempty,url,max=500"`
	RelAttribute *string `json:"rel_attribute" binding:"omitempty,oneof=follow nofollow"`
	IsActive     *bool   `json:"is_active"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.BacklinkModel, response.Pagination, error) {
	var links []models.BacklinkModel
	pag, err := pagination.Paginate(s.db.Model(&models.BacklinkModel{}).Order("created_at DESC"), q, &links)
	return links, pag, err
}

func (s *Service) Active() ([]models.BacklinkModel, error) {
	var links []models.BacklinkModel
	err := s.db.Where("is_active = ?", true).Order("created_at ASC").Find(&links).Error
	return links, err
}

func (s *Service) Get(id string) (*models.BacklinkModel, error) {
	var link models.BacklinkModel
	if err := s.db.First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (s *Service) Create(dto *CreateBacklinkDTO) (*models.BacklinkModel, error) {
	rel := dto.RelAttribute
	if rel == "" {
		rel = models.RelFollow
	}
	link := models.BacklinkModel{
		URL:          dto.URL,
		AnchorText:   dto.AnchorText,
		TargetURL:    dto.TargetURL,
		RelAttribute: rel,
		IsActive:     dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.db.Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *Service) Update(id string, dto *UpdateBacklinkDTO) (*models.BacklinkModel, error) {
	var link models.BacklinkModel
	if err := s.db.First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.URL != nil {
		updates["url"] = *dto.URL
	}
	if dto.AnchorText != nil {
		updates["anchor_text"] = *dto.AnchorText
	}
	if dto.TargetURL != nil {
		updates["target_url"] = *dto.TargetURL
	}
	if dto.RelAttribute != nil {
		updates["rel_attribute"] = *dto.RelAttribute
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.Model(&link).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &link, nil
}

func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.BacklinkModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/backlinks")
	g.GET("/active", h.active)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) active(c *gin.Context) {
	links, err := h.svc.Active()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if links == nil {
		links = []models.BacklinkModel{}
	}
	response.OK(c, links)
}

func (h *Handler) list(c *gin.Context) {
	links, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if links == nil {
		links = []models.BacklinkModel{}
	}
	response.Paged(c, links, pag)
}

func (h *Handler) get(c *gin.Context) {
	link, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if link == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, link)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBacklinkDTO
	if !validation.Bind(c, &dto) {
		return
	}
	link, err := h.svc.Create(&dto)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, link)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBacklinkDTO
	if !validation.Bind(c, &dto) {
		return
	}
	link, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, link)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}
