package banner

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/storage"
	"github.com/jobboard/cms/internal/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dir is the storage directory for banner images.
const Dir = "banners"

type CreateBannerDTO struct {
	Title      string `form:"title"       json:"title"       binding:"required,max=255"`
	Subtitle   string `form:"subtitle"    json:"subtitle"    binding:"max=500"`
	Link       string `form:"link"        json:"link"        binding:"omitempty,url,max=500"`
	ImageURL   string `form:"image_url"   json:"image_url"   binding:"max=500"`
	ButtonText string `form:"button_text" json:"button_text" binding:"max=100"`
	IsActive   *bool  `form:"is_active"   json:"is_active"`
}

type UpdateBannerDTO struct {
	Title      *string `form:"title"       json:"title"       binding:"omitempty,min=1,max=255"`
	Subtitle   *string `form:"subtitle"    json:"subtitle"    binding:"omitempty,max=500"`
	Link       *string `form:"link"        json:"link"        binding:"omitempty,url,max=500"`
	ImageURL   *string `form:"image_url"   json:"image_url"   binding:"omitempty,max=500"`
	ButtonText *string `form:"button_text" json:"button_text" binding:"omitempty,max=100"`
	IsActive   *bool   `form:"is_active"   json:"is_active"`
}

type Service struct {
	db       *gorm.DB
	store    storage.Storage
	maxBytes int64
	log      *zap.Logger
}

func NewService(db *gorm.DB, store storage.Storage, maxBytes int64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, store: store, maxBytes: maxBytes, log: log}
}

// Get returns the banner with id, or nil when there is none.
func (s *Service) Get(id string) (*models.BannerModel, error) {
	var b models.BannerModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) List(q pagination.Query) ([]models.BannerModel, response.Pagination, error) {
	var banners []models.BannerModel
	pag, err := pagination.Paginate(s.db.Model(&models.BannerModel{}).Order("created_at DESC"), q, &banners)
	return banners, pag, err
}

// Active returns the newest active banner, or nil.
func (s *Service) Active() (*models.BannerModel, error) {
	var b models.BannerModel
	if err := s.db.Where("is_active = ?", true).Order("created_at DESC").First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateBannerDTO, image *multipart.FileHeader) (*models.BannerModel, error) {
	b := models.BannerModel{
		Title:      dto.Title,
		Subtitle:   dto.Subtitle,
		Link:       dto.Link,
		ImageURL:   dto.ImageURL,
		ButtonText: dto.ButtonText,
		IsActive:   dto.IsActive == nil || *dto.IsActive,
	}
	if image != nil {
		obj, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		b.ImageURL = obj.URL
	}
	if err := s.db.Create(&b).Error; err != nil {
		_ = storage.DeleteURL(ctx, s.store, b.ImageURL)
		return nil, err
	}
	return &b, nil
}

// Update applies dto and swaps the stored image when a new one is uploaded.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateBannerDTO, image *multipart.FileHeader) (*models.BannerModel, error) {
	var b models.BannerModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	previous := b.ImageURL

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Subtitle != nil {
		updates["subtitle"] = *dto.Subtitle
	}
	if dto.Link != nil {
		updates["link"] = *dto.Link
	}
	if dto.ImageURL != nil {
		updates["image_url"] = *dto.ImageURL
	}
	if dto.ButtonText != nil {
		updates["button_text"] = *dto.ButtonText
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if image != nil {
		obj, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = obj.URL
	}
	if len(updates) == 0 {
		return &b, nil
	}
	if err := s.db.Model(&b).Updates(updates).Error; err != nil {
		if image != nil {
			_ = storage.DeleteURL(ctx, s.store, updates["image_url"].(string))
		}
		return nil, err
	}
	if b.ImageURL != previous {
		s.removeImage(ctx, previous)
	}
	return &b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	var b models.BannerModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		return err
	}
	res := s.db.Delete(&models.BannerModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.removeImage(ctx, b.ImageURL)
	return nil
}

// removeImage deletes a no longer referenced image. Failures leave an
// orphaned file and are only logged.
func (s *Service) removeImage(ctx context.Context, url string) {
	if err := storage.DeleteURL(ctx, s.store, url); err != nil {
		s.log.Warn("banner image cleanup failed", zap.String("url", url), zap.Error(err))
	}
}

func (s *Service) upload(ctx context.Context, fh *multipart.FileHeader) (*storage.Object, error) {
	return storage.PutFile(ctx, s.store, Dir, fh, storage.UploadOptions{MaxBytes: s.maxBytes, ImagesOnly: true})
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/banners")
	g.GET("/active", h.active)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

// active GET /banners/active
func (h *Handler) active(c *gin.Context) {
	b, err := h.svc.Active()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": b})
}

func (h *Handler) list(c *gin.Context) {
	banners, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if banners == nil {
		banners = []models.BannerModel{}
	}
	response.Paged(c, banners, pag)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if b == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, b)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBannerDTO
	if !validation.Bind(c, &dto) {
		return
	}
	b, err := h.svc.Create(c.Request.Context(), &dto, optionalFile(c, "image"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, b)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBannerDTO
	if !validation.Bind(c, &dto) {
		return
	}
	b, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto, optionalFile(c, "image"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

func optionalFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func fail(c *gin.Context, err error) {
	if storage.IsUploadError(err) {
		response.BadRequest(c, err.Error())
		return
	}
	response.Fail(c, err)
}
