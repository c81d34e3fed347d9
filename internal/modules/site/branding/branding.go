package branding

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/storage"
	"github.com/jobboard/cms/internal/pkg/validation"
	"gorm.io/gorm"
)

// Dir is the storage directory for logos and favicons.
const Dir = "logo"

// ErrLogoImageRequired is returned when an image logo has no image.
var ErrLogoImageRequired = errors.New("logo_image is required when logo_type is image")

type UpdateBrandingDTO struct {
	LogoType string `form:"logo_type" json:"logo_type" binding:"required,oneof=image text"`
	LogoText string `form:"logo_text" json:"logo_text" binding:"max=100"`
}

type Service struct {
	db       *gorm.DB
	store    storage.Storage
	maxBytes int64
	siteName string
}

func NewService(db *gorm.DB, store storage.Storage, maxBytes int64, siteName string) *Service {
	return &Service{db: db, store: store, maxBytes: maxBytes, siteName: siteName}
}

// Get returns the stored branding, or a text logo with the site name.
func (s *Service) Get() (*models.BrandingModel, error) {
	row, err := s.current(s.db)
	if err != nil || row != nil {
		return row, err
	}
	return &models.BrandingModel{LogoType: models.LogoTypeText, LogoText: s.siteName}, nil
}

func (s *Service) current(tx *gorm.DB) (*models.BrandingModel, error) {
	var row models.BrandingModel
	if err := tx.Order("created_at ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update upserts the branding row. New files replace old ones in storage
// once the row is saved.
func (s *Service) Update(ctx context.Context, dto *UpdateBrandingDTO, logo, favicon *multipart.FileHeader) (*models.BrandingModel, error) {
	row, err := s.current(s.db)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.BrandingModel{}
	}
	oldLogo, oldFavicon := row.LogoImage, row.Favicon

	if dto.LogoType == models.LogoTypeImage && logo == nil && row.LogoImage == "" {
		return nil, ErrLogoImageRequired
	}

	var uploaded []string
	rollback := func() {
		for _, url := range uploaded {
			_ = storage.DeleteURL(ctx, s.store, url)
		}
	}
	if logo != nil {
		obj, err := s.upload(ctx, logo)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, obj.URL)
		row.LogoImage = obj.URL
	}
	if favicon != nil {
		obj, err := s.upload(ctx, favicon)
		if err != nil {
			rollback()
			return nil, err
		}
		uploaded = append(uploaded, obj.URL)
		row.Favicon = obj.URL
	}

	row.LogoType = dto.LogoType
	row.LogoText = dto.LogoText
	if err := s.db.Save(row).Error; err != nil {
		rollback()
		return nil, err
	}

	if row.LogoImage != oldLogo {
		_ = storage.DeleteURL(ctx, s.store, oldLogo)
	}
	if row.Favicon != oldFavicon {
		_ = storage.DeleteURL(ctx, s.store, oldFavicon)
	}
	return row, nil
}

func (s *Service) upload(ctx context.Context, fh *multipart.FileHeader) (*storage.Object, error) {
	return storage.PutFile(ctx, s.store, Dir, fh, storage.UploadOptions{MaxBytes: s.maxBytes, ImagesOnly: true})
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/branding", h.get)
	rg.PUT("/branding", authMW, h.update)
}

func (h *Handler) get(c *gin.Context) {
	row, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

// update PUT /branding (multipart: logo_type, logo_text, logo_image, favicon)
func (h *Handler) update(c *gin.Context) {
	var dto UpdateBrandingDTO
	if !validation.Bind(c, &dto) {
		return
	}
	row, err := h.svc.Update(c.Request.Context(), &dto, formFile(c, "logo_image"), formFile(c, "favicon"))
	if err != nil {
		if errors.Is(err, ErrLogoImageRequired) || storage.IsUploadError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

func formFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
