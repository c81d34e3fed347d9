package footer

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/about-us", h.aboutUs)
	rg.PUT("/about-us", authMW, h.saveAboutUs)
	rg.GET("/copyright", h.copyright)
	rg.PUT("/copyright", authMW, h.saveCopyright)
	rg.GET("/social-media", h.socialMedia)
	rg.PUT("/social-media", authMW, h.saveSocialMedia)
}

func (h *Handler) aboutUs(c *gin.Context) {
	row, err := h.svc.AboutUs()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, row)
}

func (h *Handler) saveAboutUs(c *gin.Context) {
	var dto AboutUsDTO
	if !validation.Bind(c, &dto) {
		return
	}
	row, err := h.svc.SaveAboutUs(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

func (h *Handler) copyright(c *gin.Context) {
	row, err := h.svc.Copyright()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, row)
}

func (h *Handler) saveCopyright(c *gin.Context) {
	var dto CopyrightDTO
	if !validation.Bind(c, &dto) {
		return
	}
	row, err := h.svc.SaveCopyright(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

func (h *Handler) socialMedia(c *gin.Context) {
	rows, err := h.svc.SocialMedia()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if rows == nil {
		rows = []models.SocialMediaModel{}
	}
	response.OK(c, rows)
}

func (h *Handler) saveSocialMedia(c *gin.Context) {
	var dto SocialMediaDTO
	if !validation.Bind(c, &dto) {
		return
	}
	rows, err := h.svc.SaveSocialMedia(&dto)
	if err != nil {
		if errors.Is(err, ErrUnknownPlatform) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if rows == nil {
		rows = []models.SocialMediaModel{}
	}
	response.OK(c, rows)
}
