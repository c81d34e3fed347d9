package advertisement

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/advertisements")
	g.GET("/active", h.active)

	authed := g.Group("", authMW)
	authed.GET("", h.list)
	authed.GET("/:id", h.get)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

// active GET /advertisements/active?placement=
func (h *Handler) active(c *gin.Context) {
	placement := c.Query("placement")
	switch placement {
	case "", models.PlacementSidebar, models.PlacementFooter, models.PlacementHeader:
	default:
		response.BadRequest(c, "invalid placement")
		return
	}
	ads, err := h.svc.Active(placement)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if ads == nil {
		ads = []models.AdvertisementModel{}
	}
	response.OK(c, ads)
}

func (h *Handler) list(c *gin.Context) {
	ads, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if ads == nil {
		ads = []models.AdvertisementModel{}
	}
	response.Paged(c, ads, pag)
}

func (h *Handler) get(c *gin.Context) {
	ad, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if ad == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, ad)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateAdDTO
	if !validation.Bind(c, &dto) {
		return
	}
	ad, err := h.svc.Create(&dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, ad)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateAdDTO
	if !validation.Bind(c, &dto) {
		return
	}
	ad, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, ad)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidWindow) {
		response.BadRequest(c, err.Error())
		return
	}
	response.Fail(c, err)
}
