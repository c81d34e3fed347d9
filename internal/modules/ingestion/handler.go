package ingestion

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ingestion", authMW)
	g.GET("", h.get)
	g.PUT("", h.update)
	g.POST("/run", h.run)
}

type settingsResponse struct {
	*Settings
	Interval string `json:"interval"`
	Category string `json:"category"`
}

func (h *Handler) respond(c *gin.Context, st *Settings) {
	response.OK(c, settingsResponse{
		Settings: st,
		Interval: h.svc.CronJob().Interval.String(),
		Category: h.svc.cfg.Category,
	})
}

func (h *Handler) get(c *gin.Context) {
	st, err := h.svc.Settings()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.respond(c, st)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSettingsDTO
	if !validation.Bind(c, &dto) {
		return
	}
	st, err := h.svc.UpdateSettings(&dto)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, st)
}

type runResponse struct {
	Success bool `json:"success"`
	*Result
}

// run POST /ingestion/run; the body is optional.
func (h *Handler) run(c *gin.Context) {
	var dto RunDTO
	if c.Request.ContentLength != 0 && !validation.Bind(c, &dto) {
		return
	}
	res, err := h.svc.Run(c.Request.Context(), &dto)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runResponse{Success: true, Result: res})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrNoFeedURL):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrFetch):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "failed to fetch job feed")
	case errors.Is(err, ErrCategoryMissing):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, err.Error())
	default:
		response.InternalError(c, err)
	}
}
