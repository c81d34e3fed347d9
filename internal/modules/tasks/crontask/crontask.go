package crontask

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pkgcron "github.com/jobboard/cms/internal/pkg/cron"
	"github.com/jobboard/cms/internal/pkg/response"
)

// Handler wraps the scheduler for HTTP access.
type Handler struct {
	sched *pkgcron.Scheduler
}

func NewHandler(sched *pkgcron.Scheduler) *Handler {
	return &Handler{sched: sched}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/cron-task", authMW)
	g.GET("", h.list)
	g.GET("/:name", h.get)
	g.POST("/:name/run", h.run)
}

// GET /cron-task
func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.sched.List())
}

// GET /cron-task/:name
func (h *Handler) get(c *gin.Context) {
	result, err := h.sched.GetTask(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// POST /cron-task/:name/run starts the job in the background.
func (h *Handler) run(c *gin.Context) {
	if err := h.sched.Run(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered"})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgcron.ErrJobNotFound):
		response.NotFoundMsg(c, "cron task not found")
	case errors.Is(err, pkgcron.ErrJobRunning):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
