package subscribe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/mail"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/subscribers")
	g.POST("", h.subscribe)
	g.GET("/unsubscribe", h.unsubscribe)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.POST("/send", h.send)
	a.DELETE("/:id", h.delete)
}

// subscribe POST /subscribers
func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if !validation.Bind(c, &dto) {
		return
	}
	sub, created, err := h.svc.Subscribe(dto.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if created {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.svc.Welcome(ctx, sub)
		}()
	}
	response.Created(c, sub)
}

// unsubscribe GET /subscribers/unsubscribe?email=&token=
func (h *Handler) unsubscribe(c *gin.Context) {
	email, token := c.Query("email"), c.Query("token")
	if email == "" || token == "" {
		response.BadRequest(c, "email and token are required")
		return
	}
	if err := h.svc.Unsubscribe(email, token); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"unsubscribed": true})
}

func (h *Handler) list(c *gin.Context) {
	subs, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if subs == nil {
		subs = []models.SubscriberModel{}
	}
	response.Paged(c, subs, pag)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

// send POST /subscribers/send
func (h *Handler) send(c *gin.Context) {
	var dto SendDTO
	if !validation.Bind(c, &dto) {
		return
	}
	result, err := h.svc.Send(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, mail.ErrDisabled) {
			response.Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}
