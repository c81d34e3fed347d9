package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
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
	a := rg.Group("/auth")
	a.POST("/login", h.login)

	authed := a.Group("", authMW)
	authed.POST("/logout", h.logout)
	authed.GET("/me", h.me)
	authed.GET("/sessions", h.sessions)
	authed.DELETE("/sessions/:id", h.revokeSession)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if !validation.Bind(c, &dto) {
		return
	}
	token, sess, admin, err := h.svc.Login(&dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, ExpiresAt: sess.ExpiresAt, Admin: admin})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	admin, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if admin == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, admin)
}

func (h *Handler) sessions(c *gin.Context) {
	list, err := h.svc.Sessions(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	current := middleware.CurrentSessionID(c)
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionResponse{
			ID:        s.ID,
			IP:        s.IP,
			UA:        s.UA,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			Current:   s.ID == current,
		})
	}
	response.OK(c, out)
}

func (h *Handler) revokeSession(c *gin.Context) {
	if err := h.svc.RevokeSession(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}
