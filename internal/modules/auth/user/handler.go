package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/validation"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the account settings routes. All of them act on the
// session's own admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin/account", authMW)
	g.POST("/password", h.changePassword)
	g.POST("/username", h.changeUsername)
	g.POST("/email", h.changeEmail)
	g.PUT("/profile", h.updateProfile)
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if !validation.Bind(c, &dto) {
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), middleware.CurrentSessionID(c), &dto); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) changeUsername(c *gin.Context) {
	var dto ChangeUsernameDTO
	if !validation.Bind(c, &dto) {
		return
	}
	admin, err := h.svc.ChangeUsername(middleware.CurrentUserID(c), &dto)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, admin)
}

func (h *Handler) changeEmail(c *gin.Context) {
	var dto ChangeEmailDTO
	if !validation.Bind(c, &dto) {
		return
	}
	admin, err := h.svc.ChangeEmail(middleware.CurrentUserID(c), &dto)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, admin)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if !validation.Bind(c, &dto) {
		return
	}
	admin, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, admin)
}

func fail(c *gin.Context, err error) {
	switch {
	case IsWrongPassword(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrTaken):
		response.Conflict(c, err.Error())
	default:
		response.Fail(c, err)
	}
}
