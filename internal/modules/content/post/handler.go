package post

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
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

// RegisterRoutes mounts post routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	posts := rg.Group("/posts")
	posts.GET("", h.list)
	posts.GET("/popular", h.popular)
	posts.GET("/slug/:slug", h.getBySlug)
	posts.GET("/:id", h.getByID)

	rg.GET("/categories/:query/posts", h.listByCategory)

	authed := posts.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id/status", h.setStatus)
	authed.DELETE("/:id", h.delete)

	rg.GET("/admin/posts", authMW, h.adminList)
}

// list GET /posts
func (h *Handler) list(c *gin.Context) {
	var lq ListQuery
	if !validation.BindQuery(c, &lq) {
		return
	}
	lq.Status = ""
	h.respondList(c, lq, false)
}

// adminList GET /admin/posts
func (h *Handler) adminList(c *gin.Context) {
	var lq ListQuery
	if !validation.BindQuery(c, &lq) {
		return
	}
	h.respondList(c, lq, true)
}

// listByCategory GET /categories/:query/posts
func (h *Handler) listByCategory(c *gin.Context) {
	h.respondList(c, ListQuery{Category: c.Param("query")}, false)
}

func (h *Handler) respondList(c *gin.Context, lq ListQuery, isAdmin bool) {
	posts, pag, err := h.svc.List(pagination.FromContext(c), lq, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if posts == nil {
		posts = []models.PostModel{}
	}
	response.Paged(c, posts, pag)
}

// popular GET /posts/popular
func (h *Handler) popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	posts, err := h.svc.Popular(limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if posts == nil {
		posts = []models.PostModel{}
	}
	response.OK(c, posts)
}

// getByID GET /posts/:id
func (h *Handler) getByID(c *gin.Context) {
	post, err := h.svc.GetByID(c.Param("id"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

// getBySlug GET /posts/slug/:slug
func (h *Handler) getBySlug(c *gin.Context) {
	isAdmin := middleware.IsAuthenticated(c)
	value := c.Param("slug")

	post, err := h.svc.GetBySlug(value, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post != nil {
		response.OK(c, post)
		return
	}

	current, err := h.svc.Moved(value, isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if current == "" {
		response.NotFound(c)
		return
	}
	response.OK(c, redirectResponse{Redirect: true, Slug: current})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if !validation.Bind(c, &dto) {
		return
	}
	post, err := h.svc.Create(&dto, middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, post)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if !validation.Bind(c, &dto) {
		return
	}
	post, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, post)
}

// setStatus PATCH /posts/:id/status
func (h *Handler) setStatus(c *gin.Context) {
	var dto StatusDTO
	if !validation.Bind(c, &dto) {
		return
	}
	post, err := h.svc.SetStatus(c.Param("id"), dto.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, post)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrCategoryNotFound) {
		response.BadRequest(c, err.Error())
		return
	}
	response.Fail(c, err)
}
