package file

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/storage"
)

// DefaultType is the directory used when ?type= is omitted.
const DefaultType = "images"

var allowedTypes = map[string]bool{
	"images":  true,
	"banners": true,
	"logo":    true,
	"files":   true,
}

// Handler uploads and deletes files in the configured storage backend.
type Handler struct {
	store    storage.Storage
	maxBytes int64
}

func NewHandler(store storage.Storage, maxBytes int64) *Handler {
	return &Handler{store: store, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/files", authMW)
	g.POST("/upload", h.upload)
	g.DELETE("/:type/:name", h.delete)
}

type uploadResponse struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	Storage string `json:"storage"`
}

// upload POST /files/upload?type=images (multipart field "file")
func (h *Handler) upload(c *gin.Context) {
	typ, ok := fileType(c.DefaultQuery("type", DefaultType))
	if !ok {
		response.BadRequest(c, "invalid file type")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	obj, err := storage.PutFile(c.Request.Context(), h.store, typ, fh, storage.UploadOptions{
		MaxBytes:   h.maxBytes,
		ImagesOnly: typ != "files",
	})
	if err != nil {
		if storage.IsUploadError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse{
		URL:     obj.URL,
		Name:    obj.Name,
		Type:    obj.Dir,
		Size:    obj.Size,
		Storage: obj.Storage,
	})
}

// delete DELETE /files/:type/:name
func (h *Handler) delete(c *gin.Context) {
	typ, ok := fileType(c.Param("type"))
	name := storage.SafeName(c.Param("name"))
	if !ok || name == "" {
		response.BadRequest(c, "invalid file path")
		return
	}
	if err := h.store.Delete(c.Request.Context(), typ, name); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func fileType(raw string) (string, bool) {
	typ := storage.NormalizeDir(raw)
	return typ, allowedTypes[typ]
}
