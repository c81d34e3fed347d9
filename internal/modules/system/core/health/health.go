// Package health reports service liveness and exposes the native log files
// to administrators.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/models"
	pkgmail "github.com/jobboard/cms/internal/pkg/mail"
	"github.com/jobboard/cms/internal/pkg/nativelog"
	pkgredis "github.com/jobboard/cms/internal/pkg/redis"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
)

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

type Handler struct {
	db     *gorm.DB
	redis  *pkgredis.Client
	mailer pkgmail.Mailer
	logDir string
	now    func() time.Time
}

// NewHandler builds the health endpoints. rdb may be nil when Redis is not
// configured.
func NewHandler(db *gorm.DB, rdb *pkgredis.Client, mailer pkgmail.Mailer, logDir string) *Handler {
	return &Handler{db: db, redis: rdb, mailer: mailer, logDir: logDir, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)

	admin := rg.Group("/health", authMW)
	admin.POST("/email/test", h.testEmail)
	admin.GET("/logs", h.listLogs)
	admin.GET("/logs/:filename", h.readLog)
	admin.DELETE("/logs/:filename", h.deleteLog)
}

// health GET /health
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	dbOK := err == nil && sqlDB.PingContext(ctx) == nil

	body := gin.H{"database": dbOK}
	redisOK := true
	if h.redis != nil {
		redisOK = h.redis.Raw().Ping(ctx).Err() == nil
		body["redis"] = redisOK
	}

	status, code := "ok", http.StatusOK
	if !dbOK || !redisOK {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	body["status"] = status
	c.JSON(code, body)
}

// testEmail POST /health/email/test sends a probe to the signed-in admin.
func (h *Handler) testEmail(c *gin.Context) {
	if !h.mailer.Enabled() {
		response.Error(c, http.StatusServiceUnavailable, pkgmail.ErrDisabled.Error())
		return
	}
	var admin models.AdminModel
	if err := h.db.Where("id = ?", middleware.CurrentUserID(c)).First(&admin).Error; err != nil {
		response.Fail(c, err)
		return
	}
	err := h.mailer.Send(c.Request.Context(), pkgmail.Message{
		To:      []string{admin.Email},
		Subject: "Mail delivery test",
		HTML:    "<p>Mail delivery is configured correctly.</p>",
	})
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "mail delivery failed")
		return
	}
	response.OK(c, gin.H{"ok": true})
}

// listLogs GET /health/logs
func (h *Handler) listLogs(c *gin.Context) {
	entries, err := os.ReadDir(h.logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.OK(c, []logItem{})
			return
		}
		response.InternalError(c, err)
		return
	}

	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Size:     formatByteSize(info.Size()),
			Filename: entry.Name(),
			Created:  info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Created > items[j].Created })
	response.OK(c, items)
}

// readLog GET /health/logs/:filename
func (h *Handler) readLog(c *gin.Context) {
	path, ok := h.logPath(c)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFoundMsg(c, "log file not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// deleteLog DELETE /health/logs/:filename; today's file is in use and kept.
func (h *Handler) deleteLog(c *gin.Context) {
	path, ok := h.logPath(c)
	if !ok {
		return
	}
	if filepath.Base(path) == nativelog.DailyFilename(h.now()) {
		response.BadRequest(c, "cannot delete the active log file")
		return
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFoundMsg(c, "log file not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) logPath(c *gin.Context) (string, bool) {
	name := filepath.Base(strings.TrimSpace(c.Param("filename")))
	if name == "." || name == string(filepath.Separator) || !strings.HasSuffix(name, ".log") {
		response.BadRequest(c, "invalid log file name")
		return "", false
	}
	return filepath.Join(h.logDir, name), true
}

func formatByteSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
