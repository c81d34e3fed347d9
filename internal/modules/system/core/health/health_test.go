package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/models"
	pkgmail "github.com/jobboard/cms/internal/pkg/mail"
	"github.com/jobboard/cms/internal/pkg/nativelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	enabled bool
	sent    []pkgmail.Message
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(_ context.Context, msg pkgmail.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestHealthAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	active := nativelog.DailyFilename(now)
	require.NoError(t, os.WriteFile(filepath.Join(dir, active), []byte("today"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stdout_3-3-26.log"), []byte("yesterday"), 0o644))

	admin := models.AdminModel{Username: "root", Email: "root@example.test", Password: "x"}
	require.NoError(t, db.Create(&admin).Error)

	mailer := &fakeMailer{enabled: true}
	h := NewHandler(db, nil, mailer, dir)
	h.now = func() time.Time { return now }

	r := gin.New()
	h.RegisterRoutes(r.Group(""), func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, admin.ID)
		c.Next()
	})
	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	w := do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":true}`, w.Body.String())

	w = do(http.MethodGet, "/health/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), active)

	w = do(http.MethodGet, "/health/logs/stdout_3-3-26.log")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yesterday", w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/health/logs/passwd").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodDelete, "/health/logs/"+active).Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/health/logs/stdout_3-3-26.log").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/health/logs/stdout_3-3-26.log").Code)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/health/email/test").Code)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"root@example.test"}, mailer.sent[0].To)

	mailer.enabled = false
	assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodPost, "/health/email/test").Code)
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", formatByteSize(512))
	assert.Equal(t, "1.5 KiB", formatByteSize(1536))
	assert.Equal(t, "2.0 MiB", formatByteSize(2<<20))
}
