package banner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("image", "hero.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestBannerUploadLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	svc := NewService(dbtest.Open(t), storage.NewLocal(root, "/static"), 1<<20, nil)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })

	body, ct := multipartBody(t, map[string]string{"title": "Hiring now", "link": "https://example.com/jobs"}, png)
	req := httptest.NewRequest(http.MethodPost, "/banners", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.BannerModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ImageURL)
	assert.True(t, created.IsActive)
	name := filepath.Base(created.ImageURL)
	_, err := os.Stat(filepath.Join(root, Dir, name))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banners/active", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hiring now")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banners/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.BannerModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ImageURL, fetched.ImageURL)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/banners/"+created.ID, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	_, err = os.Stat(filepath.Join(root, Dir, name))
	assert.True(t, os.IsNotExist(err))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/banners/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banners/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banners/active", nil))
	assert.JSONEq(t, `{"data":null}`, w.Body.String())
}

func TestBannerRejectsNonImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(dbtest.Open(t), storage.NewLocal(t.TempDir(), "/static"), 1<<20, nil)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "x"))
	part, err := mw.CreateFormFile("image", "notes")
	require.NoError(t, err)
	_, _ = part.Write([]byte("just text"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/banners", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stuckStorage struct{ storage.Storage }

func (stuckStorage) Delete(context.Context, string, string) error {
	return errors.New("bucket unavailable")
}

func imageHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	body, ct := multipartBody(t, nil, png)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestUpdateFailureRemovesNewImage(t *testing.T) {
	root := t.TempDir()
	db := dbtest.Open(t)
	svc := NewService(db, storage.NewLocal(root, "/static"), 1<<20, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, &CreateBannerDTO{Title: "Hiring"}, imageHeader(t))
	require.NoError(t, err)

	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_banners", func(tx *gorm.DB) {
		if tx.Statement.Table == "banners" {
			_ = tx.AddError(errors.New("write failed"))
		}
	}))
	_, err = svc.Update(ctx, b.ID, &UpdateBannerDTO{}, imageHeader(t))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, Dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(b.ImageURL), entries[0].Name())
}

func TestDeleteSurvivesCleanupFailure(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, stuckStorage{storage.NewLocal(t.TempDir(), "/static")}, 1<<20, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, &CreateBannerDTO{Title: "Hiring"}, imageHeader(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))
	got, err := svc.Get(b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
