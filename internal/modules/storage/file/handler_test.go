package file

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, r http.Handler, query, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/files/upload"+query, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	r := gin.New()
	NewHandler(storage.NewLocal(root, "/static"), 1<<20).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	w := upload(t, r, "", "photo.png", png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "images", res.Type)
	assert.Equal(t, "local", res.Storage)
	assert.Equal(t, "/static/images/"+res.Name, res.URL)
	_, err := os.Stat(filepath.Join(root, "images", res.Name))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, upload(t, r, "?type=../etc", "a.png", png).Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, r, "?type=images", "a.txt", []byte("hello")).Code)
	assert.Equal(t, http.StatusCreated, upload(t, r, "?type=files", "a.txt", []byte("hello")).Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/files/images/"+res.Name, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/files/images/"+res.Name, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
