package post

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(dbtest.Open(t))
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodDelete, "/api/v1/posts/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestCreateValidation(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/posts", `{"status":"live"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)

	rules := map[string]string{}
	for _, f := range body.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, "required", rules["title"])
	assert.Equal(t, "required", rules["content"])
	assert.Equal(t, "oneof", rules["status"])
}

func TestCreateAndFetchBySlug(t *testing.T) {
	r, svc := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/posts", `{"title":"Hello World","content":"<p>x</p>","status":"published","tags":["news"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.PostModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "hello-world", created.Slug)

	w = do(r, http.MethodGet, "/api/v1/posts/slug/hello-world", "")
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := svc.Update(created.ID, &UpdatePostDTO{Slug: strPtr("hello-again")})
	require.NoError(t, err)

	w = do(r, http.MethodGet, "/api/v1/posts/slug/hello-world", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"redirect":true,"slug":"hello-again"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/posts/slug/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateValidationMatchesCreate(t *testing.T) {
	r, svc := newRouter(t)
	p, err := svc.Create(&CreatePostDTO{Title: "Hello", Content: "x"}, "")
	require.NoError(t, err)

	w := do(r, http.MethodPut, "/api/v1/posts/"+p.ID, `{"category_id":"not-a-uuid","url":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Fields []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	rules := map[string]string{}
	for _, f := range body.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, "uuid", rules["category_id"])
	assert.Equal(t, "url", rules["url"])
}
