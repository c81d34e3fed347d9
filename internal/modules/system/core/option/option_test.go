package option

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

func TestLoadSave(t *testing.T) {
	db := dbtest.Open(t)

	var got sample
	ok, err := Load(db, "sample", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Save(db, "sample", sample{Enabled: true, URL: "a"}))
	require.NoError(t, Save(db, "sample", sample{Enabled: false, URL: "b"}))

	ok, err = Load(db, "sample", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sample{URL: "b"}, got)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	require.NoError(t, Save(db, "sample", sample{Enabled: true}))

	r := gin.New()
	NewHandler(db).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options/sample", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Name  string `json:"name"`
		Value sample `json:"value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sample", body.Name)
	assert.True(t, body.Value.Enabled)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
