package slugtracker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAndTaken(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Track(db, "old-title", TypePost, "a"))
	require.NoError(t, Track(db, "old-title-1", TypePost, "b"))
	require.NoError(t, Track(db, "old-title", TypePost, "c"), "re-tracking moves the slug")
	require.NoError(t, Track(db, "", TypePost, "a"))

	svc := NewService(db)
	id, err := svc.FindBySlug("old-title", TypePost)
	require.NoError(t, err)
	assert.Equal(t, "c", id)

	id, err = svc.FindBySlug("old-title", TypePage)
	require.NoError(t, err)
	assert.Empty(t, id)

	taken, err := Taken(db, TypePost, "old-title", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"old-title"}, taken)

	require.NoError(t, DeleteByTarget(db, TypePost, "c"))
	taken, err = Taken(db, TypePost, "old-title", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"old-title-1"}, taken)
}

func TestRedirectRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	require.NoError(t, Track(db, "moved", TypePage, "p1"))

	r := gin.New()
	NewHandler(NewService(db)).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })
	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	w := do(http.MethodGet, "/slug-tracker/redirect/page/moved")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"target_id":"p1"`)

	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/slug-tracker/redirect/note/moved").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/slug-tracker/page/moved").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/slug-tracker/page/moved").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/slug-tracker/redirect/page/moved").Code)
}
