package crontask

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	pkgcron "github.com/jobboard/cms/internal/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sched := pkgcron.New(nil)
	t.Cleanup(sched.Stop)

	ran := make(chan struct{}, 1)
	sched.Register(pkgcron.Job{Name: "job_ingestion", Interval: time.Hour, Fn: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})

	r := gin.New()
	NewHandler(sched).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })
	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	w := do(http.MethodGet, "/cron-task")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"job_ingestion"`)

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/cron-task/nope").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/cron-task/nope/run").Code)

	assert.Equal(t, http.StatusAccepted, do(http.MethodPost, "/cron-task/job_ingestion/run").Code)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/cron-task/job_ingestion").Code)
}
