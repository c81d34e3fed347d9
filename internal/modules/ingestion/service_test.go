package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/config"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type feed struct {
	srv    *httptest.Server
	hits   atomic.Int32
	status int
	jobs   []map[string]interface{}
	query  atomic.Value
}

func newFeed(t *testing.T, jobs ...map[string]interface{}) *feed {
	t.Helper()
	f := &feed{status: http.StatusOK, jobs: jobs}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.query.Store(r.URL.RawQuery)
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": f.jobs})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func job(title, desc string) map[string]interface{} {
	return map[string]interface{}{
		"title":                  title,
		"description":            desc,
		"company":                map[string]string{"name": "Acme", "logo": "logos/acme.png"},
		"skills_mandatory_names": []string{"Go"},
		"skills_desired_names":   []string{},
		"salary_from":            1000,
		"salary_to":              2000,
	}
}

func setup(t *testing.T, feedURL string, enabled bool) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&models.CategoryModel{Name: "Jobs", Slug: "jobs"}).Error)
	svc := NewService(db, config.IngestionConfig{
		Enabled:         enabled,
		FeedURL:         feedURL,
		JobCount:        5,
		Interval:        time.Hour,
		Timeout:         5 * time.Second,
		Category:        "jobs",
		ImageBaseURL:    "https://cdn.test/",
		MetaDescription: "Jobs board",
	}, nil, nil)
	return svc, db
}

func posts(t *testing.T, db *gorm.DB) []models.PostModel {
	t.Helper()
	var out []models.PostModel
	require.NoError(t, db.Order("slug ASC").Find(&out).Error)
	return out
}

func TestRunStoresAndIsIdempotent(t *testing.T) {
	f := newFeed(t, job("Backend Developer", "<p>APIs</p>"), job("Backend Developer", "<p>Other team</p>"))
	svc, db := setup(t, f.srv.URL, true)
	require.NoError(t, db.Create(&models.PostModel{Title: "Backend Developer", Slug: "backend-developer", Status: models.StatusDraft}).Error)

	res, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Fetched: 2, Stored: 2, Skipped: 0}, *res)
	assert.Equal(t, "page=1&per_page=5", f.query.Load())

	all := posts(t, db)
	require.Len(t, all, 3)
	assert.Equal(t, "backend-developer-1", all[1].Slug)
	assert.Equal(t, "backend-developer-2", all[2].Slug)

	p := all[1]
	assert.Equal(t, models.StatusPublished, p.Status)
	assert.Equal(t, models.SourceIngestion, p.Source)
	require.NotNil(t, p.PublishedAt)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, "https://cdn.test/logos/acme.png", p.FeaturedImage)
	assert.Equal(t, "Jobs board", p.MetaDescription)
	assert.NotContains(t, p.Content, "Desired Skills")
	assert.Contains(t, p.Content, "<p>1000 - 2000</p>")

	res, err = svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Fetched: 2, Stored: 0, Skipped: 2}, *res)
	assert.Len(t, posts(t, db), 3)

	st, err := svc.Settings()
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, 2, st.LastRun.Skipped)
	assert.Empty(t, st.LastRun.Error)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRunSkipsMatchingAdminPost(t *testing.T) {
	f := newFeed(t, job("Backend Developer", "<p>APIs</p>"), job("", "<p>no title</p>"))
	svc, db := setup(t, f.srv.URL, true)
	require.NoError(t, db.Create(&models.PostModel{
		Title:   "Backend Developer",
		Slug:    "backend-developer",
		Content: "<p>APIs</p>",
		Status:  models.StatusPublished,
	}).Error)

	dupes := counterValue(t, metrics.IngestionDuplicates)
	res, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Fetched: 2, Stored: 0, Skipped: 2}, *res)
	assert.Len(t, posts(t, db), 1)
	assert.Equal(t, dupes+1, counterValue(t, metrics.IngestionDuplicates), "untitled records are not duplicates")
}

func TestRunFetchFailureStoresNothing(t *testing.T) {
	f := newFeed(t, job("Designer", "x"))
	f.status = http.StatusBadGateway
	svc, db := setup(t, f.srv.URL, true)

	_, err := svc.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrFetch)
	assert.Empty(t, posts(t, db))

	st, err := svc.Settings()
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Contains(t, st.LastRun.Error, "HTTP 502")
}

func TestRunRequiresCategory(t *testing.T) {
	f := newFeed(t, job("Designer", "x"))
	svc, db := setup(t, f.srv.URL, true)
	require.NoError(t, db.Where("1 = 1").Delete(&models.CategoryModel{}).Error)

	_, err := svc.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrCategoryMissing)
	assert.Zero(t, f.hits.Load())
}

func TestRunRejectsOverlap(t *testing.T) {
	f := newFeed(t)
	svc, _ := setup(t, f.srv.URL, true)

	release, err := svc.lock.Acquire(context.Background())
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.NoError(t, svc.Scheduled(context.Background()), "cron drops overlapping runs")
	release()

	_, err = svc.Run(context.Background(), nil)
	assert.NoError(t, err)
}

func TestScheduledHonoursEnabled(t *testing.T) {
	f := newFeed(t, job("Designer", "x"))
	svc, db := setup(t, f.srv.URL, false)

	require.NoError(t, svc.Scheduled(context.Background()))
	assert.Zero(t, f.hits.Load())

	enabled := true
	_, err := svc.UpdateSettings(&UpdateSettingsDTO{Enabled: &enabled})
	require.NoError(t, err)
	require.NoError(t, svc.Scheduled(context.Background()))
	assert.EqualValues(t, 1, f.hits.Load())
	assert.Len(t, posts(t, db), 1)
}

func TestUpdateSettingsRequiresFeedWhenEnabled(t *testing.T) {
	svc, _ := setup(t, "", false)
	enabled := true
	_, err := svc.UpdateSettings(&UpdateSettingsDTO{Enabled: &enabled})
	assert.ErrorIs(t, err, ErrNoFeedURL)

	_, err = svc.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFeedURL)
}

func TestHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFeed(t, job("Designer", "x"), job("Writer", "y"))
	svc, _ := setup(t, "", false)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""), func(c *gin.Context) { c.Next() })

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ingestion/run", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(`{"api_url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(fmt.Sprintf(`{"api_url":%q,"job_count":2}`, f.srv.URL))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["jobs_stored"])
	assert.Equal(t, "page=1&per_page=2", f.query.Load())

	w = do("")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no stored feed url")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ingestion", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"interval":"1h0m0s"`)
}
