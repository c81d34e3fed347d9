package sitemap

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	db := dbtest.Open(t)

	cat := models.CategoryModel{Name: "Jobs", Slug: "jobs"}
	require.NoError(t, db.Create(&cat).Error)
	live := models.PostModel{Title: "Go & Rust", Slug: "go-and-rust", CategoryID: &cat.ID, Status: models.StatusPublished}
	require.NoError(t, db.Create(&live).Error)
	require.NoError(t, db.Create(&models.PostModel{Title: "Draft", Slug: "draft", Status: models.StatusDraft}).Error)
	require.NoError(t, db.Create(&models.PageModel{Title: "Terms", Slug: "terms", Status: models.StatusPublished}).Error)

	body, err := Build(db, "https://jobs.example", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var set urlSet
	require.NoError(t, xml.Unmarshal(body, &set))
	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Equal(t, []string{
		"https://jobs.example/",
		"https://jobs.example/jobs",
		"https://jobs.example/jobs/" + live.ID + "/go-and-rust",
		"https://jobs.example/pages/terms",
	}, locs)
	assert.Equal(t, "2024-01-02", set.URLs[0].LastMod)
}

func TestPostURLWithoutCategory(t *testing.T) {
	assert.Equal(t, "https://x.example/posts/hello", PostURL("https://x.example", &models.PostModel{Slug: "hello"}))
}
