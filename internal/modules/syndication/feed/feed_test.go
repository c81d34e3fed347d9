package feed

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRSS(t *testing.T) {
	published := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	posts := []models.PostModel{{
		Base:        models.Base{ID: "p1"},
		Title:       "Backend <Go> Engineer",
		Slug:        "backend-go-engineer",
		Content:     "<p>Build & ship</p>",
		Category:    &models.CategoryModel{Name: "Jobs", Slug: "jobs"},
		PublishedAt: &published,
	}}

	body, err := BuildRSS(Site{Name: "Board", URL: "https://jobs.example/"}, posts, published)
	require.NoError(t, err)

	var doc rss
	require.NoError(t, xml.Unmarshal(body, &doc))
	require.Len(t, doc.Channel.Items, 1)
	it := doc.Channel.Items[0]
	assert.Equal(t, "Backend <Go> Engineer", it.Title)
	assert.Equal(t, "https://jobs.example/jobs/p1/backend-go-engineer", it.Link)
	assert.Equal(t, "<p>Build & ship</p>", it.Description.Value)
	assert.Equal(t, "Jobs", it.Category)
	assert.Contains(t, string(body), "<![CDATA[<p>Build & ship</p>]]>")
}

func TestBuildAtom(t *testing.T) {
	body, err := BuildAtom(Site{Name: "Board", URL: "https://jobs.example"}, []models.PostModel{{Base: models.Base{ID: "p2"}, Title: "x", Slug: "x"}}, time.Now())
	require.NoError(t, err)

	var doc atomFeed
	require.NoError(t, xml.Unmarshal(body, &doc))
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "urn:uuid:p2", doc.Entries[0].ID)
	assert.Equal(t, "https://jobs.example/posts/x", doc.Entries[0].Link.Href)
}
