package sitemap

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type entry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type Handler struct {
	db      *gorm.DB
	siteURL string
}

func NewHandler(db *gorm.DB, siteURL string) *Handler {
	return &Handler{db: db, siteURL: strings.TrimRight(siteURL, "/")}
}

// RegisterRoutes mounts /sitemap.xml at the engine root.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/sitemap.xml", h.render)
}

func (h *Handler) render(c *gin.Context) {
	body, err := Build(h.db, h.siteURL, time.Now())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// PostURL is the public URL of a post: /<category>/<id>/<slug>, or
// /posts/<slug> for uncategorised posts.
func PostURL(base string, p *models.PostModel) string {
	if p.Category != nil && p.Category.Slug != "" {
		return base + "/" + p.Category.Slug + "/" + p.ID + "/" + p.Slug
	}
	return base + "/posts/" + p.Slug
}

// Build renders the sitemap for base: home, categories, published posts and
// published pages.
func Build(db *gorm.DB, base string, now time.Time) ([]byte, error) {
	set := urlSet{Xmlns: xmlns}
	set.URLs = append(set.URLs, entry{Loc: base + "/", LastMod: day(now), ChangeFreq: "daily", Priority: 1.0})

	var cats []models.CategoryModel
	if err := db.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	for _, cat := range cats {
		set.URLs = append(set.URLs, entry{
			Loc:        base + "/" + cat.Slug,
			LastMod:    day(cat.UpdatedAt),
			ChangeFreq: "daily",
			Priority:   0.7,
		})
	}

	var posts []models.PostModel
	if err := db.Preload("Category").
		Where("status = ?", models.StatusPublished).
		Order("published_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	for i := range posts {
		set.URLs = append(set.URLs, entry{
			Loc:        PostURL(base, &posts[i]),
			LastMod:    day(posts[i].UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}

	var pages []models.PageModel
	if err := db.Where("status = ?", models.StatusPublished).Order("title ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	for _, pg := range pages {
		set.URLs = append(set.URLs, entry{
			Loc:        base + "/pages/" + pg.Slug,
			LastMod:    day(pg.UpdatedAt),
			ChangeFreq: "monthly",
			Priority:   0.5,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
