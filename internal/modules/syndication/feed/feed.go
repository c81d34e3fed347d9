package feed

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/modules/syndication/sitemap"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
)

// Size is the number of posts in a feed.
const Size = 20

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        guid   `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Category    string `xml:"category,omitempty"`
	Description cdata  `xml:"description"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Xmlns    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Link     atomLink    `xml:"link"`
	Updated  string      `xml:"updated"`
	ID       string      `xml:"id"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	Link    atomLink    `xml:"link"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Site describes the feed channel.
type Site struct {
	Name        string
	URL         string
	Description string
}

type Handler struct {
	db   *gorm.DB
	site Site
}

func NewHandler(db *gorm.DB, site Site) *Handler {
	site.URL = strings.TrimRight(site.URL, "/")
	return &Handler{db: db, site: site}
}

// RegisterRoutes mounts the RSS and Atom feeds at the engine root.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/feed.xml", func(c *gin.Context) { h.render(c, "rss") })
	r.GET("/atom.xml", func(c *gin.Context) { h.render(c, "atom") })
}

func (h *Handler) render(c *gin.Context, kind string) {
	var posts []models.PostModel
	if err := h.db.Preload("Category").
		Where("status = ?", models.StatusPublished).
		Order("published_at DESC, created_at DESC").
		Limit(Size).
		Find(&posts).Error; err != nil {
		response.InternalError(c, err)
		return
	}

	var (
		body        []byte
		err         error
		contentType string
	)
	if kind == "atom" {
		body, err = BuildAtom(h.site, posts, time.Now())
		contentType = "application/atom+xml; charset=utf-8"
	} else {
		body, err = BuildRSS(h.site, posts, time.Now())
		contentType = "application/rss+xml; charset=utf-8"
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}

func BuildRSS(site Site, posts []models.PostModel, now time.Time) ([]byte, error) {
	site.URL = strings.TrimRight(site.URL, "/")
	doc := rss{Version: "2.0", Channel: channel{
		Title:         site.Name,
		Link:          site.URL,
		Description:   site.Description,
		LastBuildDate: now.Format(time.RFC1123Z),
	}}
	for i := range posts {
		p := &posts[i]
		it := item{
			Title:       p.Title,
			Link:        sitemap.PostURL(site.URL, p),
			GUID:        guid{Value: p.ID},
			PubDate:     published(p).Format(time.RFC1123Z),
			Description: cdata{Value: p.Content},
		}
		if p.Category != nil {
			it.Category = p.Category.Name
		}
		doc.Channel.Items = append(doc.Channel.Items, it)
	}
	return marshal(doc)
}

func BuildAtom(site Site, posts []models.PostModel, now time.Time) ([]byte, error) {
	site.URL = strings.TrimRight(site.URL, "/")
	doc := atomFeed{
		Xmlns:    "http://www.w3.org/2005/Atom",
		Title:    site.Name,
		Subtitle: site.Description,
		Link:     atomLink{Href: site.URL},
		Updated:  now.Format(time.RFC3339),
		ID:       site.URL + "/",
	}
	for i := range posts {
		p := &posts[i]
		doc.Entries = append(doc.Entries, atomEntry{
			Title:   p.Title,
			Link:    atomLink{Href: sitemap.PostURL(site.URL, p)},
			ID:      "urn:uuid:" + p.ID,
			Updated: p.UpdatedAt.Format(time.RFC3339),
			Content: atomContent{Type: "html", Value: p.Content},
		})
	}
	return marshal(doc)
}

func published(p *models.PostModel) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

func marshal(v interface{}) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
