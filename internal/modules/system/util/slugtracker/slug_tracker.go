package slugtracker

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
)

// Tracked content types.
const (
	TypePost = "post"
	TypePage = "page"
)

// Service provides slug history operations. Methods taking a *gorm.DB run on
// that handle so callers can include them in a transaction.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Track records that oldSlug for the given content type now points to targetID.
func Track(tx *gorm.DB, oldSlug, refType, targetID string) error {
	if oldSlug == "" {
		return nil
	}
	tracker := models.SlugTrackerModel{
		Slug:     oldSlug,
		Type:     refType,
		TargetID: targetID,
	}

	return tx.Where(models.SlugTrackerModel{Slug: oldSlug, Type: refType}).
		Assign(models.SlugTrackerModel{TargetID: targetID}).
		FirstOrCreate(&tracker).Error
}

// Taken returns historic slugs of refType equal to base or base-N, excluding
// those owned by excludeTarget.
func Taken(tx *gorm.DB, refType, base, excludeTarget string) ([]string, error) {
	var slugs []string
	q := tx.Model(&models.SlugTrackerModel{}).
		Where("type = ? AND (slug = ? OR slug LIKE ?)", refType, base, base+"-%")
	if excludeTarget != "" {
		q = q.Where("target_id <> ?", excludeTarget)
	}
	return slugs, q.Pluck("slug", &slugs).Error
}

// FindBySlug returns the current targetID for the given old slug, or ("", nil).
func (s *Service) FindBySlug(slug, refType string) (string, error) {
	var tracker models.SlugTrackerModel
	err := s.db.Where("slug = ? AND type = ?", slug, refType).First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tracker.TargetID, nil
}

// DeleteByTarget removes all tracker entries for a given content item.
func DeleteByTarget(tx *gorm.DB, refType, targetID string) error {
	return tx.Where("type = ? AND target_id = ?", refType, targetID).Delete(&models.SlugTrackerModel{}).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/slug-tracker")
	g.GET("/redirect/:type/:slug", h.redirect)
	g.DELETE("/:type/:slug", authMW, h.remove)
}

// GET /slug-tracker/redirect/:type/:slug
func (h *Handler) redirect(c *gin.Context) {
	refType := c.Param("type")
	if refType != TypePost && refType != TypePage {
		response.BadRequest(c, "type must be post or page")
		return
	}
	slug := c.Param("slug")

	targetID, err := h.svc.FindBySlug(slug, refType)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if targetID == "" {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{"target_id": targetID, "type": refType, "slug": slug})
}

func (h *Handler) remove(c *gin.Context) {
	res := h.svc.db.Where("slug = ? AND type = ?", c.Param("slug"), c.Param("type")).
		Delete(&models.SlugTrackerModel{})
	if res.Error != nil {
		response.InternalError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}
