// Package option persists runtime settings as JSON values in the options table.
package option

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Load decodes the value stored under name into dest. It reports false when
// no row exists.
func Load(db *gorm.DB, name string, dest interface{}) (bool, error) {
	var opt models.OptionModel
	if err := db.Where("name = ?", name).First(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(opt.Value), dest); err != nil {
		return false, fmt.Errorf("decode option %q: %w", name, err)
	}
	return true, nil
}

// Save upserts value under name.
func Save(db *gorm.DB, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %q: %w", name, err)
	}
	opt := models.OptionModel{Name: name, Value: string(raw)}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
}

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// RegisterRoutes exposes stored options read-only; each owner module has its
// own validated write endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/options", authMW)
	g.GET("", h.list)
	g.GET("/:key", h.get)
}

type item struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func toItem(opt models.OptionModel) item {
	value := json.RawMessage(opt.Value)
	if !json.Valid(value) {
		value, _ = json.Marshal(opt.Value)
	}
	return item{Name: opt.Name, Value: value}
}

func (h *Handler) list(c *gin.Context) {
	var rows []models.OptionModel
	if err := h.db.Order("name ASC").Find(&rows).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]item, 0, len(rows))
	for _, r := range rows {
		items = append(items, toItem(r))
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	var opt models.OptionModel
	if err := h.db.Where("name = ?", c.Param("key")).First(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "option not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toItem(opt))
}
