package models

// SlugTrackerModel tracks slug history for redirects.
type SlugTrackerModel struct {
	Base
	Slug     string `json:"slug"      gorm:"size:191;index;not null"`
	Type     string `json:"type"      gorm:"size:16;index;not null"` // post | page
	TargetID string `json:"target_id" gorm:"type:char(36);index;not null"`
}

func (SlugTrackerModel) TableName() string { return "slug_trackers" }

// OptionModel is a generic key-value store for runtime settings.
type OptionModel struct {
	ID    uint   `json:"-"     gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"size:191;uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"` // JSON-encoded value
}

func (OptionModel) TableName() string { return "options" }
