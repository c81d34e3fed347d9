package models

import "time"

// Advertisement types and placements.
const (
	AdTypeGoogle = "google_ads"
	AdTypeCustom = "custom"

	PlacementSidebar = "sidebar"
	PlacementFooter  = "footer"
	PlacementHeader  = "header"
)

type AdvertisementModel struct {
	Base
	AdName    string     `json:"ad_name"    gorm:"not null"`
	AdType    string     `json:"ad_type"    gorm:"size:16;not null"`
	AdCode    string     `json:"ad_code"    gorm:"type:text;not null"`
	Placement *string    `json:"placement"  gorm:"size:16;index"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  bool       `json:"is_active"  gorm:"not null;index"`
}

func (AdvertisementModel) TableName() string { return "advertisements" }

// ActiveAt reports whether the ad should be shown at t.
func (a *AdvertisementModel) ActiveAt(t time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartDate != nil && t.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && t.After(*a.EndDate) {
		return false
	}
	return true
}

type BannerModel struct {
	Base
	Title      string `json:"title"       gorm:"not null"`
	Subtitle   string `json:"subtitle"`
	Link       string `json:"link"`
	ImageURL   string `json:"image_url"`
	ButtonText string `json:"button_text"`
	IsActive   bool   `json:"is_active"   gorm:"not null;index"`
}

func (BannerModel) TableName() string { return "banners" }

const (
	RelFollow   = "follow"
	RelNofollow = "nofollow"
)

type BacklinkModel struct {
	Base
	URL          string `json:"url"           gorm:"not null"`
	AnchorText   string `json:"anchor_text"   gorm:"not null"`
	TargetURL    string `json:"target_url"    gorm:"not null"`
	RelAttribute string `json:"rel_attribute" gorm:"size:16;not null;default:'follow'"`
	IsActive     bool   `json:"is_active"     gorm:"not null;index"`
}

func (BacklinkModel) TableName() string { return "backlinks" }
