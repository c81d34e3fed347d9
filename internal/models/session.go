package models

import "time"

// AdminSession tracks a signed-in console session. The JWT carries its ID.
type AdminSession struct {
	Base
	AdminID   string     `json:"admin_id"   gorm:"type:char(36);index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (AdminSession) TableName() string { return "admin_sessions" }
