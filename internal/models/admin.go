package models

import "time"

// AdminModel is a console account.
type AdminModel struct {
	Base
	Username    string     `json:"username"      gorm:"size:191;uniqueIndex;not null"`
	Email       string     `json:"email"         gorm:"size:191;uniqueIndex;not null"`
	Password    string     `json:"-"             gorm:"not null"`
	FullName    string     `json:"full_name"`
	Bio         string     `json:"bio"           gorm:"type:text"`
	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"last_login_ip"`
}

func (AdminModel) TableName() string { return "admins" }
