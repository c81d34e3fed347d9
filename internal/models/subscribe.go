package models

// SubscriberModel is a newsletter recipient.
type SubscriberModel struct {
	Base
	Email       string `json:"email" gorm:"size:191;uniqueIndex;not null"`
	CancelToken string `json:"-"     gorm:"size:64;uniqueIndex;not null"`
}

func (SubscriberModel) TableName() string { return "subscribers" }
