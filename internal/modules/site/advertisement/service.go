package advertisement

import (
	"errors"
	"time"

	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"gorm.io/gorm"
)

// ErrInvalidWindow is returned when end_date is before start_date.
var ErrInvalidWindow = errors.New("end_date must not be before start_date")

type CreateAdDTO struct {
	AdName    string     `json:"ad_name"    binding:"required,max=255"`
	AdType    string     `json:"ad_type"    binding:"required,oneof=google_ads custom"`
	AdCode    string     `json:"ad_code"    binding:"required"`
	Placement *string    `json:"placement"  binding:"omitempty,oneof=sidebar footer header"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  *bool      `json:"is_active"`
}

type UpdateAdDTO struct {
	AdName    *string    `json:"ad_name"    binding:"omitempty,min=1,max=255"`
	AdType    *string    `json:"ad_type"    binding:"omitempty,oneof=google_ads custom"`
	AdCode    *string    `json:"ad_code"    binding:"omitempty,min=1"`
	Placement *string    `json:"placement"  binding:"omitempty,oneof=sidebar footer header"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  *bool      `json:"is_active"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) List(q pagination.Query) ([]models.AdvertisementModel, response.Pagination, error) {
	var ads []models.AdvertisementModel
	pag, err := pagination.Paginate(s.db.Model(&models.AdvertisementModel{}).Order("created_at DESC"), q, &ads)
	return ads, pag, err
}

// Active returns ads that are switched on and whose date window contains
// the current time, optionally for one placement.
func (s *Service) Active(placement string) ([]models.AdvertisementModel, error) {
	now := s.now()
	tx := s.db.Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("created_at DESC")
	if placement != "" {
		tx = tx.Where("placement = ?", placement)
	}
	var ads []models.AdvertisementModel
	return ads, tx.Find(&ads).Error
}

func (s *Service) Get(id string) (*models.AdvertisementModel, error) {
	var ad models.AdvertisementModel
	if err := s.db.First(&ad, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ad, nil
}

func (s *Service) Create(dto *CreateAdDTO) (*models.AdvertisementModel, error) {
	if !validWindow(dto.StartDate, dto.EndDate) {
		return nil, ErrInvalidWindow
	}
	ad := models.AdvertisementModel{
		AdName:    dto.AdName,
		AdType:    dto.AdType,
		AdCode:    dto.AdCode,
		Placement: emptyToNil(dto.Placement),
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		IsActive:  dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.db.Create(&ad).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

func (s *Service) Update(id string, dto *UpdateAdDTO) (*models.AdvertisementModel, error) {
	var ad models.AdvertisementModel
	if err := s.db.First(&ad, "id = ?", id).Error; err != nil {
		return nil, err
	}

	start, end := ad.StartDate, ad.EndDate
	if dto.StartDate != nil {
		start = dto.StartDate
	}
	if dto.EndDate != nil {
		end = dto.EndDate
	}
	if !validWindow(start, end) {
		return nil, ErrInvalidWindow
	}

	updates := map[string]interface{}{"start_date": start, "end_date": end}
	if dto.AdName != nil {
		updates["ad_name"] = *dto.AdName
	}
	if dto.AdType != nil {
		updates["ad_type"] = *dto.AdType
	}
	if dto.AdCode != nil {
		updates["ad_code"] = *dto.AdCode
	}
	if dto.Placement != nil {
		updates["placement"] = emptyToNil(dto.Placement)
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if err := s.db.Model(&ad).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.AdvertisementModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func validWindow(start, end *time.Time) bool {
	return start == nil || end == nil || !end.Before(*start)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
