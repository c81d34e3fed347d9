package footer

import (
	"errors"
	"slices"
	"strings"

	"github.com/jobboard/cms/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownPlatform is returned for social platforms outside models.SocialPlatforms.
var ErrUnknownPlatform = errors.New("unknown social media platform")

type AboutUsDTO struct {
	Content string `json:"content" binding:"required"`
}

type CopyrightDTO struct {
	CopyrightText string `json:"copyright_text" binding:"required,max=255"`
	Year          string `json:"year"           binding:"required,year"`
}

// SocialLinkDTO sets one platform; an empty URL removes it.
type SocialLinkDTO struct {
	Platform string `json:"platform" binding:"required,max=32"`
	URL      string `json:"url"      binding:"omitempty,url,max=500"`
}

type SocialMediaDTO struct {
	Links []SocialLinkDTO `json:"links" binding:"required,max=20,dive"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) AboutUs() (*models.AboutUsModel, error) {
	var row models.AboutUsModel
	return first(s.db, &row)
}

func (s *Service) SaveAboutUs(dto *AboutUsDTO) (*models.AboutUsModel, error) {
	row, err := s.AboutUs()
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.AboutUsModel{}
	}
	row.Content = dto.Content
	return row, s.db.Save(row).Error
}

func (s *Service) Copyright() (*models.CopyrightModel, error) {
	var row models.CopyrightModel
	return first(s.db, &row)
}

func (s *Service) SaveCopyright(dto *CopyrightDTO) (*models.CopyrightModel, error) {
	row, err := s.Copyright()
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.CopyrightModel{}
	}
	row.CopyrightText = dto.CopyrightText
	row.Year = dto.Year
	return row, s.db.Save(row).Error
}

func (s *Service) SocialMedia() ([]models.SocialMediaModel, error) {
	var rows []models.SocialMediaModel
	return rows, s.db.Order("platform ASC").Find(&rows).Error
}

// SaveSocialMedia upserts each link by platform in one transaction.
func (s *Service) SaveSocialMedia(dto *SocialMediaDTO) ([]models.SocialMediaModel, error) {
	for _, link := range dto.Links {
		if !slices.Contains(models.SocialPlatforms, strings.ToLower(link.Platform)) {
			return nil, ErrUnknownPlatform
		}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, link := range dto.Links {
			platform := strings.ToLower(link.Platform)
			if link.URL == "" {
				if err := tx.Where("platform = ?", platform).Delete(&models.SocialMediaModel{}).Error; err != nil {
					return err
				}
				continue
			}
			row := models.SocialMediaModel{Platform: platform, URL: link.URL}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "platform"}},
				DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.SocialMedia()
}

func first[T any](db *gorm.DB, dest *T) (*T, error) {
	if err := db.Order("created_at ASC").First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}
