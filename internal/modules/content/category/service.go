package category

import (
	"errors"
	"strings"

	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/slug"
	"gorm.io/gorm"
)

// ErrNameTaken is returned when another category already uses the name.
var ErrNameTaken = errors.New("category name already exists")

type CreateCategoryDTO struct {
	Name            string `json:"name"             binding:"required,max=100"`
	Slug            string `json:"slug"             binding:"omitempty,slug,max=180"`
	MetaTitle       string `json:"meta_title"       binding:"max=255"`
	MetaDescription string `json:"meta_description" binding:"max=500"`
}

type UpdateCategoryDTO struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Slug            *string `json:"slug"             binding:"omitempty,slug,max=180"`
	MetaTitle       *string `json:"meta_title"       binding:"omitempty,max=255"`
	MetaDescription *string `json:"meta_description" binding:"omitempty,max=500"`
}

// WithCount is a category plus its number of published posts.
type WithCount struct {
	models.CategoryModel
	PostCount int64 `json:"post_count"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]WithCount, error) {
	var rows []WithCount
	err := s.db.Model(&models.CategoryModel{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id AND posts.status = ?", models.StatusPublished).
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (s *Service) GetByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// GetByQuery looks a category up by id, then slug, then name.
func (s *Service) GetByQuery(query string) (*models.CategoryModel, error) {
	if cat, err := s.GetByID(query); err != nil {
		return nil, err
	} else if cat != nil {
		return cat, nil
	}

	var cat models.CategoryModel
	if err := s.db.Where("slug = ? OR name = ?", query, query).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	cat := models.CategoryModel{
		Name:            strings.TrimSpace(dto.Name),
		MetaTitle:       dto.MetaTitle,
		MetaDescription: dto.MetaDescription,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, cat.Name, ""); err != nil {
			return err
		}
		base := dto.Slug
		if base == "" {
			base = slug.Base(cat.Name)
		}
		next, err := uniqueSlug(tx, base, "")
		if err != nil {
			return err
		}
		cat.Slug = next
		return tx.Create(&cat).Error
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if dto.Name != nil {
			name := strings.TrimSpace(*dto.Name)
			if err := ensureNameFree(tx, name, cat.ID); err != nil {
				return err
			}
			updates["name"] = name
		}
		if dto.Slug != nil && *dto.Slug != cat.Slug {
			next, err := uniqueSlug(tx, *dto.Slug, cat.ID)
			if err != nil {
				return err
			}
			updates["slug"] = next
		}
		if dto.MetaTitle != nil {
			updates["meta_title"] = *dto.MetaTitle
		}
		if dto.MetaDescription != nil {
			updates["meta_description"] = *dto.MetaDescription
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&cat).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Delete detaches the category's posts and removes it in one transaction.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostModel{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CategoryModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func ensureNameFree(tx *gorm.DB, name, excludeID string) error {
	var count int64
	q := tx.Model(&models.CategoryModel{}).Where("name = ?", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}
	return nil
}

func uniqueSlug(tx *gorm.DB, base, excludeID string) (string, error) {
	var taken []string
	q := tx.Model(&models.CategoryModel{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", err
	}
	known := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		known[s] = struct{}{}
	}
	return slug.UniqueFrom(base, known), nil
}
