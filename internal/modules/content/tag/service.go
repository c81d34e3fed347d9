package tag

import (
	"errors"
	"strings"

	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/slug"
	"gorm.io/gorm"
)

type CreateTagDTO struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,slug,max=180"`
}

type UpdateTagDTO struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug *string `json:"slug" binding:"omitempty,slug,max=180"`
}

// WithCount is a tag plus the number of posts carrying it.
type WithCount struct {
	models.TagModel
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
	err := s.db.Model(&models.TagModel{}).
		Select("tags.*, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (s *Service) GetBySlug(value string) (*models.TagModel, error) {
	var t models.TagModel
	if err := s.db.Where("slug = ?", value).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) Create(dto *CreateTagDTO) (*models.TagModel, error) {
	t := models.TagModel{Name: strings.TrimSpace(dto.Name)}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, t.Name, ""); err != nil {
			return err
		}
		base := dto.Slug
		if base == "" {
			base = slug.Base(t.Name)
		}
		var err error
		if t.Slug, err = uniqueSlug(tx, base, ""); err != nil {
			return err
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) Update(id string, dto *UpdateTagDTO) (*models.TagModel, error) {
	var t models.TagModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if dto.Name != nil {
			name := strings.TrimSpace(*dto.Name)
			if err := nameTaken(tx, name, t.ID); err != nil {
				return err
			}
			updates["name"] = name
		}
		if dto.Slug != nil && *dto.Slug != t.Slug {
			next, err := uniqueSlug(tx, *dto.Slug, t.ID)
			if err != nil {
				return err
			}
			updates["slug"] = next
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&t).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the tag and its post associations together.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.TagModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Resolve finds or creates tags by name on tx, in input order, dropping
// blanks and case-insensitive duplicates.
func Resolve(tx *gorm.DB, names []string) ([]models.TagModel, error) {
	wanted := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wanted = append(wanted, n)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(wanted))
	for i, n := range wanted {
		lowered[i] = strings.ToLower(n)
	}
	var existing []models.TagModel
	if err := tx.Where("LOWER(name) IN ?", lowered).Find(&existing).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]models.TagModel, len(existing))
	for _, t := range existing {
		byName[strings.ToLower(t.Name)] = t
	}

	out := make([]models.TagModel, 0, len(wanted))
	for _, n := range wanted {
		if t, ok := byName[strings.ToLower(n)]; ok {
			out = append(out, t)
			continue
		}
		s, err := uniqueSlug(tx, slug.Base(n), "")
		if err != nil {
			return nil, err
		}
		t := models.TagModel{Name: n, Slug: s}
		if err := tx.Create(&t).Error; err != nil {
			return nil, err
		}
		byName[strings.ToLower(n)] = t
		out = append(out, t)
	}
	return out, nil
}

// nameTaken returns gorm.ErrDuplicatedKey when another tag already has name,
// ignoring case.
func nameTaken(tx *gorm.DB, name, excludeID string) error {
	var n int64
	q := tx.Model(&models.TagModel{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return gorm.ErrDuplicatedKey
	}
	return nil
}

func uniqueSlug(tx *gorm.DB, base, excludeID string) (string, error) {
	var taken []string
	q := tx.Model(&models.TagModel{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
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
