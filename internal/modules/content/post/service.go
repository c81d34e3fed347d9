package post

import (
	"errors"
	"strings"
	"time"

	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/modules/content/tag"
	"github.com/jobboard/cms/internal/modules/system/util/slugtracker"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/jobboard/cms/internal/pkg/slug"
	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when a write references an unknown category.
var ErrCategoryNotFound = errors.New("category not found")

const (
	defaultPopular = 5
	maxPopular     = 20
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns a page of posts. Non-admin callers only see published posts.
func (s *Service) List(q pagination.Query, lq ListQuery, isAdmin bool) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).
		Preload("Category").
		Preload("Tags").
		Order("posts.published_at DESC, posts.created_at DESC")

	switch {
	case !isAdmin:
		tx = tx.Where("posts.status = ?", models.StatusPublished)
	case lq.Status != "":
		tx = tx.Where("posts.status = ?", lq.Status)
	}
	if lq.Category != "" {
		tx = tx.Joins("JOIN categories ON categories.id = posts.category_id AND categories.slug = ?", lq.Category)
	}
	if lq.Tag != "" {
		tx = tx.Where("posts.id IN (?)", s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", lq.Tag))
	}
	if q := strings.TrimSpace(lq.Q); q != "" {
		tx = tx.Where("posts.title LIKE ?", "%"+q+"%")
	}

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts)
	return posts, pag, err
}

// Popular returns the latest published posts.
func (s *Service) Popular(limit int) ([]models.PostModel, error) {
	if limit <= 0 {
		limit = defaultPopular
	}
	if limit > maxPopular {
		limit = maxPopular
	}
	var posts []models.PostModel
	err := s.db.Preload("Category").
		Where("status = ?", models.StatusPublished).
		Order("published_at DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *Service) GetByID(id string, isAdmin bool) (*models.PostModel, error) {
	return s.first(s.db.Where("id = ?", id), isAdmin)
}

func (s *Service) GetBySlug(value string, isAdmin bool) (*models.PostModel, error) {
	return s.first(s.db.Where("slug = ?", value), isAdmin)
}

// Moved returns the current slug of the post that used to be reachable at
// oldSlug, or "" when no such post exists.
func (s *Service) Moved(oldSlug string, isAdmin bool) (string, error) {
	targetID, err := slugtracker.NewService(s.db).FindBySlug(oldSlug, slugtracker.TypePost)
	if err != nil || targetID == "" {
		return "", err
	}
	post, err := s.GetByID(targetID, isAdmin)
	if err != nil || post == nil {
		return "", err
	}
	return post.Slug, nil
}

func (s *Service) first(tx *gorm.DB, isAdmin bool) (*models.PostModel, error) {
	if !isAdmin {
		tx = tx.Where("status = ?", models.StatusPublished)
	}
	var post models.PostModel
	if err := tx.Preload("Category").Preload("Tags").First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create writes the post, any new tags and the post_tags rows in one
// transaction.
func (s *Service) Create(dto *CreatePostDTO, authorID string) (*models.PostModel, error) {
	status := dto.Status
	if status == "" {
		status = models.StatusDraft
	}
	post := models.PostModel{
		SEOFields: models.SEOFields{
			MetaTitle:       dto.MetaTitle,
			MetaDescription: dto.MetaDescription,
			MetaKeywords:    dto.MetaKeywords,
		},
		CategoryID:    emptyToNil(dto.CategoryID),
		Title:         strings.TrimSpace(dto.Title),
		Description:   dto.Description,
		Content:       dto.Content,
		FeaturedImage: dto.FeaturedImage,
		URL:           dto.URL,
		URLLabel:      dto.URLLabel,
		Status:        status,
		Source:        models.SourceAdmin,
	}
	if authorID != "" {
		post.AuthorID = &authorID
	}
	if status == models.StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, post.CategoryID); err != nil {
			return err
		}
		next, err := UniqueSlug(tx, baseSlug(dto.Slug, post.Title), "")
		if err != nil {
			return err
		}
		post.Slug = next
		if err := tx.Omit("Tags").Create(&post).Error; err != nil {
			return err
		}
		return replaceTags(tx, &post, dto.Tags)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(post.ID, true)
}

// Update applies the non-nil fields of dto. Tag changes, slug history and the
// post row share one transaction.
func (s *Service) Update(id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.PostModel
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		title := post.Title
		if dto.Title != nil {
			title = strings.TrimSpace(*dto.Title)
			updates["title"] = title
		}
		if dto.Slug != nil {
			if err := changeSlug(tx, &post, baseSlug(*dto.Slug, title), updates); err != nil {
				return err
			}
		}
		if dto.CategoryID != nil {
			cat := emptyToNil(dto.CategoryID)
			if err := checkCategory(tx, cat); err != nil {
				return err
			}
			updates["category_id"] = cat
		}
		if dto.Status != nil {
			applyStatus(&post, *dto.Status, updates)
		}
		setIf(updates, "description", dto.Description)
		setIf(updates, "content", dto.Content)
		setIf(updates, "featured_image", dto.FeaturedImage)
		setIf(updates, "url", dto.URL)
		setIf(updates, "url_label", dto.URLLabel)
		setIf(updates, "meta_title", dto.MetaTitle)
		setIf(updates, "meta_description", dto.MetaDescription)
		setIf(updates, "meta_keywords", dto.MetaKeywords)

		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return err
			}
		}
		if dto.Tags != nil {
			return replaceTags(tx, &post, *dto.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id, true)
}

// SetStatus changes only the workflow status.
func (s *Service) SetStatus(id string, status models.Status) (*models.PostModel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.PostModel
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		applyStatus(&post, status, updates)
		return tx.Model(&post).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id, true)
}

// Delete hard-deletes the post with its tag links and slug history.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := slugtracker.DeleteByTarget(tx, slugtracker.TypePost, id); err != nil {
			return err
		}
		res := tx.Delete(&models.PostModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// KnownSlugs returns every slug a new post may not take: current post slugs
// plus historic ones.
func KnownSlugs(tx *gorm.DB) ([]string, error) {
	var current, history []string
	if err := tx.Model(&models.PostModel{}).Pluck("slug", &current).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.SlugTrackerModel{}).Where("type = ?", slugtracker.TypePost).Pluck("slug", &history).Error; err != nil {
		return nil, err
	}
	return append(current, history...), nil
}

// UniqueSlug resolves base against post slugs and slug history on tx,
// ignoring rows that belong to excludeID.
func UniqueSlug(tx *gorm.DB, base, excludeID string) (string, error) {
	var taken []string
	q := tx.Model(&models.PostModel{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", err
	}
	history, err := slugtracker.Taken(tx, slugtracker.TypePost, base, excludeID)
	if err != nil {
		return "", err
	}

	known := make(map[string]struct{}, len(taken)+len(history))
	for _, s := range append(taken, history...) {
		known[s] = struct{}{}
	}
	return slug.UniqueFrom(base, known), nil
}

func changeSlug(tx *gorm.DB, post *models.PostModel, base string, updates map[string]interface{}) error {
	if base == post.Slug {
		return nil
	}
	next, err := UniqueSlug(tx, base, post.ID)
	if err != nil {
		return err
	}
	if next == post.Slug {
		return nil
	}
	// A post taking back one of its own old slugs drops that history row.
	if err := tx.Where("type = ? AND slug = ?", slugtracker.TypePost, next).
		Delete(&models.SlugTrackerModel{}).Error; err != nil {
		return err
	}
	if err := slugtracker.Track(tx, post.Slug, slugtracker.TypePost, post.ID); err != nil {
		return err
	}
	updates["slug"] = next
	return nil
}

func replaceTags(tx *gorm.DB, post *models.PostModel, names []string) error {
	tags, err := tag.Resolve(tx, names)
	if err != nil {
		return err
	}
	assoc := tx.Model(post).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

func applyStatus(post *models.PostModel, status models.Status, updates map[string]interface{}) {
	updates["status"] = status
	if status == models.StatusPublished && post.PublishedAt == nil {
		updates["published_at"] = time.Now()
	}
}

func checkCategory(tx *gorm.DB, id *string) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.CategoryModel{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func baseSlug(raw, title string) string {
	if s := slug.Normalize(raw); s != "" {
		return s
	}
	return slug.Base(title)
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func setIf(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}
