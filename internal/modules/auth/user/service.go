package user

import (
	"errors"
	"strings"

	"github.com/jobboard/cms/internal/models"
	sessionpkg "github.com/jobboard/cms/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service manages the signed-in admin's own account.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ChangePassword verifies the current password, stores the new hash and
// signs out every other session.
func (s *Service) ChangePassword(adminID, sessionID string, dto *ChangePasswordDTO) error {
	admin, err := s.verify(adminID, dto.CurrentPassword)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(admin).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return sessionpkg.RevokeAllExcept(tx, adminID, sessionID)
	})
}

func (s *Service) ChangeUsername(adminID string, dto *ChangeUsernameDTO) (*models.AdminModel, error) {
	admin, err := s.verify(adminID, dto.Password)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(dto.Username)
	if err := s.ensureFree("username", username, adminID); err != nil {
		return nil, err
	}
	return admin, s.db.Model(admin).Update("username", username).Error
}

func (s *Service) ChangeEmail(adminID string, dto *ChangeEmailDTO) (*models.AdminModel, error) {
	admin, err := s.verify(adminID, dto.Password)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if err := s.ensureFree("email", email, adminID); err != nil {
		return nil, err
	}
	return admin, s.db.Model(admin).Update("email", email).Error
}

func (s *Service) UpdateProfile(adminID string, dto *UpdateProfileDTO) (*models.AdminModel, error) {
	var admin models.AdminModel
	if err := s.db.First(&admin, "id = ?", adminID).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*dto.FullName)
	}
	if dto.Bio != nil {
		updates["bio"] = *dto.Bio
	}
	if len(updates) == 0 {
		return &admin, nil
	}
	return &admin, s.db.Model(&admin).Updates(updates).Error
}

func (s *Service) verify(adminID, password string) (*models.AdminModel, error) {
	var admin models.AdminModel
	if err := s.db.First(&admin, "id = ?", adminID).Error; err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return &admin, nil
}

func (s *Service) ensureFree(column, value, adminID string) error {
	var count int64
	if err := s.db.Model(&models.AdminModel{}).
		Where(column+" = ? AND id <> ?", value, adminID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTaken
	}
	return nil
}

// IsWrongPassword reports whether err came from a failed password check.
func IsWrongPassword(err error) bool { return errors.Is(err, ErrWrongPassword) }
