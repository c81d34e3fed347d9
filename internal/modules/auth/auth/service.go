package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/jobboard/cms/internal/config"
	"github.com/jobboard/cms/internal/models"
	sessionpkg "github.com/jobboard/cms/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// failDelay slows down wrong-credential responses.
const failDelay = 2 * time.Second

type Service struct {
	db        *gorm.DB
	failDelay time.Duration
}

func NewService(db *gorm.DB) *Service { return &Service{db: db, failDelay: failDelay} }

// Login checks the credentials and opens a session.
func (s *Service) Login(dto *LoginDTO, ip, ua string) (string, *models.AdminSession, *models.AdminModel, error) {
	q := s.db.Where("username = ?", strings.TrimSpace(dto.Username))
	if dto.Username == "" {
		q = s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(dto.Email)))
	}

	var admin models.AdminModel
	if err := q.First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			time.Sleep(s.failDelay)
			return "", nil, nil, ErrInvalidCredentials
		}
		return "", nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(dto.Password)); err != nil {
		time.Sleep(s.failDelay)
		return "", nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&admin).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": ip,
	}).Error; err != nil {
		return "", nil, nil, err
	}

	token, sess, err := sessionpkg.Issue(s.db, admin.ID, ip, ua, sessionpkg.DefaultTTL)
	if err != nil {
		return "", nil, nil, err
	}
	return token, sess, &admin, nil
}

func (s *Service) GetByID(id string) (*models.AdminModel, error) {
	var admin models.AdminModel
	if err := s.db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (s *Service) Logout(adminID, sessionID string) error {
	return sessionpkg.Revoke(s.db, adminID, sessionID)
}

func (s *Service) Sessions(adminID string) ([]models.AdminSession, error) {
	return sessionpkg.ListActive(s.db, adminID)
}

func (s *Service) RevokeSession(adminID, sessionID string) error {
	return sessionpkg.Revoke(s.db, adminID, sessionID)
}

// PurgeSessions deletes sessions that expired or were revoked before cutoff.
func (s *Service) PurgeSessions(cutoff time.Time) (int64, error) {
	return sessionpkg.Purge(s.db, cutoff)
}

// Bootstrap creates the configured admin when the admins table is empty.
func (s *Service) Bootstrap(cfg config.AdminBootstrapConfig, log *zap.Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.AdminModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		email = cfg.Username + "@localhost"
	}
	admin := models.AdminModel{Username: cfg.Username, Email: email, Password: string(hash), FullName: cfg.Username}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	if log != nil {
		log.Info("bootstrap admin created", zap.String("username", admin.Username))
	}
	return nil
}
