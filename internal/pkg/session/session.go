package session

import (
	"strings"
	"time"

	"github.com/jobboard/cms/internal/models"
	jwtpkg "github.com/jobboard/cms/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 7 * 24 * time.Hour

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(db *gorm.DB, adminID, ip, ua string, ttl time.Duration) (string, *models.AdminSession, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.AdminSession{
		AdminID:   adminID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.Sign(adminID, s.ID, ttl)
	if err != nil {
		_ = db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// IsActive reports whether the session exists, belongs to adminID, and is
// neither revoked nor expired.
func IsActive(db *gorm.DB, adminID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.AdminSession{}).
		Where("id = ? AND admin_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, adminID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func ListActive(db *gorm.DB, adminID string) ([]models.AdminSession, error) {
	var sessions []models.AdminSession
	err := db.Where("admin_id = ? AND revoked_at IS NULL AND expires_at > ?", adminID, time.Now()).
		Order("updated_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func Revoke(db *gorm.DB, adminID, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.AdminSession{}).
		Where("id = ? AND admin_id = ? AND revoked_at IS NULL", sessionID, adminID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAllExcept signs out every other session, e.g. after a password change.
func RevokeAllExcept(db *gorm.DB, adminID, keepSessionID string) error {
	now := time.Now()
	query := db.Model(&models.AdminSession{}).
		Where("admin_id = ? AND revoked_at IS NULL", adminID)
	if strings.TrimSpace(keepSessionID) != "" {
		query = query.Where("id <> ?", keepSessionID)
	}
	return query.Update("revoked_at", &now).Error
}

// Purge deletes sessions that expired or were revoked before cutoff.
func Purge(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).Delete(&models.AdminSession{})
	return res.RowsAffected, res.Error
}
