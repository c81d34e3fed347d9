package subscribe

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/pkg/mail"
	"github.com/jobboard/cms/internal/pkg/metrics"
	"github.com/jobboard/cms/internal/pkg/pagination"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchSize is the number of BCC recipients per newsletter email.
const BatchSize = 50

type SubscribeDTO struct {
	Email string `json:"email" binding:"required,email,max=191"`
}

type SendDTO struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// SendResult reports how a newsletter was delivered.
type SendResult struct {
	Recipients int `json:"recipients"`
	Batches    int `json:"batches"`
}

// Site identifies the site in outgoing emails.
type Site struct {
	Name string
	URL  string
}

type Service struct {
	db     *gorm.DB
	mailer mail.Mailer
	site   Site
	log    *zap.Logger
	md     goldmark.Markdown
}

func NewService(db *gorm.DB, mailer mail.Mailer, site Site, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	site.URL = strings.TrimRight(site.URL, "/")
	return &Service{db: db, mailer: mailer, site: site, log: log, md: goldmark.New()}
}

// Subscribe stores email once. Repeated calls return the existing row and
// report created=false.
func (s *Service) Subscribe(email string) (*models.SubscriberModel, bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}
	sub := models.SubscriberModel{Email: strings.ToLower(strings.TrimSpace(email)), CancelToken: token}

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&sub)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &sub, true, nil
	}

	var existing models.SubscriberModel
	if err := s.db.Where("email = ?", sub.Email).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// Welcome emails a new subscriber. Failures are only logged.
func (s *Service) Welcome(ctx context.Context, sub *models.SubscriberModel) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	html, err := mail.RenderWelcome(mail.WelcomeData{
		SiteName:       s.site.Name,
		SiteURL:        s.site.URL,
		UnsubscribeURL: s.UnsubscribeURL(sub),
	})
	if err == nil {
		err = s.mailer.Send(ctx, mail.Message{
			To:      []string{sub.Email},
			Subject: "Welcome to " + s.site.Name,
			HTML:    html,
		})
	}
	if err != nil {
		s.log.Warn("welcome email failed", zap.String("email", sub.Email), zap.Error(err))
	}
}

// UnsubscribeURL is the one-click link for sub.
func (s *Service) UnsubscribeURL(sub *models.SubscriberModel) string {
	q := url.Values{"email": {sub.Email}, "token": {sub.CancelToken}}
	return s.site.URL + "/api/v1/subscribers/unsubscribe?" + q.Encode()
}

// Unsubscribe deletes the subscriber matching both email and token.
func (s *Service) Unsubscribe(email, token string) error {
	res := s.db.Where("email = ? AND cancel_token = ?", strings.ToLower(strings.TrimSpace(email)), token).
		Delete(&models.SubscriberModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error) {
	var subs []models.SubscriberModel
	pag, err := pagination.Paginate(s.db.Model(&models.SubscriberModel{}).Order("created_at DESC"), q, &subs)
	return subs, pag, err
}

func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.SubscriberModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Send renders dto.Content as Markdown and mails it to every subscriber in
// BCC batches.
func (s *Service) Send(ctx context.Context, dto *SendDTO) (*SendResult, error) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return nil, mail.ErrDisabled
	}

	var body bytes.Buffer
	if err := s.md.Convert([]byte(dto.Content), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	html, err := mail.RenderNewsletter(mail.NewsletterData{
		Subject:        dto.Subject,
		Body:           template.HTML(body.String()),
		SiteName:       s.site.Name,
		UnsubscribeURL: s.site.URL,
	})
	if err != nil {
		return nil, err
	}

	var emails []string
	if err := s.db.Model(&models.SubscriberModel{}).Order("created_at ASC").Pluck("email", &emails).Error; err != nil {
		return nil, err
	}

	result := &SendResult{Recipients: len(emails)}
	for start := 0; start < len(emails); start += BatchSize {
		end := min(start+BatchSize, len(emails))
		batch := emails[start:end]
		if err := s.mailer.Send(ctx, mail.Message{Bcc: batch, Subject: dto.Subject, HTML: html}); err != nil {
			return result, fmt.Errorf("send batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
		metrics.NewsletterEmailsSent.Add(float64(len(batch)))
	}
	s.log.Info("newsletter sent", zap.String("subject", dto.Subject),
		zap.Int("recipients", result.Recipients), zap.Int("batches", result.Batches))
	return result, nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
