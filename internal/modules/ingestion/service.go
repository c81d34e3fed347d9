// Package ingestion imports job listings from a remote feed as published posts.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jobboard/cms/internal/config"
	"github.com/jobboard/cms/internal/models"
	"github.com/jobboard/cms/internal/modules/content/post"
	"github.com/jobboard/cms/internal/modules/system/core/option"
	"github.com/jobboard/cms/internal/pkg/cron"
	"github.com/jobboard/cms/internal/pkg/metrics"
	"github.com/jobboard/cms/internal/pkg/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobName is the scheduler entry that runs ingestion.
const JobName = "job_ingestion"

// slugAttempts bounds retries when a slug is taken between seeding the
// registry and the insert.
const slugAttempts = 3

var (
	ErrNoFeedURL       = errors.New("ingestion feed url is not configured")
	ErrCategoryMissing = errors.New("ingestion category not found")
)

type Service struct {
	db      *gorm.DB
	cfg     config.IngestionConfig
	fetcher *Fetcher
	lock    *RunLock
	log     *zap.Logger
	now     func() time.Time

	// settingsMu guards read-modify-write of the options row.
	settingsMu sync.Mutex
}

func NewService(db *gorm.DB, cfg config.IngestionConfig, lock *RunLock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if lock == nil {
		lock = NewRunLock(nil, 0)
	}
	return &Service{
		db:      db,
		cfg:     cfg,
		fetcher: NewFetcher(cfg.Timeout),
		lock:    lock,
		log:     log.Named("Ingestion"),
		now:     time.Now,
	}
}

// Settings returns the persisted settings, seeded from configuration on
// first use.
func (s *Service) Settings() (*Settings, error) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.loadSettings()
}

func (s *Service) loadSettings() (*Settings, error) {
	st := defaultSettings(s.cfg)
	found, err := option.Load(s.db, OptionName, &st)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := option.Save(s.db, OptionName, st); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

func (s *Service) UpdateSettings(dto *UpdateSettingsDTO) (*Settings, error) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	st, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	if dto.Enabled != nil {
		st.Enabled = *dto.Enabled
	}
	if dto.FeedURL != nil {
		st.FeedURL = strings.TrimSpace(*dto.FeedURL)
	}
	if dto.JobCount != nil {
		st.JobCount = *dto.JobCount
	}
	if st.Enabled && st.FeedURL == "" {
		return nil, ErrNoFeedURL
	}
	if err := option.Save(s.db, OptionName, st); err != nil {
		return nil, err
	}
	s.log.Info("settings updated", zap.Bool("enabled", st.Enabled), zap.String("feed_url", st.FeedURL), zap.Int("job_count", st.JobCount))
	return st, nil
}

func (s *Service) recordRun(run LastRun) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	st, err := s.loadSettings()
	if err == nil {
		st.LastRun = &run
		err = option.Save(s.db, OptionName, st)
	}
	if err != nil {
		s.log.Warn("persist last run", zap.Error(err))
	}
}

// Run fetches one feed page and stores every record not seen before. dto
// may override the stored feed url and count.
func (s *Service) Run(ctx context.Context, dto *RunDTO) (*Result, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			metrics.IngestionRunsTotal.WithLabelValues("skipped").Inc()
		}
		return nil, err
	}
	defer release()

	started := s.now()
	res, err := s.run(ctx, dto)
	metrics.IngestionRunDuration.Observe(time.Since(started).Seconds())

	run := LastRun{At: started.UTC()}
	if res != nil {
		run.Fetched, run.Stored, run.Skipped = res.Fetched, res.Stored, res.Skipped
	}
	if err != nil {
		run.Error = err.Error()
		metrics.IngestionRunsTotal.WithLabelValues("failure").Inc()
		s.log.Warn("run failed", zap.Error(err), zap.Int("stored", run.Stored))
	} else {
		metrics.IngestionRunsTotal.WithLabelValues("success").Inc()
		s.log.Info("run finished",
			zap.Int("fetched", res.Fetched),
			zap.Int("stored", res.Stored),
			zap.Int("skipped", res.Skipped),
			zap.Duration("took", time.Since(started)))
	}
	s.recordRun(run)
	return res, err
}

func (s *Service) run(ctx context.Context, dto *RunDTO) (*Result, error) {
	st, err := s.Settings()
	if err != nil {
		return nil, err
	}
	feedURL, count := st.FeedURL, st.JobCount
	if dto != nil {
		if dto.APIURL != "" {
			feedURL = dto.APIURL
		}
		if dto.JobCount > 0 {
			count = dto.JobCount
		}
	}
	if feedURL == "" {
		return nil, ErrNoFeedURL
	}
	if count <= 0 {
		count = 10
	}

	categoryID, err := s.categoryID()
	if err != nil {
		return nil, err
	}

	records, err := s.fetcher.Fetch(ctx, feedURL, count)
	if err != nil {
		return nil, err
	}

	known, err := post.KnownSlugs(s.db)
	if err != nil {
		return nil, err
	}
	reg := slug.NewRegistry(known...)

	res := &Result{Fetched: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := s.store(reg, categoryID, rec)
		if err != nil {
			return res, err
		}
		switch out {
		case outcomeStored:
			res.Stored++
			metrics.IngestionPostsStored.Inc()
		case outcomeDuplicate:
			res.Skipped++
			metrics.IngestionDuplicates.Inc()
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *Service) categoryID() (string, error) {
	name := s.cfg.Category
	if name == "" {
		name = "jobs"
	}
	var cat models.CategoryModel
	err := s.db.Where("slug = ? OR name = ?", name, name).Order("created_at ASC").First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %q", ErrCategoryMissing, name)
	}
	if err != nil {
		return "", err
	}
	return cat.ID, nil
}

type outcome int

const (
	outcomeStored outcome = iota
	outcomeDuplicate
	outcomeInvalid
)

// store inserts rec unless it is already stored. Imported rows are matched by
// fingerprint; hand-written posts by exact title and content.
func (s *Service) store(reg *slug.Registry, categoryID string, rec ExternalJobRecord) (outcome, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		s.log.Debug("skip record without title")
		return outcomeInvalid, nil
	}
	fp := Fingerprint(title, rec.Description)
	content := BuildContent(rec)

	var n int64
	err := s.db.Model(&models.PostModel{}).
		Where("content_fingerprint IS NULL AND title = ? AND content IN ?", title, []string{rec.Description, content}).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return outcomeDuplicate, nil
	}

	image := ""
	if logo := strings.TrimSpace(rec.Company.Logo); logo != "" {
		image = strings.TrimRight(s.cfg.ImageBaseURL, "/") + "/" + strings.TrimLeft(logo, "/")
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		now := s.now()
		p := models.PostModel{
			SEOFields:     models.SEOFields{MetaDescription: s.cfg.MetaDescription},
			CategoryID:    &categoryID,
			Title:         title,
			Slug:          reg.Next(title),
			Content:       content,
			FeaturedImage: image,
			Status:        models.StatusPublished,
			PublishedAt:   &now,
			Source:        models.SourceIngestion,
			Fingerprint:   &fp,
		}
		tx := s.db.Clauses(clause.OnConflict{DoNothing: true}).Omit("Tags").Create(&p)
		if tx.Error != nil {
			return 0, tx.Error
		}
		if tx.RowsAffected > 0 {
			return outcomeStored, nil
		}

		if err := s.db.Model(&models.PostModel{}).Where("content_fingerprint = ?", fp).Count(&n).Error; err != nil {
			return 0, err
		}
		if n > 0 {
			return outcomeDuplicate, nil
		}
		// The slug was claimed outside this run; the registry now holds it,
		// so the next attempt picks a fresh suffix.
		s.log.Debug("slug taken concurrently", zap.String("slug", p.Slug))
	}
	return 0, fmt.Errorf("no free slug for %q after %d attempts", title, slugAttempts)
}

// Scheduled is the cron entry point. It does nothing while ingestion is
// disabled and drops overlapping runs.
func (s *Service) Scheduled(ctx context.Context) error {
	st, err := s.Settings()
	if err != nil {
		return err
	}
	if !st.Enabled {
		return nil
	}
	_, err = s.Run(ctx, nil)
	if errors.Is(err, ErrAlreadyRunning) {
		return nil
	}
	return err
}

func (s *Service) CronJob() cron.Job {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return cron.Job{
		Name:        JobName,
		Description: "Import job listings from the remote feed",
		Interval:    interval,
		Fn:          s.Scheduled,
	}
}
