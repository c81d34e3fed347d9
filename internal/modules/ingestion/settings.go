package ingestion

import (
	"time"

	"github.com/jobboard/cms/internal/config"
)

// OptionName is the options row holding Settings.
const OptionName = "ingestion"

// Settings is the persisted ingestion state.
type Settings struct {
	Enabled  bool     `json:"enabled"`
	FeedURL  string   `json:"feed_url"`
	JobCount int      `json:"job_count"`
	LastRun  *LastRun `json:"last_run,omitempty"`
}

// LastRun records the outcome of the most recent run.
type LastRun struct {
	At      time.Time `json:"at"`
	Fetched int       `json:"fetched"`
	Stored  int       `json:"stored"`
	Skipped int       `json:"skipped"`
	Error   string    `json:"error,omitempty"`
}

func defaultSettings(cfg config.IngestionConfig) Settings {
	return Settings{
		Enabled:  cfg.Enabled,
		FeedURL:  cfg.FeedURL,
		JobCount: cfg.JobCount,
	}
}

// UpdateSettingsDTO changes the persisted settings; nil fields are kept.
type UpdateSettingsDTO struct {
	Enabled  *bool   `json:"enabled"`
	FeedURL  *string `json:"feed_url"  binding:"omitempty,url"`
	JobCount *int    `json:"job_count" binding:"omitempty,min=1,max=100"`
}

// RunDTO overrides the stored feed for one manual run.
type RunDTO struct {
	APIURL   string `json:"api_url"   binding:"omitempty,url"`
	JobCount int    `json:"job_count" binding:"omitempty,min=1,max=100"`
}

// Result summarises one run.
type Result struct {
	Fetched int `json:"fetched"`
	Stored  int `json:"jobs_stored"`
	Skipped int `json:"skipped"`
}
