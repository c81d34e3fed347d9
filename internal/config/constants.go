package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "jobboard"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultSiteURL  = "http://localhost:3000"
	defaultSiteName = "Job Board"

	defaultJobCount          = 10
	defaultIngestionInterval = 30 * time.Minute
	defaultIngestionTimeout  = 30 * time.Second
	defaultJobsCategory      = "jobs"
	defaultMetaDescription   = "Find the latest job opportunities and career openings."

	defaultStorageDriver = "local"
	defaultMaxUploadMB   = 10
	defaultMailPort      = 465
	defaultRateLimit     = 50
)
