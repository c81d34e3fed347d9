package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type rawAppConfig struct {
	Port           int                  `yaml:"port"`
	Env            string               `yaml:"env"`
	Database       rawDatabaseConfig    `yaml:"database"`
	Redis          rawRedisConfig       `yaml:"redis"`
	Paths          rawPathsConfig       `yaml:"paths"`
	AllowedOrigins []string             `yaml:"allowed_origins"`
	JWTSecret      string               `yaml:"jwt_secret"`
	Timezone       string               `yaml:"timezone"`
	Site           SiteConfig           `yaml:"site"`
	Admin          AdminBootstrapConfig `yaml:"admin"`
	Ingestion      rawIngestionConfig   `yaml:"ingestion"`
	Storage        rawStorageConfig     `yaml:"storage"`
	Mail           rawMailConfig        `yaml:"mail"`
	RateLimit      rawRateLimitConfig   `yaml:"rate_limit"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
	MaxOpen   int               `yaml:"max_open_conns"`
	MaxIdle   int               `yaml:"max_idle_conns"`
}

type rawRedisConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type rawPathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type rawIngestionConfig struct {
	Enabled         *bool  `yaml:"enabled"`
	FeedURL         string `yaml:"feed_url"`
	JobCount        int    `yaml:"job_count"`
	Interval        string `yaml:"interval"`
	Timeout         string `yaml:"timeout"`
	Category        string `yaml:"category"`
	ImageBaseURL    string `yaml:"image_base_url"`
	MetaDescription string `yaml:"meta_description"`
}

type rawStorageConfig struct {
	Driver      string   `yaml:"driver"`
	S3          S3Config `yaml:"s3"`
	MaxUploadMB int      `yaml:"max_upload_mb"`
}

type rawMailConfig struct {
	Enable *bool  `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	Secure *bool  `yaml:"secure"`
}

type rawRateLimitConfig struct {
	PerSecond *int `yaml:"per_second"`
}

// Load reads the YAML file at configPath and applies it over the defaults.
// Unknown keys are rejected.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content over the defaults and validates the result.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if _, err := time.LoadLocation(c.Database.Loc); err != nil {
		return fmt.Errorf("invalid database.loc %q: %w", c.Database.Loc, err)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Ingestion.Interval <= 0 {
		return fmt.Errorf("invalid ingestion.interval %s, expected > 0", c.Ingestion.Interval)
	}
	if c.Ingestion.JobCount < 1 || c.Ingestion.JobCount > 100 {
		return fmt.Errorf("invalid ingestion.job_count %d, expected 1-100", c.Ingestion.JobCount)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q, expected local or s3", c.Storage.Driver)
	}
	if c.Mail.Enable && c.Mail.Host == "" {
		return fmt.Errorf("mail.host is required when mail.enable is true")
	}
	return nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Site: SiteConfig{URL: defaultSiteURL, Name: defaultSiteName},
		Ingestion: IngestionConfig{
			JobCount:        defaultJobCount,
			Interval:        defaultIngestionInterval,
			Timeout:         defaultIngestionTimeout,
			Category:        defaultJobsCategory,
			MetaDescription: defaultMetaDescription,
		},
		Storage:   StorageConfig{Driver: defaultStorageDriver, MaxUploadMB: defaultMaxUploadMB},
		Mail:      MailConfig{Port: defaultMailPort},
		RateLimit: RateLimitConfig{PerSecond: defaultRateLimit},
	}
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	cfg.Env = normalizeEnv(firstNonEmpty(raw.Env, cfg.Env))
	cfg.Database = normalizeDatabaseConfig(applyRawDatabaseConfig(cfg.Database, raw.Database))
	cfg.Redis = normalizeRedisConfig(applyRawRedisConfig(cfg.Redis, raw.Redis))
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()

	cfg.Paths = normalizeRuntimePaths(RuntimePathsConfig{
		Logs:   firstNonEmpty(raw.Paths.Logs, cfg.Paths.Logs),
		Static: firstNonEmpty(raw.Paths.Static, cfg.Paths.Static),
	})
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	cfg.JWTSecret = firstNonEmpty(raw.JWTSecret, cfg.JWTSecret)
	cfg.Timezone = firstNonEmpty(raw.Timezone, cfg.Timezone)

	cfg.Site.URL = strings.TrimRight(firstNonEmpty(raw.Site.URL, cfg.Site.URL), "/")
	cfg.Site.Name = firstNonEmpty(raw.Site.Name, cfg.Site.Name)

	cfg.Admin = AdminBootstrapConfig{
		Username: strings.TrimSpace(raw.Admin.Username),
		Email:    strings.TrimSpace(raw.Admin.Email),
		Password: raw.Admin.Password,
	}

	ingestion, err := applyRawIngestionConfig(cfg.Ingestion, raw.Ingestion)
	if err != nil {
		return err
	}
	cfg.Ingestion = ingestion

	cfg.Storage.Driver = strings.ToLower(firstNonEmpty(raw.Storage.Driver, cfg.Storage.Driver))
	cfg.Storage.S3 = normalizeS3Config(raw.Storage.S3)
	if raw.Storage.MaxUploadMB > 0 {
		cfg.Storage.MaxUploadMB = raw.Storage.MaxUploadMB
	}

	cfg.Mail = applyRawMailConfig(cfg.Mail, raw.Mail)
	if raw.RateLimit.PerSecond != nil {
		cfg.RateLimit.PerSecond = *raw.RateLimit.PerSecond
	}
	return nil
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	current.DSN = firstNonEmpty(raw.DSN, current.DSN)
	current.Host = firstNonEmpty(raw.Host, current.Host)
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	current.User = firstNonEmpty(raw.User, current.User)
	current.Password = firstNonEmpty(raw.Password, current.Password)
	current.Name = firstNonEmpty(raw.Name, current.Name)
	current.Charset = firstNonEmpty(raw.Charset, current.Charset)
	if raw.ParseTime != nil {
		current.ParseTime = *raw.ParseTime
	}
	current.Loc = firstNonEmpty(raw.Loc, current.Loc)
	if raw.Params != nil {
		current.Params = raw.Params
	}
	if raw.MaxOpen > 0 {
		current.MaxOpen = raw.MaxOpen
	}
	if raw.MaxIdle > 0 {
		current.MaxIdle = raw.MaxIdle
	}
	return current
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawRedisConfig) RedisRuntimeConfig {
	current.Enable = strings.TrimSpace(raw.URL) != "" || strings.TrimSpace(raw.Host) != ""
	current.URL = firstNonEmpty(raw.URL, current.URL)
	current.Host = firstNonEmpty(raw.Host, current.Host)
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	current.Username = firstNonEmpty(raw.Username, current.Username)
	current.Password = firstNonEmpty(raw.Password, current.Password)
	if raw.DB != nil {
		current.DB = *raw.DB
	}
	if raw.TLS != nil {
		current.TLS = *raw.TLS
	}
	current.Scheme = firstNonEmpty(raw.Scheme, current.Scheme)
	if raw.Params != nil {
		current.Params = raw.Params
	}
	return current
}

func applyRawIngestionConfig(current IngestionConfig, raw rawIngestionConfig) (IngestionConfig, error) {
	if raw.Enabled != nil {
		current.Enabled = *raw.Enabled
	}
	current.FeedURL = firstNonEmpty(raw.FeedURL, current.FeedURL)
	if raw.JobCount != 0 {
		current.JobCount = raw.JobCount
	}
	if v := strings.TrimSpace(raw.Interval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return current, fmt.Errorf("invalid ingestion.interval %q: %w", v, err)
		}
		current.Interval = d
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return current, fmt.Errorf("invalid ingestion.timeout %q: %w", v, err)
		}
		current.Timeout = d
	}
	current.Category = firstNonEmpty(raw.Category, current.Category)
	current.ImageBaseURL = firstNonEmpty(raw.ImageBaseURL, current.ImageBaseURL)
	current.MetaDescription = firstNonEmpty(raw.MetaDescription, current.MetaDescription)
	return current, nil
}

func applyRawMailConfig(current MailConfig, raw rawMailConfig) MailConfig {
	if raw.Enable != nil {
		current.Enable = *raw.Enable
	}
	current.Host = firstNonEmpty(raw.Host, current.Host)
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	current.User = firstNonEmpty(raw.User, current.User)
	if raw.Pass != "" {
		current.Pass = raw.Pass
	}
	current.From = firstNonEmpty(raw.From, current.From)
	if raw.Secure != nil {
		current.Secure = *raw.Secure
	} else if current.Port == 465 {
		current.Secure = true
	}
	return current
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) StaticDir() string {
	if c == nil {
		return ResolveRuntimePath("", "static")
	}
	return ResolveRuntimePath(c.Paths.Static, "static")
}

// MaxUploadBytes is the multipart memory/size bound for uploads.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
