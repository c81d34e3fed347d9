package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"-"`
	RedisURL       string                `yaml:"-"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
	Site           SiteConfig            `yaml:"site"`
	Admin          AdminBootstrapConfig  `yaml:"admin"`
	Ingestion      IngestionConfig       `yaml:"ingestion"`
	Storage        StorageConfig         `yaml:"storage"`
	Mail           MailConfig            `yaml:"mail"`
	RateLimit      RateLimitConfig       `yaml:"rate_limit"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
	MaxOpen   int               `yaml:"max_open_conns"`
	MaxIdle   int               `yaml:"max_idle_conns"`
}

type RedisRuntimeConfig struct {
	// Enable is false when neither url nor host was configured; Redis is optional.
	Enable   bool              `yaml:"-"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type RuntimePathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type SiteConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// AdminBootstrapConfig seeds the first console account when none exists.
type AdminBootstrapConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type IngestionConfig struct {
	Enabled         bool          `yaml:"enabled"`
	FeedURL         string        `yaml:"feed_url"`
	JobCount        int           `yaml:"job_count"`
	Interval        time.Duration `yaml:"interval"`
	Timeout         time.Duration `yaml:"timeout"`
	Category        string        `yaml:"category"`
	ImageBaseURL    string        `yaml:"image_base_url"`
	MetaDescription string        `yaml:"meta_description"`
}

type StorageConfig struct {
	Driver string   `yaml:"driver"` // "local" | "s3"
	S3     S3Config `yaml:"s3"`
	// MaxUploadMB bounds multipart uploads.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
}

type MailConfig struct {
	Enable bool   `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	Secure bool   `yaml:"secure"`
}

type RateLimitConfig struct {
	// PerSecond is the per-IP budget for anonymous requests; 0 disables the limiter.
	PerSecond int `yaml:"per_second"`
}
