package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.Redis.Enable)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Ingestion.Interval)
	assert.Equal(t, "jobs", cfg.Ingestion.Category)
	assert.Equal(t, 50, cfg.RateLimit.PerSecond)
	dsn, err := mysql.ParseDSN(cfg.DSN)
	require.NoError(t, err)
	assert.Equal(t, "root", dsn.User)
	assert.Equal(t, "password", dsn.Passwd)
	assert.Equal(t, "127.0.0.1:3306", dsn.Addr)
	assert.Equal(t, "jobboard", dsn.DBName)
	assert.True(t, dsn.ParseTime)
	assert.Equal(t, time.Local, dsn.Loc)
	assert.Equal(t, "utf8mb4", dsn.Params["charset"])
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
port: 8080
env: production
database:
  host: db
  user: cms
  password: secret
  name: board
redis:
  host: cache
  db: 2
site:
  url: https://jobs.example.com/
ingestion:
  enabled: true
  feed_url: https://feed.example.com/api/jobs
  job_count: 25
  interval: 5m
  image_base_url: https://cdn.example.com/
storage:
  driver: s3
  s3:
    bucket: uploads
    prefix: /cms/
mail:
  enable: true
  host: smtp.example.com
rate_limit:
  per_second: 0
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	dsn, err := mysql.ParseDSN(cfg.DSN)
	require.NoError(t, err)
	assert.Equal(t, "cms", dsn.User)
	assert.Equal(t, "secret", dsn.Passwd)
	assert.Equal(t, "db:3306", dsn.Addr)
	assert.Equal(t, "board", dsn.DBName)
	assert.True(t, cfg.Redis.Enable)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, "https://jobs.example.com", cfg.Site.URL)
	assert.True(t, cfg.Ingestion.Enabled)
	assert.Equal(t, 25, cfg.Ingestion.JobCount)
	assert.Equal(t, 5*time.Minute, cfg.Ingestion.Interval)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "cms", cfg.Storage.S3.Prefix)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, 0, cfg.RateLimit.PerSecond)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "bogus: 1\n",
		"port":              "port: 70000\n",
		"redis db":          "redis:\n  db: -1\n",
		"database loc":      "database:\n  loc: Mars/Olympus\n",
		"interval":          "ingestion:\n  interval: soon\n",
		"zero interval":     "ingestion:\n  interval: 0s\n",
		"job count":         "ingestion:\n  job_count: 500\n",
		"storage driver":    "storage:\n  driver: ftp\n",
		"s3 without bucket": "storage:\n  driver: s3\n",
		"mail without host": "mail:\n  enable: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\ndatabase:\n  dsn: u:p@tcp(h:1)/d\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "u:p@tcp(h:1)/d", cfg.DSN)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestResolveRuntimePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "static")
	assert.Equal(t, abs, ResolveRuntimePath(abs, "static"))
	assert.Equal(t, filepath.Join(ExecutableDir(), "logs"), ResolveRuntimePath("", "logs"))
}
