package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const minJWTSecretLen = 32

type Config struct {
	AppPort string
	AppEnv  string

	LogLevel  string
	LogFormat string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret     string
	JWTTTLMinutes int

	StoreTimeoutMS  int
	MaxCoApplicants int
	MaxAttachments  int
	MaxUploadMB     int

	UploadDir         string
	PublicFileBaseURL string

	NotifyChannel   string
	NotifyQueueSize int
	NotifyWorkers   int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	ShutdownTimeoutSecs int

	// promoted (or created) as ADMIN on start
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// getint keeps the default when the variable is unset or not a number.
func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logrus.WithField("key", k).Warnf("ignoring non-numeric value %q", v)
	}
	return d
}

// Load reads a local .env first (variables already set win), then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug(".env not loaded")
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "development"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "innovation"),
		MySQLUser: getenv("MYSQL_USER", "innovation"),
		MySQLPass: getenv("MYSQL_PASS", "innovation"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getint("JWT_TTL_MINUTES", 60),

		StoreTimeoutMS:  getint("STORE_TIMEOUT_MS", 5000),
		MaxCoApplicants: getint("MAX_CO_APPLICANTS", 5),
		MaxAttachments:  getint("MAX_ATTACHMENTS", 10),
		MaxUploadMB:     getint("MAX_UPLOAD_MB", 20),

		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		PublicFileBaseURL: getenv("PUBLIC_FILE_BASE_URL", "/files"),

		NotifyChannel:   getenv("NOTIFY_CHANNEL", "innovation:notifications"),
		NotifyQueueSize: getint("NOTIFY_QUEUE_SIZE", 256),
		NotifyWorkers:   getint("NOTIFY_WORKERS", 2),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getint("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getenv("SMTP_FROM", "no-reply@innovation.local"),

		ShutdownTimeoutSecs: getint("SHUTDOWN_TIMEOUT_SECONDS", 10),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	}
	positive := []struct {
		key string
		v   int
	}{
		{"JWT_TTL_MINUTES", c.JWTTTLMinutes},
		{"IDEMPOTENCY_TTL_SECONDS", c.IdempTTLSecs},
		{"STORE_TIMEOUT_MS", c.StoreTimeoutMS},
		{"MAX_CO_APPLICANTS", c.MaxCoApplicants},
		{"MAX_ATTACHMENTS", c.MaxAttachments},
		{"MAX_UPLOAD_MB", c.MaxUploadMB},
		{"NOTIFY_QUEUE_SIZE", c.NotifyQueueSize},
		{"NOTIFY_WORKERS", c.NotifyWorkers},
		{"SHUTDOWN_TIMEOUT_SECONDS", c.ShutdownTimeoutSecs},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.key, p.v)
		}
	}
	if c.BootstrapAdminPassword != "" && c.BootstrapAdminEmail == "" {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD is set without BOOTSTRAP_ADMIN_EMAIL")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	dc := mysqldrv.NewConfig()
	dc.User = c.MySQLUser
	dc.Passwd = c.MySQLPass
	dc.Net = "tcp"
	dc.Addr = c.mysqlAddr()
	dc.DBName = c.MySQLDB
	dc.ParseTime = true // needed for DATETIME
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

func (c *Config) StoreTimeout() time.Duration { return time.Duration(c.StoreTimeoutMS) * time.Millisecond }
func (c *Config) JWTTTL() time.Duration       { return time.Duration(c.JWTTTLMinutes) * time.Minute }
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}

// SMTPEnabled reports whether the e-mail sink should be wired.
func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" }
