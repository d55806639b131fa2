package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	c := FromEnv()

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 5*time.Second, c.StoreTimeout())
	assert.Equal(t, time.Hour, c.JWTTTL())
	assert.Equal(t, 5*time.Minute, c.IdempotencyTTL())
	assert.Equal(t, 5, c.MaxCoApplicants)
	assert.Equal(t, 10, c.MaxAttachments)
	assert.Equal(t, 20, c.MaxUploadMB)
	assert.Equal(t, 587, c.SMTPPort)
	assert.False(t, c.SMTPEnabled())
	require.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("STORE_TIMEOUT_MS", "250")
	t.Setenv("MAX_CO_APPLICANTS", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("MAX_ATTACHMENTS", "lots") // ignored
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@example.com")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "bootstrap-pass")

	c := FromEnv()
	assert.Equal(t, 250*time.Millisecond, c.StoreTimeout())
	assert.Equal(t, 3, c.MaxCoApplicants)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, 10, c.MaxAttachments)
	assert.True(t, c.SMTPEnabled())
	assert.Equal(t, "root@example.com", c.BootstrapAdminEmail)
	assert.Equal(t, "bootstrap-pass", c.BootstrapAdminPassword)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing mysql host", func(c *Config) { c.MySQLHost = "" }},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "not-a-port" }},
		{"missing app port", func(c *Config) { c.AppPort = "" }},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }},
		{"zero store timeout", func(c *Config) { c.StoreTimeoutMS = 0 }},
		{"negative co-applicants", func(c *Config) { c.MaxCoApplicants = -1 }},
		{"zero workers", func(c *Config) { c.NotifyWorkers = 0 }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
		{"admin password without email", func(c *Config) { c.BootstrapAdminEmail = ""; c.BootstrapAdminPassword = "secret-pass" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", secret)
			c := FromEnv()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p@ss", MySQLHost: "db", MySQLPort: "3307", MySQLDB: "ideas"}
	dc, err := mysqldrv.ParseDSN(c.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "u", dc.User)
	assert.Equal(t, "p@ss", dc.Passwd)
	assert.Equal(t, "tcp", dc.Net)
	assert.Equal(t, "db:3307", dc.Addr)
	assert.Equal(t, "ideas", dc.DBName)
	assert.True(t, dc.ParseTime)
	assert.Equal(t, time.UTC, dc.Loc)
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("APP_PORT=9090\nJWT_SECRET="+secret+"\nMYSQL_DB=from_file\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("MYSQL_DB", "from_env")
	// variables loaded from the file must not leak into later tests
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("APP_PORT")
	os.Unsetenv("JWT_SECRET")

	c := Load()
	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, secret, c.JWTSecret)
	assert.Equal(t, "from_env", c.MySQLDB)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_PORT", "7070")
	assert.Equal(t, "7070", Load().AppPort)
}
