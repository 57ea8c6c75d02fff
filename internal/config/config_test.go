package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/token"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.AppName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, token.DefaultSalt, cfg.OrderTokenSalt)
	assert.Equal(t, token.DefaultMinLength, cfg.OrderTokenMinLength)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, BackendREST, cfg.OrderBackend)
	assert.False(t, cfg.UsesMySQL())

	status, err := cfg.InitialStatus()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, status)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CHECKOUT_INITIAL_STATUS", "created")
	t.Setenv("CART_CACHE_TTL", "5m")
	t.Setenv("ORDER_BACKEND", "mysql")
	t.Setenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.CartCacheTTL)
	assert.True(t, cfg.UsesMySQL())
	status, err := cfg.InitialStatus()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCreated, status)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("APP_NAME=storefront-test\nEVENT_WORKERS=2\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "storefront-test", cfg.AppName)
	assert.Equal(t, 2, cfg.EventWorkers)
}

func TestValidate(t *testing.T) {
	base, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty salt", func(c *Config) { c.OrderTokenSalt = "" }},
		{"zero min length", func(c *Config) { c.OrderTokenMinLength = 0 }},
		{"shipped initial status", func(c *Config) { c.CheckoutInitialStatus = "SHIPPED" }},
		{"unknown backend", func(c *Config) { c.SalesBackend = "mongo" }},
		{"mysql without dsn", func(c *Config) { c.SalesBackend = BackendMySQL; c.MySQLDSN = ""; c.JWTSecret = "s" }},
		{"mysql without jwt secret", func(c *Config) {
			c.OrderBackend = BackendMySQL
			c.MySQLDSN = "root@tcp(db:3306)/shop"
			c.JWTSecret = ""
		}},
		{"mysql with malformed dsn", func(c *Config) { c.OrderBackend = BackendMySQL; c.MySQLDSN = "root@tcp(db:3306"; c.JWTSecret = "s" }},
		{"no workers", func(c *Config) { c.EventWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMySQLConnDSN_ForcesTimeParsing(t *testing.T) {
	cfg := Config{MySQLDSN: "app:pw@tcp(db:3306)/storefront?charset=utf8mb4"}

	dsn, err := cfg.MySQLConnDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.Equal(t, "storefront", parsed.DBName)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])

	cfg.MySQLDSN = "app:pw@tcp(db:3306)/storefront?parseTime=false&loc=Local"
	dsn, err = cfg.MySQLConnDSN()
	require.NoError(t, err)
	parsed, err = mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestValidate_MySQLWithSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.OrderBackend = BackendMySQL
	cfg.MySQLDSN = "app:pw@tcp(db:3306)/storefront"
	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}
