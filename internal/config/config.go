package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/token"
)

const (
	BackendREST  = "rest"
	BackendMySQL = "mysql"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"` // e.g., "debug", "info", "warn", "error"

	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	GRPCAddr string `mapstructure:"GRPC_ADDR"`

	// Owning storefront API
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`
	JWTSecret  string        `mapstructure:"JWT_SECRET"`

	// Redis configuration
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Order and sales persistence: "rest" or "mysql"
	OrderBackend string `mapstructure:"ORDER_BACKEND"`
	SalesBackend string `mapstructure:"SALES_BACKEND"`
	MySQLDSN     string `mapstructure:"MYSQL_DSN"`

	// RabbitMQ configuration; events are only logged when the URL is empty
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventExchange  string `mapstructure:"EVENT_EXCHANGE"`
	EventWorkers   int    `mapstructure:"EVENT_WORKERS"`
	EventQueueSize int    `mapstructure:"EVENT_QUEUE_SIZE"`

	OrderTokenSalt      string `mapstructure:"ORDER_TOKEN_SALT"`
	OrderTokenMinLength int    `mapstructure:"ORDER_TOKEN_MIN_LENGTH"`

	CheckoutInitialStatus string        `mapstructure:"CHECKOUT_INITIAL_STATUS"`
	CartCacheTTL          time.Duration `mapstructure:"CART_CACHE_TTL"`
	CheckoutLockTTL       time.Duration `mapstructure:"CHECKOUT_LOCK_TTL"`
	FinalizedMarkerTTL    time.Duration `mapstructure:"FINALIZED_MARKER_TTL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "storefront")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":50051")

	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("API_TIMEOUT", 10*time.Second)
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ORDER_BACKEND", BackendREST)
	v.SetDefault("SALES_BACKEND", BackendREST)
	v.SetDefault("MYSQL_DSN", "")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENT_EXCHANGE", "storefront.events")
	v.SetDefault("EVENT_WORKERS", 4)
	v.SetDefault("EVENT_QUEUE_SIZE", 1024)

	v.SetDefault("ORDER_TOKEN_SALT", token.DefaultSalt)
	v.SetDefault("ORDER_TOKEN_MIN_LENGTH", token.DefaultMinLength)

	v.SetDefault("CHECKOUT_INITIAL_STATUS", string(domain.OrderStatusPending))
	v.SetDefault("CART_CACHE_TTL", 30*time.Minute)
	v.SetDefault("CHECKOUT_LOCK_TTL", 30*time.Second)
	v.SetDefault("FINALIZED_MARKER_TTL", 7*24*time.Hour)
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Msg("No config file found, using environment variables and defaults.")
		} else {
			log.Error().Err(err).Msg("Error reading config file")
			return
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	err = config.Validate()
	return
}

func (c Config) Validate() error {
	var errs []error
	if c.OrderTokenSalt == "" {
		errs = append(errs, errors.New("ORDER_TOKEN_SALT must not be empty"))
	}
	if c.OrderTokenMinLength <= 0 {
		errs = append(errs, errors.New("ORDER_TOKEN_MIN_LENGTH must be positive"))
	}
	if _, err := c.InitialStatus(); err != nil {
		errs = append(errs, err)
	}
	for name, backend := range map[string]string{"ORDER_BACKEND": c.OrderBackend, "SALES_BACKEND": c.SalesBackend} {
		if backend != BackendREST && backend != BackendMySQL {
			errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", name, BackendREST, BackendMySQL, backend))
		}
	}
	if c.UsesMySQL() {
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is required for the mysql backend"))
		} else if _, err := c.MySQLConnDSN(); err != nil {
			errs = append(errs, err)
		}
		// The mysql backend authorizes locally, so tokens must be verifiable here.
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required for the mysql backend"))
		}
	}
	if c.EventWorkers < 1 {
		errs = append(errs, errors.New("EVENT_WORKERS must be at least 1"))
	}
	return errors.Join(errs...)
}

// InitialStatus is the status new orders are created with.
func (c Config) InitialStatus() (domain.OrderStatus, error) {
	status, err := domain.ParseOrderStatus(c.CheckoutInitialStatus)
	if err != nil || (status != domain.OrderStatusCreated && status != domain.OrderStatusPending) {
		return "", fmt.Errorf("CHECKOUT_INITIAL_STATUS must be CREATED or PENDING, got %q", c.CheckoutInitialStatus)
	}
	return status, nil
}

func (c Config) UsesMySQL() bool {
	return c.OrderBackend == BackendMySQL || c.SalesBackend == BackendMySQL
}

// MySQLConnDSN returns MYSQL_DSN with the options the mysql backend relies
// on: DATETIME columns scan into time.Time and are read back as UTC.
func (c Config) MySQLConnDSN() (string, error) {
	dsn, err := mysql.ParseDSN(c.MySQLDSN)
	if err != nil {
		return "", fmt.Errorf("MYSQL_DSN: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN(), nil
}
