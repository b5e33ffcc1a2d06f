package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Fuel Control"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"fuelctl"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Budget struct {
		// VendorLimit is the per-period limit for the primary vendor. Zero
		// disables budget tracking.
		VendorLimit Money  `envconfig:"BUDGET_VENDOR_LIMIT" default:"1000.00"`
		VendorName  string `envconfig:"BUDGET_VENDOR_NAME" default:"Ipiranga"`
	}

	Period struct {
		Timezone string `envconfig:"PERIOD_TIMEZONE" default:"UTC"`
	}

	Dashboard struct {
		RecentLimit int `envconfig:"DASHBOARD_RECENT_LIMIT" default:"10"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"168h"`
	}

	Alert struct {
		Store string `envconfig:"ALERT_STORE" default:"postgres"`
	}

	Local struct {
		StatePath string `envconfig:"LOCAL_STATE_PATH"`
	}
}

// Money is an amount in cents decoded from a decimal string such as "1000.00".
type Money int64

func (m *Money) Decode(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", value, err)
	}

	if d.IsNegative() {
		return fmt.Errorf("invalid money value %q: negative", value)
	}

	*m = Money(d.Shift(2).Round(0).IntPart())

	return nil
}

func (m Money) Cents() int64 {
	return int64(m)
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location is the timezone periods are resolved in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Period.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Period.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Alert.Store != "postgres" && cfg.Alert.Store != "memory" {
		return nil, fmt.Errorf("invalid ALERT_STORE %q: want postgres or memory", cfg.Alert.Store)
	}

	if cfg.Local.StatePath == "" {
		path, err := defaultStatePath()
		if err != nil {
			return nil, err
		}

		cfg.Local.StatePath = path
	}

	return &cfg, nil
}
