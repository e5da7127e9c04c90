package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Inventory InventoryConfig
	Invoice   InvoiceConfig
	Report    ReportConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	Expiration  time.Duration
	IdleTimeout time.Duration // heartbeat window before a session counts as idle
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type InventoryConfig struct {
	LowStockThreshold int
	DefaultVATPercent string
}

// InvoiceConfig is printed in the header of every invoice PDF
type InvoiceConfig struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	Currency       string
}

// ReportConfig shapes the CSV exports. Spreadsheets in comma-decimal
// locales expect ';' and a byte order mark.
type ReportConfig struct {
	Delimiter string
	BOM       bool
}

// DelimiterRune returns the configured delimiter. Validate guarantees it
// is a single rune.
func (r ReportConfig) DelimiterRune() rune {
	d, _ := utf8.DecodeRuneInString(r.Delimiter)
	return d
}

// Load reads configuration with this precedence:
// environment (a .env file is loaded into it first) > config.yaml > defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain names kept from earlier deployments.
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("database.host", "DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "DATABASE_NAME", "DB_NAME")

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			TimeZone:        v.GetString("database.timezone"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("jwt.secret"),
			Issuer:      v.GetString("jwt.issuer"),
			Expiration:  v.GetDuration("jwt.expiration"),
			IdleTimeout: v.GetDuration("jwt.idle_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: v.GetInt("inventory.low_stock_threshold"),
			DefaultVATPercent: v.GetString("inventory.default_vat_percent"),
		},
		Invoice: InvoiceConfig{
			CompanyName:    v.GetString("invoice.company_name"),
			CompanyAddress: v.GetString("invoice.company_address"),
			CompanyPhone:   v.GetString("invoice.company_phone"),
			Currency:       v.GetString("invoice.currency"),
		},
		Report: ReportConfig{
			Delimiter: v.GetString("report.delimiter"),
			BOM:       v.GetBool("report.bom"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Auto Parts Inventory")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "autoparts-inventory")
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("jwt.idle_timeout", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("inventory.low_stock_threshold", 10)
	v.SetDefault("inventory.default_vat_percent", "0")

	v.SetDefault("invoice.company_name", "Auto Parts Store")
	v.SetDefault("invoice.currency", "USD")

	v.SetDefault("report.delimiter", ",")
	v.SetDefault("report.bom", false)
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.App.Env == "production" && c.JWT.Secret == "change-me-in-production" {
		return errors.New("jwt secret must be set in production")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt expiration must be positive")
	}
	if c.Inventory.LowStockThreshold < 0 {
		return errors.New("low stock threshold cannot be negative")
	}
	if d := c.Report.Delimiter; utf8.RuneCountInString(d) != 1 || strings.ContainsAny(d, "\"\r\n") || d == string(utf8.RuneError) {
		return fmt.Errorf("report delimiter must be a single character, got %q", d)
	}
	return nil
}

// IsProduction returns true in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// PostgresDSN builds a DSN from the discrete fields when no DSN is given
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}
