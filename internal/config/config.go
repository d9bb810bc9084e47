package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Redis        RedisConfig
	Printer      PrinterConfig
	SalesHistory SalesHistoryConfig
}

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	Debug     bool
	Timezone  string
	WeekStart time.Weekday
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// RedisConfig configures the domain event bus. An empty URL selects the
// in-process bus.
type RedisConfig struct {
	URL          string
	EventChannel string
}

type PrinterConfig struct {
	Type         string
	USBPath      string
	Address      string
	Width        int
	SpoolDir     string
	CleanupDelay time.Duration
}

type SalesHistoryConfig struct {
	FetchLimit      int
	Debounce        time.Duration
	AutoRefresh     bool
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	SessionTTL      time.Duration
	SweepInterval   time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "salesdesk-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("APP_WEEK_START", 0) // Sunday
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "salesdesk")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "salesdesk-auth")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_EVENT_CHANNEL", "salesdesk:transaction.recorded")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("PRINTER_SPOOL_DIR", "./storage/spool")
	viper.SetDefault("PRINTER_CLEANUP_DELAY_MS", 1000)
	viper.SetDefault("SALES_FETCH_LIMIT", 1000)
	viper.SetDefault("SALES_SEARCH_DEBOUNCE_MS", 300)
	viper.SetDefault("SALES_AUTO_REFRESH", true)
	viper.SetDefault("SALES_REFRESH_INTERVAL_SECONDS", 300)
	viper.SetDefault("SALES_FETCH_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SALES_SESSION_TTL_MINUTES", 30)
	viper.SetDefault("SALES_SESSION_SWEEP_SECONDS", 60)

	return &Config{
		App: AppConfig{
			Name:      viper.GetString("APP_NAME"),
			Env:       viper.GetString("APP_ENV"),
			Port:      viper.GetString("APP_PORT"),
			Debug:     viper.GetBool("APP_DEBUG"),
			Timezone:  viper.GetString("APP_TIMEZONE"),
			WeekStart: time.Weekday(viper.GetInt("APP_WEEK_START") % 7),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			URL:          viper.GetString("REDIS_URL"),
			EventChannel: viper.GetString("REDIS_EVENT_CHANNEL"),
		},
		Printer: PrinterConfig{
			Type:         viper.GetString("PRINTER_TYPE"),
			USBPath:      viper.GetString("PRINTER_USB_PATH"),
			Address:      viper.GetString("PRINTER_ADDRESS"),
			Width:        viper.GetInt("PRINTER_WIDTH"),
			SpoolDir:     viper.GetString("PRINTER_SPOOL_DIR"),
			CleanupDelay: time.Duration(viper.GetInt("PRINTER_CLEANUP_DELAY_MS")) * time.Millisecond,
		},
		SalesHistory: SalesHistoryConfig{
			FetchLimit:      viper.GetInt("SALES_FETCH_LIMIT"),
			Debounce:        time.Duration(viper.GetInt("SALES_SEARCH_DEBOUNCE_MS")) * time.Millisecond,
			AutoRefresh:     viper.GetBool("SALES_AUTO_REFRESH"),
			RefreshInterval: time.Duration(viper.GetInt("SALES_REFRESH_INTERVAL_SECONDS")) * time.Second,
			FetchTimeout:    time.Duration(viper.GetInt("SALES_FETCH_TIMEOUT_SECONDS")) * time.Second,
			SessionTTL:      time.Duration(viper.GetInt("SALES_SESSION_TTL_MINUTES")) * time.Minute,
			SweepInterval:   time.Duration(viper.GetInt("SALES_SESSION_SWEEP_SECONDS")) * time.Second,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves the store timezone, falling back to the host zone.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("unknown timezone, using local time")
		return time.Local
	}
	return loc
}
