package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvFile is loaded when present and no explicit env file is given
const DefaultEnvFile = ".env"

// envKeys maps the environment variables the service reads onto koanf paths.
// Anything not listed is ignored.
var envKeys = map[string]string{
	"PORT":             "server.port",
	"BIND":             "server.bind",
	"ALLOW_SUBNET":     "server.allow_subnet",
	"DB_DRIVER":        "database.driver",
	"DB_PATH":          "database.path",
	"MYSQL_HOST":       "mysql.host",
	"MYSQL_PORT":       "mysql.port",
	"MYSQL_DATABASE":   "mysql.database",
	"MYSQL_USER":       "mysql.user",
	"MYSQL_USERNAME":   "mysql.username",
	"MYSQL_PASSWORD":   "mysql.password",
	"BOT_TOKEN":        "discord.bot_token",
	"GUILD_ID":         "discord.guild_id",
	"MEMBER_CACHE_TTL": "discord.cache_ttl",
	"LOG_LEVEL":        "log.level",
	"LOG_FILE":         "log.file",
	"SITE_URL":         "site.base_url",
	"DATA_IMPORT_DIR":  "import.dir",
	"REQUEST_TIMEOUT":  "timeouts.request",
	"QUERY_TIMEOUT":    "timeouts.query",
	"HTTP_TIMEOUT":     "timeouts.http_client",
}

// Config is the root configuration for the service
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	MySQL    MySQLConfig    `koanf:"mysql"`
	Discord  DiscordConfig  `koanf:"discord"`
	Log      LogConfig      `koanf:"log"`
	Site     SiteConfig     `koanf:"site"`
	Import   ImportConfig   `koanf:"import"`
	Timeouts TimeoutConfig  `koanf:"timeouts"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port        int    `koanf:"port" validate:"min=0,max=65535"`
	Bind        string `koanf:"bind" validate:"omitempty,ip"`
	AllowSubnet string `koanf:"allow_subnet" validate:"omitempty,cidr"`
}

// DatabaseConfig selects the store backend
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=mysql sqlite"`
	// Path is the SQLite database file, used when Driver is sqlite
	Path string `koanf:"path" validate:"required_if=Driver sqlite"`
}

// MySQLConfig holds the MySQL connection parameters
type MySQLConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	Database string `koanf:"database" validate:"required"`
	User     string `koanf:"user"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// EffectiveUser returns MYSQL_USER, falling back to MYSQL_USERNAME, then root
func (c MySQLConfig) EffectiveUser() string {
	if c.User != "" {
		return c.User
	}
	if c.Username != "" {
		return c.Username
	}
	return "root"
}

// DiscordConfig holds the bot credentials used for the member count
type DiscordConfig struct {
	BotToken string        `koanf:"bot_token"`
	GuildID  string        `koanf:"guild_id"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gt=0"`
}

// Configured reports whether both the token and guild are set
func (c DiscordConfig) Configured() bool {
	return c.BotToken != "" && c.GuildID != ""
}

// LogConfig holds log level and file rotation settings
type LogConfig struct {
	Level      string `koanf:"level" validate:"omitempty,oneof=info debug trace"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"min=0"`
	Compress   bool   `koanf:"compress"`
}

// SiteConfig holds public site settings
type SiteConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// ImportConfig holds importer settings
type ImportConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3000,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			Path:   "./eduvance.db",
		},
		MySQL: MySQLConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "eduvance_db",
		},
		Discord: DiscordConfig{
			CacheTTL: 300 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "eduvance.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Site: SiteConfig{
			BaseURL: "https://eduvance.au",
		},
		Import: ImportConfig{
			Dir: "./data-import",
		},
		Timeouts: *DefaultTimeoutConfig(),
	}
}

// Load reads configuration from the environment on top of the defaults.
// envFile is loaded first when set; otherwise .env is loaded if it exists.
// Variables already present in the environment win over file values.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}

	if _, err := os.Stat(DefaultEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", DefaultEnvFile, err)
	}
	if err := godotenv.Load(DefaultEnvFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}
	return nil
}
