package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrMissingDBConfig = eris.New("missing mandatory database configuration")

// Config holds the application configuration parameters.
type Config struct {
	DB        DBConfig
	DumpFiles []string
	Log       LogConfig
	API       APIConfig

	v *viper.Viper
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig configures the read-only card API.
type APIConfig struct {
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Global constants for configuration keys
const (
	DBHostKey     = "DB_HOST"
	DBPortKey     = "DB_PORT"
	DBUserKey     = "DB_USER"
	DBPasswordKey = "DB_PASSWORD"
	DBNameKey     = "DB_NAME"
	DBTimeZoneKey = "DB_TIMEZONE"
	DumpFilesKey  = "dump_files" // list of scrape dumps in config.yaml
	LogKey        = "log"
	APIKey        = "api"
)

// Init reads config.yaml from the working directory (optional) and APP_*
// environment variables, and applies defaults.
func Init() (*Config, error) {
	v := viper.New()

	// --- File-based configuration ---
	v.SetConfigName("config") // name of config file (e.g., config.yaml)
	v.SetConfigType("yaml")
	v.AddConfigPath(".") // look in the current directory

	// Set up Viper to read environment variables
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(DBPortKey, "5432")
	v.SetDefault(DBTimeZoneKey, "Asia/Seoul")
	v.SetDefault(DumpFilesKey, []string{"all_cards_result.txt"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.timeout", "5s")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := &Config{v: v}
	cfg.load()
	if err := v.UnmarshalKey(LogKey, &cfg.Log); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal log")
	}
	if err := v.UnmarshalKey(APIKey, &cfg.API); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal api")
	}
	return cfg, nil
}

func (c *Config) load() {
	c.DB = DBConfig{
		Host:     c.v.GetString(DBHostKey),
		Port:     c.v.GetString(DBPortKey),
		User:     c.v.GetString(DBUserKey),
		Password: c.v.GetString(DBPasswordKey),
		Name:     c.v.GetString(DBNameKey),
		TimeZone: c.v.GetString(DBTimeZoneKey),
	}
	c.DumpFiles = c.v.GetStringSlice(DumpFilesKey)
}

// Validate checks the settings needed to reach the database.
func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return eris.Wrapf(ErrMissingDBConfig, "config: host=%q user=%q db=%q", c.DB.Host, c.DB.User, c.DB.Name)
	}
	return nil
}

// DSN constructs the PostgreSQL DSN from the individual settings.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port, c.DB.TimeZone,
	)
}

// Watch calls onChange with the re-read log settings whenever config.yaml
// changes on disk. It is a no-op when no config file was found.
func (c *Config) Watch(onChange func(LogConfig)) {
	if c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var lc LogConfig
		if err := c.v.UnmarshalKey(LogKey, &lc); err != nil {
			zap.L().Warn("ignoring invalid log config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		zap.L().Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(lc)
	})
	c.v.WatchConfig()
}

// InitLogger initializes the global zap logger and returns its level so it
// can be changed at runtime.
func InitLogger(cfg LogConfig) (zap.AtomicLevel, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.AtomicLevel{}, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.AtomicLevel{}, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return zapCfg.Level, nil
}
