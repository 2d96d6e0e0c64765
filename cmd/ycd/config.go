package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	ycd "github.com/rubpy/ycd-go"
	"github.com/rubpy/ycd-go/binarystore"
)

//////////////////////////////////////////////////

const envPrefix = "YCD"

type Config struct {
	ycd.Credential `mapstructure:",squash"`

	ConfigFile string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log-level"`

	PollInterval   time.Duration `mapstructure:"poll-interval"`
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout int           `mapstructure:"request-timeout"`
	ContinueOnFail bool          `mapstructure:"continue-on-fail"`

	ContentType  string `mapstructure:"content-type"`
	ReturnFormat string `mapstructure:"return-format"`
	FileFormat   string `mapstructure:"file-format"`
	Limit        int    `mapstructure:"limit"`
	All          bool   `mapstructure:"all"`

	Out   string `mapstructure:"out"`
	Store string `mapstructure:"store"`

	binarystore.S3Config `mapstructure:",squash"`

	AzureConnectionString string `mapstructure:"azure-connection-string"`
	AzureContainer        string `mapstructure:"azure-container"`

	YouTubeAPIKey string `mapstructure:"youtube-api-key"`
	MetricsAddr   string `mapstructure:"metrics-addr"`

	WatchInterval time.Duration `mapstructure:"watch-interval"`
}

func addCommonFlags(fset *pflag.FlagSet) {
	fset.String("config", "", "config file (yaml, json or toml)")
	fset.String("log-level", "info", "log level (debug, info, warn, error)")
	fset.String("api-key", "", "YouTube Comments Downloader API key")
	fset.String("base-url", ycd.DefaultBaseURL, "API base URL")
	fset.Bool("ignore-ssl-issues", false, "skip TLS certificate verification")
	fset.Int("request-timeout", ycd.DefaultSettings.RequestTimeoutSeconds, "per-request timeout in seconds")
}

func addOutputFlags(fset *pflag.FlagSet) {
	fset.String("out", ".", "directory binary results are written to")
	fset.String("store", "", "binary data store instead of --out (fs, s3, azblob)")
	fset.String("s3-bucket", "", "S3 bucket")
	fset.String("s3-prefix", "", "S3 key prefix")
	fset.String("s3-region", "", "S3 region")
	fset.String("s3-endpoint", "", "custom S3 endpoint")
	fset.String("s3-access-key-id", "", "S3 access key ID")
	fset.String("s3-secret-access-key", "", "S3 secret access key")
	fset.String("azure-connection-string", "", "Azure Storage connection string")
	fset.String("azure-container", "", "Azure Blob container")
}

func addExecuteFlags(fset *pflag.FlagSet) {
	fset.Bool("continue-on-fail", false, "report failing items instead of aborting")
}

var NoConfigFile = errors.New("config file not found")

// loadConfig merges, by increasing priority: defaults, config file, .env and
// process environment (YCD_*), flags.
func loadConfig(fset *pflag.FlagSet) (cfg *Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err = v.BindPFlags(fset); err != nil {
		return nil, fmt.Errorf("viper.BindPFlags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)

		if err = v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", NoConfigFile, file)
			}

			return nil, fmt.Errorf("viper.ReadInConfig: %w", err)
		}
	}

	cfg = &Config{}
	if err = v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal: %w", err)
	}

	return cfg, nil
}

func (cfg *Config) logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (cfg *Config) settings() ycd.Settings {
	settings := ycd.DefaultSettings
	if cfg.PollInterval > 0 {
		settings.PollInterval = cfg.PollInterval
	}
	if cfg.Concurrency > 0 {
		settings.Concurrency = cfg.Concurrency
	}
	if cfg.RequestTimeout > 0 {
		settings.RequestTimeoutSeconds = cfg.RequestTimeout
	}

	return settings
}
