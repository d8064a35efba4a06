package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/nikbrunner/bmai/internal/linkcheck"
	"github.com/nikbrunner/bmai/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the process configuration. Product settings (language, AI,
// WebDAV) live in the stored settings document instead.
type Config struct {
	DataDir  string
	Storage  string
	LogLevel logrus.Level
	Check    CheckConfig
}

// CheckConfig tunes `bmai check`.
type CheckConfig struct {
	Concurrency    int
	Timeout        time.Duration
	ExcludeDomains []string
}

// newViper reads config.yaml from cfgFile or ~/.config/bmai and the BMAI_*
// environment. A missing file is fine.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	defaultDir, err := storage.DefaultDataDir()
	if err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(defaultDir)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BMAI")
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaultDir)
	v.SetDefault("storage", storage.BackendJSON)
	v.SetDefault("log_level", "warn")
	v.SetDefault("check.concurrency", linkcheck.DefaultConcurrency)
	v.SetDefault("check.timeout", linkcheck.DefaultTimeout)
	v.SetDefault("check.exclude_domains", []string{"github.com", "gitlab.com"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return v, nil
}

// loadConfig decodes the effective configuration.
func loadConfig(v *viper.Viper) (Config, error) {
	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, err
	}
	dataDir, err := filepath.Abs(v.GetString("data_dir"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		DataDir:  dataDir,
		Storage:  v.GetString("storage"),
		LogLevel: level,
		Check: CheckConfig{
			Concurrency:    v.GetInt("check.concurrency"),
			Timeout:        v.GetDuration("check.timeout"),
			ExcludeDomains: v.GetStringSlice("check.exclude_domains"),
		},
	}, nil
}
