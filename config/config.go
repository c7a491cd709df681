package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CIDgravity/snakelet"
	"github.com/joho/godotenv"
)

// config structure
type Config struct {
	API       APIConfig       `mapstructure:"API"`
	Github    GithubConfig    `mapstructure:"GITHUB"`
	Trends    TrendsConfig    `mapstructure:"TRENDS"`
	Summarize SummarizeConfig `mapstructure:"SUMMARIZE"`
	Logs      LogsConfig      `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
}

type GithubConfig struct {
	Token string `mapstructure:"Token"`
}

type TrendsConfig struct {
	FreshnessWindowMinutes  int    `mapstructure:"FreshnessWindowMinutes"`
	FetchWindowDays         int    `mapstructure:"FetchWindowDays"`
	MaxResults              int    `mapstructure:"MaxResults"`
	SearchTopic             string `mapstructure:"SearchTopic"`
	LoadLanguages           bool   `mapstructure:"LoadLanguages"`
	MaxParallelTasksAllowed int    `mapstructure:"MaxParallelTasksAllowed"`
}

type SummarizeConfig struct {
	RequestTimeoutSeconds int `mapstructure:"RequestTimeoutSeconds"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJson bool   `mapstructure:"OutputLogsAsJson"`
}

// Load read the config file next to the binary (or in the working directory)
// and apply environment overrides for secrets loaded with godotenv
func Load() (*Config, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return nil, err
	}

	// check config file exists
	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(dir + "/config/config.toml"); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); errors.Is(err, os.ErrNotExist) {
			return nil, err
		} else {
			configFilePath = "config/config.toml"
		}
	}

	// load default and config file content
	cfg := GetDefault()
	_, err = snakelet.InitAndLoad(cfg, configFilePath)

	if err != nil {
		return nil, err
	}

	// the github token is a secret, so it lives in the environment rather than the config file
	_ = godotenv.Load()

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}

	return cfg, nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
		},
		Github: GithubConfig{
			Token: "",
		},
		Trends: TrendsConfig{
			FreshnessWindowMinutes:  5,
			FetchWindowDays:         7,
			MaxResults:              30,
			SearchTopic:             "ai",
			LoadLanguages:           false,
			MaxParallelTasksAllowed: 8,
		},
		Summarize: SummarizeConfig{
			RequestTimeoutSeconds: 30,
		},
		Logs: LogsConfig{
			Level:            "info",
			OutputLogsAsJson: false,
		},
	}
}
