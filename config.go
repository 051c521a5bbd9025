package pdfrename

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shayanh/pdfrename/paper"
	"github.com/spf13/viper"
)

type RootConfig struct {
	Log    LogConfig    `mapstructure:"log"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Notion NotionConfig `mapstructure:"notion"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OpenAIConfig struct {
	APIKey          string        `mapstructure:"apiKey"`
	BaseURL         string        `mapstructure:"baseURL"`
	Model           string        `mapstructure:"model"`
	MaxTokens       int           `mapstructure:"maxTokens"`
	InitialInterval time.Duration `mapstructure:"initialInterval"`
	MaxInterval     time.Duration `mapstructure:"maxInterval"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"databaseID"`
}

func (c OpenAIConfig) CompletionOptions() paper.CompletionOptions {
	return paper.CompletionOptions{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Retry: paper.RetryConfig{
			InitialInterval: c.InitialInterval,
			MaxInterval:     c.MaxInterval,
		},
	}
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c NotionConfig) Enabled() bool {
	return c.Token != "" && c.DatabaseID != ""
}

func setDefaults(v *viper.Viper) {
	retry := paper.DefaultRetryConfig()
	v.SetDefault("log.level", "info")
	v.SetDefault("openai.apiKey", "")
	v.SetDefault("openai.baseURL", "")
	v.SetDefault("openai.model", paper.DefaultModel)
	v.SetDefault("openai.maxTokens", paper.DefaultMaxTokens)
	v.SetDefault("openai.initialInterval", retry.InitialInterval)
	v.SetDefault("openai.maxInterval", retry.MaxInterval)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Duration(0))
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.databaseID", "")
}

func configPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pdfrename"))
	}
	return paths
}

// ReadConfig reads pdfrename.{yaml,json,toml} from the working directory or
// ~/.config/pdfrename. The file is optional; PDFRENAME_* variables and
// OPENAI_API_KEY override it.
func ReadConfig() (RootConfig, error) {
	return readConfig(viper.New(), configPaths()...)
}

func readConfig(v *viper.Viper, paths ...string) (RootConfig, error) {
	setDefaults(v)
	v.SetConfigName("pdfrename")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("pdfrename")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai.apiKey", "OPENAI_API_KEY"); err != nil {
		return RootConfig{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return RootConfig{}, err
		}
	}
	var config RootConfig
	err := v.Unmarshal(&config)
	return config, err
}
