package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Mongo     Mongo     `mapstructure:"mongo"`
	Scrape    Scrape    `mapstructure:"scrape"`
	Suggest   Suggest   `mapstructure:"suggest"`
	Retention Retention `mapstructure:"retention"`
	Scheduler Scheduler `mapstructure:"scheduler"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds LLM provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Temperature    float32       `mapstructure:"temperature"`
}

// Mongo holds document store configuration
type Mongo struct {
	URI         string        `mapstructure:"uri"`
	Database    string        `mapstructure:"database"`
	AppName     string        `mapstructure:"app_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
	VectorIndex string        `mapstructure:"vector_index"`
}

// Scrape holds scraper configuration
type Scrape struct {
	NewsAPI NewsAPIConfig `mapstructure:"newsapi"`
	Reddit  RedditConfig  `mapstructure:"reddit"`
}

// NewsAPIConfig holds NewsAPI scraper configuration
type NewsAPIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	PageSize int    `mapstructure:"page_size"`
	MaxPages int    `mapstructure:"max_pages"`
	Country  string `mapstructure:"country"`
	Language string `mapstructure:"language"`
}

// RedditConfig holds Reddit listing scraper configuration
type RedditConfig struct {
	UserAgent    string `mapstructure:"user_agent"`
	PostLimit    int    `mapstructure:"post_limit"`
	CommentLimit int    `mapstructure:"comment_limit"`
}

// Suggest holds suggestion pipeline configuration
type Suggest struct {
	ResultLimit     int  `mapstructure:"result_limit"`
	Diversity       bool `mapstructure:"diversity"`
	MaxSentences    int  `mapstructure:"max_sentences"`
	MaxComments     int  `mapstructure:"max_comments"`
	SnippetBudget   int  `mapstructure:"snippet_budget"`
	EmbeddingBatch  int  `mapstructure:"embedding_batch"`
	EmbeddingBudget int  `mapstructure:"embedding_budget"`
}

// Retention holds collection retention configuration
type Retention struct {
	MaxAge   time.Duration `mapstructure:"max_age"`
	MaxDocs  int64         `mapstructure:"max_docs"`
}

// Scheduler holds daily job schedule configuration (HH:MM, UTC)
type Scheduler struct {
	NewsScrape   string `mapstructure:"news_scrape"`
	RedditScrape string `mapstructure:"reddit_scrape"`
	Embeddings   string `mapstructure:"embeddings"`
	Suggestions  string `mapstructure:"suggestions"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".curator")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("mongo.database", "curator")
	viper.SetDefault("mongo.app_name", "curator")
	viper.SetDefault("mongo.timeout", "15s")
	viper.SetDefault("mongo.vector_index", "vector_index")

	viper.SetDefault("scrape.newsapi.page_size", 20)
	viper.SetDefault("scrape.newsapi.max_pages", 2)
	viper.SetDefault("scrape.newsapi.country", "us")
	viper.SetDefault("scrape.newsapi.language", "en")
	viper.SetDefault("scrape.reddit.user_agent", "curator/1.0")
	viper.SetDefault("scrape.reddit.post_limit", 15)
	viper.SetDefault("scrape.reddit.comment_limit", 5)

	viper.SetDefault("suggest.result_limit", 5)
	viper.SetDefault("suggest.diversity", true)
	viper.SetDefault("suggest.max_sentences", 2)
	viper.SetDefault("suggest.max_comments", 3)
	viper.SetDefault("suggest.snippet_budget", 2000)
	viper.SetDefault("suggest.embedding_batch", 10)
	viper.SetDefault("suggest.embedding_budget", 2000)

	viper.SetDefault("retention.max_age", "336h") // 14 days
	viper.SetDefault("retention.max_docs", 100)

	viper.SetDefault("scheduler.news_scrape", "04:00")
	viper.SetDefault("scheduler.reddit_scrape", "04:15")
	viper.SetDefault("scheduler.embeddings", "04:30")
	viper.SetDefault("scheduler.suggestions", "04:45")
}

func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY"})
	bindEnvKeys("mongo.uri", []string{"MONGODB_URI"})
	bindEnvKeys("mongo.database", []string{"DATABASE_NAME"})
	bindEnvKeys("scrape.newsapi.api_key", []string{"NEWSAPI_KEY"})
	bindEnvKeys("scrape.reddit.user_agent", []string{"REDDIT_USER_AGENT"})
}

// bindEnvKeys binds multiple environment variable names to a single viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(viperKey, envKey); err != nil {
			fmt.Printf("Warning: Failed to bind %s to %s: %v\n", envKey, viperKey, err)
		}
	}
}

func validateConfig(config *Config) error {
	if config.Suggest.ResultLimit <= 0 {
		return fmt.Errorf("suggest.result_limit must be positive, got %d", config.Suggest.ResultLimit)
	}
	if config.Retention.MaxDocs < 0 {
		return fmt.Errorf("retention.max_docs must not be negative, got %d", config.Retention.MaxDocs)
	}
	return nil
}

// RequireProviders checks that the provider credentials needed by the
// pipeline are present. Missing credentials are the only fatal-at-startup
// configuration error.
func RequireProviders(config *Config) error {
	if config.AI.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}
	if config.Mongo.URI == "" {
		return fmt.Errorf("mongodb URI is required. Set MONGODB_URI or mongo.uri in the config file")
	}
	return nil
}

// Convenience getters for commonly used config sections
func GetGeminiConfig() GeminiConfig { return Get().AI.Gemini }
func GetMongo() Mongo               { return Get().Mongo }
func GetScrape() Scrape             { return Get().Scrape }
func GetSuggest() Suggest           { return Get().Suggest }
func GetRetention() Retention       { return Get().Retention }
func GetScheduler() Scheduler       { return Get().Scheduler }
func IsDebugMode() bool             { return Get().App.Debug }
