package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Grading  GradingConfig
	Logger   LoggerConfig
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DBConfig selects the database driver ("sqlite" or "pgx") and its DSN.
type DBConfig struct {
	Driver string
	DSN    string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LLMConfig configures the language-model capability.
type LLMConfig struct {
	Provider    string // deepseek, qwen, glm, openai, ollama
	Client      string // langchain (default) or native
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type PipelineConfig struct {
	GenerateTemperature float64
	ReviewTemperature   float64
	FixTemperature      float64
	ReviewConcurrency   int
}

type GradingConfig struct {
	Temperature float64
	Concurrency int
	CacheTTL    time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:quizforge.db?_pragma=foreign_keys(1)")
	v.SetDefault("llm.provider", "deepseek")
	v.SetDefault("llm.client", "langchain")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("pipeline.generate_temperature", 0.7)
	v.SetDefault("pipeline.review_temperature", 0.3)
	v.SetDefault("pipeline.fix_temperature", 0.5)
	v.SetDefault("pipeline.review_concurrency", 4)
	v.SetDefault("grading.temperature", 0.3)
	v.SetDefault("grading.concurrency", 4)
	v.SetDefault("grading.cache_ttl", 24*60*60)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := fromViper(v)

	// Override with environment variables if set
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		config.DB.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		config.DB.DSN = dsn
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = v.GetInt("SERVER_PORT")
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}

	return config, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("llm.provider"),
			Client:      v.GetString("llm.client"),
			BaseURL:     v.GetString("llm.base_url"),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     time.Duration(v.GetInt("llm.timeout")) * time.Second,
		},
		Pipeline: PipelineConfig{
			GenerateTemperature: v.GetFloat64("pipeline.generate_temperature"),
			ReviewTemperature:   v.GetFloat64("pipeline.review_temperature"),
			FixTemperature:      v.GetFloat64("pipeline.fix_temperature"),
			ReviewConcurrency:   v.GetInt("pipeline.review_concurrency"),
		},
		Grading: GradingConfig{
			Temperature: v.GetFloat64("grading.temperature"),
			Concurrency: v.GetInt("grading.concurrency"),
			CacheTTL:    time.Duration(v.GetInt("grading.cache_ttl")) * time.Second,
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}
