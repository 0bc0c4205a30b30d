package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ollama   OllamaConfig
	LLM      LLMConfig
	GigaChat GigaChatConfig
	RAG      RAGConfig
	Session  SessionConfig
	Results  ResultsConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
	File  string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the connection string in URL form, as expected by golang-migrate.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type OllamaConfig struct {
	Host            string
	Port            string
	EmbedModel      string
	LLMModel        string
	EmbedTimeout    time.Duration
	GenerateTimeout time.Duration
}

// BaseURL returns the Ollama API root, e.g. http://127.0.0.1:11434.
func (c *OllamaConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}

type LLMConfig struct {
	Provider    string // "ollama" or "gigachat"
	Temperature float64
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type RAGConfig struct {
	TopK int
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type ResultsConfig struct {
	File       string // empty disables the result log
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	embedTimeout, _ := strconv.Atoi(getEnv("OLLAMA_EMBED_TIMEOUT", "60"))
	generateTimeout, _ := strconv.Atoi(getEnv("OLLAMA_GENERATE_TIMEOUT", "120"))
	temperature, _ := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.3"), 64)
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "4"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "60"))
	sessionCleanup, _ := strconv.Atoi(getEnv("SESSION_CLEANUP_MINUTES", "10"))
	resultsMaxSize, _ := strconv.Atoi(getEnv("RESULTS_MAX_SIZE_MB", "10"))
	resultsMaxBackups, _ := strconv.Atoi(getEnv("RESULTS_MAX_BACKUPS", "5"))
	resultsMaxAge, _ := strconv.Atoi(getEnv("RESULTS_MAX_AGE_DAYS", "90"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "admissions"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Ollama: OllamaConfig{
			Host:            getEnv("OLLAMA_HOST", "127.0.0.1"),
			Port:            getEnv("OLLAMA_PORT", "11434"),
			EmbedModel:      getEnv("EMBED_MODEL", "all-minilm"),
			LLMModel:        getEnv("LLM_MODEL", "llama3.2"),
			EmbedTimeout:    time.Duration(embedTimeout) * time.Second,
			GenerateTimeout: time.Duration(generateTimeout) * time.Second,
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "ollama"),
			Temperature: temperature,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		RAG: RAGConfig{
			TopK: ragTopK,
		},
		Session: SessionConfig{
			TTL:             time.Duration(sessionTTL) * time.Minute,
			CleanupInterval: time.Duration(sessionCleanup) * time.Minute,
		},
		Results: ResultsConfig{
			File:       getEnv("RESULTS_FILE", "rag_results/answers.jsonl"),
			MaxSizeMB:  resultsMaxSize,
			MaxBackups: resultsMaxBackups,
			MaxAgeDays: resultsMaxAge,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
