package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Most values have sensible defaults so the server can start with an empty
// environment; only the OpenAI key has no default (voice recognition is
// disabled without it).
type Config struct {
	ServerAddr string

	// Deezer目录API配置
	DeezerAPIURL   string
	DeezerTimeout  time.Duration // 普通API请求超时
	PreviewTimeout time.Duration // 试听音频下载超时

	// Redis配置（搜索结果缓存，可选）
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Milvus向量索引配置
	MilvusAddr       string
	MilvusCollection string

	// 嵌入服务配置
	EmbedServiceURL string
	EmbedDim        int
	EmbedSampleRate int
	EmbedCropSec    float64 // 居中裁剪时长（秒）

	// OpenAI语音识别配置
	OpenAIAPIURL    string
	OpenAIAPIKey    string
	TranscribeModel string
	ReasonModel     string

	// 摘要生成服务配置（本地LLM）
	SummaryAPIURL string
	SummaryModel  string

	// 日志配置
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DeezerAPIURL:   getEnv("DEEZER_API_URL", "https://api.deezer.com"),
		DeezerTimeout:  time.Duration(getEnvInt("DEEZER_TIMEOUT_SECONDS", 10)) * time.Second,
		PreviewTimeout: time.Duration(getEnvInt("PREVIEW_TIMEOUT_SECONDS", 30)) * time.Second,

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MilvusAddr:       getEnv("MILVUS_ADDR", "http://localhost:19530"),
		MilvusCollection: getEnv("MILVUS_COLLECTION", "music_embeddings"),

		EmbedServiceURL: getEnv("EMBED_SERVICE_URL", "http://localhost:9600"),
		EmbedDim:        getEnvInt("EMBED_DIM", 512),
		EmbedSampleRate: getEnvInt("EMBED_SAMPLE_RATE", 48000),
		EmbedCropSec:    getEnvFloat("EMBED_CROP_SECONDS", 15.0),

		OpenAIAPIURL:    getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"), // 不设硬编码默认值
		TranscribeModel: getEnv("TRANSCRIBE_MODEL", "gpt-4o-mini-transcribe"),
		ReasonModel:     getEnv("REASON_MODEL", "gpt-4.1-mini"),

		SummaryAPIURL: getEnv("SUMMARY_API_URL", "http://localhost:11434"),
		SummaryModel:  getEnv("SUMMARY_MODEL", "qwen2.5:7b"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
