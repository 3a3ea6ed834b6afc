package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = "4000"
	DefaultOKXBaseURL   = "https://www.okx.com"
	DefaultOKXTimeout   = 10 * time.Second
	DefaultDBTimeout    = 5 * time.Second
	DefaultHistoryLimit = 50
)

type Config struct {
	Env         string
	Port        string
	DatabaseURL string

	// OKX
	OKXBaseURL    string
	OKXAPIKey     string
	OKXSecretKey  string
	OKXPassphrase string
	OKXProxyAddr  string // SOCKS5 host:port, пусто — прямое соединение
	OKXTimeout    time.Duration
	HistoryLimit  int

	DBTimeout time.Duration

	AllowedOrigins  []string
	MetricsUser     string
	MetricsPassword string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	return FromLookup(os.Getenv)
}

// FromLookup собирает конфиг из произвольного источника переменных
func FromLookup(getenv func(string) string) *Config {
	cfg := &Config{
		Env:             getenv("APP_ENV"),
		Port:            firstNonEmpty(getenv("PORT"), DefaultPort),
		DatabaseURL:     getenv("DATABASE_URL"),
		OKXBaseURL:      strings.TrimRight(firstNonEmpty(getenv("OKX_API_BASE"), DefaultOKXBaseURL), "/"),
		OKXAPIKey:       getenv("OKX_API_KEY"),
		OKXSecretKey:    firstNonEmpty(getenv("OKX_SECRET_KEY"), getenv("OKX_API_SECRET")),
		OKXPassphrase:   firstNonEmpty(getenv("OKX_PASSPHRASE"), getenv("OKX_API_PASSPHRASE")),
		OKXProxyAddr:    getenv("OKX_PROXY_ADDR"),
		OKXTimeout:      parseDuration(getenv("OKX_TIMEOUT"), DefaultOKXTimeout),
		HistoryLimit:    parseInt(getenv("OKX_HISTORY_LIMIT"), DefaultHistoryLimit),
		DBTimeout:       parseDuration(getenv("DB_TIMEOUT"), DefaultDBTimeout),
		AllowedOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS")),
		MetricsUser:     getenv("METRICS_USER"),
		MetricsPassword: getenv("METRICS_PASSWORD"),
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid duration %q, using %s", raw, def)
		return def
	}
	return d
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid number %q, using %d", raw, def)
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
