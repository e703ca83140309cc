package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port   string
	Env    string
	APIUrl string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Voucher QR payload
	QRBaseURL         string
	DefaultPromoterID string

	// Directories
	UploadsDir          string
	QRCodeDir           string
	DownloadsDir        string
	TempOutputDir       string
	VoucherTemplatesDir string
	InviteTemplatesDir  string
	PreviewsDir         string
	FontsDir            string

	// Fonts (relative to FontsDir)
	FontBoldFile    string
	FontRegularFile string

	// Janitor
	MaxFileAge      time.Duration
	CleanupInterval time.Duration

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		APIUrl: getEnv("API_URL", "http://localhost:8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "vouchers"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "vouchers_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Voucher QR payload
		QRBaseURL:         getEnv("QR_BASE_URL", "https://www.misericordiassaude.pt/aderir"),
		DefaultPromoterID: getEnv("DEFAULT_PROMOTER_ID", ""),

		// Directories
		UploadsDir:          getEnv("UPLOADS_DIR", "data/uploads"),
		QRCodeDir:           getEnv("QRCODE_DIR", "data/qrcodes"),
		DownloadsDir:        getEnv("DOWNLOADS_DIR", "data/downloads"),
		TempOutputDir:       getEnv("TEMP_OUTPUT_DIR", "data/temp_output"),
		VoucherTemplatesDir: getEnv("VOUCHER_TEMPLATES_DIR", "assets/voucher_pdf"),
		InviteTemplatesDir:  getEnv("INVITE_TEMPLATES_DIR", "assets/convite_pdf"),
		PreviewsDir:         getEnv("PREVIEWS_DIR", "data/previews"),
		FontsDir:            getEnv("FONTS_DIR", "assets/fonts/Poppins"),

		// Fonts
		FontBoldFile:    getEnv("FONT_BOLD_FILE", "Poppins-Bold.ttf"),
		FontRegularFile: getEnv("FONT_REGULAR_FILE", "Poppins-Regular.ttf"),

		// Janitor
		MaxFileAge:      getEnvAsDuration("MAX_FILE_AGE", "7m"),
		CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", "1m"),

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

// FontBoldPath returns the path of the bold TTF.
func (c *Config) FontBoldPath() string {
	return filepath.Join(c.FontsDir, c.FontBoldFile)
}

// FontRegularPath returns the path of the regular TTF.
func (c *Config) FontRegularPath() string {
	return filepath.Join(c.FontsDir, c.FontRegularFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Minute
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
