package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// StoreBackend selects the persistence layer: "dynamo" or "memory".
	StoreBackend string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// CatalogSeed is a CSV path or s3://bucket/key loaded into the memory catalog at startup.
	CatalogSeed string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	VerifyURLBase string

	GenAI GenAI

	UpstreamTimeout time.Duration
	MailTimeout     time.Duration
	StoreTimeout    time.Duration

	RecoveryWindow      time.Duration
	VerificationTTL     time.Duration
	MemorySweepInterval time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Plants          string
	SavedRecipes    string
	PendingAccounts string
	Accounts        string
}

// GenAI configures the extraction, classification and recipe models.
// APIKey selects the Gemini API backend; otherwise Project/Location select Vertex AI.
type GenAI struct {
	APIKey        string
	Project       string
	Location      string
	ExtractModel  string
	ClassifyModel string
	RecipeModel   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:      getEnv("APP_PORT", "3000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		StoreBackend: getEnv("STORE_BACKEND", "dynamo"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Plants:          getEnv("DYNAMO_TABLE_PLANTS", "plants"),
			SavedRecipes:    getEnv("DYNAMO_TABLE_SAVED_RECIPES", "saved_recipes"),
			PendingAccounts: getEnv("DYNAMO_TABLE_PENDING_ACCOUNTS", "pending_accounts"),
			Accounts:        getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
		},
		CatalogSeed: getEnv("CATALOG_SEED", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 30)) * time.Minute,

		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		VerifyURLBase: getEnv("VERIFY_URL_BASE", "http://localhost:3000/v1/accounts/verify"),

		GenAI: GenAI{
			APIKey:        getEnv("GENAI_API_KEY", ""),
			Project:       getEnv("GENAI_PROJECT", ""),
			Location:      getEnv("GENAI_LOCATION", "global"),
			ExtractModel:  getEnv("GENAI_EXTRACT_MODEL", "gemini-2.0-flash-lite-001"),
			ClassifyModel: getEnv("GENAI_CLASSIFY_MODEL", "gemini-2.5-flash"),
			RecipeModel:   getEnv("GENAI_RECIPE_MODEL", "gemini-2.5-flash"),
		},

		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 20*time.Second),
		MailTimeout:     getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		RecoveryWindow:      getEnvDuration("RECOVERY_WINDOW", 10*24*time.Hour),
		VerificationTTL:     getEnvDuration("VERIFICATION_TTL", 24*time.Hour),
		MemorySweepInterval: getEnvDuration("MEMORY_SWEEP_INTERVAL", time.Hour),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "240h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
