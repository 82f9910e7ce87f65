package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// SMTP delivery for OTP mails
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string

	// OTP issuance
	EmailSendRetries int
	EmailRetryDelay  time.Duration
	OTPLogPath       string
	Enable2FA        bool // when false the dev OTP listing is disabled

	// Bootstrap identities. These two accounts are re-synced from
	// configuration on every successful login; the DB row is only a cache.
	AdminUsername      string
	AdminPassword      string
	AdminEmail         string
	SupervisorUsername string
	SupervisorPassword string
	SupervisorEmail    string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=garage port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SYSTEM_EMAIL", ""),
		SMTPPassword: getEnv("SYSTEM_EMAIL_PASS", ""),
		FromEmail:    getEnv("DEFAULT_FROM_EMAIL", os.Getenv("SYSTEM_EMAIL")),

		EmailSendRetries: getEnvInt("EMAIL_SEND_RETRIES", 3),
		EmailRetryDelay:  time.Duration(getEnvInt("EMAIL_RETRY_DELAY_SECONDS", 1)) * time.Second,
		OTPLogPath:       getEnv("OTP_LOG_PATH", "otp.log"),
		Enable2FA:        getEnv("ENABLE_2FA", "1") != "0",

		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		SupervisorUsername: getEnv("SUPERVISOR_USERNAME", "supervisor"),
		SupervisorPassword: getEnv("SUPERVISOR_PASSWORD", ""),
		SupervisorEmail:    getEnv("SUPERVISOR_EMAIL", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set, refusing to start.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters.")
	}
	if cfg.AdminPassword == "" || cfg.SupervisorPassword == "" {
		log.Println("[WARN] ADMIN_PASSWORD / SUPERVISOR_PASSWORD not set, bootstrap logins are disabled.")
	}
	if cfg.SMTPUser == "" {
		log.Println("[WARN] SYSTEM_EMAIL not set, OTP delivery will fail and fall back to the OTP log.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
