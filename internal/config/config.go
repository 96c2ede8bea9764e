package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	EnableAuth bool
	HMACSecret string

	AdminUser       string
	AdminPassHash   string // bcrypt
	LearnerUser     string // optional second account limited to quizzing
	LearnerPassHash string // bcrypt

	CORSOrigins []string

	SessionIdleTimeout time.Duration
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeDev
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		EnableAuth:         envBool("ENABLE_AUTH", mode == ModeProd),
		HMACSecret:         envOr("AUTH_HMAC_SECRET", "dev-trainer-secret"),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		LearnerUser:        os.Getenv("LEARNER_USER"),
		LearnerPassHash:    os.Getenv("LEARNER_PASS_HASH"),
		CORSOrigins:        csvOr("CORS_ORIGINS", "http://localhost:3000"),
		SessionIdleTimeout: envDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}
