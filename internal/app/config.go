package app

import (
	"strings"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/utils"
)

type Config struct {
	Mode           string
	Port           string
	Version        string
	JWTSecretKey   string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) *Config {
	ttlMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 12*60, log)
	origins := strings.Split(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return &Config{
		Mode:           utils.GetEnv("APP_ENV", "development", log),
		Port:           utils.GetEnv("PORT", "8080", log),
		Version:        utils.GetEnv("APP_VERSION", "dev", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "", log),
		TokenTTL:       time.Duration(ttlMinutes) * time.Minute,
		AllowedOrigins: origins,
	}
}
