package app

import (
	"time"

	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/utils"
)

type Config struct {
	Port      string
	DBBackend string
	Timezone  string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	dbBackend := utils.GetEnv("DB_BACKEND", "postgres", log)
	timezone := utils.GetEnv("STUDIO_TIMEZONE", "", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	return Config{
		Port:            port,
		DBBackend:       dbBackend,
		Timezone:        timezone,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
	}
}

// Location resolves the studio timezone; an empty or bad STUDIO_TIMEZONE
// falls back to the host's local zone.
func (c Config) Location(log *logger.Logger) *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn("invalid STUDIO_TIMEZONE, using host local zone", "value", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}
