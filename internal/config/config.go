package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	StorageBackend    string        `mapstructure:"STORAGE_BACKEND"`
	StorageKey        string        `mapstructure:"STORAGE_KEY"`
	PostgresURL       string        `mapstructure:"POSTGRES_URL"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	OwnerPasswordHash string        `mapstructure:"OWNER_PASSWORD_HASH"`
	MapZoom           int           `mapstructure:"MAP_ZOOM"`
	AlertTimeout      time.Duration `mapstructure:"ALERT_TIMEOUT"`
	HomeLat           float64       `mapstructure:"HOME_LAT"`
	HomeLng           float64       `mapstructure:"HOME_LNG"`
	HomeSet           bool          `mapstructure:"HOME_SET"`
	GeolocateURL      string        `mapstructure:"GEOLOCATE_URL"`
	StreamTopic       string        `mapstructure:"STREAM_TOPIC"`
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("STORAGE_KEY", "workouts")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("OWNER_PASSWORD_HASH", "")
	v.SetDefault("MAP_ZOOM", 13)
	v.SetDefault("ALERT_TIMEOUT", "5s")
	v.SetDefault("HOME_LAT", 0.0)
	v.SetDefault("HOME_LNG", 0.0)
	v.SetDefault("HOME_SET", false)
	v.SetDefault("GEOLOCATE_URL", "")
	v.SetDefault("STREAM_TOPIC", "workouts")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.StorageBackend = storageBackend(v.GetString("STORAGE_BACKEND"), cfg)
	return cfg
}

// storageBackend persists to redis or postgres when one is configured and
// no backend was chosen explicitly. Memory is the last resort.
func storageBackend(explicit string, cfg Config) string {
	switch {
	case explicit != "":
		return explicit
	case cfg.RedisAddr != "":
		return "redis"
	case cfg.PostgresURL != "":
		return "postgres"
	}
	return "memory"
}
