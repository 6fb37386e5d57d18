package config

import (
	"log/slog"
	"os"
	"strings"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	AllowedOrigins []string
	CookieSecure   bool
	CookieSameSite string
	MQTT           MQTTConfig
}

type MQTTConfig struct {
	BrokerURL      string
	ClientID       string
	SensorTopic    string
	IspuTopic      string
	IngestRetained bool
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.BrokerURL != ""
}

func Load() Config {
	env := getEnv("ENV", "development")

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            env,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "ispure"),
		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		CookieSecure:   parseBool(getEnv("COOKIE_SECURE", boolString(env == "production"))),
		CookieSameSite: getEnv("COOKIE_SAMESITE", "none"),
		MQTT: MQTTConfig{
			BrokerURL:      strings.TrimSpace(os.Getenv("MQTT_BROKER_URL")),
			ClientID:       getEnv("MQTT_CLIENT_ID", "ispure-api"),
			SensorTopic:    getEnv("MQTT_SENSOR_TOPIC", "ispure/sensor"),
			IspuTopic:      getEnv("MQTT_ISPU_TOPIC", "ispure/ispu"),
			IngestRetained: parseBool(getEnv("MQTT_INGEST_RETAINED", "false")),
		},
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// splitList parses a comma separated list, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
