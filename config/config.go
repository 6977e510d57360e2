package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/models"
)

// Config holds the project config values
type Config struct {
	URL               string
	DatabaseName      string
	BaseURL           string
	Port              string
	SendgridAPIKey    string
	NotifyFromEmail   string
	JWTSecret         string
	MobGraceHours     int
	NotifyMaxAttempts int
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:               os.Getenv("DB_URI"),
		DatabaseName:      os.Getenv("DB_NAME"),
		BaseURL:           os.Getenv("BASE_URL"),
		Port:              os.Getenv("PORT"),
		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		NotifyFromEmail:   os.Getenv("NOTIFY_FROM_EMAIL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MobGraceHours:     envInt("MOB_GRACE_HOURS", 72),
		NotifyMaxAttempts: envInt("NOTIFY_MAX_ATTEMPTS", 3),
	}

}

// MobilizationGrace returns the window a mobilization date may sit in the past
// before it is rejected as stale.
func (c *Config) MobilizationGrace() time.Duration {
	return time.Duration(c.MobGraceHours) * time.Hour
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("invalid integer env var, using default", "key", key, "value", v)
		return def
	}
	return n
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	resp := models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errString(err)}}
	b, _ := json.Marshal(resp)
	w.Write(b)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
