package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linesmerrill/justice-case-api/models"
)

// Store drivers
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config holds the project config values
type Config struct {
	URL                string
	DatabaseName       string
	BaseURL            string
	Port               string
	Environment        string
	StoreDriver        string
	DataDir            string
	RolesFile          string
	JWTSecret          string
	PleaDealResponders []string
	ExpiryScanCron     string
}

// New sets up all config related services
func New() *Config {
	c := &Config{
		URL:                os.Getenv("DB_URI"),
		DatabaseName:       os.Getenv("DB_NAME"),
		BaseURL:            os.Getenv("BASE_URL"),
		Port:               getenv("PORT", "8080"),
		Environment:        getenv("ENVIRONMENT", "local"),
		StoreDriver:        getenv("STORE_DRIVER", StoreFile),
		DataDir:            getenv("DATA_DIR", "data"),
		RolesFile:          os.Getenv("ROLES_FILE"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		PleaDealResponders: splitList(os.Getenv("PLEA_DEAL_RESPONDERS")),
		ExpiryScanCron:     getenv("EXPIRY_SCAN_CRON", "0 6 * * *"),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(c.Environment)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)
	return c
}

// AddFlags registers command line overrides for the environment values
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "port the http server listens on")
	fs.StringVar(&c.StoreDriver, "store", c.StoreDriver, "record store driver: file or mongo")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory of the file store collections")
	fs.StringVar(&c.URL, "db-uri", c.URL, "mongo connection uri")
	fs.StringVar(&c.DatabaseName, "db-name", c.DatabaseName, "mongo database name")
	fs.StringVar(&c.RolesFile, "roles", c.RolesFile, "yaml or json permission policy; the built in policy is used when empty")
	fs.StringSliceVar(&c.PleaDealResponders, "plea-deal-responders", c.PleaDealResponders, "role types allowed to answer plea deals")
	fs.StringVar(&c.ExpiryScanCron, "expiry-scan", c.ExpiryScanCron, "cron spec of the limitation expiry scan")
}

// Validate reports settings that cannot work together
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFile:
		if c.DataDir == "" {
			return errors.New("file store needs a data directory")
		}
	case StoreMongo:
		if c.URL == "" || c.DatabaseName == "" {
			return errors.New("mongo store needs DB_URI and DB_NAME")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return cfg.Build()
	default:
		return zap.NewDevelopment()
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if httpStatusCode >= http.StatusInternalServerError {
		zap.S().With("error", err).Error(message)
	} else {
		zap.S().With("error", err).Debug(message)
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: fmt.Sprintf("%s, %v", message, err)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}

// StatusCode maps the record error kinds onto http status codes
func StatusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTransitionRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status code of its kind
func Error(message string, w http.ResponseWriter, err error) {
	ErrorStatus(message, StatusCode(err), w, err)
}
