package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL       string
	DBMaxConns        int
	DBConnectAttempts int

	APIPort            string
	CORSAllowedOrigins []string

	ImportEnabled bool
	ImportFile    string
	ImportSheet   string
	ProjectsFile  string

	LogLevel  string
	LogPretty bool
}

func New() (*Config, error) {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        databaseURL,
		DBMaxConns:         10,
		DBConnectAttempts:  5,
		APIPort:            getEnv("API_PORT", "8000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ImportEnabled:      true,
		ImportFile:         getEnv("IMPORT_FILE", "example.xlsx"),
		ImportSheet:        os.Getenv("IMPORT_SHEET"),
		ProjectsFile:       os.Getenv("PROJECTS_FILE"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("invalid value for DB_MAX_CONNS: must be at least 1, got %d", cfg.DBMaxConns)
	}

	cfg.DBConnectAttempts, err = getEnvAsInt("DB_CONNECT_ATTEMPTS", cfg.DBConnectAttempts)
	if err != nil {
		return nil, err
	}
	if cfg.DBConnectAttempts < 1 {
		return nil, fmt.Errorf("invalid value for DB_CONNECT_ATTEMPTS: must be at least 1, got %d", cfg.DBConnectAttempts)
	}

	cfg.ImportEnabled, err = getEnvAsBool("IMPORT_ENABLED", cfg.ImportEnabled)
	if err != nil {
		return nil, err
	}

	cfg.LogPretty, err = getEnvAsBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	if port, err := strconv.Atoi(cfg.APIPort); err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid value for API_PORT: expected a port number, got '%s'", cfg.APIPort)
	}

	return cfg, nil
}

// databaseURLFromEnv prefers DATABASE_URL and otherwise assembles a URL from the
// discrete DB_* credentials.
func databaseURLFromEnv() (string, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL, nil
	}

	name := os.Getenv("DB_NAME")
	if name == "" {
		return "", fmt.Errorf("DATABASE_URL or DB_NAME environment variable must be set")
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432")),
		Path:   "/" + name,
	}
	if user := os.Getenv("DB_USER"); user != "" {
		if password := os.Getenv("DB_PASSWORD"); password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	if sslMode := os.Getenv("DB_SSLMODE"); sslMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	}

	return u.String(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: expected a boolean, got '%s'", key, valueStr)
	}

	return value, nil
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
