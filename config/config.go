package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	MySQL       MySQLConfig
	Log         LogConfig
	Iranpay     IranpayConfig
	Behpardakht BehpardakhtConfig
	Soap        SoapConfig
}

type AppConfig struct {
	ServiceName    string
	BaseURL        string
	Currency       string
	DefaultGateway string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type IranpayConfig struct {
	UseSandbox             bool
	AutoSettle             bool
	AutoReverse            bool
	NoCallbackReverseFails bool
}

type BehpardakhtConfig struct {
	TerminalID  string
	Username    string
	Password    string
	CallbackURL string
}

type SoapConfig struct {
	HTTPTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	currency := getEnv("APP_CURRENCY", "Rial")
	if currency != "Rial" && currency != "Toman" {
		return nil, fmt.Errorf("APP_CURRENCY must be Rial or Toman, got %q", currency)
	}

	return &Config{
		App: AppConfig{
			ServiceName:    getEnv("APP_SERVICE_NAME", "iranpay-service"),
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:8080"),
			Currency:       currency,
			DefaultGateway: getEnv("APP_DEFAULT_GATEWAY", "behpardakht"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Iranpay: IranpayConfig{
			UseSandbox:             getBoolEnv("IRANPAY_USE_SANDBOX", false),
			AutoSettle:             getBoolEnv("IRANPAY_AUTO_SETTLE", false),
			AutoReverse:            getBoolEnv("IRANPAY_AUTO_REVERSE", false),
			NoCallbackReverseFails: getBoolEnv("IRANPAY_NO_CALLBACK_REVERSE_FAILS", false),
		},
		Behpardakht: BehpardakhtConfig{
			TerminalID:  getEnv("BEHPARDAKHT_TERMINAL_ID", ""),
			Username:    getEnv("BEHPARDAKHT_USERNAME", ""),
			Password:    getEnv("BEHPARDAKHT_PASSWORD", ""),
			CallbackURL: getEnv("BEHPARDAKHT_CALLBACK_URL", "/payments/callback/behpardakht"),
		},
		Soap: SoapConfig{
			HTTPTimeout: getSecondsEnv("SOAP_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
