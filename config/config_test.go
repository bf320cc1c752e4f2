package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadRejectsUnknownCurrency(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/iranpay?parseTime=true")
	setEnv(t, "APP_CURRENCY", "Dollar")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for unknown currency")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/iranpay?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "iranpay-test")
	setEnv(t, "APP_BASE_URL", "https://shop.example.com")
	setEnv(t, "APP_CURRENCY", "Toman")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "IRANPAY_USE_SANDBOX", "true")
	setEnv(t, "IRANPAY_AUTO_SETTLE", "true")
	setEnv(t, "BEHPARDAKHT_TERMINAL_ID", "1234")
	setEnv(t, "BEHPARDAKHT_USERNAME", "username")
	setEnv(t, "BEHPARDAKHT_PASSWORD", "password")
	setEnv(t, "SOAP_HTTP_TIMEOUT_SECONDS", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "iranpay-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.App.BaseURL != "https://shop.example.com" {
		t.Fatalf("unexpected base URL: %s", cfg.App.BaseURL)
	}
	if cfg.App.Currency != "Toman" {
		t.Fatalf("unexpected currency: %s", cfg.App.Currency)
	}
	if cfg.App.DefaultGateway != "behpardakht" {
		t.Fatalf("unexpected default gateway: %s", cfg.App.DefaultGateway)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if !cfg.Iranpay.UseSandbox || !cfg.Iranpay.AutoSettle {
		t.Fatalf("unexpected iranpay config: %+v", cfg.Iranpay)
	}
	if cfg.Iranpay.AutoReverse || cfg.Iranpay.NoCallbackReverseFails {
		t.Fatalf("expected auto reverse flags to default to false: %+v", cfg.Iranpay)
	}
	if cfg.Behpardakht.TerminalID != "1234" {
		t.Fatalf("unexpected terminal ID: %s", cfg.Behpardakht.TerminalID)
	}
	if cfg.Behpardakht.CallbackURL != "/payments/callback/behpardakht" {
		t.Fatalf("unexpected callback URL: %s", cfg.Behpardakht.CallbackURL)
	}
	if cfg.Soap.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected soap timeout: %v", cfg.Soap.HTTPTimeout)
	}
}
