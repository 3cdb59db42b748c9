package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WAGE_SERVICE_URL", "http://localhost:8081")
	t.Setenv("TAX_SERVICE_URL", "http://localhost:8082")
	t.Setenv("FINANCE_SERVICE_URL", "http://localhost:8083")
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.ClientRetryCount != 3 {
		t.Fatalf("expected default retry count 3, got %d", cfg.ClientRetryCount)
	}
	if cfg.BackoffUnit() != time.Second {
		t.Fatalf("expected default backoff unit 1s, got %v", cfg.BackoffUnit())
	}
	if cfg.IsDevelopment() {
		t.Fatal("production must be the default environment")
	}
	if cfg.FinanceGetPayPath == "" || cfg.FinanceDeleteIncomePath == "" {
		t.Fatal("per-operation paths must have defaults")
	}
}

func TestLoadConfigFailsWithoutDownstreamURLs(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("WAGE_SERVICE_URL", "")
	t.Setenv("TAX_SERVICE_URL", "http://localhost:8082")
	t.Setenv("FINANCE_SERVICE_URL", "http://localhost:8083")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected missing wage service URL error")
	}
	if !strings.Contains(err.Error(), "WAGE_SERVICE_URL") {
		t.Fatalf("expected error to name the missing variable, got %v", err)
	}
}

func TestLoadConfigHonorsEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CLIENT_RETRY_COUNT", "5")
	t.Setenv("PORT", "9999")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	if cfg.ClientRetryCount != 5 {
		t.Fatalf("expected retry count 5, got %d", cfg.ClientRetryCount)
	}
	if cfg.ServerPort != "9999" {
		t.Fatalf("PORT must win over SERVER_PORT, got %q", cfg.ServerPort)
	}
}
