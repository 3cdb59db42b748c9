/**
 * @description
 * Configuration management for the aggregator. Every downstream service is
 * named and independently configured with a base URL and per-operation
 * paths; the retry policy and the reconciliation queue are configured here
 * too. Configuration is read once at startup and treated as immutable for
 * the process lifetime.
 */
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	// Transport policy shared by all downstream clients.
	ClientRetryCount    int `mapstructure:"CLIENT_RETRY_COUNT"`
	ClientBackoffUnitMS int `mapstructure:"CLIENT_BACKOFF_UNIT_MS"`
	ClientTimeoutSec    int `mapstructure:"CLIENT_TIMEOUT_SEC"`

	WageServiceURL    string `mapstructure:"WAGE_SERVICE_URL"`
	TaxServiceURL     string `mapstructure:"TAX_SERVICE_URL"`
	FinanceServiceURL string `mapstructure:"FINANCE_SERVICE_URL"`

	WageTaxableWagesPath string `mapstructure:"WAGE_TAXABLE_WAGES_PATH"`
	WagePostTaxPath      string `mapstructure:"WAGE_POST_TAX_PATH"`
	TaxWithheldPath      string `mapstructure:"TAX_WITHHELD_PATH"`

	FinanceGetPayPath       string `mapstructure:"FINANCE_GET_PAY_PATH"`
	FinanceSavePayPath      string `mapstructure:"FINANCE_SAVE_PAY_PATH"`
	FinanceUpdatePayPath    string `mapstructure:"FINANCE_UPDATE_PAY_PATH"`
	FinanceDeletePayPath    string `mapstructure:"FINANCE_DELETE_PAY_PATH"`
	FinanceGetIncomePath    string `mapstructure:"FINANCE_GET_INCOME_PATH"`
	FinanceSaveIncomePath   string `mapstructure:"FINANCE_SAVE_INCOME_PATH"`
	FinanceUpdateIncomePath string `mapstructure:"FINANCE_UPDATE_INCOME_PATH"`
	FinanceDeleteIncomePath string `mapstructure:"FINANCE_DELETE_INCOME_PATH"`

	// Reconciliation queue. Empty RabbitMQURL disables the queue-backed
	// recorder; failures are then only logged.
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	ReconcileExchange   string `mapstructure:"RECONCILE_EXCHANGE"`
	ReconcileQueue      string `mapstructure:"RECONCILE_QUEUE"`
	ReconcileRoutingKey string `mapstructure:"RECONCILE_ROUTING_KEY"`

	// Reconciler worker.
	ReconcilerSchedule   string `mapstructure:"RECONCILER_SCHEDULE"`
	ReconcilerCredential string `mapstructure:"RECONCILER_CREDENTIAL"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "production")
	viper.SetDefault("CLIENT_RETRY_COUNT", 3)
	viper.SetDefault("CLIENT_BACKOFF_UNIT_MS", 1000)
	viper.SetDefault("CLIENT_TIMEOUT_SEC", 15)
	viper.SetDefault("WAGE_TAXABLE_WAGES_PATH", "/api/v1/wages/taxable-wages")
	viper.SetDefault("WAGE_POST_TAX_PATH", "/api/v1/wages/post-tax-deductions")
	viper.SetDefault("TAX_WITHHELD_PATH", "/api/v1/taxes/withheld")
	viper.SetDefault("FINANCE_GET_PAY_PATH", "/api/v1/finance/pay")
	viper.SetDefault("FINANCE_SAVE_PAY_PATH", "/api/v1/finance/pay")
	viper.SetDefault("FINANCE_UPDATE_PAY_PATH", "/api/v1/finance/pay/update")
	viper.SetDefault("FINANCE_DELETE_PAY_PATH", "/api/v1/finance/pay/delete")
	viper.SetDefault("FINANCE_GET_INCOME_PATH", "/api/v1/finance/income")
	viper.SetDefault("FINANCE_SAVE_INCOME_PATH", "/api/v1/finance/income")
	viper.SetDefault("FINANCE_UPDATE_INCOME_PATH", "/api/v1/finance/income/update")
	viper.SetDefault("FINANCE_DELETE_INCOME_PATH", "/api/v1/finance/income/delete")
	viper.SetDefault("RECONCILE_EXCHANGE", "finance.reconcile")
	viper.SetDefault("RECONCILE_QUEUE", "finance.reconcile.pending")
	viper.SetDefault("RECONCILE_ROUTING_KEY", "reconcile.task")
	viper.SetDefault("RECONCILER_SCHEDULE", "@every 1m")
	viper.AutomaticEnv()

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("ENVIRONMENT")
	_ = viper.BindEnv("CLIENT_RETRY_COUNT")
	_ = viper.BindEnv("CLIENT_BACKOFF_UNIT_MS")
	_ = viper.BindEnv("CLIENT_TIMEOUT_SEC")
	_ = viper.BindEnv("WAGE_SERVICE_URL")
	_ = viper.BindEnv("TAX_SERVICE_URL")
	_ = viper.BindEnv("FINANCE_SERVICE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("RECONCILER_SCHEDULE")
	_ = viper.BindEnv("RECONCILER_CREDENTIAL")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	if port := os.Getenv("PORT"); port != "" {
		config.ServerPort = port
	}

	if config.WageServiceURL == "" {
		return config, fmt.Errorf("WAGE_SERVICE_URL is required")
	}
	if config.TaxServiceURL == "" {
		return config, fmt.Errorf("TAX_SERVICE_URL is required")
	}
	if config.FinanceServiceURL == "" {
		return config, fmt.Errorf("FINANCE_SERVICE_URL is required")
	}
	return
}

// IsDevelopment reports whether the process runs in a development-mode
// configuration. Stack traces are only surfaced to callers in development.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// BackoffUnit returns the retry backoff unit as a duration. Attempt n waits
// n backoff units.
func (c Config) BackoffUnit() time.Duration {
	return time.Duration(c.ClientBackoffUnitMS) * time.Millisecond
}

// ClientTimeout returns the per-request timeout for downstream calls.
func (c Config) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutSec) * time.Second
}
