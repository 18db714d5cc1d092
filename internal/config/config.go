package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Postgres   PostgresConfig
	Logging    LoggingConfig `validate:"required"`
	Billing    BillingConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BillingConfig carries the billing policy knobs. CycleDays is fixed at
// 30 for monthly rental invoices but kept configurable for tests.
type BillingConfig struct {
	CycleDays           int             `mapstructure:"cycle_days"`
	DueDays             int             `mapstructure:"due_days"`
	DefaultInterestRate decimal.Decimal `mapstructure:"default_interest_rate"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rentledger")

	v.SetEnvPrefix("RENTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decimalDecodeHook())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("billing.cycle_days", 30)
	v.SetDefault("billing.due_days", 7)
	v.SetDefault("billing.default_interest_rate", "1.5")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Billing.CycleDays <= 0 {
		return fmt.Errorf("billing.cycle_days must be positive")
	}
	if c.Billing.DueDays < 0 {
		return fmt.Errorf("billing.due_days must be non negative")
	}
	if c.Billing.DefaultInterestRate.IsNegative() {
		return fmt.Errorf("billing.default_interest_rate must be non negative")
	}
	return nil
}

// DSN returns the postgres connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetDefaultConfig returns a default configuration for local development
// and tests; no config file required.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Billing: BillingConfig{
			CycleDays:           30,
			DueDays:             7,
			DefaultInterestRate: decimal.NewFromFloat(1.5),
		},
	}
}
