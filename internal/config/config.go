package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lunchsync/lunchsync/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. LUNCHSYNC_TOKENS_FINTOC_SECRET_TOKEN.
const EnvPrefix = "LUNCHSYNC"

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "lunchsync.yaml"

// Config represents the top-level lunchsync.yaml configuration.
type Config struct {
	Tokens       Tokens       `yaml:"tokens" mapstructure:"tokens"`
	Banks        []Bank       `yaml:"banks" mapstructure:"banks"`
	SyncSettings SyncSettings `yaml:"sync_settings" mapstructure:"sync_settings"`
	Endpoints    Endpoints    `yaml:"endpoints,omitempty" mapstructure:"endpoints"`
}

// Tokens holds the API secrets for both services.
type Tokens struct {
	FintocSecretToken  string `yaml:"fintoc_secret_token" mapstructure:"fintoc_secret_token"`
	LunchMoneyAPIToken string `yaml:"lunch_money_api_token" mapstructure:"lunch_money_api_token"`
}

// Bank is one provider link with its accounts.
type Bank struct {
	Name      string    `yaml:"name" mapstructure:"name"`
	LinkToken string    `yaml:"link_token" mapstructure:"link_token"`
	Accounts  []Account `yaml:"accounts" mapstructure:"accounts"`
}

// Account maps a provider account to a ledger asset.
type Account struct {
	Name              string            `yaml:"name" mapstructure:"name"`
	FintocAccountID   string            `yaml:"fintoc_account_id" mapstructure:"fintoc_account_id"`
	LunchMoneyAssetID int64             `yaml:"lunch_money_asset_id" mapstructure:"lunch_money_asset_id"`
	Type              model.AccountType `yaml:"type" mapstructure:"type"`
	SkipMovements     bool              `yaml:"skip_movements,omitempty" mapstructure:"skip_movements"`
}

// SyncSettings controls the sync window and run behavior.
type SyncSettings struct {
	DefaultStartFrom string        `yaml:"default_start_from" mapstructure:"default_start_from"` // lookback, e.g. "30d"
	EndOffset        string        `yaml:"end_offset,omitempty" mapstructure:"end_offset"`
	HTTPTimeout      time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	LogFile          string        `yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Endpoints overrides the API base URLs. Empty means production.
type Endpoints struct {
	Fintoc     string `yaml:"fintoc,omitempty" mapstructure:"fintoc"`
	LunchMoney string `yaml:"lunch_money,omitempty" mapstructure:"lunch_money"`
}

// Load reads a config file, applies LUNCHSYNC_* environment overrides and validates it.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := viper.New()
	v.SetDefault("tokens.fintoc_secret_token", "")
	v.SetDefault("tokens.lunch_money_api_token", "")
	v.SetDefault("sync_settings.default_start_from", "30d")
	v.SetDefault("sync_settings.end_offset", "")
	v.SetDefault("sync_settings.http_timeout", "30s")
	v.SetDefault("sync_settings.log_file", "")
	v.SetDefault("endpoints.fintoc", "")
	v.SetDefault("endpoints.lunch_money", "")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a starter Config with placeholder credentials.
func Default() *Config {
	return &Config{
		Tokens: Tokens{
			FintocSecretToken:  "sk_live_REPLACE_ME",
			LunchMoneyAPIToken: "REPLACE_ME",
		},
		Banks: []Bank{
			{
				Name:      "My Bank",
				LinkToken: "link_REPLACE_ME",
				Accounts: []Account{
					{
						Name:              "Checking",
						FintocAccountID:   "acc_REPLACE_ME",
						LunchMoneyAssetID: 1,
						Type:              model.AccountTypeChecking,
					},
				},
			},
		},
		SyncSettings: SyncSettings{
			DefaultStartFrom: "30d",
			HTTPTimeout:      30 * time.Second,
		},
	}
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Tokens.FintocSecretToken == "" {
		errs = append(errs, errors.New("tokens.fintoc_secret_token is required"))
	}
	if c.Tokens.LunchMoneyAPIToken == "" {
		errs = append(errs, errors.New("tokens.lunch_money_api_token is required"))
	}
	if _, err := ParseLookback(c.SyncSettings.DefaultStartFrom); err != nil {
		errs = append(errs, fmt.Errorf("sync_settings.default_start_from: %w", err))
	}
	if c.SyncSettings.EndOffset != "" {
		if _, err := ParseLookback(c.SyncSettings.EndOffset); err != nil {
			errs = append(errs, fmt.Errorf("sync_settings.end_offset: %w", err))
		}
	}
	if c.SyncSettings.HTTPTimeout < 0 {
		errs = append(errs, errors.New("sync_settings.http_timeout must not be negative"))
	}
	for i, b := range c.Banks {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("banks[%d]: name is required", i))
		}
		if b.LinkToken == "" {
			errs = append(errs, fmt.Errorf("bank %q: link_token is required", b.Name))
		}
		for j, a := range b.Accounts {
			label := fmt.Sprintf("bank %q account %d", b.Name, j)
			if a.Name != "" {
				label = fmt.Sprintf("bank %q account %q", b.Name, a.Name)
			}
			if a.FintocAccountID == "" {
				errs = append(errs, fmt.Errorf("%s: fintoc_account_id is required", label))
			}
			if a.LunchMoneyAssetID <= 0 {
				errs = append(errs, fmt.Errorf("%s: lunch_money_asset_id must be positive", label))
			}
			typ, err := model.ParseAccountType(string(a.Type))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", label, err))
				continue
			}
			c.Banks[i].Accounts[j].Type = typ
		}
	}
	return errors.Join(errs...)
}

// Lookback returns the parsed default_start_from duration.
func (c *Config) Lookback() (time.Duration, error) {
	return ParseLookback(c.SyncSettings.DefaultStartFrom)
}

// EndOffset returns the parsed end_offset, zero when unset.
func (c *Config) EndOffset() (time.Duration, error) {
	if c.SyncSettings.EndOffset == "" {
		return 0, nil
	}
	return ParseLookback(c.SyncSettings.EndOffset)
}

// Selection is one configured account together with its bank.
type Selection struct {
	Bank    Bank
	Account Account
}

// Select returns the accounts matching the bank and account names, in config
// order. An empty name matches everything.
func (c *Config) Select(bankName, accountName string) []Selection {
	var out []Selection
	for _, b := range c.Banks {
		if bankName != "" && b.Name != bankName {
			continue
		}
		for _, a := range b.Accounts {
			if accountName != "" && a.Name != accountName {
				continue
			}
			out = append(out, Selection{Bank: b, Account: a})
		}
	}
	return out
}
