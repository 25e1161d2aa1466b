// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (anvil.yaml), with ${VAR} references expanded
//  2. Environment variables (fallback)
//
// A .env file next to the working directory is loaded first, so its values
// are visible to both.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	if err := cfg.ResolvePaths(); err != nil { ... }
//	acct, err := cfg.Account("chase", "checking")
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "anvil.yaml"

var (
	// ErrNoConfig is returned when no config file could be read.
	ErrNoConfig = errors.New("no configuration file found")
	// ErrUnknownAccount is returned when a bank or account is not configured.
	ErrUnknownAccount = errors.New("unknown account")
)

// Config represents the entire application configuration
type Config struct {
	// Root is the directory relative paths are resolved against.
	Root          string              `yaml:"root"`
	Journal       JournalConfig       `yaml:"journal"`
	Banks         []BankConfig        `yaml:"banks"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// JournalConfig describes where the books are read from
type JournalConfig struct {
	File         string `yaml:"file"`
	Format       string `yaml:"format"` // ledger-xml, xml or jsonl
	LedgerBinary string `yaml:"ledger_binary"`
	Search       string `yaml:"search"`
}

// Journal formats.
const (
	FormatLedgerXML = "ledger-xml"
	FormatXML       = "xml"
	FormatJSONL     = "jsonl"
)

// BankConfig groups the accounts held at one bank
type BankConfig struct {
	Name     string          `yaml:"name"`
	Accounts []AccountConfig `yaml:"accounts"`
}

// AccountConfig holds the settings for one reconciled account
type AccountConfig struct {
	Name          string           `yaml:"name"`
	LedgerAccount string           `yaml:"ledger_account"`
	StatementsDir string           `yaml:"statements_dir"`
	StatementGlob string           `yaml:"statement_glob"`
	Mapping       StatementMapping `yaml:"mapping"`
}

// StatementMapping holds jsonpath expressions locating statement fields.
// Empty fields fall back to the reader's defaults.
type StatementMapping struct {
	StartDate        string   `yaml:"start_date"`
	EndDate          string   `yaml:"end_date"`
	Beginning        string   `yaml:"beginning"`
	Ending           string   `yaml:"ending"`
	Entries          string   `yaml:"entries"`
	EntryDate        string   `yaml:"entry_date"`
	EntryAuxDate     string   `yaml:"entry_aux_date"`
	EntryPayee       string   `yaml:"entry_payee"`
	EntryAmount      string   `yaml:"entry_amount"`
	EntrySection     string   `yaml:"entry_section"`
	EntryCode        string   `yaml:"entry_code"`
	SectionTotals    string   `yaml:"section_totals"`
	NegativeSections []string `yaml:"negative_sections"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
		}
		return nil, err
	}

	// Expand environment variables (e.g., ${BOOKS_ROOT})
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
// A single account can be described with ANVIL_BANK, ANVIL_ACCOUNT,
// ANVIL_LEDGER_ACCOUNT and ANVIL_STATEMENTS_DIR.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	cfg := defaults()
	cfg.Root = getEnv("ANVIL_ROOT", "")
	cfg.Journal.File = getEnv("LEDGER_FILE", "")
	cfg.Journal.Format = getEnv("ANVIL_JOURNAL_FORMAT", cfg.Journal.Format)
	cfg.Journal.LedgerBinary = getEnv("ANVIL_LEDGER_BINARY", cfg.Journal.LedgerBinary)
	cfg.Storage.DatabasePath = getEnv("ANVIL_DB_PATH", cfg.Storage.DatabasePath)
	cfg.API.Port = getEnvInt("ANVIL_PORT", cfg.API.Port)
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	if ledgerAccount := os.Getenv("ANVIL_LEDGER_ACCOUNT"); ledgerAccount != "" {
		cfg.Banks = []BankConfig{{
			Name: getEnv("ANVIL_BANK", "bank"),
			Accounts: []AccountConfig{{
				Name:          getEnv("ANVIL_ACCOUNT", "checking"),
				LedgerAccount: ledgerAccount,
				StatementsDir: getEnv("ANVIL_STATEMENTS_DIR", "statements"),
			}},
		}}
	}
	return cfg
}

// LoadOrEnv tries to load from anvil.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath(DefaultPath)
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func defaults() *Config {
	return &Config{
		Journal: JournalConfig{
			Format:       FormatLedgerXML,
			LedgerBinary: "ledger",
		},
		Storage: StorageConfig{DatabasePath: "anvil.db"},
		API:     APIConfig{Port: 8080},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "console"},
		},
	}
}

// ResolvePaths makes the journal file, statement directories and database
// path absolute. Relative paths are taken against Root, "~" expands to the
// home directory.
func (c *Config) ResolvePaths() error {
	root, err := expandHome(c.Root)
	if err != nil {
		return err
	}
	c.Root = root

	if c.Journal.File, err = c.resolve(c.Journal.File); err != nil {
		return err
	}
	if c.Storage.DatabasePath, err = c.resolve(c.Storage.DatabasePath); err != nil {
		return err
	}
	for i := range c.Banks {
		for j := range c.Banks[i].Accounts {
			a := &c.Banks[i].Accounts[j]
			if a.StatementsDir, err = c.resolve(a.StatementsDir); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) resolve(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return path, nil
	}
	p, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) || c.Root == "" {
		return p, nil
	}
	return filepath.Join(c.Root, p), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Account looks up an account by bank and account name, ignoring case.
func (c *Config) Account(bank, account string) (*BankConfig, *AccountConfig, error) {
	for i := range c.Banks {
		b := &c.Banks[i]
		if !strings.EqualFold(b.Name, bank) {
			continue
		}
		for j := range b.Accounts {
			if strings.EqualFold(b.Accounts[j].Name, account) {
				return b, &b.Accounts[j], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: %s/%s", ErrUnknownAccount, bank, account)
}

// DefaultAccount returns the first configured account.
func (c *Config) DefaultAccount() (*BankConfig, *AccountConfig, error) {
	for i := range c.Banks {
		if len(c.Banks[i].Accounts) > 0 {
			return &c.Banks[i], &c.Banks[i].Accounts[0], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: no accounts configured", ErrUnknownAccount)
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
