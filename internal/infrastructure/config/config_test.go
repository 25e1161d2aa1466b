package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
root: /books
journal:
  file: main.ledger
  search: "not payee:Opening"
banks:
  - name: Chase
    accounts:
      - name: checking
        ledger_account: Assets:Chase:Checking
        statements_dir: statements/chase
        statement_glob: "20??_??.json"
        mapping:
          ending: $.totals.end
      - name: savings
        ledger_account: Assets:Chase:Savings
        statements_dir: /abs/savings
storage:
  database_path: "${TEST_DB_PATH}"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anvil.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	// Arrange
	t.Setenv("TEST_DB_PATH", "runs.db")
	path := writeConfig(t, sampleConfig)

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/books", cfg.Root)
	assert.Equal(t, "main.ledger", cfg.Journal.File)
	assert.Equal(t, FormatLedgerXML, cfg.Journal.Format, "default kept")
	assert.Equal(t, "ledger", cfg.Journal.LedgerBinary)
	assert.Equal(t, "runs.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.API.Port)
	require.Len(t, cfg.Banks, 1)
	require.Len(t, cfg.Banks[0].Accounts, 2)
	assert.Equal(t, "$.totals.end", cfg.Banks[0].Accounts[0].Mapping.Ending)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "banks: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoConfig)
}

func TestResolvePaths(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "runs.db")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.NoError(t, cfg.ResolvePaths())

	assert.Equal(t, filepath.Join("/books", "main.ledger"), cfg.Journal.File)
	assert.Equal(t, filepath.Join("/books", "runs.db"), cfg.Storage.DatabasePath)
	assert.Equal(t, filepath.Join("/books", "statements/chase"), cfg.Banks[0].Accounts[0].StatementsDir)
	assert.Equal(t, "/abs/savings", cfg.Banks[0].Accounts[1].StatementsDir)
}

func TestResolvePaths_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := &Config{Root: "~/books", Journal: JournalConfig{File: "x.ledger"}}

	require.NoError(t, cfg.ResolvePaths())

	assert.Equal(t, filepath.Join(home, "books", "x.ledger"), cfg.Journal.File)
}

func TestAccount(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "runs.db")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	t.Run("found ignoring case", func(t *testing.T) {
		bank, acct, err := cfg.Account("chase", "SAVINGS")
		require.NoError(t, err)
		assert.Equal(t, "Chase", bank.Name)
		assert.Equal(t, "Assets:Chase:Savings", acct.LedgerAccount)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := cfg.Account("chase", "brokerage")
		assert.ErrorIs(t, err, ErrUnknownAccount)
	})

	t.Run("default", func(t *testing.T) {
		_, acct, err := cfg.DefaultAccount()
		require.NoError(t, err)
		assert.Equal(t, "checking", acct.Name)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANVIL_DB_PATH", "test.db")
	t.Setenv("LEDGER_FILE", "/tmp/main.ledger")
	t.Setenv("ANVIL_LEDGER_ACCOUNT", "Assets:Checking")
	t.Setenv("ANVIL_BANK", "Chase")

	cfg := LoadFromEnv()

	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "/tmp/main.ledger", cfg.Journal.File)
	_, acct, err := cfg.Account("Chase", "checking")
	require.NoError(t, err)
	assert.Equal(t, "Assets:Checking", acct.LedgerAccount)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("ANVIL_DB_PATH", "")
	t.Setenv("ANVIL_LEDGER_ACCOUNT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := LoadFromEnv()

	assert.Equal(t, "anvil.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Empty(t, cfg.Banks)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("ANVIL_DB_PATH", "fallback.db")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")

	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}
