package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/anvil/internal/adapters/journal"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

const testJournal = `{"date":"2023-12-31","state":"cleared","payee":"Opening balance","postings":[{"account":"Assets:Checking","amount":"1000"},{"account":"Equity:Opening","amount":"-1000"}]}
{"date":"2024-01-05","state":"cleared","payee":"Landlord","code":"1042","postings":[{"account":"Assets:Checking","amount":"-25.00"},{"account":"Expenses:Rent","amount":"25.00"}]}
`

const testStatement = `{
  "period": {"start": "2024-01-01", "end": "2024-01-31"},
  "summary": {"beginning_balance": 1000, "ending_balance": 975},
  "entries": [
    {"date": "01/05", "check_number": "1042", "amount": "25.00", "section": "checks paid"}
  ]
}`

const testConfig = `root: %s
journal:
  file: books.jsonl
  format: jsonl
banks:
  - name: Chase
    accounts:
      - name: checking
        ledger_account: Assets:Checking
        statements_dir: statements
storage:
  database_path: history.db
observability:
  logging:
    level: info
`

type fixture struct {
	dir    string
	config string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	app    *App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.jsonl"), []byte(testJournal), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "statements"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "statements", "2024_01.json"), []byte(testStatement), 0o644))

	cfgPath := filepath.Join(dir, "anvil.yaml")
	cfg := strings.Replace(testConfig, "%s", dir, 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	f := &fixture{dir: dir, config: cfgPath, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	f.app = &App{Stdout: f.stdout, Stderr: f.stderr}
	return f
}

func (f *fixture) run(args ...string) subcommands.ExitStatus {
	f.stdout.Reset()
	f.stderr.Reset()
	f.app = &App{Stdout: f.stdout, Stderr: f.stderr}
	return Run(context.Background(), f.app, append([]string{"-config", f.config}, args...))
}

func (f *fixture) runs(t *testing.T) []storage.Run {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(f.dir, "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.ListRuns(storage.RunFilters{})
	require.NoError(t, err)
	return runs
}

func TestRun_Reconcile(t *testing.T) {
	f := newFixture(t)

	status := f.run("reconcile", "-format", "md")

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	out := f.stdout.String()
	assert.Contains(t, out, "| Journal entry | Bank entry | Journal total | Bank total | Status |")
	assert.Contains(t, out, "2024-01-05 Landlord -$25.00")
	assert.Contains(t, out, "_synced_")
	assert.Contains(t, f.stderr.String(), "reconcile: Chase/checking [Assets:Checking]")
	assert.Contains(t, f.stderr.String(), "Recorded run")

	runs := f.runs(t)
	require.Len(t, runs, 1)
	assert.Equal(t, storage.KindReconcile, runs[0].Kind)
	assert.Equal(t, "Chase", runs[0].Bank)
}

func TestRun_ReconcileToFile(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "report.html")

	status := f.run("-o", out, "reconcile", "-format", "html", "-dry-run")

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	assert.Empty(t, f.stdout.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table>")

	_, err = os.Stat(filepath.Join(f.dir, "history.db"))
	assert.True(t, os.IsNotExist(err), "dry run does not open the history")
}

func TestRun_DefaultIsAudit(t *testing.T) {
	f := newFixture(t)

	status := f.run()

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	assert.Contains(t, f.stdout.String(), "agree through 2024-01-31 (1 statements)")
	assert.Contains(t, f.stderr.String(), "audited 1 accounts, 0 unbalanced")

	runs := f.runs(t)
	require.Len(t, runs, 1)
	assert.Equal(t, storage.KindMonthly, runs[0].Kind)
	assert.True(t, runs[0].Balanced)
}

func TestRun_MonthlyCSV(t *testing.T) {
	f := newFixture(t)

	status := f.run("-q", "monthly-bal", "-account", "CHECKING", "-format", "csv", "-dry-run")

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	lines := strings.Split(strings.TrimSpace(f.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "as_of,statement_balance,ledger_balance,monthly_delta,cumulative_delta,matched,informational", lines[0])
	assert.Equal(t, "2024-01-31,975,975,0,0,true,false", lines[1])
	assert.Empty(t, f.stderr.String())
}

func TestRun_Runs(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, subcommands.ExitSuccess, f.run("reconcile", "-format", "md"))

	status := f.run("runs", "-kind", "reconcile")

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	assert.Contains(t, f.stdout.String(), "reconcile")
	assert.Contains(t, f.stdout.String(), "Chase/checking")

	require.Equal(t, subcommands.ExitSuccess, f.run("runs", "-kind", "monthly-bal"))
	assert.Contains(t, f.stdout.String(), "no runs recorded")
}

func TestRun_Export(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "export.jsonl")

	status := f.run("-o", out, "export")

	require.Equal(t, subcommands.ExitSuccess, status, f.stderr.String())
	assert.Contains(t, f.stderr.String(), "exported 2 transactions")

	file, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	seq, err := journal.DecodeJSONL(file, out)
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Len())
	assert.Equal(t, "1042", seq.At(1).Code)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		status subcommands.ExitStatus
		stderr string
	}{
		{"unknown format", []string{"reconcile", "-format", "pdf"}, subcommands.ExitUsageError, "unknown format"},
		{"unknown account", []string{"reconcile", "-account", "savings"}, subcommands.ExitFailure, "unknown account"},
		{"unknown bank", []string{"monthly-bal", "-bank", "Citi"}, subcommands.ExitFailure, "unknown account"},
		{"unknown command", []string{"frobnicate"}, subcommands.ExitUsageError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			status := f.run(tt.args...)

			assert.Equal(t, tt.status, status)
			assert.Contains(t, f.stderr.String(), tt.stderr)
		})
	}

	t.Run("missing config", func(t *testing.T) {
		var stderr bytes.Buffer
		app := &App{Stdout: &bytes.Buffer{}, Stderr: &stderr}

		status := Run(context.Background(), app, []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "reconcile"})

		assert.Equal(t, subcommands.ExitFailure, status)
		assert.Contains(t, stderr.String(), "no configuration file found")
	})
}

func TestCompletion(t *testing.T) {
	cmd := Completion(&App{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	for _, name := range []string{"reconcile", "monthly-bal", "audit", "runs", "serve", "export", "help"} {
		assert.Contains(t, cmd.Sub, name)
	}
	assert.Contains(t, cmd.Flags, "config")
	assert.Contains(t, cmd.Flags, "o")
	assert.Contains(t, cmd.Sub["reconcile"].Flags, "format")
	assert.Contains(t, cmd.Sub["reconcile"].Flags, "dry-run")
	assert.NotContains(t, cmd.Sub["audit"].Flags, "account")
}
