package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/eshaffer321/anvil/internal/adapters/statements"
	"github.com/eshaffer321/anvil/internal/application/service"
	"github.com/eshaffer321/anvil/internal/infrastructure/config"
	"github.com/eshaffer321/anvil/internal/render"
)

// ReportFlags are common flags for the report commands
type ReportFlags struct {
	Bank     string
	Account  string
	Format   string
	Currency string
	DryRun   bool
}

// SetFlags registers the flags on f. Commands that report on every
// account leave out -bank and -account.
func (r *ReportFlags) SetFlags(f *flag.FlagSet, selectAccount bool) {
	if selectAccount {
		f.StringVar(&r.Bank, "bank", "", "Bank name (default: the first configured)")
		f.StringVar(&r.Account, "account", "", "Account name within the bank")
	}
	f.StringVar(&r.Format, "format", string(render.FormatTerminal), "Output format: md, html, csv or term")
	f.StringVar(&r.Currency, "currency", "USD", "Currency used to format amounts")
	f.BoolVar(&r.DryRun, "dry-run", false, "Do not record the run in the history database")
}

// RenderOptions converts the flags to render options.
func (r *ReportFlags) RenderOptions() (render.Format, render.Options, error) {
	format, err := render.ParseFormat(r.Format)
	if err != nil {
		return "", render.Options{}, err
	}
	return format, render.Options{Currency: r.Currency}, nil
}

// selectAccount finds the configured account named by bank and account.
// With neither set it returns the first account; with only an account
// name it searches every bank.
func selectAccount(cfg *config.Config, bank, account string) (*config.BankConfig, *config.AccountConfig, error) {
	switch {
	case bank == "" && account == "":
		return cfg.DefaultAccount()
	case bank != "" && account == "":
		for i := range cfg.Banks {
			b := &cfg.Banks[i]
			if len(b.Accounts) > 0 && strings.EqualFold(b.Name, bank) {
				return b, &b.Accounts[0], nil
			}
		}
		return nil, nil, fmt.Errorf("%w: bank %s", config.ErrUnknownAccount, bank)
	case bank == "":
		for i := range cfg.Banks {
			if b, a, err := cfg.Account(cfg.Banks[i].Name, account); err == nil {
				return b, a, nil
			}
		}
		return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownAccount, account)
	default:
		return cfg.Account(bank, account)
	}
}

// serviceAccount builds the service account, with its statement reader,
// from the configuration.
func (a *App) serviceAccount(cfg *config.Config, bank *config.BankConfig, acct *config.AccountConfig) service.Account {
	m := acct.Mapping
	return service.Account{
		Bank:          bank.Name,
		Name:          acct.Name,
		LedgerAccount: acct.LedgerAccount,
		Statements: &statements.JSONReader{
			Dir:     acct.StatementsDir,
			Glob:    acct.StatementGlob,
			Account: acct.LedgerAccount,
			Mapping: statements.Mapping{
				StartDate:        m.StartDate,
				EndDate:          m.EndDate,
				Beginning:        m.Beginning,
				Ending:           m.Ending,
				Entries:          m.Entries,
				EntryDate:        m.EntryDate,
				EntryAuxDate:     m.EntryAuxDate,
				EntryPayee:       m.EntryPayee,
				EntryAmount:      m.EntryAmount,
				EntrySection:     m.EntrySection,
				EntryCode:        m.EntryCode,
				SectionTotals:    m.SectionTotals,
				NegativeSections: m.NegativeSections,
			},
			Logger: a.logger(cfg, "statements"),
		},
	}
}

// allAccounts returns every configured account in config order.
func (a *App) allAccounts(cfg *config.Config) []service.Account {
	var out []service.Account
	for i := range cfg.Banks {
		b := &cfg.Banks[i]
		for j := range b.Accounts {
			out = append(out, a.serviceAccount(cfg, b, &b.Accounts[j]))
		}
	}
	return out
}
