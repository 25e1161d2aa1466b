package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/application/service"
	"github.com/eshaffer321/anvil/internal/render"
)

type monthlyCmd struct {
	app   *App
	flags ReportFlags
}

func (*monthlyCmd) Name() string { return "monthly-bal" }
func (*monthlyCmd) Synopsis() string {
	return "compare statement ending balances with the journal, month by month"
}
func (*monthlyCmd) Usage() string {
	return `anvil monthly-bal [-bank <bank>] [-account <account>] [-format md|html|csv|term] [-dry-run]

  Recomputes the account balance from the journal as of each statement end
  date. When the latest statement disagrees, prints every period since the
  mismatches began.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	c.flags.SetFlags(f, true)
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := c.app
	format, opts, err := c.flags.RenderOptions()
	if err != nil {
		return a.usage(err)
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	bank, acct, err := selectAccount(cfg, c.flags.Bank, c.flags.Account)
	if err != nil {
		return a.fail(err)
	}
	svc, closeStore, err := a.newService(cfg, c.flags.DryRun)
	if err != nil {
		return a.fail(err)
	}
	defer closeStore()

	account := a.serviceAccount(cfg, bank, acct)
	if !a.Quiet {
		printHeader(a.Stderr, c.Name(), account, c.flags.DryRun)
	}
	report, err := svc.MonthlyBalance(ctx, service.Request{Account: account, DryRun: c.flags.DryRun})
	if err != nil {
		return a.fail(err)
	}
	if err := a.writeMonthly([]*service.MonthlyReport{report}, format, opts); err != nil {
		return a.fail(err)
	}
	if !a.Quiet {
		printRunSummary(a.Stderr, report.RunID, svc.Storage())
	}
	return subcommands.ExitSuccess
}

func (a *App) writeMonthly(reports []*service.MonthlyReport, format render.Format, opts render.Options) error {
	w, closeOut, err := a.output()
	if err != nil {
		return err
	}
	for i, r := range reports {
		if i > 0 && format != render.FormatCSV {
			fmt.Fprintln(w)
		}
		if err := render.WriteMonthly(w, format, r.Report, opts); err != nil {
			_ = closeOut()
			return err
		}
	}
	return closeOut()
}

type auditCmd struct {
	app   *App
	flags ReportFlags
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "run monthly-bal for every configured account" }
func (*auditCmd) Usage() string {
	return `anvil audit [-format md|html|csv|term] [-dry-run]

  Audits the monthly balances of every configured account. This is the
  default command.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	c.flags.SetFlags(f, false)
}

func (c *auditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := c.app
	format, opts, err := c.flags.RenderOptions()
	if err != nil {
		return a.usage(err)
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	svc, closeStore, err := a.newService(cfg, c.flags.DryRun)
	if err != nil {
		return a.fail(err)
	}
	defer closeStore()

	reports, err := svc.Audit(ctx, a.allAccounts(cfg), c.flags.DryRun)
	if err != nil {
		return a.fail(err)
	}
	if err := a.writeMonthly(reports, format, opts); err != nil {
		return a.fail(err)
	}

	unbalanced := 0
	for _, r := range reports {
		if r.Report.HasBoundary() {
			unbalanced++
		}
	}
	if !a.Quiet {
		fmt.Fprintf(a.Stderr, "audited %d accounts, %d unbalanced\n", len(reports), unbalanced)
	}
	return subcommands.ExitSuccess
}
