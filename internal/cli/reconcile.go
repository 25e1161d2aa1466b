package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/application/service"
	"github.com/eshaffer321/anvil/internal/render"
)

type reconcileCmd struct {
	app   *App
	flags ReportFlags
}

func (*reconcileCmd) Name() string { return "reconcile" }
func (*reconcileCmd) Synopsis() string {
	return "align the journal with the bank statements of one account"
}
func (*reconcileCmd) Usage() string {
	return `anvil reconcile [-bank <bank>] [-account <account>] [-format md|html|csv|term] [-dry-run]

  Walks the cleared journal entries and the statement entries of one account
  in date order and prints the running totals of both sides. Rows where the
  totals agree are marked balanced.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	c.flags.SetFlags(f, true)
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	report, err := svc.Reconcile(ctx, service.Request{Account: account, DryRun: c.flags.DryRun})
	if err != nil {
		return a.fail(err)
	}

	w, closeOut, err := a.output()
	if err != nil {
		return a.fail(err)
	}
	if err := render.WriteReconcile(w, format, report.Result, opts); err != nil {
		_ = closeOut()
		return a.fail(err)
	}
	if err := closeOut(); err != nil {
		return a.fail(err)
	}
	if !a.Quiet {
		printRunSummary(a.Stderr, report.RunID, svc.Storage())
	}
	return subcommands.ExitSuccess
}
