package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

type runsCmd struct {
	app      *App
	limit    int
	kind     string
	account  string
	currency string
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list recorded runs, newest first" }
func (*runsCmd) Usage() string {
	return `anvil runs [-limit <n>] [-kind reconcile|monthly-bal] [-account <account>]

  Lists the reconcile and monthly-bal runs stored in the history database.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "Maximum number of runs to list")
	f.StringVar(&c.kind, "kind", "", "Only list runs of this kind")
	f.StringVar(&c.account, "account", "", "Only list runs of this account")
	f.StringVar(&c.currency, "currency", "USD", "Currency used to format amounts")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := c.app
	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	store, closeStore, err := openStore(cfg, false)
	if err != nil {
		return a.fail(err)
	}
	defer closeStore()
	if store == nil {
		return a.usage(errNoHistory)
	}

	runs, err := store.ListRuns(storage.RunFilters{
		Kind:    storage.RunKind(c.kind),
		Account: c.account,
		Limit:   c.limit,
	})
	if err != nil {
		return a.fail(err)
	}

	w, closeOut, err := a.output()
	if err != nil {
		return a.fail(err)
	}
	printRuns(w, runs, c.currency)
	if err := closeOut(); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}
