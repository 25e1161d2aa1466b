package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/adapters/journal"
)

type exportCmd struct {
	app *App
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the journal as JSON Lines" }
func (*exportCmd) Usage() string {
	return `anvil [-o <file.jsonl>] export

  Reads the configured journal and writes one JSON transaction per line.
  The output can be used as a journal with format jsonl.
`
}

func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := c.app
	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	reader, err := a.journalReader(cfg, a.logger(cfg, "journal"))
	if err != nil {
		return a.fail(err)
	}
	seq, err := reader.Read(ctx)
	if err != nil {
		return a.fail(err)
	}

	w, closeOut, err := a.output()
	if err != nil {
		return a.fail(err)
	}
	if err := journal.EncodeJSONL(w, seq); err != nil {
		_ = closeOut()
		return a.fail(err)
	}
	if err := closeOut(); err != nil {
		return a.fail(err)
	}
	if !a.Quiet && a.Output != "" {
		fmt.Fprintf(a.Stderr, "exported %d transactions to %s\n", seq.Len(), a.Output)
	}
	return subcommands.ExitSuccess
}
