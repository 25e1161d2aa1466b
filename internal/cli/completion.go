package cli

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

type boolFlag interface {
	IsBoolFlag() bool
}

// flagPredictors suggests values for flags by name. Flags not listed
// accept any value.
var flagPredictors = map[string]complete.Predictor{
	"config":   predict.Files("*.yaml"),
	"f":        predict.Files("*"),
	"o":        predict.Files("*"),
	"format":   predict.Set{"md", "html", "csv", "term"},
	"kind":     predict.Set{"reconcile", "monthly-bal"},
	"currency": predict.Set{"USD", "EUR", "GBP", "CAD"},
}

// Completion describes the command line for shell completion. It is built
// from the same flag definitions the commands register.
func Completion(a *App) *complete.Command {
	top := flag.NewFlagSet(Name, flag.ContinueOnError)
	a.SetFlags(top)

	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(top),
	}

	cdr := subcommands.NewCommander(top, Name)
	a.Register(cdr)
	cdr.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: predictors(fs)}
	})
	return root
}

func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	out := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(boolFlag); ok && b.IsBoolFlag() {
			out[f.Name] = nil
			return
		}
		if p, ok := flagPredictors[f.Name]; ok {
			out[f.Name] = p
			return
		}
		out[f.Name] = predict.Something
	})
	return out
}
