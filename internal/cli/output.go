package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/anvil/internal/application/service"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
	"github.com/eshaffer321/anvil/internal/render"
)

// printHeader prints the run header to the diagnostics stream.
func printHeader(w io.Writer, command string, acct service.Account, dryRun bool) {
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "%s: %s [%s]%s\n", command, acct, acct.LedgerAccount, mode)
}

// printRunSummary prints where the run was recorded and the all-time stats.
func printRunSummary(w io.Writer, runID string, store storage.Repository) {
	if runID == "" || store == nil {
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Recorded run %s\n", runID)

	stats, err := store.GetStats()
	if err != nil || stats.TotalRuns == 0 {
		return
	}
	fmt.Fprintf(w, "All-time: runs=%d reconcile=%d monthly=%d balanced=%d unbalanced=%d\n",
		stats.TotalRuns, stats.ReconcileRuns, stats.MonthlyRuns, stats.BalancedRuns, stats.UnbalancedRuns)
}

// printRuns lists runs one per line.
func printRuns(w io.Writer, runs []storage.Run, currency string) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	for _, r := range runs {
		status := "balanced"
		if !r.Balanced {
			status = "unbalanced"
			if r.Boundary != "" {
				status += " since " + r.Boundary
			}
		}
		fmt.Fprintf(w, "%s  %s  %-11s %-24s journal %s  bank %s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.ID,
			r.Kind,
			r.Bank+"/"+r.Account,
			render.FormatAmount(r.JournalTotal, currency),
			render.FormatAmount(r.BankTotal, currency),
			status,
		)
	}
}
