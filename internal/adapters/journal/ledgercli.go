package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// LedgerCLI reads a journal by running `ledger xml`. Include directives are
// resolved by ledger itself.
type LedgerCLI struct {
	// Binary defaults to "ledger".
	Binary string
	File   string
	// Search holds extra query terms, split on whitespace.
	Search string
	// Options holds extra command line options placed before the command.
	Options []string
	Logger  *slog.Logger
}

// Args returns the arguments passed to the ledger binary.
func (l *LedgerCLI) Args() []string {
	args := []string{"-f", l.File, "--date-format", "%Y/%m/%d"}
	args = append(args, l.Options...)
	args = append(args, "xml")
	return append(args, strings.Fields(l.Search)...)
}

// Read implements Reader.
func (l *LedgerCLI) Read(ctx context.Context) (ledger.Sequence, error) {
	binary := l.Binary
	if binary == "" {
		binary = "ledger"
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	args := l.Args()
	logger.Debug("loading journal", "binary", binary, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ledger.Sequence{}, fmt.Errorf("ledger failed on %s: %s: %w", l.File, strings.TrimSpace(stderr.String()), err)
		}
		return ledger.Sequence{}, fmt.Errorf("run %s: %w", binary, err)
	}

	seq, err := DecodeXML(&stdout, l.File)
	if err != nil {
		return ledger.Sequence{}, err
	}
	logger.Debug("journal loaded", "file", l.File, "transactions", seq.Len())
	return seq, nil
}
