// Package journal reads bookkeeping journals into ledger sequences.
//
// Three sources are supported: running the ledger binary and decoding its
// xml report, reading a previously exported xml report, and a JSON Lines
// file with one transaction per line.
package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// Reader loads a journal.
type Reader interface {
	Read(ctx context.Context) (ledger.Sequence, error)
}

// Formats accepted by New.
const (
	FormatLedgerXML = "ledger-xml"
	FormatXML       = "xml"
	FormatJSONL     = "jsonl"
)

// Options selects and configures a reader.
type Options struct {
	Format string
	File   string
	// Binary and Search apply to FormatLedgerXML only.
	Binary string
	Search string
	Logger *slog.Logger
}

// New returns the reader for opts.Format. An empty format means
// FormatLedgerXML.
func New(opts Options) (Reader, error) {
	if opts.File == "" {
		return nil, fmt.Errorf("journal file not set")
	}
	switch opts.Format {
	case "", FormatLedgerXML:
		return &LedgerCLI{Binary: opts.Binary, File: opts.File, Search: opts.Search, Logger: opts.Logger}, nil
	case FormatXML:
		return &XMLFile{Path: opts.File}, nil
	case FormatJSONL:
		return &JSONLFile{Path: opts.File}, nil
	default:
		return nil, fmt.Errorf("unknown journal format %q", opts.Format)
	}
}

// ParseError reports malformed journal input.
type ParseError struct {
	Source string
	// Line is 1-based, or 0 when unknown.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// withID sets the id tag of an untagged transaction to a UUID derived from
// its source and position, so repeated reads of the same journal agree.
func withID(tags map[string]string, source string, n int) map[string]string {
	if _, ok := tags[ledger.IDTag]; ok {
		return tags
	}
	if tags == nil {
		tags = make(map[string]string, 1)
	}
	tags[ledger.IDTag] = uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", source, n)).String()
	return tags
}
