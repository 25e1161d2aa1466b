package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// DefaultGlob matches statement files named after their closing month.
const DefaultGlob = "20??_??.json"

// CounterAccount prefixes the balancing posting of every statement entry.
const CounterAccount = "Liabilities"

var monthDay = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)

// JSONReader reads every statement file in Dir matching Glob, in file name
// order.
type JSONReader struct {
	Dir  string
	Glob string
	// Account is the ledger account entries are booked against.
	Account string
	Mapping Mapping
	Logger  *slog.Logger
}

// Read implements Reader.
func (r *JSONReader) Read(ctx context.Context) (Statements, error) {
	glob := r.Glob
	if glob == "" {
		glob = DefaultGlob
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := filepath.Glob(filepath.Join(r.Dir, glob))
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		logger.Warn("no statements found", "dir", r.Dir, "glob", glob)
	}

	var out Statements
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := r.readFile(file)
		if err != nil {
			return nil, err
		}
		logger.Debug("statement loaded", "file", file, "entries", st.Transactions.Len(), "end", ledger.DateKey(st.End))
		out = append(out, st)
	}
	out.Sort()
	return out, nil
}

func (r *JSONReader) readFile(file string) (*Statement, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	defer func() { _ = f.Close() }()
	return Decode(f, file, r.Account, r.Mapping)
}

// Decode reads one statement document. Every entry becomes a cleared
// transaction with two postings: one on account (or account:section when
// the entry names a section) and a balancing one under CounterAccount.
func Decode(rd io.Reader, file, account string, m Mapping) (*Statement, error) {
	m = m.WithDefaults()

	dec := json.NewDecoder(rd)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{File: file, Err: err}
	}

	st := &Statement{File: file, Account: account}
	var err error
	wrap := func(field string, err error) error {
		return &ParseError{File: file, Err: fmt.Errorf("%s: %w", field, err)}
	}
	if st.Start, err = dateAt(doc, m.StartDate); err != nil {
		return nil, wrap("start date", err)
	}
	if st.End, err = dateAt(doc, m.EndDate); err != nil {
		return nil, wrap("end date", err)
	}
	if st.Beginning, err = amountAt(doc, m.Beginning); err != nil {
		return nil, wrap("beginning balance", err)
	}
	if st.Ending, err = amountAt(doc, m.Ending); err != nil {
		return nil, wrap("ending balance", err)
	}

	raw, err := jsonpath.Get(m.Entries, doc)
	if err != nil {
		return nil, wrap("entries", err)
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, wrap("entries", fmt.Errorf("expected a list, got %T", raw))
	}

	txs := make([]*ledger.Transaction, 0, len(entries))
	bySection := map[string]decimal.Decimal{}
	for i, entry := range entries {
		tx, section, err := decodeEntry(entry, i, st, m)
		if err != nil {
			return nil, wrap(fmt.Sprintf("entry %d", i+1), err)
		}
		bySection[section] = bySection[section].Add(tx.Subtotal(account))
		txs = append(txs, tx)
	}
	st.Transactions = ledger.NewSequence(txs...)

	if err := checkSections(doc, m, bySection); err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	if err := st.Check(); err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	return st, nil
}

func decodeEntry(entry any, i int, st *Statement, m Mapping) (*ledger.Transaction, string, error) {
	rawDate, err := stringAt(entry, m.EntryDate)
	if err != nil {
		return nil, "", fmt.Errorf("date: %w", err)
	}
	date, err := completeDate(rawDate, st.Start, st.End)
	if err != nil {
		return nil, "", err
	}
	amount, err := amountAt(entry, m.EntryAmount)
	if err != nil {
		return nil, "", fmt.Errorf("amount: %w", err)
	}

	section := strings.ToLower(optionalString(entry, m.EntrySection))
	if m.isNegative(section) {
		amount = amount.Abs().Neg()
	}
	code := optionalString(entry, m.EntryCode)
	payee := optionalString(entry, m.EntryPayee)
	if payee == "" && code != "" {
		payee = fmt.Sprintf("Check for $%s", amount.Abs().StringFixed(2))
	}
	if payee == "" {
		payee = "PAYEE UNKNOWN"
	}

	header := ledger.Transaction{
		Date:   date,
		Payee:  payee,
		Code:   code,
		State:  ledger.Cleared,
		Source: st.File,
		Tags: map[string]string{
			ledger.IDTag: uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", st.File, i))).String(),
		},
	}
	if s := optionalString(entry, m.EntryAuxDate); s != "" {
		if header.AuxDate, err = completeDate(s, st.Start, st.End); err != nil {
			return nil, "", fmt.Errorf("aux date: %w", err)
		}
	}
	if section != "" {
		header.Tags["section"] = section
	}

	account, counter := st.Account, CounterAccount
	if section != "" {
		account += ":" + section
		counter += ":" + section
	}
	return ledger.NewTransaction(header,
		ledger.Posting{Account: account, Amount: amount, Commodity: "$", State: ledger.Cleared},
		ledger.Posting{Account: counter, Amount: amount.Neg(), Commodity: "$"},
	), section, nil
}

func checkSections(doc any, m Mapping, got map[string]decimal.Decimal) error {
	raw, err := jsonpath.Get(m.SectionTotals, doc)
	if err != nil || raw == nil {
		return nil
	}
	totals, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("section totals: expected an object, got %T", raw)
	}
	want := make(map[string]decimal.Decimal, len(totals))
	for name, v := range totals {
		d, err := toDecimal(v)
		if err != nil {
			return fmt.Errorf("section total %q: %w", name, err)
		}
		if m.isNegative(name) {
			d = d.Abs().Neg()
		}
		want[strings.ToLower(name)] = d
	}
	for _, section := range slices.Sorted(maps.Keys(got)) {
		if _, ok := want[section]; !ok && section != "" {
			return fmt.Errorf("section %q is not in the summary", section)
		}
	}
	// a printed section without entries must total zero
	for _, section := range slices.Sorted(maps.Keys(want)) {
		w, sum := want[section], got[section]
		if !w.Equal(sum) {
			return fmt.Errorf("%w: section %q sums to %s, summary says %s", ErrUnbalancedStatement, section, sum, w)
		}
	}
	return nil
}

// completeDate parses a full date, or a MM/DD date whose year is taken
// from the statement period. December entries on a statement that spans
// the new year belong to the start year.
func completeDate(s string, start, end time.Time) (time.Time, error) {
	mm := monthDay.FindStringSubmatch(strings.TrimSpace(s))
	if mm == nil {
		return ledger.ParseDate(s)
	}
	month, _ := strconv.Atoi(mm[1])
	day, _ := strconv.Atoi(mm[2])
	year := end.Year()
	if start.Year() != end.Year() && month == 12 {
		year = start.Year()
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func get(v any, path string) (any, error) {
	val, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, err
	}
	// a filter expression yields a list; keep the first answer
	if list, ok := val.([]any); ok && len(list) > 0 && strings.ContainsAny(path, "[?*") {
		val = list[0]
	}
	return val, nil
}

func stringAt(v any, path string) (string, error) {
	val, err := get(v, path)
	if err != nil {
		return "", err
	}
	switch x := val.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case nil:
		return "", fmt.Errorf("%s is null", path)
	default:
		return fmt.Sprint(x), nil
	}
}

func optionalString(v any, path string) string {
	s, err := stringAt(v, path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func dateAt(v any, path string) (time.Time, error) {
	s, err := stringAt(v, path)
	if err != nil {
		return time.Time{}, err
	}
	return ledger.ParseDate(s)
}

func amountAt(v any, path string) (decimal.Decimal, error) {
	val, err := get(v, path)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return toDecimal(val)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(x)
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			s = "-" + strings.Trim(s, "()")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid amount %q", x)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("invalid amount %v", v)
	}
}
