package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

type jsonTransaction struct {
	Date     string            `json:"date"`
	AuxDate  string            `json:"aux_date,omitempty"`
	State    ledger.State      `json:"state,omitempty"`
	Payee    string            `json:"payee"`
	Code     string            `json:"code,omitempty"`
	Note     string            `json:"note,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Postings []jsonPosting     `json:"postings"`
}

type jsonPosting struct {
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Commodity string          `json:"commodity,omitempty"`
	State     ledger.State    `json:"state,omitempty"`
	Note      string          `json:"note,omitempty"`
	AuxDate   string          `json:"aux_date,omitempty"`
}

// DecodeJSONL reads one JSON transaction per line. Blank lines and lines
// starting with '#' are skipped.
func DecodeJSONL(r io.Reader, source string) (ledger.Sequence, error) {
	var txs []*ledger.Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var jt jsonTransaction
		if err := json.Unmarshal([]byte(text), &jt); err != nil {
			return ledger.Sequence{}, &ParseError{Source: source, Line: line, Err: err}
		}
		tx, err := jt.toLedger(source, line)
		if err != nil {
			return ledger.Sequence{}, &ParseError{Source: source, Line: line, Err: err}
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return ledger.Sequence{}, &ParseError{Source: source, Line: line, Err: err}
	}
	return ledger.NewSequence(txs...), nil
}

func (jt jsonTransaction) toLedger(source string, n int) (*ledger.Transaction, error) {
	date, err := ledger.ParseDate(jt.Date)
	if err != nil {
		return nil, err
	}
	aux, err := optionalDate(jt.AuxDate)
	if err != nil {
		return nil, err
	}
	if len(jt.Postings) == 0 {
		return nil, fmt.Errorf("transaction on %s has no postings", jt.Date)
	}
	payee := jt.Payee
	if payee == "" {
		payee = UnknownPayee
	}

	postings := make([]ledger.Posting, len(jt.Postings))
	for i, jp := range jt.Postings {
		if jp.Account == "" {
			return nil, fmt.Errorf("posting %d has no account", i+1)
		}
		paux, err := optionalDate(jp.AuxDate)
		if err != nil {
			return nil, err
		}
		postings[i] = ledger.Posting{
			Account:   jp.Account,
			Amount:    jp.Amount,
			Commodity: jp.Commodity,
			State:     jp.State,
			Note:      jp.Note,
			AuxDate:   paux,
		}
	}
	return ledger.NewTransaction(ledger.Transaction{
		Date:    date,
		AuxDate: aux,
		Payee:   payee,
		Code:    jt.Code,
		Note:    jt.Note,
		State:   jt.State,
		Tags:    withID(jt.Tags, source, n),
		Source:  source,
	}, postings...), nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ledger.ParseDate(s)
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ledger.DateKey(t)
}

// EncodeJSONL writes seq as one JSON transaction per line.
func EncodeJSONL(w io.Writer, seq ledger.Sequence) error {
	enc := json.NewEncoder(w)
	for _, tx := range seq.All() {
		jt := jsonTransaction{
			Date:    ledger.DateKey(tx.Date),
			AuxDate: formatOptional(tx.AuxDate),
			State:   tx.State,
			Payee:   tx.Payee,
			Code:    tx.Code,
			Note:    tx.Note,
			Tags:    tx.Tags,
		}
		for _, p := range tx.Postings() {
			jt.Postings = append(jt.Postings, jsonPosting{
				Account:   p.Account,
				Amount:    p.Amount,
				Commodity: p.Commodity,
				State:     p.State,
				Note:      p.Note,
				AuxDate:   formatOptional(p.AuxDate),
			})
		}
		if err := enc.Encode(jt); err != nil {
			return fmt.Errorf("encode transaction %s %s: %w", jt.Date, tx.Payee, err)
		}
	}
	return nil
}

// JSONLFile reads a JSON Lines journal.
type JSONLFile struct {
	Path string
}

// Read implements Reader.
func (f *JSONLFile) Read(_ context.Context) (ledger.Sequence, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return ledger.Sequence{}, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = file.Close() }()
	return DecodeJSONL(file, f.Path)
}
