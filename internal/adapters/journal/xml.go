package journal

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// UnknownPayee is used for transactions without a payee.
const UnknownPayee = "PAYEE UNKNOWN"

type xmlReport struct {
	XMLName      xml.Name         `xml:"ledger"`
	Transactions []xmlTransaction `xml:"transactions>transaction"`
}

type xmlTransaction struct {
	State    string       `xml:"state,attr"`
	Date     string       `xml:"date"`
	AuxDate  string       `xml:"aux-date"`
	Code     *string      `xml:"code"`
	Payee    *string      `xml:"payee"`
	Note     string       `xml:"note"`
	Metadata xmlMetadata  `xml:"metadata"`
	Postings []xmlPosting `xml:"postings>posting"`
}

type xmlMetadata struct {
	Tags   []string   `xml:"tag"`
	Values []xmlValue `xml:"value"`
}

type xmlValue struct {
	Key    string `xml:"key,attr"`
	String string `xml:"string"`
}

type xmlPosting struct {
	State   string `xml:"state,attr"`
	AuxDate string `xml:"aux-date"`
	Account struct {
		Ref  string `xml:"ref,attr"`
		Name string `xml:"name"`
	} `xml:"account"`
	Amount struct {
		Symbol   string `xml:"commodity>symbol"`
		Quantity string `xml:"quantity"`
	} `xml:"post-amount>amount"`
	Note string `xml:"note"`
}

// DecodeXML parses the output of `ledger xml`. Source is recorded on every
// transaction and used in errors.
func DecodeXML(r io.Reader, source string) (ledger.Sequence, error) {
	var report xmlReport
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return ledger.Sequence{}, &ParseError{Source: source, Err: err}
	}

	txs := make([]*ledger.Transaction, 0, len(report.Transactions))
	for i, xt := range report.Transactions {
		tx, err := xt.toLedger(source, i+1)
		if err != nil {
			return ledger.Sequence{}, &ParseError{Source: source, Err: fmt.Errorf("transaction %d: %w", i+1, err)}
		}
		txs = append(txs, tx)
	}
	return ledger.NewSequence(txs...), nil
}

func (xt xmlTransaction) toLedger(source string, n int) (*ledger.Transaction, error) {
	state, err := ledger.ParseState(xt.State)
	if err != nil {
		return nil, err
	}
	date, err := ledger.ParseDate(xt.Date)
	if err != nil {
		return nil, err
	}
	header := ledger.Transaction{
		Date:   date,
		Payee:  UnknownPayee,
		Note:   strings.TrimSpace(xt.Note),
		State:  state,
		Source: source,
	}
	if xt.AuxDate != "" {
		if header.AuxDate, err = ledger.ParseDate(xt.AuxDate); err != nil {
			return nil, err
		}
	}
	if xt.Code != nil {
		header.Code = strings.TrimSpace(*xt.Code)
	}
	if xt.Payee != nil {
		header.Payee = strings.TrimSpace(*xt.Payee)
	}
	if len(xt.Metadata.Tags)+len(xt.Metadata.Values) > 0 {
		header.Tags = make(map[string]string)
		for _, tag := range xt.Metadata.Tags {
			header.Tags[strings.TrimSpace(tag)] = ""
		}
		for _, v := range xt.Metadata.Values {
			header.Tags[v.Key] = strings.TrimSpace(v.String)
		}
	}
	header.Tags = withID(header.Tags, source, n)

	postings := make([]ledger.Posting, 0, len(xt.Postings))
	for _, xp := range xt.Postings {
		p, err := xp.toLedger()
		if err != nil {
			return nil, fmt.Errorf("posting %q: %w", xp.Account.Name, err)
		}
		postings = append(postings, p)
	}
	return ledger.NewTransaction(header, postings...), nil
}

func (xp xmlPosting) toLedger() (ledger.Posting, error) {
	state, err := ledger.ParseState(xp.State)
	if err != nil {
		return ledger.Posting{}, err
	}
	amount, err := ParseAmount(xp.Amount.Quantity)
	if err != nil {
		return ledger.Posting{}, err
	}
	p := ledger.Posting{
		Account:   strings.TrimSpace(xp.Account.Name),
		Amount:    amount,
		Commodity: xp.Amount.Symbol,
		State:     state,
		Note:      strings.TrimSpace(xp.Note),
	}
	if xp.AuxDate != "" {
		if p.AuxDate, err = ledger.ParseDate(xp.AuxDate); err != nil {
			return ledger.Posting{}, err
		}
	}
	return p, nil
}

// ParseAmount parses a quantity such as "-1,234.50" into an exact decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// XMLFile reads a report previously written by `ledger xml`.
type XMLFile struct {
	Path string
}

// Read implements Reader.
func (f *XMLFile) Read(_ context.Context) (ledger.Sequence, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return ledger.Sequence{}, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = file.Close() }()
	return DecodeXML(file, f.Path)
}
