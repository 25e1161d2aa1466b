package candidates

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

type sideIndex struct {
	soloByAmount     map[string][]Candidate
	multiByAmount    map[string][]Candidate
	combinedByAmount map[string][]Candidate
	soloByDate       map[string][]Candidate
	multiByDate      map[string][]Candidate
	combinedByDate   map[string][]Candidate
	members          map[*ledger.Transaction]bool
	order            []*ledger.Transaction
}

func newSideIndex() *sideIndex {
	return &sideIndex{
		soloByAmount:     make(map[string][]Candidate),
		multiByAmount:    make(map[string][]Candidate),
		combinedByAmount: make(map[string][]Candidate),
		soloByDate:       make(map[string][]Candidate),
		multiByDate:      make(map[string][]Candidate),
		combinedByDate:   make(map[string][]Candidate),
		members:          make(map[*ledger.Transaction]bool),
	}
}

// Index holds the candidates of both sides for one account.
type Index struct {
	account string
	sides   [2]*sideIndex
}

// Build indexes both sequences for the account. The two sides are built
// concurrently. Transactions whose relevant subtotal is zero are left out.
// Solo candidates are dated by their posting's effective date, group
// candidates by the transaction's.
func Build(account string, journal, bank ledger.Sequence) *Index {
	idx := &Index{account: account}
	var wg sync.WaitGroup
	for side, seq := range map[Side]ledger.Sequence{Journal: journal, Bank: bank} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx.sides[side] = buildSide(account, side, seq)
		}()
	}
	wg.Wait()
	return idx
}

func buildSide(account string, side Side, seq ledger.Sequence) *sideIndex {
	si := newSideIndex()
	for _, tx := range seq.All() {
		subtotal := tx.Subtotal(account)
		if subtotal.IsZero() {
			continue
		}
		relevant := tx.Relevant(account)
		for _, p := range relevant {
			c := Candidate{Kind: Solo, Side: side, Transaction: tx, Postings: []*ledger.Posting{p}, Amount: p.Amount}
			dateKey := ledger.DateKey(p.EffectiveDate())
			si.add(si.soloByAmount, amountKey(p.Amount), c)
			si.add(si.soloByDate, dateKey, c)
			si.add(si.combinedByAmount, amountKey(p.Amount), c)
			si.add(si.combinedByDate, dateKey, c)
		}
		if len(relevant) > 1 {
			dateKey := ledger.DateKey(tx.EffectiveDate())
			c := Candidate{Kind: Group, Side: side, Transaction: tx, Postings: relevant, Amount: subtotal}
			si.add(si.multiByAmount, amountKey(subtotal), c)
			si.add(si.multiByDate, dateKey, c)
			si.add(si.combinedByAmount, amountKey(subtotal), c)
			si.add(si.combinedByDate, dateKey, c)
		}
		si.members[tx] = true
		si.order = append(si.order, tx)
	}
	return si
}

func (si *sideIndex) add(m map[string][]Candidate, key string, c Candidate) {
	m[key] = append(m[key], c)
}

// Account returns the account prefix the index was built for.
func (i *Index) Account() string { return i.account }

// CandidatesForAmount returns solo and group candidates on side whose amount
// equals amount, regardless of scale.
func (i *Index) CandidatesForAmount(side Side, amount decimal.Decimal) []Candidate {
	return clone(i.sides[side].combinedByAmount[amountKey(amount)])
}

// CandidatesForDate returns solo and group candidates on side dated on the
// same day as date.
func (i *Index) CandidatesForDate(side Side, date time.Time) []Candidate {
	return clone(i.sides[side].combinedByDate[ledger.DateKey(date)])
}

// SoloForAmount returns only the single-posting candidates for amount.
func (i *Index) SoloForAmount(side Side, amount decimal.Decimal) []Candidate {
	return clone(i.sides[side].soloByAmount[amountKey(amount)])
}

// GroupsForAmount returns only the posting-group candidates for amount.
func (i *Index) GroupsForAmount(side Side, amount decimal.Decimal) []Candidate {
	return clone(i.sides[side].multiByAmount[amountKey(amount)])
}

// SoloForDate returns only the single-posting candidates for date.
func (i *Index) SoloForDate(side Side, date time.Time) []Candidate {
	return clone(i.sides[side].soloByDate[ledger.DateKey(date)])
}

// GroupsForDate returns only the posting-group candidates for date.
func (i *Index) GroupsForDate(side Side, date time.Time) []Candidate {
	return clone(i.sides[side].multiByDate[ledger.DateKey(date)])
}

// Contains reports whether tx was indexed on side.
func (i *Index) Contains(side Side, tx *ledger.Transaction) bool {
	return i.sides[side].members[tx]
}

// Len returns the number of indexed transactions on side.
func (i *Index) Len(side Side) int { return len(i.sides[side].order) }

// Counterparts returns the candidates on the other side whose amount equals
// the relevant subtotal of tx.
func (i *Index) Counterparts(side Side, tx *ledger.Transaction) []Candidate {
	return i.CandidatesForAmount(side.Other(), tx.Subtotal(i.account))
}

// NearbyCandidates returns candidates on the other side that match any of
// the match keys of tx, comparing absolute amounts and allowing dates up to
// dayRange days apart. Each candidate appears once.
func (i *Index) NearbyCandidates(side Side, tx *ledger.Transaction, dayRange int) []Candidate {
	other := i.sides[side.Other()]
	type seenKey struct {
		tx   *ledger.Transaction
		kind Kind
		p    *ledger.Posting
	}
	seen := map[seenKey]bool{}
	var out []Candidate
	for _, key := range ledger.MatchKeys(tx, i.account, dayRange) {
		for _, c := range other.combinedByDate[ledger.DateKey(key.Date)] {
			if !c.Amount.Abs().Equal(key.Amount) {
				continue
			}
			k := seenKey{tx: c.Transaction, kind: c.Kind}
			if c.Kind == Solo {
				k.p = c.Postings[0]
			}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, c)
		}
	}
	return out
}

// Unmatched returns the indexed transactions on side for which the other
// side has no candidate of the same amount, in indexing order.
func (i *Index) Unmatched(side Side) []*ledger.Transaction {
	var out []*ledger.Transaction
	other := i.sides[side.Other()]
	for _, tx := range i.sides[side].order {
		if len(other.combinedByAmount[amountKey(tx.Subtotal(i.account))]) == 0 {
			out = append(out, tx)
		}
	}
	return out
}

func clone(cs []Candidate) []Candidate {
	if len(cs) == 0 {
		return nil
	}
	out := make([]Candidate, len(cs))
	copy(out, cs)
	return out
}
