package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TimeLayout is the second-precision timestamp format used in persisted
// records, e.g. "2026-08-31 12:00:00".
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrPersistence       = errors.New("persistence failure")
	ErrCorruptRecord     = errors.New("corrupt ledger record")
)

// Transaction is one immutable ledger entry. Amount is always the rounded
// evaluation of Expression; Description and Tag are kept as separate fields
// and joined only for display (see Label).
type Transaction struct {
	Amount      Money
	Expression  string
	Description string
	Tag         string // leading "#" retained; empty when untagged
	Timestamp   time.Time
}

// Label returns the composite display field: description and tag joined by a
// single space, either side may be absent.
func (t Transaction) Label() string {
	switch {
	case t.Description != "" && t.Tag != "":
		return t.Description + " " + t.Tag
	case t.Description != "":
		return t.Description
	default:
		return t.Tag
	}
}

// GroupKey returns the summary grouping key: the trimmed text after the
// first "#" of the composite label, or "" when the label carries no tag.
func (t Transaction) GroupKey() string {
	label := t.Label()
	if i := strings.Index(label, "#"); i >= 0 {
		return strings.TrimSpace(label[i+1:])
	}
	return ""
}

type transactionRecord struct {
	Amount      Money  `json:"amount"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
	Tag         string `json:"tag"`
	Timestamp   string `json:"timestamp"`
}

// MarshalJSON encodes the timestamp in the second-precision record layout.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionRecord{
		Amount:      t.Amount,
		Expression:  t.Expression,
		Description: t.Description,
		Tag:         t.Tag,
		Timestamp:   t.Timestamp.Format(TimeLayout),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. Timestamps are read in local
// time, matching how they were written.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec transactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimeLayout, rec.Timestamp, time.Local)
	if err != nil {
		return err
	}
	*t = Transaction{
		Amount:      rec.Amount,
		Expression:  rec.Expression,
		Description: rec.Description,
		Tag:         rec.Tag,
		Timestamp:   ts,
	}
	return nil
}

// Ledger is one user's balance plus the append-only transaction log.
// Balance always equals the two-decimal rounded sum of the logged amounts.
type Ledger struct {
	Balance      Money         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// NewLedger returns the empty ledger every user starts from.
func NewLedger() Ledger {
	return Ledger{Balance: Zero(), Transactions: []Transaction{}}
}

// Append adds tx to the log and re-rounds the running balance.
func (l *Ledger) Append(tx Transaction) {
	l.Transactions = append(l.Transactions, tx)
	l.Balance = l.Balance.Add(tx.Amount)
}

// Empty reports whether the log holds no transactions.
func (l Ledger) Empty() bool {
	return len(l.Transactions) == 0
}
