package core

import (
	"encoding/json"
	"testing"
	"time"
)

func mustMoney(t *testing.T, s string) Money {
	t.Helper()
	m, err := ParseMoney(s)
	if err != nil {
		t.Fatalf("ParseMoney(%q): %v", s, err)
	}
	return m
}

func TestTransactionLabel(t *testing.T) {
	cases := []struct {
		name string
		desc string
		tag  string
		want string
	}{
		{"description and tag", "工资", "#收入", "工资 #收入"},
		{"description only", "晚餐", "", "晚餐"},
		{"tag only", "", "#收入", "#收入"},
		{"neither", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := Transaction{Description: tc.desc, Tag: tc.tag}
			if got := tx.Label(); got != tc.want {
				t.Errorf("Label() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTransactionGroupKey(t *testing.T) {
	cases := []struct {
		name string
		desc string
		tag  string
		want string
	}{
		{"tagged", "工资", "#收入", "收入"},
		{"tag only", "", "# 收入 ", "收入"},
		{"untagged", "晚餐", "", ""},
		{"hash inside description", "a#b", "", "b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := Transaction{Description: tc.desc, Tag: tc.tag}
			if got := tx.GroupKey(); got != tc.want {
				t.Errorf("GroupKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLedgerBalanceInvariant(t *testing.T) {
	led := NewLedger()
	amounts := []string{"100", "-50", "0.1", "0.2", "-0.05"}
	sum := Zero()
	for _, a := range amounts {
		m := mustMoney(t, a)
		led.Append(Transaction{Amount: m, Expression: a})
		sum = sum.Add(m)
	}
	if !led.Balance.Equal(sum) {
		t.Errorf("balance %s != rounded sum %s", led.Balance, sum)
	}
	if led.Balance.String() != "50.25" {
		t.Errorf("balance = %s, want 50.25", led.Balance)
	}
	if len(led.Transactions) != len(amounts) {
		t.Errorf("log has %d entries, want %d", len(led.Transactions), len(amounts))
	}
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	led := NewLedger()
	led.Append(Transaction{
		Amount:      mustMoney(t, "100"),
		Expression:  "+100",
		Description: "工资",
		Tag:         "#收入",
		Timestamp:   time.Now().Truncate(time.Second),
	})
	led.Append(Transaction{
		Amount:     mustMoney(t, "-50"),
		Expression: "-50",
		Timestamp:  time.Now().Truncate(time.Second),
	})

	data, err := json.Marshal(led)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Ledger
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !back.Balance.Equal(led.Balance) {
		t.Errorf("balance %s != %s", back.Balance, led.Balance)
	}
	if len(back.Transactions) != len(led.Transactions) {
		t.Fatalf("log has %d entries, want %d", len(back.Transactions), len(led.Transactions))
	}
	for i, want := range led.Transactions {
		got := back.Transactions[i]
		if !got.Amount.Equal(want.Amount) {
			t.Errorf("tx %d amount %s != %s", i, got.Amount, want.Amount)
		}
		if got.Expression != want.Expression || got.Description != want.Description || got.Tag != want.Tag {
			t.Errorf("tx %d fields changed: %+v != %+v", i, got, want)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("tx %d timestamp %v != %v", i, got.Timestamp, want.Timestamp)
		}
	}
}

func TestEmptyLedgerMarshalsEmptyLog(t *testing.T) {
	data, err := json.Marshal(NewLedger())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"balance":0.00,"transactions":[]}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}
