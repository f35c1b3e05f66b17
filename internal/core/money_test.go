package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyRounding(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"1", "1.00"},
		{"1.2", "1.20"},
		{"1.234", "1.23"},
		{"1.235", "1.24"}, // half away from zero
		{"-1.235", "-1.24"},
		{"2.005", "2.01"},
		{"-2.005", "-2.01"},
		{"0", "0.00"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tc.in, err)
		}
		if got := MoneyFromDecimal(d).String(); got != tc.out {
			t.Errorf("MoneyFromDecimal(%s) = %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestMoneySigned(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"100", "+100.00"},
		{"-50", "-50.00"},
		{"0", "0.00"},
	}
	for _, tc := range cases {
		m, err := ParseMoney(tc.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", tc.in, err)
		}
		if got := m.Signed(); got != tc.out {
			t.Errorf("Signed(%s) = %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestMoneyAdd(t *testing.T) {
	a, _ := ParseMoney("100")
	b, _ := ParseMoney("-50")
	if got := a.Add(b).String(); got != "50.00" {
		t.Errorf("100 + -50 = %s, want 50.00", got)
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, _ := ParseMoney("123.45")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "123.45" {
		t.Errorf("marshal = %s, want bare number 123.45", data)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip changed value: %s != %s", back, m)
	}
}

func TestParseMoneyInvalid(t *testing.T) {
	if _, err := ParseMoney("abc"); err == nil {
		t.Error("ParseMoney(\"abc\") expected error")
	}
}
