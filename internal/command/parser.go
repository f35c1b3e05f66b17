// Package command classifies raw chat text into typed ledger commands.
//
// Anything that is not a transaction ("+"/"-" prefix) or an exact alias
// match is ignored: the engine never intercepts unrelated conversation.
package command

import (
	"strings"

	"moneyplus/internal/eval"
)

// Kind identifies the operation a piece of chat text asks for.
type Kind int

const (
	// KindIgnore marks text that is not addressed to the ledger at all.
	KindIgnore Kind = iota
	// KindTransaction records a signed amount.
	KindTransaction
	// KindInvalid marks a transaction attempt whose expression failed the
	// shape check; it produces no reply, only a diagnostic log entry.
	KindInvalid
	// KindClear resets the ledger.
	KindClear
	// KindList renders the chronological transaction listing.
	KindList
	// KindSummary renders the listing plus the tag-grouped totals.
	KindSummary
	// KindHelp renders the command reference.
	KindHelp
)

// String returns the kind's log name.
func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindInvalid:
		return "invalid"
	case KindClear:
		return "clear"
	case KindList:
		return "list"
	case KindSummary:
		return "summary"
	case KindHelp:
		return "help"
	default:
		return "ignore"
	}
}

// Command is the parsed form of one inbound chat message. Expression,
// Description and Tag are only populated for transaction commands.
type Command struct {
	Kind        Kind
	Expression  string // signed arithmetic text, e.g. "-20*3"
	Description string // free text between expression and tag, may be empty
	Tag         string // "#" plus the trimmed tag text, may be empty
	Err         error  // shape-check failure, set only for KindInvalid
}

// Parse classifies trimmed chat text. Alias matching is exact and
// case-sensitive; there is no fuzzy matching.
func Parse(text string) Command {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		return parseTransaction(text)
	}
	switch text {
	case "/清账", "/qz":
		return Command{Kind: KindClear}
	case "/查账", "/cz":
		return Command{Kind: KindList}
	case "/汇总", "/统计", "/total":
		return Command{Kind: KindSummary}
	case "/记账功能":
		return Command{Kind: KindHelp}
	}
	return Command{Kind: KindIgnore}
}

func parseTransaction(text string) Command {
	body := text
	tag := ""
	if i := strings.Index(body, "#"); i >= 0 {
		tag = "#" + strings.TrimSpace(body[i+1:])
		body = strings.TrimSpace(body[:i])
	}

	expr := body
	desc := ""
	if i := strings.Index(body, " "); i >= 0 {
		expr = body[:i]
		desc = strings.TrimSpace(body[i+1:])
	}

	cmd := Command{Kind: KindTransaction, Expression: expr, Description: desc, Tag: tag}
	if err := eval.Check(expr); err != nil {
		cmd.Kind = KindInvalid
		cmd.Err = err
	}
	return cmd
}
