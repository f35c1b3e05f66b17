// Package report renders reply texts from ledger snapshots. Every function
// here is pure: it reads a snapshot and builds a string, nothing more.
package report

import (
	"strings"

	"moneyplus/internal/core"
)

const (
	divider     = "================"
	listHeader  = "=====账单明细====="
	balanceLine = "账单金额: "

	// UntaggedGroup collects transactions whose label carries no "#tag".
	UntaggedGroup = "未分类"
)

// Recorded renders the confirmation sent after a transaction is appended.
func Recorded(tx core.Transaction, led core.Ledger) string {
	var b strings.Builder
	b.WriteString("已记录: ")
	b.WriteString(tx.Amount.Signed())
	b.WriteString("元")
	if label := tx.Label(); label != "" {
		b.WriteString(" ")
		b.WriteString(label)
	}
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(balanceLine)
	b.WriteString(led.Balance.String())
	return b.String()
}

// Cleared renders the clear-account confirmation.
func Cleared() string {
	return "清账成功\n" + divider + "\n" + balanceLine + "0.00\n" + divider
}

// List renders the chronological transaction listing. An empty ledger
// renders as the bare balance line.
func List(led core.Ledger) string {
	if led.Empty() {
		return balanceLine + "0.00"
	}
	var b strings.Builder
	writeListing(&b, led)
	b.WriteString(divider)
	return b.String()
}

// Summary renders the listing followed by the tag-grouped totals. Groups
// appear in first-seen order; untagged transactions fall into the fixed
// UntaggedGroup bucket.
func Summary(led core.Ledger) string {
	if led.Empty() {
		return balanceLine + "0.00"
	}

	var b strings.Builder
	writeListing(&b, led)
	b.WriteString(divider)
	b.WriteString("\n")

	for _, g := range groupByTag(led) {
		b.WriteString("\n")
		b.WriteString(g.name)
		b.WriteString("\n")
		b.WriteString(formula(g.amounts))
		b.WriteString("=")
		b.WriteString(g.sum().String())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(divider)
	return b.String()
}

func writeListing(b *strings.Builder, led core.Ledger) {
	b.WriteString(balanceLine)
	b.WriteString(led.Balance.String())
	b.WriteString("\n")
	b.WriteString(listHeader)
	b.WriteString("\n")
	for _, tx := range led.Transactions {
		b.WriteString(tx.Amount.Signed())
		if label := tx.Label(); label != "" {
			b.WriteString(" ")
			b.WriteString(label)
		}
		b.WriteString("\n")
	}
}

type group struct {
	name    string
	amounts []core.Money
}

func (g group) sum() core.Money {
	total := core.Zero()
	for _, a := range g.amounts {
		total = total.Add(a)
	}
	return total
}

func groupByTag(led core.Ledger) []group {
	var groups []group
	index := make(map[string]int)
	for _, tx := range led.Transactions {
		key := tx.GroupKey()
		if key == "" {
			key = UntaggedGroup
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{name: key})
		}
		groups[i].amounts = append(groups[i].amounts, tx.Amount)
	}
	return groups
}

// formula joins signed two-decimal amounts into "100.00-50.00+3.00" form,
// with no leading "+" on the first term.
func formula(amounts []core.Money) string {
	var b strings.Builder
	for i, a := range amounts {
		if i > 0 && a.Decimal().Sign() >= 0 {
			b.WriteString("+")
		}
		b.WriteString(a.String())
	}
	return b.String()
}

// Help renders the static command reference.
func Help() string {
	return strings.Join([]string{
		"记账插件功能列表:",
		divider,
		"1. 记录收入: +金额 [描述] [#标签]",
		"   例如: +100 工资 #收入",
		"   支持计算: +50*2 #奖金",
		"",
		"2. 记录支出: -金额 [描述] [#标签]",
		"   例如: -50 晚餐 #餐饮",
		"   支持计算: -20*3 购物 #日用",
		"",
		"3. 查看账单: /查账 或 /cz",
		"4. 清空账单: /清账 或 /qz",
		"5. 按标签汇总: /汇总 或 /统计 或 /total",
		"6. 显示功能列表: /记账功能",
		divider,
		"注意: #后面的文字会被识别为标签，用于分类统计",
	}, "\n")
}
