package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"golang.org/x/term"
)

// printMarkdown renders md for the terminal. Output that is not a terminal
// gets the raw markdown.
func printMarkdown(md string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}

	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w - 4
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// table writes a markdown table. Pipes inside cells are escaped.
type table struct {
	header []string
	align  []string
	rows   [][]string
}

func newTable(header ...string) *table {
	align := make([]string, len(header))
	for i := range align {
		align[i] = "---"
	}
	return &table{header: header, align: align}
}

// right aligns the given columns to the right
func (t *table) right(cols ...int) *table {
	for _, c := range cols {
		t.align[c] = "--:"
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(t.header)
	writeRow(t.align)
	for _, r := range t.rows {
		writeRow(r)
	}
	return b.String()
}

func money(amount float64, currency string) string {
	return ledgerbook.FormatFloat(amount, currency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// transactionsMarkdown lists a page of transactions
func transactionsMarkdown(txs []*ledgerbook.Transaction, currency string) string {
	t := newTable("ID", "Date", "Account", "Category", "Type", "Amount", "Notes").right(5)
	for _, tx := range txs {
		category := tx.CategoryName
		if tx.IsSplit {
			names := make([]string, 0, len(tx.Splits))
			for _, s := range tx.Splits {
				names = append(names, s.CategoryName)
			}
			category = "split: " + strings.Join(names, ", ")
		}
		if tx.IsTransfer {
			category = "transfer"
		}
		t.add(
			fmt.Sprint(tx.ID),
			tx.Date.String(),
			orDash(tx.AccountName),
			orDash(category),
			string(tx.Type),
			money(tx.Amount, currency),
			tx.Notes,
		)
	}
	return t.String()
}

// holdingsMarkdown renders grouped holdings with a total row
func holdingsMarkdown(title string, groups []ledgerbook.HoldingSummary, total ledgerbook.HoldingSummary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	if total.Holdings == 0 {
		b.WriteString("_No holdings._\n\n")
		return b.String()
	}
	t := newTable("Group", "Holdings", "Invested", "Value", "Gain", "Gain %").right(1, 2, 3, 4, 5)
	row := func(h ledgerbook.HoldingSummary, bold bool) {
		name := h.Name
		if bold {
			name = "**" + name + "**"
		}
		t.add(
			name,
			fmt.Sprint(h.Holdings),
			ledgerbook.FormatAmount(h.Invested, currency),
			ledgerbook.FormatAmount(h.CurrentValue, currency),
			ledgerbook.FormatAmount(h.UnrealizedGain, currency),
			h.GainPercent().StringFixed(2)+"%",
		)
	}
	for _, g := range groups {
		row(g, false)
	}
	row(total, true)
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// summaryReport is everything the summary command shows for a ledger
type summaryReport struct {
	Ledger    *ledgerbook.Ledger
	NetWorth  *ledgerbook.NetWorth
	Breakdown []*ledgerbook.CategoryAmount
	Trend     []*ledgerbook.TrendPoint
	Period    string
}

// renderSummary builds the markdown of a ledger summary
func renderSummary(r summaryReport) string {
	cur := r.Ledger.Currency
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Ledger.Name)
	if r.Period != "" {
		fmt.Fprintf(&b, "_%s_\n\n", r.Period)
	}

	if nw := r.NetWorth; nw != nil {
		b.WriteString("## Net worth\n\n")
		t := newTable("", "Amount").right(1)
		t.add("Assets", money(nw.Assets, cur))
		t.add("Liabilities", money(nw.Liabilities, cur))
		t.add("Mutual funds", money(nw.MutualFunds, cur))
		t.add("Physical assets", money(nw.PhysicalAssets, cur))
		t.add("**Net worth**", "**"+money(nw.NetWorth, cur)+"**")
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	b.WriteString("## Spending by category\n\n")
	if len(r.Breakdown) == 0 {
		b.WriteString("_No expenses in this period._\n\n")
	} else {
		t := newTable("Category", "Amount", "Share").right(1, 2)
		for _, c := range r.Breakdown {
			t.add(orDash(c.CategoryName), money(c.Amount, cur), fmt.Sprintf("%.1f%%", c.Percentage))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	b.WriteString("## Income and expense\n\n")
	if len(r.Trend) == 0 {
		b.WriteString("_No transactions in this period._\n")
	} else {
		t := newTable("Period", "Income", "Expense", "Net").right(1, 2, 3)
		for _, p := range r.Trend {
			t.add(p.Period, money(p.Income, cur), money(p.Expense, cur), money(p.Net, cur))
		}
		b.WriteString(t.String())
	}
	return b.String()
}
