package main

import (
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdownTables parses md as GitHub flavored markdown and returns the
// column count of every table, in order
func markdownTables(t *testing.T, md string) []int {
	t.Helper()

	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var cols []int
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == extast.KindTable {
			cols = append(cols, len(n.(*extast.Table).Alignments))
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return cols
}

func TestSplitFlag(t *testing.T) {
	var s splitFlag
	require.NoError(t, s.Set("12=40.50"))
	require.NoError(t, s.Set(" 7 = 9.5 "))
	assert.Equal(t, "12=40.5,7=9.5", s.String())

	for _, bad := range []string{"12", "x=3", "0=3", "5=abc", "5=0", "5=-2"} {
		var s splitFlag
		assert.Error(t, s.Set(bad), bad)
	}
}

func TestIntList(t *testing.T) {
	var l intList
	require.NoError(t, l.Set("1, 2,3"))
	require.NoError(t, l.Set("9"))
	assert.Equal(t, intList{1, 2, 3, 9}, l)
	assert.Error(t, l.Set("4,,5"))
}

func TestBuildSplits(t *testing.T) {
	total := decimal.RequireFromString("100")
	arg := func(cat int, amount string) splitArg {
		return splitArg{CategoryID: cat, Amount: decimal.RequireFromString(amount)}
	}

	t.Run("exact", func(t *testing.T) {
		inputs, err := buildSplits(total, []splitArg{arg(1, "60"), arg(2, "25.5"), arg(3, "14.5")})
		require.NoError(t, err)
		assert.Equal(t, []ledgerbook.SplitInput{
			{CategoryID: 1, Amount: 60},
			{CategoryID: 2, Amount: 25.5},
			{CategoryID: 3, Amount: 14.5},
		}, inputs)
	})

	t.Run("single", func(t *testing.T) {
		inputs, err := buildSplits(total, []splitArg{arg(4, "100")})
		require.NoError(t, err)
		assert.Equal(t, []ledgerbook.SplitInput{{CategoryID: 4, Amount: 100}}, inputs)
	})

	t.Run("short", func(t *testing.T) {
		_, err := buildSplits(total, []splitArg{arg(1, "60"), arg(2, "30")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "10.00 of 100.00 unallocated")
	})

	t.Run("over", func(t *testing.T) {
		_, err := buildSplits(total, []splitArg{arg(1, "60"), arg(2, "50")})
		require.Error(t, err)
		assert.True(t, ledgerbook.IsValidationError(err))
		assert.Contains(t, err.Error(), "split amounts add up to 110.00, expected 100.00")
	})

	t.Run("first takes everything", func(t *testing.T) {
		_, err := buildSplits(total, []splitArg{arg(1, "100"), arg(2, "20")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "120.00")
	})
}

func TestOnlyLedger(t *testing.T) {
	_, err := onlyLedger(nil)
	assert.ErrorContains(t, err, "no ledgers yet")

	home := &ledgerbook.Ledger{ID: 3, Name: "Home"}
	got, err := onlyLedger([]*ledgerbook.Ledger{home})
	require.NoError(t, err)
	assert.Same(t, home, got)

	_, err = onlyLedger([]*ledgerbook.Ledger{home, {ID: 8, Name: "Travel"}})
	assert.ErrorContains(t, err, "2 ledgers found, pick one with -l: 3 (Home), 8 (Travel)")
}

func TestTable(t *testing.T) {
	tb := newTable("Name", "Amount").right(1)
	tb.add("Rent | flat", "$10.00")
	assert.Equal(t, "| Name | Amount |\n| --- | --: |\n| Rent \\| flat | $10.00 |\n", tb.String())
	assert.Equal(t, []int{2}, markdownTables(t, tb.String()))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KiB", humanSize(1536))
	assert.Equal(t, "3.0 MiB", humanSize(3*1024*1024))
}

func TestRenderSummary(t *testing.T) {
	md := renderSummary(summaryReport{
		Ledger: &ledgerbook.Ledger{Name: "Home", Currency: "USD"},
		Period: "2024-01-01 to 2024-06-30",
		NetWorth: &ledgerbook.NetWorth{
			Assets:      5000,
			Liabilities: 1200.5,
			MutualFunds: 300,
			NetWorth:    4099.5,
		},
		Breakdown: []*ledgerbook.CategoryAmount{
			{CategoryName: "Groceries", Amount: 412.3, Percentage: 61.25},
			{CategoryName: "", Amount: 10, Percentage: 1.5},
		},
	})

	assert.True(t, strings.HasPrefix(md, "# Home\n\n_2024-01-01 to 2024-06-30_\n"))
	assert.Contains(t, md, "| Liabilities | $1,200.50 |")
	assert.Contains(t, md, "| **Net worth** | **$4,099.50** |")
	assert.Contains(t, md, "| Groceries | $412.30 | 61.2% |")
	assert.Contains(t, md, "| - | $10.00 | 1.5% |")
	assert.Contains(t, md, "_No transactions in this period._")
	assert.Equal(t, []int{2, 3}, markdownTables(t, md))
}

func TestPortfolioMarkdown(t *testing.T) {
	ledger := &ledgerbook.Ledger{Name: "Home", Currency: "INR"}
	funds := []*ledgerbook.MutualFund{
		{AMCName: "HDFC", InvestedAmount: 1000, CurrentValue: 1100},
	}
	md := portfolioMarkdown(ledger, funds, nil)

	assert.Contains(t, md, "# Home portfolio")
	assert.Contains(t, md, "| HDFC | 1 |")
	assert.Contains(t, md, "| 10.00% |")
	assert.Contains(t, md, "## Physical assets\n\n_No holdings._")
	assert.Equal(t, []int{6}, markdownTables(t, md))
}

func TestDefaultStart(t *testing.T) {
	end := time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC), defaultStart(end))
}

func TestFlagPredictors(t *testing.T) {
	fs := flag.NewFlagSet("transactions", flag.ContinueOnError)
	(&transactionsCmd{}).SetFlags(fs)
	preds := flagPredictors(fs)

	assert.Empty(t, preds["all"].Predict(""))
	assert.Equal(t, []string{"income", "expense", "transfer"}, preds["type"].Predict(""))
	assert.NotNil(t, preds["account"])
	assert.Contains(t, preds, "l")
}
