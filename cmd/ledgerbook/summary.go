package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	ledgerID int
	from, to string
	interval string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display net worth, spending and cash flow" }
func (*summaryCmd) Usage() string {
	return `ledgerbook summary [-l <ledger>] [-from <date>] [-to <date>] [-interval day|week|month|year]

  Displays the ledger's net worth, spending per category and the income
  and expense trend. The period defaults to the last six months.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
	f.StringVar(&c.from, "from", "", "First day, YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "Last day, YYYY-MM-DD. Defaults to today.")
	f.StringVar(&c.interval, "interval", "month", "Trend bucket: day, week, month or year")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	end, err := parseDay(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	start := defaultStart(end)
	if c.from != "" {
		if start, err = parseDay(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		report := summaryReport{
			Ledger: ledger,
			Period: fmt.Sprintf("%s to %s", ledgerbook.NewDate(start), ledgerbook.NewDate(end)),
		}

		if report.NetWorth, err = client.Insights.NetWorth(ctx, ledger.ID); err != nil {
			return err
		}
		report.Breakdown, err = client.Insights.CategoryBreakdown(ctx, ledger.ID, &ledgerbook.InsightParams{
			Start: start,
			End:   end,
			Type:  ledgerbook.TransactionTypeExpense,
		})
		if err != nil {
			return err
		}
		report.Trend, err = client.Insights.IncomeExpenseTrend(ctx, ledger.ID, &ledgerbook.InsightParams{
			Start:    start,
			End:      end,
			Interval: c.interval,
		})
		if err != nil {
			return err
		}

		printMarkdown(renderSummary(report))
		return nil
	})
}

// defaultStart is the first day of the month five months before end
func defaultStart(end time.Time) time.Time {
	return time.Date(end.Year(), end.Month()-5, 1, 0, 0, 0, 0, time.UTC)
}
