package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// splitArg is one -split flag value
type splitArg struct {
	CategoryID int
	Amount     decimal.Decimal
}

// splitFlag collects repeated -split <category-id>=<amount> flags
type splitFlag []splitArg

func (s *splitFlag) String() string {
	parts := make([]string, len(*s))
	for i, a := range *s {
		parts[i] = fmt.Sprintf("%d=%s", a.CategoryID, a.Amount)
	}
	return strings.Join(parts, ",")
}

func (s *splitFlag) Set(v string) error {
	cat, amount, ok := strings.Cut(v, "=")
	if !ok {
		return errors.Errorf("split %q must look like <category-id>=<amount>", v)
	}
	id, err := strconv.Atoi(strings.TrimSpace(cat))
	if err != nil || id <= 0 {
		return errors.Errorf("split %q: invalid category id", v)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return errors.Errorf("split %q: invalid amount", v)
	}
	if !d.IsPositive() {
		return errors.Errorf("split %q: amount must be greater than zero", v)
	}
	*s = append(*s, splitArg{CategoryID: id, Amount: d})
	return nil
}

// intList parses a comma separated list of IDs
type intList []int

func (l *intList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return errors.Errorf("invalid id %q", p)
		}
		*l = append(*l, id)
	}
	return nil
}

// buildSplits allocates total across args in order through a SplitDraft.
// Every amount is honored as given; the draft rejects allocations that do
// not add up to the total.
func buildSplits(total decimal.Decimal, args []splitArg) ([]ledgerbook.SplitInput, error) {
	draft := ledgerbook.NewSplitDraft(total)
	draft.Enable()
	for i, a := range args {
		if i >= draft.Len() {
			if _, err := draft.Add(); err != nil {
				return nil, err
			}
		}
		if err := draft.SetCategory(i, a.CategoryID); err != nil {
			return nil, err
		}
		if err := draft.SetAmount(i, a.Amount); err != nil {
			return nil, err
		}
	}
	if draft.Len() > len(args) {
		return nil, errors.Errorf("splits leave %s of %s unallocated",
			draft.Remaining().StringFixed(2), total.StringFixed(2))
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft.Inputs(), nil
}

// parseDay parses a YYYY-MM-DD flag, defaulting to today when empty
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return ledgerbook.NewDate(time.Now()).Time, nil
	}
	d, err := ledgerbook.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// transactionsCmd holds the flags for the 'transactions' subcommand.
type transactionsCmd struct {
	ledgerID   int
	accountID  int
	categoryID int
	txType     string
	search     string
	from, to   string
	tags       intList
	page       int
	perPage    int
	all        bool
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list transactions" }
func (*transactionsCmd) Usage() string {
	return `ledgerbook transactions [-l <ledger>] [-account <id>] [-category <id>] [-type income|expense|transfer]
                        [-from <date>] [-to <date>] [-tags <id,...>] [-q <text>] [-page <n>] [-n <per page>] [-all]

  Lists one page of transactions, newest first, or every matching
  transaction with -all.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
	f.IntVar(&c.accountID, "account", 0, "Only transactions of this account")
	f.IntVar(&c.categoryID, "category", 0, "Only transactions of this category")
	f.StringVar(&c.txType, "type", "", "Only income, expense or transfer transactions")
	f.StringVar(&c.search, "q", "", "Search notes")
	f.StringVar(&c.from, "from", "", "First day, YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "Last day, YYYY-MM-DD")
	f.Var(&c.tags, "tags", "Comma separated tag IDs")
	f.IntVar(&c.page, "page", 1, "Page number")
	f.IntVar(&c.perPage, "n", 50, "Transactions per page")
	f.BoolVar(&c.all, "all", false, "Fetch every page")
}

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var start, end time.Time
	var err error
	if c.from != "" || c.to != "" {
		if start, err = parseDay(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
		if end, err = parseDay(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
		if c.from == "" {
			start = time.Time{}
		}
	}

	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}

		q := client.Transactions.Query(ledger.ID).Page(c.page).PerPage(c.perPage)
		if !start.IsZero() || !end.IsZero() {
			q = q.Between(start, end)
		}
		if c.accountID > 0 {
			q = q.WithAccount(c.accountID)
		}
		if c.categoryID > 0 {
			q = q.WithCategory(c.categoryID)
		}
		if c.txType != "" {
			q = q.WithType(ledgerbook.TransactionType(c.txType))
		}
		if len(c.tags) > 0 {
			q = q.WithTags(c.tags...)
		}
		if c.search != "" {
			q = q.Search(c.search)
		}

		if c.all {
			var txs []*ledgerbook.Transaction
			txnChan, errChan := q.Stream(ctx)
			for tx := range txnChan {
				txs = append(txs, tx)
			}
			if err := <-errChan; err != nil {
				return err
			}
			printMarkdown(transactionsMarkdown(txs, ledger.Currency))
			fmt.Printf("\n%d transactions\n", len(txs))
			return nil
		}

		list, err := q.Execute(ctx)
		if err != nil {
			return err
		}
		printMarkdown(transactionsMarkdown(list.Transactions, ledger.Currency))
		fmt.Printf("\nPage %d of %d, %d transactions\n", list.Page, list.TotalPages, list.Total)
		return nil
	})
}

// txAddCmd holds the flags for the 'tx-add' subcommand.
type txAddCmd struct {
	ledgerID   int
	accountID  int
	categoryID int
	income     bool
	date       string
	notes      string
	tags       intList
	splits     splitFlag
}

func (*txAddCmd) Name() string     { return "tx-add" }
func (*txAddCmd) Synopsis() string { return "record an income or expense" }
func (*txAddCmd) Usage() string {
	return `ledgerbook tx-add -account <id> (-category <id> | -split <category-id>=<amount> ...) [-income] [-d <date>] [-notes <text>] [-tags <id,...>] <amount>

  Records an expense, or an income with -income. Repeat -split to spread the
  amount over several categories; the split amounts must add up to the total.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
	f.IntVar(&c.accountID, "account", 0, "Account ID")
	f.IntVar(&c.categoryID, "category", 0, "Category ID")
	f.BoolVar(&c.income, "income", false, "Record an income instead of an expense")
	f.StringVar(&c.date, "d", "", "Date, YYYY-MM-DD. Defaults to today.")
	f.StringVar(&c.notes, "notes", "", "Notes")
	f.Var(&c.tags, "tags", "Comma separated tag IDs")
	f.Var(&c.splits, "split", "Split as <category-id>=<amount>, repeatable")
}

func (c *txAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one amount")
		return subcommands.ExitUsageError
	}
	total, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}
	date, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	params := &ledgerbook.CreateTransactionParams{
		AccountID:  c.accountID,
		CategoryID: c.categoryID,
		Type:       ledgerbook.TransactionTypeExpense,
		Amount:     total.Round(2).InexactFloat64(),
		Date:       date,
		Notes:      c.notes,
		TagIDs:     c.tags,
	}
	if c.income {
		params.Type = ledgerbook.TransactionTypeIncome
	}
	if len(c.splits) > 0 {
		if c.categoryID > 0 {
			fmt.Fprintln(os.Stderr, "Error: -category and -split are exclusive")
			return subcommands.ExitUsageError
		}
		if params.Splits, err = buildSplits(total, c.splits); err != nil {
			printError(err)
			return subcommands.ExitUsageError
		}
	}

	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		tx, err := client.Transactions.Create(ctx, ledger.ID, params)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s of %s (id %d)\n", tx.Type, money(tx.Amount, ledger.Currency), tx.ID)
		return nil
	})
}

// txDeleteCmd holds the flags for the 'tx-delete' subcommand.
type txDeleteCmd struct {
	ledgerID int
}

func (*txDeleteCmd) Name() string     { return "tx-delete" }
func (*txDeleteCmd) Synopsis() string { return "delete transactions" }
func (*txDeleteCmd) Usage() string {
	return `ledgerbook tx-delete [-l <ledger>] <id> [<id>...]

  Deleting one leg of a transfer deletes both legs.
`
}

func (c *txDeleteCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
}

func (c *txDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var ids intList
	for _, a := range f.Args() {
		if err := ids.Set(a); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Error: expected at least one transaction id")
		return subcommands.ExitUsageError
	}

	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := client.Transactions.Delete(ctx, ledger.ID, id); err != nil {
				return err
			}
			fmt.Printf("Deleted transaction %d\n", id)
		}
		return nil
	})
}

// transferCmd holds the flags for the 'transfer' subcommand.
type transferCmd struct {
	ledgerID int
	from, to int
	toLedger int
	received float64
	date     string
	notes    string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between accounts" }
func (*transferCmd) Usage() string {
	return `ledgerbook transfer -from <account> -to <account> [-to-ledger <ledger>] [-received <amount>] [-d <date>] <amount>

  Moves money between two accounts. With -to-ledger the destination account
  belongs to another ledger, possibly in another currency; -received is then
  the amount credited in that currency.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
	f.IntVar(&c.from, "from", 0, "Source account ID")
	f.IntVar(&c.to, "to", 0, "Destination account ID")
	f.IntVar(&c.toLedger, "to-ledger", 0, "Destination ledger ID when different")
	f.Float64Var(&c.received, "received", 0, "Amount credited to the destination. Defaults to the amount sent.")
	f.StringVar(&c.date, "d", "", "Date, YYYY-MM-DD. Defaults to today.")
	f.StringVar(&c.notes, "notes", "", "Notes")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one amount")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}
	date, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		details, err := client.Transactions.Transfer(ctx, ledger.ID, &ledgerbook.TransferParams{
			SourceAccountID:      c.from,
			DestinationAccountID: c.to,
			DestinationLedgerID:  c.toLedger,
			SourceAmount:         amount,
			DestinationAmount:    c.received,
			Date:                 date,
			Notes:                c.notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Transfer %s recorded\n", details.TransferID)
		return nil
	})
}
