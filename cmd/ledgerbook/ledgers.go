package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/pkg/errors"
)

// ledgerFlag registers the common -l flag
func ledgerFlag(f *flag.FlagSet, id *int) {
	f.IntVar(id, "l", 0, "Ledger ID. Defaults to the only ledger if one exists.")
}

// resolveLedger loads the ledger with the given id, or the only ledger when
// id is zero
func resolveLedger(ctx context.Context, client *ledgerbook.Client, id int) (*ledgerbook.Ledger, error) {
	if id > 0 {
		return client.Ledgers.Get(ctx, id)
	}
	ledgers, err := client.Ledgers.List(ctx)
	if err != nil {
		return nil, err
	}
	return onlyLedger(ledgers)
}

func onlyLedger(ledgers []*ledgerbook.Ledger) (*ledgerbook.Ledger, error) {
	switch len(ledgers) {
	case 0:
		return nil, errors.New("no ledgers yet, create one with ledger-create")
	case 1:
		return ledgers[0], nil
	}
	names := make([]string, len(ledgers))
	for i, l := range ledgers {
		names[i] = fmt.Sprintf("%d (%s)", l.ID, l.Name)
	}
	return nil, errors.Errorf("%d ledgers found, pick one with -l: %s", len(ledgers), strings.Join(names, ", "))
}

// ledgersCmd holds the flags for the 'ledgers' subcommand.
type ledgersCmd struct{}

func (*ledgersCmd) Name() string     { return "ledgers" }
func (*ledgersCmd) Synopsis() string { return "list ledgers" }
func (*ledgersCmd) Usage() string {
	return `ledgerbook ledgers
`
}

func (*ledgersCmd) SetFlags(*flag.FlagSet) {}

func (*ledgersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledgers, err := client.Ledgers.List(ctx)
		if err != nil {
			return err
		}
		t := newTable("ID", "Name", "Currency", "Description")
		for _, l := range ledgers {
			t.add(fmt.Sprint(l.ID), l.Name, l.Currency, l.Description)
		}
		printMarkdown(t.String())
		return nil
	})
}

// ledgerCreateCmd holds the flags for the 'ledger-create' subcommand.
type ledgerCreateCmd struct {
	currency    string
	description string
}

func (*ledgerCreateCmd) Name() string     { return "ledger-create" }
func (*ledgerCreateCmd) Synopsis() string { return "create a ledger" }
func (*ledgerCreateCmd) Usage() string {
	return `ledgerbook ledger-create [-c <currency>] [-d <description>] <name>
`
}

func (c *ledgerCreateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "INR", "ISO 4217 currency code")
	f.StringVar(&c.description, "d", "", "Description")
}

func (c *ledgerCreateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := client.Ledgers.Create(ctx, &ledgerbook.CreateLedgerParams{
			Name:        strings.Join(f.Args(), " "),
			Currency:    c.currency,
			Description: c.description,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created ledger %q (id %d)\n", ledger.Name, ledger.ID)
		return nil
	})
}

// accountsCmd holds the flags for the 'accounts' subcommand.
type accountsCmd struct {
	ledgerID int
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with balances" }
func (*accountsCmd) Usage() string {
	return `ledgerbook accounts [-l <ledger>]
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		accounts, err := client.Accounts.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		t := newTable("ID", "Name", "Type", "Credit", "Debit", "Balance").right(3, 4, 5)
		for _, a := range accounts {
			t.add(
				fmt.Sprint(a.ID),
				a.Name,
				string(a.Type),
				money(a.TotalCredit, ledger.Currency),
				money(a.TotalDebit, ledger.Currency),
				money(a.Balance, ledger.Currency),
			)
		}
		printMarkdown(t.String())
		return nil
	})
}

// accountCreateCmd holds the flags for the 'account-create' subcommand.
type accountCreateCmd struct {
	ledgerID    int
	liability   bool
	opening     float64
	description string
}

func (*accountCreateCmd) Name() string     { return "account-create" }
func (*accountCreateCmd) Synopsis() string { return "create an account" }
func (*accountCreateCmd) Usage() string {
	return `ledgerbook account-create [-l <ledger>] [-liability] [-opening <amount>] <name>
`
}

func (c *accountCreateCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
	f.BoolVar(&c.liability, "liability", false, "Create a liability account instead of an asset account")
	f.Float64Var(&c.opening, "opening", 0, "Opening balance")
	f.StringVar(&c.description, "d", "", "Description")
}

func (c *accountCreateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accountType := ledgerbook.AccountTypeAsset
	if c.liability {
		accountType = ledgerbook.AccountTypeLiability
	}
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		account, err := client.Accounts.Create(ctx, ledger.ID, &ledgerbook.CreateAccountParams{
			Name:           strings.Join(f.Args(), " "),
			Type:           accountType,
			OpeningBalance: c.opening,
			Description:    c.description,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s account %q (id %d) in %s\n", account.Type, account.Name, account.ID, ledger.Name)
		return nil
	})
}

// categoriesCmd holds the flags for the 'categories' subcommand.
type categoriesCmd struct {
	flat   bool
	income bool
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories" }
func (*categoriesCmd) Usage() string {
	return `ledgerbook categories [-flat] [-income]

  Lists expense categories grouped under their groups, or income
  categories with -income.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.flat, "flat", false, "Print one \"Group / Category\" line per category")
	f.BoolVar(&c.income, "income", false, "List income categories")
}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	params := &ledgerbook.CategoryListParams{Type: ledgerbook.CategoryTypeExpense}
	if c.income {
		params.Type = ledgerbook.CategoryTypeIncome
	}
	return withClient(func(client *ledgerbook.Client) error {
		tree, err := client.Categories.List(ctx, params)
		if err != nil {
			return err
		}
		if c.flat {
			for _, fc := range ledgerbook.Flatten(tree) {
				fmt.Printf("%d\t%s\n", fc.ID, fc.Path)
			}
			return nil
		}
		printMarkdown(categoryTreeMarkdown(tree))
		return nil
	})
}

// categoryTreeMarkdown renders groups as nested bullet lists
func categoryTreeMarkdown(tree []*ledgerbook.Category) string {
	var b strings.Builder
	var walk func(nodes []*ledgerbook.Category, depth int)
	walk = func(nodes []*ledgerbook.Category, depth int) {
		for _, c := range nodes {
			indent := strings.Repeat("  ", depth)
			if c.IsGroup {
				fmt.Fprintf(&b, "%s- **%s**\n", indent, c.Name)
			} else {
				fmt.Fprintf(&b, "%s- %s `%d`\n", indent, c.Name, c.ID)
			}
			walk(c.Children, depth+1)
		}
	}
	walk(tree, 0)
	return b.String()
}

// tagsCmd holds the flags for the 'tags' subcommand.
type tagsCmd struct {
	query string
}

func (*tagsCmd) Name() string     { return "tags" }
func (*tagsCmd) Synopsis() string { return "list or search tags" }
func (*tagsCmd) Usage() string {
	return `ledgerbook tags [-q <text>]
`
}

func (c *tagsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Only tags matching this text")
}

func (c *tagsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		var tags []*ledgerbook.Tag
		var err error
		if c.query != "" {
			tags, err = client.Tags.Search(ctx, c.query)
		} else {
			tags, err = client.Tags.List(ctx)
		}
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Printf("%d\t%s\n", t.ID, t.Name)
		}
		return nil
	})
}
