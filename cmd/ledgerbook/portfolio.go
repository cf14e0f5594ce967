package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
)

// fundsCmd holds the flags for the 'funds' subcommand.
type fundsCmd struct {
	ledgerID int
}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "list mutual fund holdings" }
func (*fundsCmd) Usage() string {
	return `ledgerbook funds [-l <ledger>]
`
}

func (c *fundsCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
}

func (c *fundsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		funds, err := client.MutualFunds.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		printMarkdown(fundsMarkdown(funds, ledger.Currency))
		return nil
	})
}

func fundsMarkdown(funds []*ledgerbook.MutualFund, currency string) string {
	t := newTable("ID", "Fund", "AMC", "Units", "NAV", "NAV date", "Invested", "Value", "Gain").right(3, 4, 6, 7, 8)
	for _, f := range funds {
		navDate := "-"
		if !f.LastNAVUpdate.IsZero() {
			navDate = f.LastNAVUpdate.String()
		}
		t.add(
			fmt.Sprint(f.ID),
			f.Name,
			orDash(f.AMCName),
			fmt.Sprintf("%.3f", f.TotalUnits),
			fmt.Sprintf("%.4f", f.LatestNAV),
			navDate,
			money(f.InvestedAmount, currency),
			money(f.CurrentValue, currency),
			money(f.UnrealizedGain, currency),
		)
	}
	return t.String()
}

// assetsCmd holds the flags for the 'assets' subcommand.
type assetsCmd struct {
	ledgerID int
}

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "list physical asset holdings" }
func (*assetsCmd) Usage() string {
	return `ledgerbook assets [-l <ledger>]
`
}

func (c *assetsCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
}

func (c *assetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		assets, err := client.PhysicalAssets.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		t := newTable("ID", "Asset", "Type", "Quantity", "Price", "Value", "Gain").right(3, 4, 5, 6)
		for _, a := range assets {
			typeName, unit := "-", ""
			if a.AssetType != nil {
				typeName, unit = a.AssetType.Name, a.AssetType.Unit
			}
			t.add(
				fmt.Sprint(a.ID),
				a.Name,
				typeName,
				strings.TrimSpace(fmt.Sprintf("%.3f %s", a.TotalQuantity, unit)),
				money(a.LatestPricePerUnit, ledger.Currency),
				money(a.CurrentValue, ledger.Currency),
				money(a.UnrealizedGain, ledger.Currency),
			)
		}
		printMarkdown(t.String())
		return nil
	})
}

// portfolioCmd holds the flags for the 'portfolio' subcommand.
type portfolioCmd struct {
	ledgerID int
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "summarize investments by AMC and asset type" }
func (*portfolioCmd) Usage() string {
	return `ledgerbook portfolio [-l <ledger>]

  Totals mutual funds per AMC and physical assets per asset type.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	ledgerFlag(f, &c.ledgerID)
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		ledger, err := resolveLedger(ctx, client, c.ledgerID)
		if err != nil {
			return err
		}
		funds, err := client.MutualFunds.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		assets, err := client.PhysicalAssets.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		printMarkdown(portfolioMarkdown(ledger, funds, assets))
		return nil
	})
}

func portfolioMarkdown(ledger *ledgerbook.Ledger, funds []*ledgerbook.MutualFund, assets []*ledgerbook.PhysicalAsset) string {
	fs := ledgerbook.SummarizeFunds(funds)
	as := ledgerbook.SummarizeAssets(assets)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s portfolio\n\n", ledger.Name)
	b.WriteString(holdingsMarkdown("Mutual funds", fs.Groups, fs.Total, ledger.Currency))
	b.WriteString(holdingsMarkdown("Physical assets", as.Groups, as.Total, ledger.Currency))

	invested := fs.Total.Invested.Add(as.Total.Invested)
	value := fs.Total.CurrentValue.Add(as.Total.CurrentValue)
	fmt.Fprintf(&b, "**Invested** %s, **value** %s, **gain** %s\n",
		ledgerbook.FormatAmount(invested, ledger.Currency),
		ledgerbook.FormatAmount(value, ledger.Currency),
		ledgerbook.FormatAmount(value.Sub(invested), ledger.Currency))
	return b.String()
}
