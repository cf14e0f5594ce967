package main

import (
	"fmt"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/shopspring/decimal"
)

// tolerance is the largest rounding difference accepted between totals
var tolerance = decimal.RequireFromString("0.01")

// findings collects the problems seen while checking one method
type findings struct {
	checked  int
	problems []string
}

func (f *findings) add(format string, args ...interface{}) {
	f.problems = append(f.problems, fmt.Sprintf(format, args...))
}

func sameAmount(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func checkLedgers(f *findings, ledgers []*ledgerbook.Ledger) {
	ids := map[int]bool{}
	for _, l := range ledgers {
		f.checked++
		if ids[l.ID] {
			f.add("ledger %d listed twice", l.ID)
		}
		ids[l.ID] = true
		if l.Name == "" {
			f.add("ledger %d has no name", l.ID)
		}
		if len(l.Currency) != 3 {
			f.add("ledger %d has currency %q, want an ISO 4217 code", l.ID, l.Currency)
		}
	}
}

// checkAccounts verifies balance = opening + credit - debit for assets and
// opening + debit - credit for liabilities
func checkAccounts(f *findings, accounts []*ledgerbook.Account) {
	for _, a := range accounts {
		f.checked++
		opening, credit, debit := dec(a.OpeningBalance), dec(a.TotalCredit), dec(a.TotalDebit)

		var want decimal.Decimal
		switch a.Type {
		case ledgerbook.AccountTypeAsset:
			want = opening.Add(credit).Sub(debit)
		case ledgerbook.AccountTypeLiability:
			want = opening.Add(debit).Sub(credit)
		default:
			f.add("account %d (%s) has unknown type %q", a.ID, a.Name, a.Type)
			continue
		}
		if got := dec(a.Balance); !sameAmount(got, want) {
			f.add("account %d (%s) balance %s, expected %s", a.ID, a.Name, got.StringFixed(2), want.StringFixed(2))
		}
	}
}

func checkTransactions(f *findings, ledgerID int, txs []*ledgerbook.Transaction) {
	for _, tx := range txs {
		f.checked++
		if tx.LedgerID != 0 && tx.LedgerID != ledgerID {
			f.add("transaction %d belongs to ledger %d", tx.ID, tx.LedgerID)
		}
		if tx.Amount <= 0 {
			f.add("transaction %d has non-positive amount %v", tx.ID, tx.Amount)
		}
		if tx.Date.IsZero() {
			f.add("transaction %d has no date", tx.ID)
		}
		if tx.IsTransfer && tx.TransferID == "" {
			f.add("transaction %d is a transfer without a transfer id", tx.ID)
		}
		if !tx.IsSplit {
			if len(tx.Splits) > 0 {
				f.add("transaction %d is not split but has %d splits", tx.ID, len(tx.Splits))
			}
			continue
		}
		if tx.CategoryID != nil {
			f.add("split transaction %d also has category %d", tx.ID, *tx.CategoryID)
		}
		inputs := make([]ledgerbook.SplitInput, 0, len(tx.Splits))
		for _, s := range tx.Splits {
			inputs = append(inputs, ledgerbook.SplitInput{CategoryID: s.CategoryID, Amount: s.Amount})
		}
		if err := ledgerbook.ReconcileSplits(tx.Amount, inputs); err != nil {
			f.add("transaction %d: %v", tx.ID, err)
		}
	}
}

// checkTransfer verifies both legs exist, carry the same transfer id and
// move money out of the source and into the destination
func checkTransfer(f *findings, d *ledgerbook.TransferDetails) {
	f.checked++
	src, dst := d.SourceTransaction, d.DestinationTransaction
	if src == nil || dst == nil {
		f.add("transfer %s is missing a leg", d.TransferID)
		return
	}
	if src.TransferID != d.TransferID || dst.TransferID != d.TransferID {
		f.add("transfer %s legs carry ids %q and %q", d.TransferID, src.TransferID, dst.TransferID)
	}
	if src.AccountID == dst.AccountID && d.SourceLedgerID == d.DestinationLedgerID {
		f.add("transfer %s moves money within account %d", d.TransferID, src.AccountID)
	}
	if src.Type != ledgerbook.TransactionTypeExpense || dst.Type != ledgerbook.TransactionTypeIncome {
		f.add("transfer %s legs are %s/%s, want expense/income", d.TransferID, src.Type, dst.Type)
	}
	if d.SourceLedgerID == d.DestinationLedgerID && !sameAmount(dec(src.Amount), dec(dst.Amount)) {
		f.add("transfer %s sends %v but receives %v", d.TransferID, src.Amount, dst.Amount)
	}
}

func checkCategories(f *findings, tree []*ledgerbook.Category) {
	for _, group := range tree {
		for _, c := range group.Children {
			f.checked++
			if c.ParentID == nil || *c.ParentID != group.ID {
				f.add("category %d (%s) is listed under group %d with a different parent", c.ID, c.Name, group.ID)
			}
			if c.Type != group.Type {
				f.add("category %d (%s) is %s inside %s group %d", c.ID, c.Name, c.Type, group.Type, group.ID)
			}
		}
	}
}

func checkTags(f *findings, tags []*ledgerbook.Tag) {
	names := map[string]int{}
	for _, t := range tags {
		f.checked++
		if prev, ok := names[t.Name]; ok {
			f.add("tags %d and %d share the name %q", prev, t.ID, t.Name)
		}
		names[t.Name] = t.ID
	}
}

// checkFunds verifies current value = units x NAV and that the unrealized
// gain matches value minus invested amount
func checkFunds(f *findings, funds []*ledgerbook.MutualFund) {
	for _, fund := range funds {
		f.checked++
		value := dec(fund.CurrentValue)
		if want := dec(fund.TotalUnits).Mul(dec(fund.LatestNAV)); fund.LatestNAV > 0 && !sameAmount(value, want.Round(2)) {
			f.add("fund %d (%s) value %s, expected %s", fund.ID, fund.Name, value.StringFixed(2), want.StringFixed(2))
		}
		if want := value.Sub(dec(fund.InvestedAmount)); !sameAmount(dec(fund.UnrealizedGain), want) {
			f.add("fund %d (%s) unrealized gain %v, expected %s", fund.ID, fund.Name, fund.UnrealizedGain, want.StringFixed(2))
		}
	}
	reported := decimal.Zero
	for _, fund := range funds {
		reported = reported.Add(dec(fund.UnrealizedGain))
	}
	if total := ledgerbook.SummarizeFunds(funds).Total; !sameAmount(total.UnrealizedGain, reported) {
		f.add("funds report %s unrealized gain in total, holdings add up to %s", total.UnrealizedGain.StringFixed(2), reported.StringFixed(2))
	}
}

func checkAssets(f *findings, assets []*ledgerbook.PhysicalAsset) {
	for _, a := range assets {
		f.checked++
		value := dec(a.CurrentValue)
		if want := dec(a.TotalQuantity).Mul(dec(a.LatestPricePerUnit)); a.LatestPricePerUnit > 0 && !sameAmount(value, want.Round(2)) {
			f.add("asset %d (%s) value %s, expected %s", a.ID, a.Name, value.StringFixed(2), want.StringFixed(2))
		}
		if a.TotalQuantity < 0 {
			f.add("asset %d (%s) has negative quantity %v", a.ID, a.Name, a.TotalQuantity)
		}
	}
	reported := decimal.Zero
	for _, a := range assets {
		reported = reported.Add(dec(a.UnrealizedGain))
	}
	if total := ledgerbook.SummarizeAssets(assets).Total; !sameAmount(total.UnrealizedGain, reported) {
		f.add("assets report %s unrealized gain in total, holdings add up to %s", total.UnrealizedGain.StringFixed(2), reported.StringFixed(2))
	}
}

// checkInsights verifies the net worth adds up and the breakdown shares
// total 100 percent
func checkInsights(f *findings, nw *ledgerbook.NetWorth, breakdown []*ledgerbook.CategoryAmount) {
	f.checked++
	want := dec(nw.Assets).Sub(dec(nw.Liabilities)).Add(dec(nw.MutualFunds)).Add(dec(nw.PhysicalAssets))
	if !sameAmount(dec(nw.NetWorth), want) {
		f.add("net worth %v, expected %s", nw.NetWorth, want.StringFixed(2))
	}

	if len(breakdown) == 0 {
		return
	}
	var share decimal.Decimal
	for _, c := range breakdown {
		f.checked++
		share = share.Add(dec(c.Percentage))
		if c.Amount < 0 {
			f.add("category %d (%s) has negative spending %v", c.CategoryID, c.CategoryName, c.Amount)
		}
	}
	if share.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(decimal.NewFromInt(1)) {
		f.add("category shares add up to %s%%", share.StringFixed(2))
	}
}

func checkBackups(f *findings, backups []*ledgerbook.Backup) {
	for _, b := range backups {
		f.checked++
		if b.Filename == "" {
			f.add("backup %d has no file name", b.ID)
		}
		if b.SizeBytes <= 0 {
			f.add("backup %d (%s) is empty", b.ID, b.Filename)
		}
	}
}
