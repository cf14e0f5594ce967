package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCheckAccounts(t *testing.T) {
	var f findings
	checkAccounts(&f, []*ledgerbook.Account{
		{ID: 1, Name: "Savings", Type: ledgerbook.AccountTypeAsset, OpeningBalance: 100, TotalCredit: 50.1, TotalDebit: 20.2, Balance: 129.9},
		{ID: 2, Name: "Card", Type: ledgerbook.AccountTypeLiability, OpeningBalance: 0, TotalCredit: 300, TotalDebit: 500, Balance: 200},
		{ID: 3, Name: "Wallet", Type: ledgerbook.AccountTypeAsset, OpeningBalance: 10, Balance: 12},
		{ID: 4, Name: "Odd", Type: "equity"},
	})

	assert.Equal(t, 4, f.checked)
	assert.Equal(t, []string{
		"account 3 (Wallet) balance 12.00, expected 10.00",
		`account 4 (Odd) has unknown type "equity"`,
	}, f.problems)
}

func TestCheckTransactions(t *testing.T) {
	date, err := ledgerbook.ParseDate("2024-05-02")
	require.NoError(t, err)

	var f findings
	checkTransactions(&f, 7, []*ledgerbook.Transaction{
		{ID: 1, LedgerID: 7, Amount: 90, Date: date, IsSplit: true, Splits: []*ledgerbook.TransactionSplit{
			{CategoryID: 5, Amount: 60},
			{CategoryID: 6, Amount: 30},
		}},
		{ID: 2, LedgerID: 7, Amount: 90, Date: date, IsSplit: true, Splits: []*ledgerbook.TransactionSplit{
			{CategoryID: 5, Amount: 60},
			{CategoryID: 6, Amount: 20},
		}},
		{ID: 3, LedgerID: 7, Amount: 10, Date: date, CategoryID: intPtr(5), IsSplit: true, Splits: []*ledgerbook.TransactionSplit{
			{CategoryID: 5, Amount: 10},
		}},
		{ID: 4, LedgerID: 8, Amount: 10, Date: date, IsTransfer: true},
		{ID: 5, LedgerID: 7, Amount: 0},
	})

	assert.Equal(t, 5, f.checked)
	require.Len(t, f.problems, 6)
	assert.Contains(t, f.problems[0], "transaction 2")
	assert.Contains(t, f.problems[0], "split amounts add up to 80.00, expected 90.00")
	assert.Equal(t, "split transaction 3 also has category 5", f.problems[1])
	assert.Equal(t, "transaction 4 belongs to ledger 8", f.problems[2])
	assert.Equal(t, "transaction 4 is a transfer without a transfer id", f.problems[3])
	assert.Equal(t, "transaction 5 has non-positive amount 0", f.problems[4])
	assert.Equal(t, "transaction 5 has no date", f.problems[5])
}

func TestCheckTransfer(t *testing.T) {
	leg := func(account int, typ ledgerbook.TransactionType, amount float64) *ledgerbook.Transaction {
		return &ledgerbook.Transaction{AccountID: account, Type: typ, Amount: amount, TransferID: "t-1"}
	}

	var f findings
	checkTransfer(&f, &ledgerbook.TransferDetails{
		TransferID:             "t-1",
		SourceTransaction:      leg(1, ledgerbook.TransactionTypeExpense, 500),
		DestinationTransaction: leg(2, ledgerbook.TransactionTypeIncome, 500),
		SourceLedgerID:         4,
		DestinationLedgerID:    4,
	})
	assert.Empty(t, f.problems)

	// across ledgers the received amount may differ
	checkTransfer(&f, &ledgerbook.TransferDetails{
		TransferID:             "t-1",
		SourceTransaction:      leg(1, ledgerbook.TransactionTypeExpense, 500),
		DestinationTransaction: leg(9, ledgerbook.TransactionTypeIncome, 6),
		SourceLedgerID:         4,
		DestinationLedgerID:    5,
	})
	assert.Empty(t, f.problems)

	checkTransfer(&f, &ledgerbook.TransferDetails{
		TransferID:             "t-1",
		SourceTransaction:      leg(1, ledgerbook.TransactionTypeExpense, 500),
		DestinationTransaction: leg(2, ledgerbook.TransactionTypeIncome, 450),
		SourceLedgerID:         4,
		DestinationLedgerID:    4,
	})
	assert.Equal(t, []string{"transfer t-1 sends 500 but receives 450"}, f.problems)

	f = findings{}
	checkTransfer(&f, &ledgerbook.TransferDetails{TransferID: "t-2"})
	assert.Equal(t, []string{"transfer t-2 is missing a leg"}, f.problems)
}

func TestCheckCategories(t *testing.T) {
	var f findings
	checkCategories(&f, []*ledgerbook.Category{
		{ID: 1, Name: "Home", Type: ledgerbook.CategoryTypeExpense, IsGroup: true, Children: []*ledgerbook.Category{
			{ID: 2, Name: "Rent", Type: ledgerbook.CategoryTypeExpense, ParentID: intPtr(1)},
			{ID: 3, Name: "Refund", Type: ledgerbook.CategoryTypeIncome, ParentID: intPtr(1)},
			{ID: 4, Name: "Stray", Type: ledgerbook.CategoryTypeExpense},
		}},
	})

	assert.Equal(t, 3, f.checked)
	assert.Equal(t, []string{
		"category 3 (Refund) is income inside expense group 1",
		"category 4 (Stray) is listed under group 1 with a different parent",
	}, f.problems)
}

func TestCheckFunds(t *testing.T) {
	var f findings
	checkFunds(&f, []*ledgerbook.MutualFund{
		{ID: 1, Name: "Flexi Cap", TotalUnits: 10, LatestNAV: 115, CurrentValue: 1150, InvestedAmount: 1000, UnrealizedGain: 150},
		{ID: 2, Name: "Mid Cap", TotalUnits: 10, LatestNAV: 45, CurrentValue: 500, InvestedAmount: 500, UnrealizedGain: 0},
	})

	assert.Equal(t, []string{"fund 2 (Mid Cap) value 500.00, expected 450.00"}, f.problems)
}

func TestCheckInsights(t *testing.T) {
	var f findings
	checkInsights(&f,
		&ledgerbook.NetWorth{Assets: 150000, Liabilities: 20000, MutualFunds: 45000, PhysicalAssets: 124000, NetWorth: 299000},
		[]*ledgerbook.CategoryAmount{{CategoryID: 1, Amount: 30, Percentage: 33.33}, {CategoryID: 2, Amount: 60, Percentage: 66.67}},
	)
	assert.Empty(t, f.problems)
	assert.Equal(t, 3, f.checked)

	f = findings{}
	checkInsights(&f, &ledgerbook.NetWorth{Assets: 100, NetWorth: 90}, []*ledgerbook.CategoryAmount{{Percentage: 40}})
	assert.Equal(t, []string{"net worth 90, expected 100.00", "category shares add up to 40.00%"}, f.problems)
}

func TestCheckTags(t *testing.T) {
	var f findings
	checkTags(&f, []*ledgerbook.Tag{{ID: 1, Name: "trip"}, {ID: 2, Name: "work"}, {ID: 3, Name: "trip"}})
	assert.Equal(t, []string{`tags 1 and 3 share the name "trip"`}, f.problems)
}

func TestValidatorRun(t *testing.T) {
	routes := map[string]string{
		"/ledger/list": `[{"id": 4, "name": "Home", "currency": "INR"}]`,
		"/ledger/4/accounts": `[
			{"id": 1, "name": "Savings", "type": "asset", "opening_balance": 100, "total_credit": 50, "total_debit": 0, "balance": 150}
		]`,
		"/tags/list": `[{"id": 1, "name": "trip"}, {"id": 2, "name": "trip"}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	v, err := NewValidator(&ValidatorConfig{
		BaseURL:       srv.URL,
		Token:         "test-token",
		MethodsToTest: []string{"ledgers", "accounts", "tags", "bogus"},
	})
	require.NoError(t, err)
	defer v.client.Close()

	report := v.Run(context.Background())

	assert.Equal(t, 4, report.LedgerID)
	assert.Equal(t, 4, report.TotalTests)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 50.0, report.SuccessRate)

	byMethod := map[string]ValidationResult{}
	for _, r := range report.Results {
		byMethod[r.Method] = r
	}
	assert.True(t, byMethod["accounts"].Passed)
	assert.Equal(t, 1, byMethod["accounts"].Checked)
	assert.Len(t, byMethod["tags"].Problems, 1)
	assert.Equal(t, "unknown method: bogus", byMethod["bogus"].Error)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, saveReport(report, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved ValidationReport
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, report.Failed, saved.Failed)
}

func TestNewValidator_RequiresToken(t *testing.T) {
	_, err := NewValidator(&ValidatorConfig{})
	assert.EqualError(t, err, "a token is required (-token or LEDGERBOOK_TOKEN)")
}
