package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ledgerTools holds the ledgerbook client and implements all tool handlers
type ledgerTools struct {
	client *ledgerbook.Client
}

// ledger resolves a ledger ID, defaulting to the only ledger
func (t *ledgerTools) ledger(ctx context.Context, id int) (*ledgerbook.Ledger, error) {
	if id > 0 {
		return t.client.Ledgers.Get(ctx, id)
	}
	ledgers, err := t.client.Ledgers.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ledgers) != 1 {
		return nil, fmt.Errorf("ledgerId is required when the user has %d ledgers", len(ledgers))
	}
	return ledgers[0], nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := ledgerbook.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d.Time, nil
}

// ListLedgers tool
type ListLedgersInput struct{}

type LedgerEntry struct {
	ID          int    `json:"id" jsonschema:"Ledger ID"`
	Name        string `json:"name" jsonschema:"Ledger name"`
	Currency    string `json:"currency" jsonschema:"ISO 4217 currency code"`
	Description string `json:"description,omitempty" jsonschema:"Ledger description"`
}

type ListLedgersOutput struct {
	Ledgers []LedgerEntry `json:"ledgers" jsonschema:"List of ledgers"`
	Count   int           `json:"count" jsonschema:"Number of ledgers"`
}

func (t *ledgerTools) ListLedgers(ctx context.Context, req *mcp.CallToolRequest, input ListLedgersInput) (*mcp.CallToolResult, ListLedgersOutput, error) {
	ledgers, err := t.client.Ledgers.List(ctx)
	if err != nil {
		return nil, ListLedgersOutput{}, fmt.Errorf("failed to fetch ledgers: %w", err)
	}

	entries := make([]LedgerEntry, 0, len(ledgers))
	for _, l := range ledgers {
		entries = append(entries, LedgerEntry{
			ID:          l.ID,
			Name:        l.Name,
			Currency:    l.Currency,
			Description: l.Description,
		})
	}
	return nil, ListLedgersOutput{Ledgers: entries, Count: len(entries)}, nil
}

// ListAccounts tool
type ListAccountsInput struct {
	LedgerID int `json:"ledgerId,omitempty" jsonschema:"Ledger ID (optional when the user has one ledger)"`
}

type AccountEntry struct {
	ID          int     `json:"id" jsonschema:"Account ID"`
	Name        string  `json:"name" jsonschema:"Account name"`
	Type        string  `json:"type" jsonschema:"asset or liability"`
	Balance     float64 `json:"balance" jsonschema:"Current balance"`
	TotalCredit float64 `json:"totalCredit" jsonschema:"Sum of credits"`
	TotalDebit  float64 `json:"totalDebit" jsonschema:"Sum of debits"`
	Display     string  `json:"display" jsonschema:"Balance formatted in the ledger currency"`
}

type ListAccountsOutput struct {
	LedgerID int            `json:"ledgerId" jsonschema:"Ledger the accounts belong to"`
	Currency string         `json:"currency" jsonschema:"Ledger currency"`
	Accounts []AccountEntry `json:"accounts" jsonschema:"List of accounts"`
	Count    int            `json:"count" jsonschema:"Number of accounts"`
}

func (t *ledgerTools) ListAccounts(ctx context.Context, req *mcp.CallToolRequest, input ListAccountsInput) (*mcp.CallToolResult, ListAccountsOutput, error) {
	ledger, err := t.ledger(ctx, input.LedgerID)
	if err != nil {
		return nil, ListAccountsOutput{}, err
	}
	accounts, err := t.client.Accounts.List(ctx, ledger.ID)
	if err != nil {
		return nil, ListAccountsOutput{}, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	entries := make([]AccountEntry, 0, len(accounts))
	for _, a := range accounts {
		entries = append(entries, AccountEntry{
			ID:          a.ID,
			Name:        a.Name,
			Type:        string(a.Type),
			Balance:     a.Balance,
			TotalCredit: a.TotalCredit,
			TotalDebit:  a.TotalDebit,
			Display:     ledgerbook.FormatFloat(a.Balance, ledger.Currency),
		})
	}
	return nil, ListAccountsOutput{
		LedgerID: ledger.ID,
		Currency: ledger.Currency,
		Accounts: entries,
		Count:    len(entries),
	}, nil
}

// GetTransactions tool
type GetTransactionsInput struct {
	LedgerID   int    `json:"ledgerId,omitempty" jsonschema:"Ledger ID (optional when the user has one ledger)"`
	StartDate  string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	EndDate    string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
	AccountID  int    `json:"accountId,omitempty" jsonschema:"Only transactions of this account (optional)"`
	CategoryID int    `json:"categoryId,omitempty" jsonschema:"Only transactions of this category (optional)"`
	Type       string `json:"type,omitempty" jsonschema:"income, expense or transfer (optional)"`
	Search     string `json:"search,omitempty" jsonschema:"Text to search in notes (optional)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of transactions to return (default: 50, max: 100)"`
}

type SplitEntry struct {
	Category string  `json:"category" jsonschema:"Category name"`
	Amount   float64 `json:"amount" jsonschema:"Amount allocated to the category"`
}

type TransactionEntry struct {
	ID         int          `json:"id" jsonschema:"Transaction ID"`
	Date       string       `json:"date" jsonschema:"Transaction date (YYYY-MM-DD)"`
	Type       string       `json:"type" jsonschema:"income, expense or transfer"`
	Amount     float64      `json:"amount" jsonschema:"Transaction amount"`
	Account    string       `json:"account,omitempty" jsonschema:"Account name"`
	Category   string       `json:"category,omitempty" jsonschema:"Category name"`
	Notes      string       `json:"notes,omitempty" jsonschema:"Transaction notes"`
	TransferID string       `json:"transferId,omitempty" jsonschema:"Links the two legs of a transfer"`
	Tags       []string     `json:"tags,omitempty" jsonschema:"Transaction tags"`
	Splits     []SplitEntry `json:"splits,omitempty" jsonschema:"Category allocations of a split transaction"`
}

type GetTransactionsOutput struct {
	Transactions []TransactionEntry `json:"transactions" jsonschema:"List of transactions"`
	Count        int                `json:"count" jsonschema:"Number of transactions returned"`
	Total        int                `json:"total" jsonschema:"Number of transactions matching the filters"`
}

func (t *ledgerTools) GetTransactions(ctx context.Context, req *mcp.CallToolRequest, input GetTransactionsInput) (*mcp.CallToolResult, GetTransactionsOutput, error) {
	start, err := parseDay("startDate", input.StartDate)
	if err != nil {
		return nil, GetTransactionsOutput{}, err
	}
	end, err := parseDay("endDate", input.EndDate)
	if err != nil {
		return nil, GetTransactionsOutput{}, err
	}

	ledger, err := t.ledger(ctx, input.LedgerID)
	if err != nil {
		return nil, GetTransactionsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	query := t.client.Transactions.Query(ledger.ID).Between(start, end).PerPage(limit)
	if input.AccountID > 0 {
		query = query.WithAccount(input.AccountID)
	}
	if input.CategoryID > 0 {
		query = query.WithCategory(input.CategoryID)
	}
	if input.Type != "" {
		query = query.WithType(ledgerbook.TransactionType(input.Type))
	}
	if input.Search != "" {
		query = query.Search(input.Search)
	}

	result, err := query.Execute(ctx)
	if err != nil {
		return nil, GetTransactionsOutput{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	entries := make([]TransactionEntry, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		entry := TransactionEntry{
			ID:         tx.ID,
			Date:       tx.Date.String(),
			Type:       string(tx.Type),
			Amount:     tx.Amount,
			Account:    tx.AccountName,
			Category:   tx.CategoryName,
			Notes:      tx.Notes,
			TransferID: tx.TransferID,
		}
		for _, tag := range tx.Tags {
			entry.Tags = append(entry.Tags, tag.Name)
		}
		for _, s := range tx.Splits {
			entry.Splits = append(entry.Splits, SplitEntry{Category: s.CategoryName, Amount: s.Amount})
		}
		entries = append(entries, entry)
	}

	return nil, GetTransactionsOutput{
		Transactions: entries,
		Count:        len(entries),
		Total:        result.Total,
	}, nil
}

// GetCategories tool
type GetCategoriesInput struct {
	Income bool `json:"income,omitempty" jsonschema:"List income categories instead of expense categories"`
}

type CategoryEntry struct {
	ID   int    `json:"id" jsonschema:"Category ID"`
	Name string `json:"name" jsonschema:"Category name"`
	Path string `json:"path" jsonschema:"Group and category, e.g. 'Food / Groceries'"`
}

type GetCategoriesOutput struct {
	Categories []CategoryEntry `json:"categories" jsonschema:"List of categories"`
	Count      int             `json:"count" jsonschema:"Number of categories"`
}

func (t *ledgerTools) GetCategories(ctx context.Context, req *mcp.CallToolRequest, input GetCategoriesInput) (*mcp.CallToolResult, GetCategoriesOutput, error) {
	params := &ledgerbook.CategoryListParams{Type: ledgerbook.CategoryTypeExpense}
	if input.Income {
		params.Type = ledgerbook.CategoryTypeIncome
	}
	tree, err := t.client.Categories.List(ctx, params)
	if err != nil {
		return nil, GetCategoriesOutput{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	flat := ledgerbook.Flatten(tree)
	entries := make([]CategoryEntry, 0, len(flat))
	for _, c := range flat {
		entries = append(entries, CategoryEntry{ID: c.ID, Name: c.Name, Path: c.Path})
	}
	return nil, GetCategoriesOutput{Categories: entries, Count: len(entries)}, nil
}

// SearchTags tool
type SearchTagsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Text to match in tag names (optional)"`
}

type TagEntry struct {
	ID   int    `json:"id" jsonschema:"Tag ID"`
	Name string `json:"name" jsonschema:"Tag name"`
}

type SearchTagsOutput struct {
	Tags  []TagEntry `json:"tags" jsonschema:"Matching tags"`
	Count int        `json:"count" jsonschema:"Number of tags"`
}

func (t *ledgerTools) SearchTags(ctx context.Context, req *mcp.CallToolRequest, input SearchTagsInput) (*mcp.CallToolResult, SearchTagsOutput, error) {
	var tags []*ledgerbook.Tag
	var err error
	if q := strings.TrimSpace(input.Query); q != "" {
		tags, err = t.client.Tags.Search(ctx, q)
	} else {
		tags, err = t.client.Tags.List(ctx)
	}
	if err != nil {
		return nil, SearchTagsOutput{}, fmt.Errorf("failed to fetch tags: %w", err)
	}

	entries := make([]TagEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, TagEntry{ID: tag.ID, Name: tag.Name})
	}
	return nil, SearchTagsOutput{Tags: entries, Count: len(entries)}, nil
}

// GetPortfolio tool
type GetPortfolioInput struct {
	LedgerID int `json:"ledgerId,omitempty" jsonschema:"Ledger ID (optional when the user has one ledger)"`
}

type HoldingEntry struct {
	Name        string `json:"name" jsonschema:"AMC or asset type name"`
	Holdings    int    `json:"holdings" jsonschema:"Number of funds or assets"`
	Invested    string `json:"invested" jsonschema:"Amount invested"`
	Value       string `json:"value" jsonschema:"Current value"`
	Gain        string `json:"gain" jsonschema:"Unrealized gain"`
	GainPercent string `json:"gainPercent" jsonschema:"Unrealized gain in percent of the amount invested"`
}

type GetPortfolioOutput struct {
	Currency       string         `json:"currency" jsonschema:"Ledger currency"`
	MutualFunds    []HoldingEntry `json:"mutualFunds" jsonschema:"Mutual funds grouped by AMC"`
	FundsTotal     HoldingEntry   `json:"fundsTotal" jsonschema:"Total of all mutual funds"`
	PhysicalAssets []HoldingEntry `json:"physicalAssets" jsonschema:"Physical assets grouped by asset type"`
	AssetsTotal    HoldingEntry   `json:"assetsTotal" jsonschema:"Total of all physical assets"`
}

func holdingEntry(h ledgerbook.HoldingSummary) HoldingEntry {
	return HoldingEntry{
		Name:        h.Name,
		Holdings:    h.Holdings,
		Invested:    h.Invested.StringFixed(2),
		Value:       h.CurrentValue.StringFixed(2),
		Gain:        h.UnrealizedGain.StringFixed(2),
		GainPercent: h.GainPercent().StringFixed(2),
	}
}

func holdingEntries(groups []ledgerbook.HoldingSummary) []HoldingEntry {
	out := make([]HoldingEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, holdingEntry(g))
	}
	return out
}

func (t *ledgerTools) GetPortfolio(ctx context.Context, req *mcp.CallToolRequest, input GetPortfolioInput) (*mcp.CallToolResult, GetPortfolioOutput, error) {
	ledger, err := t.ledger(ctx, input.LedgerID)
	if err != nil {
		return nil, GetPortfolioOutput{}, err
	}
	funds, err := t.client.MutualFunds.List(ctx, ledger.ID)
	if err != nil {
		return nil, GetPortfolioOutput{}, fmt.Errorf("failed to fetch mutual funds: %w", err)
	}
	assets, err := t.client.PhysicalAssets.List(ctx, ledger.ID)
	if err != nil {
		return nil, GetPortfolioOutput{}, fmt.Errorf("failed to fetch physical assets: %w", err)
	}

	fs := ledgerbook.SummarizeFunds(funds)
	as := ledgerbook.SummarizeAssets(assets)
	return nil, GetPortfolioOutput{
		Currency:       ledger.Currency,
		MutualFunds:    holdingEntries(fs.Groups),
		FundsTotal:     holdingEntry(fs.Total),
		PhysicalAssets: holdingEntries(as.Groups),
		AssetsTotal:    holdingEntry(as.Total),
	}, nil
}

// GetInsights tool
type GetInsightsInput struct {
	LedgerID  int    `json:"ledgerId,omitempty" jsonschema:"Ledger ID (optional when the user has one ledger)"`
	StartDate string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
	Interval  string `json:"interval,omitempty" jsonschema:"Trend bucket: day, week, month or year (default: month)"`
}

type CategoryShare struct {
	Category   string  `json:"category" jsonschema:"Category name"`
	Amount     float64 `json:"amount" jsonschema:"Amount spent"`
	Percentage float64 `json:"percentage" jsonschema:"Share of total spending"`
}

type TrendEntry struct {
	Period  string  `json:"period" jsonschema:"Period label"`
	Income  float64 `json:"income" jsonschema:"Income in the period"`
	Expense float64 `json:"expense" jsonschema:"Expense in the period"`
	Net     float64 `json:"net" jsonschema:"Income minus expense"`
}

type GetInsightsOutput struct {
	Currency    string          `json:"currency" jsonschema:"Ledger currency"`
	NetWorth    float64         `json:"netWorth" jsonschema:"Assets plus investments minus liabilities"`
	Assets      float64         `json:"assets" jsonschema:"Balance of asset accounts"`
	Liabilities float64         `json:"liabilities" jsonschema:"Balance of liability accounts"`
	Spending    []CategoryShare `json:"spending" jsonschema:"Expense per category"`
	Trend       []TrendEntry    `json:"trend" jsonschema:"Income and expense per period"`
}

func (t *ledgerTools) GetInsights(ctx context.Context, req *mcp.CallToolRequest, input GetInsightsInput) (*mcp.CallToolResult, GetInsightsOutput, error) {
	start, err := parseDay("startDate", input.StartDate)
	if err != nil {
		return nil, GetInsightsOutput{}, err
	}
	end, err := parseDay("endDate", input.EndDate)
	if err != nil {
		return nil, GetInsightsOutput{}, err
	}

	ledger, err := t.ledger(ctx, input.LedgerID)
	if err != nil {
		return nil, GetInsightsOutput{}, err
	}

	nw, err := t.client.Insights.NetWorth(ctx, ledger.ID)
	if err != nil {
		return nil, GetInsightsOutput{}, fmt.Errorf("failed to fetch net worth: %w", err)
	}
	breakdown, err := t.client.Insights.CategoryBreakdown(ctx, ledger.ID, &ledgerbook.InsightParams{
		Start: start,
		End:   end,
		Type:  ledgerbook.TransactionTypeExpense,
	})
	if err != nil {
		return nil, GetInsightsOutput{}, fmt.Errorf("failed to fetch category breakdown: %w", err)
	}
	trend, err := t.client.Insights.IncomeExpenseTrend(ctx, ledger.ID, &ledgerbook.InsightParams{
		Start:    start,
		End:      end,
		Interval: input.Interval,
	})
	if err != nil {
		return nil, GetInsightsOutput{}, fmt.Errorf("failed to fetch trend: %w", err)
	}

	out := GetInsightsOutput{
		Currency:    ledger.Currency,
		NetWorth:    nw.NetWorth,
		Assets:      nw.Assets,
		Liabilities: nw.Liabilities,
		Spending:    make([]CategoryShare, 0, len(breakdown)),
		Trend:       make([]TrendEntry, 0, len(trend)),
	}
	for _, c := range breakdown {
		out.Spending = append(out.Spending, CategoryShare{Category: c.CategoryName, Amount: c.Amount, Percentage: c.Percentage})
	}
	for _, p := range trend {
		out.Trend = append(out.Trend, TrendEntry{Period: p.Period, Income: p.Income, Expense: p.Expense, Net: p.Net})
	}
	return nil, out, nil
}
