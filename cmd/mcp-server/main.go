package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	token := os.Getenv("LEDGERBOOK_TOKEN")
	if token == "" {
		log.Fatal("LEDGERBOOK_TOKEN environment variable is required")
	}

	// stdout carries the protocol, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := ledgerbook.NewClient(&ledgerbook.ClientOptions{
		BaseURL:   os.Getenv("LEDGERBOOK_URL"),
		Token:     token,
		Logger:    ledgerbook.NewSlogLogger(logger),
		CacheTTL:  time.Minute,
		SentryDSN: os.Getenv("SENTRY_DSN"),
	})
	if err != nil {
		log.Fatalf("failed to initialize ledgerbook client: %v", err)
	}
	defer client.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ledgerbook",
		Version: "1.0.0",
	}, nil)

	registerTools(server, client)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *ledgerbook.Client) {
	tools := &ledgerTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_ledgers",
		Description: "List the user's ledgers with their IDs and currencies. Other tools take a ledger ID and default to the only ledger when there is exactly one.",
	}, tools.ListLedgers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_accounts",
		Description: "List the accounts of a ledger with type (asset or liability), total credit, total debit and balance.",
	}, tools.ListAccounts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transactions",
		Description: "Query transactions of a ledger with optional date range, account, category, type and text filters. Split transactions list their category allocations.",
	}, tools.GetTransactions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_categories",
		Description: "Get income or expense categories as 'Group / Category' paths with their IDs.",
	}, tools.GetCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_tags",
		Description: "Search transaction tags by name, or list all tags when the query is empty.",
	}, tools.SearchTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_portfolio",
		Description: "Summarize mutual funds per AMC and physical assets per asset type: holdings, invested amount, current value and gain.",
	}, tools.GetPortfolio)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_insights",
		Description: "Get net worth, spending per category and the income/expense trend of a ledger for a date range.",
	}, tools.GetInsights)
}
