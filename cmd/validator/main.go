// Command validator runs read-only checks against a live ledgerbook server
// and verifies that what it returns is internally consistent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/pkg/errors"
)

// ValidatorConfig holds configuration for the validator
type ValidatorConfig struct {
	BaseURL       string
	Token         string
	LedgerID      int
	OutputDir     string
	Verbose       bool
	MethodsToTest []string
}

// ValidationResult represents the result of one check
type ValidationResult struct {
	Method   string        `json:"method"`
	Passed   bool          `json:"passed"`
	Checked  int           `json:"checked"`
	Problems []string      `json:"problems,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ValidationReport represents the full validation report
type ValidationReport struct {
	Timestamp   time.Time          `json:"timestamp"`
	BaseURL     string             `json:"base_url"`
	LedgerID    int                `json:"ledger_id"`
	TotalTests  int                `json:"total_tests"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	SuccessRate float64            `json:"success_rate"`
	Results     []ValidationResult `json:"results"`
}

var defaultMethods = []string{
	"ledgers",
	"accounts",
	"transactions",
	"transfers",
	"categories",
	"tags",
	"mutual_funds",
	"physical_assets",
	"insights",
	"backups",
}

func main() {
	config := parseFlags()

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	validator, err := NewValidator(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer validator.client.Close()

	report := validator.Run(context.Background())

	reportPath := filepath.Join(config.OutputDir, fmt.Sprintf("validation_report_%d.json", time.Now().Unix()))
	if err := saveReport(report, reportPath); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	printSummary(report, reportPath)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func parseFlags() *ValidatorConfig {
	config := &ValidatorConfig{}

	flag.StringVar(&config.BaseURL, "url", os.Getenv("LEDGERBOOK_URL"), "API base URL")
	flag.StringVar(&config.Token, "token", os.Getenv("LEDGERBOOK_TOKEN"), "Bearer token")
	flag.IntVar(&config.LedgerID, "ledger", 0, "Ledger to check. Defaults to the first ledger.")
	flag.StringVar(&config.OutputDir, "output", "./validation_results", "Output directory for results")
	flag.BoolVar(&config.Verbose, "verbose", false, "Verbose output")

	methodList := flag.String("methods", "", "Comma-separated list of checks to run (empty for all)")

	flag.Parse()

	if *methodList != "" {
		config.MethodsToTest = strings.Split(*methodList, ",")
	} else {
		config.MethodsToTest = defaultMethods
	}

	return config
}

// Validator runs the checks
type Validator struct {
	config *ValidatorConfig
	client *ledgerbook.Client
	ledger *ledgerbook.Ledger
}

// NewValidator creates a validator with its own client
func NewValidator(config *ValidatorConfig) (*Validator, error) {
	if config.Token == "" {
		return nil, errors.New("a token is required (-token or LEDGERBOOK_TOKEN)")
	}

	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	client, err := ledgerbook.NewClient(&ledgerbook.ClientOptions{
		BaseURL:  config.BaseURL,
		Token:    config.Token,
		Logger:   ledgerbook.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))),
		CacheTTL: time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return &Validator{config: config, client: client}, nil
}

// Run executes every configured check
func (v *Validator) Run(ctx context.Context) *ValidationReport {
	report := &ValidationReport{
		Timestamp: time.Now(),
		BaseURL:   v.config.BaseURL,
		Results:   make([]ValidationResult, 0, len(v.config.MethodsToTest)),
	}

	for _, method := range v.config.MethodsToTest {
		method = strings.TrimSpace(method)
		if v.config.Verbose {
			fmt.Printf("Checking %s...\n", method)
		}

		result := v.testMethod(ctx, method)
		report.Results = append(report.Results, result)

		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	if v.ledger != nil {
		report.LedgerID = v.ledger.ID
	}

	report.TotalTests = len(report.Results)
	if report.TotalTests > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalTests) * 100
	}
	return report
}

// testMethod runs a single check
func (v *Validator) testMethod(ctx context.Context, method string) ValidationResult {
	start := time.Now()
	result := ValidationResult{Method: method}

	var f findings
	err := v.check(ctx, method, &f)
	result.Duration = time.Since(start)
	result.Checked = f.checked
	result.Problems = f.problems

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Passed = len(f.problems) == 0

	if !result.Passed && v.config.Verbose {
		for _, p := range f.problems {
			fmt.Printf("  %s: %s\n", method, p)
		}
	}
	return result
}

// selectLedger picks the configured ledger, or the first one
func (v *Validator) selectLedger(ctx context.Context) (*ledgerbook.Ledger, error) {
	if v.ledger != nil {
		return v.ledger, nil
	}
	var err error
	if v.config.LedgerID > 0 {
		v.ledger, err = v.client.Ledgers.Get(ctx, v.config.LedgerID)
		return v.ledger, err
	}
	ledgers, err := v.client.Ledgers.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ledgers) == 0 {
		return nil, errors.New("the user has no ledgers")
	}
	v.ledger = ledgers[0]
	return v.ledger, nil
}

func (v *Validator) check(ctx context.Context, method string, f *findings) error {
	if method == "ledgers" {
		ledgers, err := v.client.Ledgers.List(ctx)
		if err != nil {
			return err
		}
		checkLedgers(f, ledgers)
		return nil
	}
	if method == "categories" {
		tree, err := v.client.Categories.List(ctx, nil)
		if err != nil {
			return err
		}
		checkCategories(f, tree)
		return nil
	}
	if method == "tags" {
		tags, err := v.client.Tags.List(ctx)
		if err != nil {
			return err
		}
		checkTags(f, tags)
		return nil
	}
	if method == "backups" {
		backups, err := v.client.Backups.List(ctx)
		if err != nil {
			return err
		}
		checkBackups(f, backups)
		return nil
	}

	ledger, err := v.selectLedger(ctx)
	if err != nil {
		return err
	}

	switch method {
	case "accounts":
		accounts, err := v.client.Accounts.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		checkAccounts(f, accounts)

	case "transactions":
		list, err := v.client.Transactions.Query(ledger.ID).PerPage(100).Execute(ctx)
		if err != nil {
			return err
		}
		for _, tx := range list.Transactions {
			if tx.IsSplit && len(tx.Splits) == 0 {
				if tx.Splits, err = v.client.Transactions.GetSplits(ctx, ledger.ID, tx.ID); err != nil {
					return err
				}
			}
		}
		checkTransactions(f, ledger.ID, list.Transactions)

	case "transfers":
		list, err := v.client.Transactions.Query(ledger.ID).
			WithType(ledgerbook.TransactionTypeTransfer).
			PerPage(20).
			Execute(ctx)
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, tx := range list.Transactions {
			if tx.TransferID == "" || seen[tx.TransferID] {
				continue
			}
			seen[tx.TransferID] = true
			details, err := v.client.Transactions.GetTransferDetails(ctx, ledger.ID, tx.TransferID)
			if err != nil {
				return err
			}
			checkTransfer(f, details)
		}

	case "mutual_funds":
		funds, err := v.client.MutualFunds.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		checkFunds(f, funds)

	case "physical_assets":
		assets, err := v.client.PhysicalAssets.List(ctx, ledger.ID)
		if err != nil {
			return err
		}
		checkAssets(f, assets)

	case "insights":
		nw, err := v.client.Insights.NetWorth(ctx, ledger.ID)
		if err != nil {
			return err
		}
		breakdown, err := v.client.Insights.CategoryBreakdown(ctx, ledger.ID, &ledgerbook.InsightParams{
			Start: time.Now().AddDate(0, -3, 0),
			End:   time.Now(),
		})
		if err != nil {
			return err
		}
		checkInsights(f, nw, breakdown)

	default:
		return errors.Errorf("unknown method: %s", method)
	}
	return nil
}

func saveReport(report *ValidationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(report *ValidationReport, path string) {
	fmt.Println("\n=== Validation Report ===")
	fmt.Printf("Total Tests: %d\n", report.TotalTests)
	fmt.Printf("Passed: %d\n", report.Passed)
	fmt.Printf("Failed: %d\n", report.Failed)
	fmt.Printf("Success Rate: %.1f%%\n", report.SuccessRate)

	if report.Failed > 0 {
		fmt.Println("\nFailed Tests:")
		for _, result := range report.Results {
			if result.Passed {
				continue
			}
			if result.Error != "" {
				fmt.Printf("  - %s: %s\n", result.Method, result.Error)
				continue
			}
			fmt.Printf("  - %s: %d problems in %d records\n", result.Method, len(result.Problems), result.Checked)
		}
	}

	fmt.Printf("\nReport saved to: %s\n", path)
}
