// Command ledgerbook is a terminal front end for a ledgerbook server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/pkg/errors"
)

// as a CLI application, it has a very short lived lifecycle, so global flags are fine.

var (
	baseURL     = flag.String("url", envOr("LEDGERBOOK_URL", ledgerbook.DefaultBaseURL), "API base URL (or LEDGERBOOK_URL)")
	sessionPath = flag.String("session", envOr("LEDGERBOOK_SESSION", defaultSessionFile()), "Path to the session file (or LEDGERBOOK_SESSION)")
	verbose     = flag.Bool("v", false, "Log API requests to stderr")
	cacheTTL    = flag.Duration("cache", 30*time.Second, "Reuse GET responses for this long within one run; 0 disables")
)

// commands lists every subcommand with its help group
var commands = []struct {
	group string
	cmd   subcommands.Command
}{
	{"session", &loginCmd{}},
	{"session", &logoutCmd{}},
	{"session", &registerCmd{}},
	{"session", &whoamiCmd{}},

	{"ledgers", &ledgersCmd{}},
	{"ledgers", &ledgerCreateCmd{}},
	{"ledgers", &accountsCmd{}},
	{"ledgers", &accountCreateCmd{}},
	{"ledgers", &categoriesCmd{}},
	{"ledgers", &tagsCmd{}},

	{"transactions", &transactionsCmd{}},
	{"transactions", &txAddCmd{}},
	{"transactions", &txDeleteCmd{}},
	{"transactions", &transferCmd{}},

	{"portfolio", &fundsCmd{}},
	{"portfolio", &assetsCmd{}},
	{"portfolio", &portfolioCmd{}},

	{"reports", &summaryCmd{}},

	{"backups", &backupsCmd{}},
	{"backups", &backupCreateCmd{}},
	{"backups", &backupRestoreCmd{}},
	{"backups", &backupDownloadCmd{}},
	{"backups", &backupUploadCmd{}},

	{"", &completionCmd{}},
}

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands {
		commander.Register(c.cmd, c.group)
	}

	// Answers shell completion requests and exits when one is pending.
	completion(commander).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// newClient builds an API client from the global flags and environment.
// Callers must Close it to flush error reports.
func newClient() (*ledgerbook.Client, error) {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return ledgerbook.NewClient(&ledgerbook.ClientOptions{
		BaseURL:     *baseURL,
		Token:       os.Getenv("LEDGERBOOK_TOKEN"),
		SessionFile: *sessionPath,
		Logger:      ledgerbook.NewSlogLogger(logger),
		CacheTTL:    *cacheTTL,
		SentryDSN:   os.Getenv("SENTRY_DSN"),
	})
}

// withClient runs fn with a fresh client and maps its error to an exit status
func withClient(fn func(c *ledgerbook.Client) error) subcommands.ExitStatus {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	if err := fn(client); err != nil {
		printError(err)
		if ledgerbook.IsValidationError(err) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printError reports err, one line per invalid field
func printError(err error) {
	var verrs *ledgerbook.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", ve.Field, ve.Message)
		}
		return
	}
	if ledgerbook.IsAuthError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v (run `ledgerbook login` first)\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ledgerbook-session.json"
	}
	return filepath.Join(dir, "ledgerbook", "session.json")
}
