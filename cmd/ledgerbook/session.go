package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"golang.org/x/term"
)

// loginCmd holds the flags for the 'login' subcommand.
type loginCmd struct {
	username string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in and store the session" }
func (*loginCmd) Usage() string {
	return `ledgerbook login -u <username>

  Prompts for the password, or reads it from LEDGERBOOK_PASSWORD, and stores
  the session in the session file so later commands are authenticated.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", os.Getenv("LEDGERBOOK_USERNAME"), "Username (or LEDGERBOOK_USERNAME)")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return subcommands.ExitFailure
	}

	return withClient(func(client *ledgerbook.Client) error {
		if err := client.Auth.Login(ctx, c.username, password); err != nil {
			return err
		}
		session, err := client.Auth.GetSession()
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s until %s\n", session.Username, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	})
}

// readPassword reads from LEDGERBOOK_PASSWORD, the terminal without echo,
// or one line of stdin, in that order
func readPassword(prompt string) (string, error) {
	if p := os.Getenv("LEDGERBOOK_PASSWORD"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// logoutCmd holds the flags for the 'logout' subcommand.
type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "forget the stored session" }
func (*logoutCmd) Usage() string {
	return `ledgerbook logout

  Removes the session file.
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		if err := client.Auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	})
}

// registerCmd holds the flags for the 'register' subcommand.
type registerCmd struct {
	username string
	email    string
	fullName string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new user" }
func (*registerCmd) Usage() string {
	return `ledgerbook register -u <username> -email <email> [-name <full name>]

  Creates a user. The password is prompted for, or read from
  LEDGERBOOK_PASSWORD. Run login afterwards.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username")
	f.StringVar(&c.email, "email", "", "Email address")
	f.StringVar(&c.fullName, "name", "", "Full name")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	password, err := readPassword("New password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return subcommands.ExitFailure
	}

	return withClient(func(client *ledgerbook.Client) error {
		user, err := client.Auth.Register(ctx, &ledgerbook.RegisterParams{
			Username: c.username,
			Email:    c.email,
			Password: password,
			FullName: c.fullName,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
		return nil
	})
}

// whoamiCmd holds the flags for the 'whoami' subcommand.
type whoamiCmd struct{}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the authenticated user" }
func (*whoamiCmd) Usage() string {
	return `ledgerbook whoami
`
}

func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		user, err := client.Users.Me(ctx)
		if err != nil {
			return err
		}
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%s <%s> %s, %s\n", user.Username, user.Email, orDash(user.FullName), role)
		return nil
	})
}
