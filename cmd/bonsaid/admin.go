package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/bonsai-todo/bonsai/internal/adapter/postgres"
	"github.com/bonsai-todo/bonsai/internal/config"
	"github.com/bonsai-todo/bonsai/internal/domain/user"
	"github.com/bonsai-todo/bonsai/internal/service"
)

// runAdmin dispatches admin subcommands (create-user, list-users).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	case "migration-version":
		return runAdminMigrationVersion(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: bonsaid admin <command> [options]

Commands:
  create-user        Create a new user
  list-users         List all users
  migration-version  Print the current schema migration version
  help               Show this help message

Examples:
  bonsaid admin create-user --email anna@example.com
  bonsaid admin list-users
`)
}

func loadAdminDeps() (*service.AuthService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	authSvc := service.NewAuthService(store, &cfg.Auth)

	cleanup := func() {
		pool.Close()
	}
	return authSvc, cleanup, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "user email address (required)")
	password := fs.String("password", "", "password (prompted if not provided)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	authSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	u, err := authSvc.Register(context.Background(), &user.CreateRequest{
		Email:    *email,
		Password: pass,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s)\n", u.Email, u.ID)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	authSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := authSvc.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tCREATED")
	for i := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			users[i].ID, users[i].Email, users[i].CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runAdminMigrationVersion(args []string) error {
	fs := flag.NewFlagSet("migration-version", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	version, err := postgres.MigrationVersion(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
