package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/postgres"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ristretto"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/config"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/secrets"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

// runAdmin dispatches admin subcommands (connect-account, list-accounts,
// list-tasks, analyze).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "connect-account":
		return runAdminConnectAccount(args[1:])
	case "list-accounts":
		return runAdminListAccounts(args[1:])
	case "list-tasks":
		return runAdminListTasks(args[1:])
	case "analyze":
		return runAdminAnalyze(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: genia admin <command> [options]

Commands:
  connect-account   Store credentials for a user's platform account
  list-accounts     List a user's connected accounts
  list-tasks        List a user's most recent tasks
  analyze           Classify a message offline with the keyword analyzer
  help              Show this help message

Examples:
  genia admin connect-account --user u1 --platform facebook --label "Mi página"
  genia admin list-accounts --user u1
  genia admin list-tasks --user u1 --limit 20
  genia admin analyze "Publica en Facebook: Nueva colección disponible"
`)
}

type adminDeps struct {
	store   *postgres.Store
	factory *service.ConnectorFactory
	cleanup func()
}

func loadAdminDeps(configPath string) (*adminDeps, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sealer, err := secrets.NewSealer(cfg.Connectors.CredentialsKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("credentials key: %w", err)
	}

	l1, err := ristretto.New(1 << 20)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}

	store := postgres.NewStore(pool)
	return &adminDeps{
		store:   store,
		factory: service.NewConnectorFactory(store, sealer, l1, cfg.Connectors),
		cleanup: func() {
			l1.Close()
			pool.Close()
		},
	}, nil
}

func runAdminConnectAccount(args []string) error {
	fs := pflag.NewFlagSet("connect-account", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", config.DefaultConfigFile, "path to YAML config file")
	userID := fs.String("user", "", "user ID (required)")
	platform := fs.String("platform", "", "platform or provider name (required)")
	label := fs.String("label", "", "display label for the account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID == "" {
		return fmt.Errorf("--user is required")
	}
	if *platform == "" {
		return fmt.Errorf("--platform is required")
	}

	creds, err := promptCredentials()
	if err != nil {
		return err
	}

	deps, err := loadAdminDeps(*configPath)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := deps.factory.Connect(ctx, *userID, *platform, *label, creds); err != nil {
		return fmt.Errorf("connect account: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Account %s connected for %s\n", *platform, *userID)
	return nil
}

func runAdminListAccounts(args []string) error {
	fs := pflag.NewFlagSet("list-accounts", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", config.DefaultConfigFile, "path to YAML config file")
	userID := fs.String("user", "", "user ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	deps, err := loadAdminDeps(*configPath)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	accts, err := deps.factory.Accounts(context.Background(), *userID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accts) == 0 {
		fmt.Println("No accounts connected.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLATFORM\tLABEL\tUPDATED")
	for i := range accts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			accts[i].Platform, accts[i].Label, accts[i].UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runAdminListTasks(args []string) error {
	fs := pflag.NewFlagSet("list-tasks", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", config.DefaultConfigFile, "path to YAML config file")
	userID := fs.String("user", "", "user ID (required)")
	limit := fs.Int("limit", 20, "maximum number of tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	deps, err := loadAdminDeps(*configPath)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	history := service.NewTaskHistoryService(deps.store, nil, nil)
	snaps, err := history.List(context.Background(), *userID, *limit)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tUPDATED\tERROR")
	for i := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			snaps[i].ID, snaps[i].Type, snaps[i].Status, snaps[i].UpdatedAt.Format(time.RFC3339), snaps[i].Error)
	}
	return w.Flush()
}

// runAdminAnalyze classifies a message without touching the database or an
// LLM, showing the clone it would reach and any task parameters.
func runAdminAnalyze(args []string) error {
	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", config.DefaultConfigFile, "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return fmt.Errorf("a message is required")
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	in := service.KeywordAnalyzer{}.Analyze(message)
	out := map[string]any{
		"intent":    in,
		"cloneType": service.SelectClone(in),
	}

	if ei := service.DetectExecutableIntent(message); ei != "" {
		out["executableIntent"] = ei
		if typ, ok := ei.TaskType(); ok {
			extractors := service.DefaultExtractors(cfg.Connectors.DefaultSocial, cfg.Connectors.DefaultEmail)
			params, err := extractors.Extract(typ, message, time.Now())
			if err != nil {
				out["parametersError"] = err.Error()
			} else {
				out["parameters"] = params
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// promptCredentials reads key=value pairs from the terminal without echoing,
// one per line, until an empty line.
func promptCredentials() (connector.Credentials, error) {
	fmt.Fprintln(os.Stderr, "Enter credentials as key=value, one per line. Empty line to finish.")
	creds := connector.Credentials{}
	for n := 1; ; n++ {
		line, err := promptSecret("> ")
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("credential line %d is not key=value", n)
		}
		creds[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("no credentials given")
	}
	return creds, nil
}

// promptSecret reads a line from the terminal without echoing.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
