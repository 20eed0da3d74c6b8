package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/stockterm/internal/api"
	"github.com/jask/stockterm/internal/config"
	"github.com/jask/stockterm/internal/database"
	"github.com/jask/stockterm/internal/database/repository"
	"github.com/jask/stockterm/internal/secrets"
	"github.com/jask/stockterm/internal/service"
	"github.com/jask/stockterm/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runtime holds the wired dependencies shared by the TUI and the headless commands.
type runtime struct {
	cfg     config.Config
	client  *api.Client
	db      *sql.DB
	history *service.RecordingCreator
	logger  *log.Logger
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setup(cfg config.Config, logger *log.Logger) (*runtime, error) {
	host, err := apiHost(cfg)
	if err != nil {
		return nil, err
	}
	token := resolveToken(cfg, host)
	client, err := api.NewClient(cfg.API.BaseURL, token,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if token == "" {
		logger.Printf("warn: no API token for %s; set $%s or run `stockterm token set`", client.Host(), cfg.API.TokenEnv)
	}

	if err := database.RunMigrations(cfg.History.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		client: client,
		db:     db,
		history: &service.RecordingCreator{
			Next:        client,
			Submissions: repository.NewSubmissionRepo(db),
			Logger:      logger,
		},
		logger: logger,
	}, nil
}

func (r *runtime) Close() error {
	return r.db.Close()
}

func apiHost(cfg config.Config) (string, error) {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", api.ErrBadURL, cfg.API.BaseURL)
	}
	return u.Host, nil
}

// resolveToken prefers the env var named in config, then the token store, then config.toml.
func resolveToken(cfg config.Config, host string) string {
	if env := strings.TrimSpace(cfg.API.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if tok, err := secrets.FetchToken(host); err == nil {
		return tok
	}
	return strings.TrimSpace(cfg.API.Token)
}

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := tea.LogToFile(cfg.Log.Path, "stockterm")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	rt, err := setup(cfg, log.Default())
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.New(ctx, cfg.UI, tui.Deps{
		Catalog:     service.NewCatalog(rt.client, rt.logger),
		Inventories: rt.client,
		Creator:     rt.history,
		History:     rt.history,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "stockterm",
		Short:         "Browse and register inventories from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API traffic to stderr")

	root.AddCommand(
		newListCmd(&verbose),
		newShowCmd(&verbose),
		newAddCmd(&verbose),
		newTokenCmd(),
		newConfigCmd(),
	)
	return root
}
