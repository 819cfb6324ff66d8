package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/config"
	"github.com/myfiredeal/firedeal/internal/gateway"
	"github.com/myfiredeal/firedeal/internal/session"
	"github.com/myfiredeal/firedeal/internal/store"
	"github.com/myfiredeal/firedeal/internal/tui"
)

var (
	// CLI flags
	backendFlag string
	dataDirFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "firedeal",
		Short: "Terminal portfolio tracker for subsidiaries and deals",
		Long: `firedeal is a terminal user interface for tracking a portfolio of
subsidiary projects and deals.

Projects live in Supabase by default, with a local stash that keeps
writes safe while the remote store is unreachable.

Configuration (environment or .env):
  SUPABASE_URL        Supabase project URL (required)
  SUPABASE_ANON_KEY   Supabase anon key (required)
  FIREDEAL_BACKEND    remote | local | fallback (default: fallback)
  FIREDEAL_DATA_DIR   Local stash and session directory
  FIREDEAL_LOG_FILE   Structured log destination`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "Persistence backend: remote, local or fallback. Overrides FIREDEAL_BACKEND.")
	rootCmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "Directory for the local stash and session. Overrides FIREDEAL_DATA_DIR.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if backendFlag != "" {
		cfg.Backend = config.Backend(backendFlag)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	log, err := newLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	if err != nil {
		return fmt.Errorf("creating supabase client: %w", err)
	}

	provider := session.NewSupabaseProvider(client)
	holder := session.NewHolder(provider, cfg.DataDir, log)

	var gw gateway.Gateway
	switch cfg.Backend {
	case config.BackendRemote:
		gw = gateway.NewRemote(client, log)
	case config.BackendLocal:
		gw = gateway.NewLocal(cfg.DataDir, log)
	case config.BackendFallback:
		gw = gateway.NewFallback(
			gateway.NewRemote(client, log),
			gateway.NewLocal(cfg.DataDir, log),
			log,
		)
	}

	s := store.New(gw, holder, log)

	log.Info("starting",
		zap.String("backend", string(cfg.Backend)),
		zap.String("data_dir", cfg.DataDir),
	)

	app := tui.NewAppModel(s, holder, log, ctx)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}

// newLogger builds a production logger writing to the given file. The
// terminal belongs to the TUI, so nothing may log to stdout or stderr.
func newLogger(path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
