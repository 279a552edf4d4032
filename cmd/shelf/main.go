package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/storage"
	"github.com/pders01/shelf/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	quiet      bool
}

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(Version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "shelf",
		Short: "Discover books from the terminal",
		Long:  "shelf searches the Open Library catalog by free text and interest tags, shows book details and keeps a list of favorites.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: off, error, warn, info, debug (overrides config)")
	root.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Skip startup banner")

	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newFavoritesCmd(opts))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// setup loads the configuration and starts file logging.
func setup(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	cfg, err := setup(opts)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !opts.quiet {
		tui.ShowBanner(Version)
	}

	metrics := catalog.NewMetrics()
	client, err := catalog.NewClient(cfg, catalog.WithMetrics(metrics))
	if err != nil {
		return err
	}

	var appOpts []tui.Option
	if cfg.Favorites.Persist {
		store, err := storage.NewStore(cfg.Favorites.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		appOpts = append(appOpts, tui.WithStore(store))
	}

	stopMetrics := serveMetrics(cfg.Metrics.Addr, metrics)
	defer stopMetrics()

	app := tui.NewApp(cfg, client, appOpts...)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// serveMetrics exposes the catalog metrics on addr until the returned stop
// function is called. An empty addr disables it.
func serveMetrics(addr string, metrics *catalog.Metrics) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			debuglog.Errorf("metrics server failed: %v", err)
		}
	}()
	debuglog.Infof("metrics server listening on %s", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			debuglog.Errorf("metrics server shutdown failed: %v", err)
		}
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				home, _ := os.UserHomeDir()
				path = filepath.Join(home, ".config", "shelf", "config.toml")
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "Where to write the config (default ~/.config/shelf/config.toml)")

	cmd.AddCommand(generate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shelf %s\n", Version)
			fmt.Fprintln(out, "Book discovery for the terminal")
			fmt.Fprintln(out, "github.com/pders01/shelf")
		},
	}
}
