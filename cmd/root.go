// Package cmd provides the habrscore command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fragmede/habrscore/internal/api"
	"github.com/fragmede/habrscore/internal/cache"
	"github.com/fragmede/habrscore/internal/config"
	"github.com/fragmede/habrscore/internal/fetch"
	"github.com/fragmede/habrscore/internal/layout"
)

// pruneAge is how long a cached page is kept after it was fetched.
const pruneAge = 7 * 24 * time.Hour

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "habrscore",
		Short: "Score histogram and filter for Habr comment threads",
		Long: `habrscore reads a Habr article page, counts its comments by score and
filters the thread by a minimum score.

Commands:
- view: browse the comments in the terminal and filter them by score
- annotate: write the page back out with a score filter applied
- histogram: print the score histogram of one or more pages
- layout: show how the layout selectors match a page`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("layout", "", "page layout (auto, desktop, mobile)")
	flags.String("layout-file", "", "yaml file overriding layout selectors")
	flags.String("cache-dir", "", "directory for the page cache and log")

	root.AddCommand(newViewCmd(), newAnnotateCmd(), newHistogramCmd(), newLayoutCmd())
	return root
}

// Execute runs the command line. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"layout":      "layout",
	"layout-file": "layout_file",
	"cache-dir":   "cache_dir",
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("binding %s flag: %w", flag, err)
			}
		}
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(v, path)
}

// env holds what every command needs once configuration is loaded.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	db     *cache.DB
	loader *fetch.Loader
	closer io.Closer
}

// setup loads configuration, opens the log and the page cache. The TUI owns
// the terminal, so interactive commands log to the log file.
func setup(cmd *cobra.Command, logToFile bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	e := &env{cfg: cfg}
	var out io.Writer = cmd.ErrOrStderr()
	if logToFile {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log: %w", err)
		}
		out = f
		e.closer = f
	}
	e.logger = setupLogger(cfg.LogLevel, out)

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	e.db = db
	if n, err := db.PruneOlderThan(time.Now().Add(-pruneAge)); err != nil {
		e.logger.Warn("pruning page cache", slog.String("error", err.Error()))
	} else if n > 0 {
		e.logger.Debug("pruned page cache", slog.Int64("pages", n))
	}

	client := api.NewClient(
		api.WithTimeout(cfg.FetchTimeout),
		api.WithUserAgent(cfg.UserAgent),
		api.WithMaxConcurrent(cfg.MaxConcurrent),
	)
	e.loader = fetch.NewLoader(client, db, cfg.PageTTL, e.logger)
	return e, nil
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.closer != nil {
		e.closer.Close()
	}
}

// layoutFor resolves the layout of a target: the forced variant, else the
// target's host, with the override file applied on top.
func (e *env) layoutFor(target string) (layout.Layout, error) {
	return layout.LoadOverridesFile(e.cfg.LayoutFile, layout.Resolve(target, e.cfg.Layout))
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
