package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/pkg/buildinfo"
	"github.com/matzehuels/blockmondrian/pkg/cache"
	"github.com/matzehuels/blockmondrian/pkg/config"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/integrations/blockchaininfo"
	"github.com/matzehuels/blockmondrian/pkg/observability"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "blockmondrian"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	out        io.Writer
	configPath string
	verbose    bool
	trace      bool
	stopTrace  func(context.Context) error
}

// New creates a new CLI instance with a default logger and built-in config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (rendered data, JSON, tables).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockmondrian draws Bitcoin blocks as Mondrian mosaics",
		Long: `Blockmondrian fetches the transactions of a Bitcoin block, sizes one square
per transaction by its value and packs the squares into a Mondrian-style mosaic.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/blockmondrian/config.toml)")
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "export pipeline spans to stderr")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies global flags before any subcommand runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.trace {
		stop, err := observability.InstallTracing(os.Stderr)
		if err != nil {
			return fmt.Errorf("install tracing: %w", err)
		}
		c.stopTrace = stop
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// teardown flushes tracing, if enabled.
func (c *CLI) teardown(ctx context.Context) error {
	if c.stopTrace == nil {
		return nil
	}
	stop := c.stopTrace
	c.stopTrace = nil
	observability.Reset()
	return stop(ctx)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache and
// block source.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Scope)
	}
	return pipeline.NewRunner(store, keyer, c.Logger, c.newBlockSource(store)), nil
}

func (c *CLI) newBlockSource(store cache.Cache) *blockchaininfo.Client {
	client := blockchaininfo.NewClientWithBaseURL(store, c.Config.Cache.TTL, c.Config.API.BaseURL)
	client.SetTimeout(c.Config.API.Timeout)
	return client
}

// newCache opens the configured backend. An unusable file cache directory
// degrades to no caching; an unreachable redis server is an error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		r := c.Config.Cache.Redis
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		})
		if err != nil {
			return nil, bmerrors.Wrap(bmerrors.ErrCodeNetwork, err, "connect cache")
		}
		return store, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/blockmondrian/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// setSource points opts at arg: an existing file is imported, otherwise arg
// must be a block height.
func setSource(opts *pipeline.Options, arg string) error {
	if _, err := os.Stat(arg); err == nil {
		opts.Input = arg
		return nil
	}
	if !looksNumeric(arg) {
		return bmerrors.New(bmerrors.ErrCodeFileNotFound, "%s is neither a file nor a block height", arg)
	}
	height, err := bmerrors.ValidateHeight(arg)
	if err != nil {
		return err
	}
	opts.BlockHeight = &height
	return nil
}

// looksNumeric reports whether s is an optionally signed run of digits, the
// shape of something meant as a block height rather than a file name.
func looksNumeric(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
