package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/api"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/cache"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/llm"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/pipeline"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/store"
)

var (
	serveAddr    string
	serveDB      string
	llmProvider  string
	llmModel     string
	serveNoCache bool
)

// serveCmd starts the HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the claim processing HTTP service",
	Long: `Starts the FNOL HTTP service: claim intake, risk assessment, routing,
persistence, and the dashboard API. Configuration is read from the
config file, ZOOP_* environment variables, and flags, in that order of
increasing precedence.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8000)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "sqlite database path (default fnol.db)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "decision service provider: openai or gemini")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "decision service model name")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "disable dashboard response caching")

	rootCmd.AddCommand(serveCmd)
}

// loadConfig merges defaults, config file values, environment, and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Flags win over file and environment
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDB != "" {
		cfg.Database.Path = serveDB
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if serveNoCache {
		cfg.Cache.Enabled = false
	}

	// API keys come from the provider's conventional variables when the
	// config leaves the key empty.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini", "google":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	if provider == nil {
		return errors.New("no LLM provider configured: set llm.provider and an API key")
	}
	if !provider.IsAvailable(cmd.Context()) {
		return fmt.Errorf("LLM provider %s is not available: missing API key", provider.Name())
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		c = cache.NewMemoryCache(ttl, 2*ttl)
	}

	processor := pipeline.NewProcessor(provider, st, logger)
	handler := api.NewHandler(processor, st, c, time.Duration(cfg.Cache.TTLSeconds)*time.Second, logger)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			"addr", cfg.Server.Addr,
			"db", cfg.Database.Path,
			"provider", provider.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
