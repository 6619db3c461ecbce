package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-ai/qna/internal/auth"
	"github.com/alphabot-ai/qna/internal/censor"
	"github.com/alphabot-ai/qna/internal/config"
	httpapp "github.com/alphabot-ai/qna/internal/http"
	"github.com/alphabot-ai/qna/internal/metric"
	"github.com/alphabot-ai/qna/internal/rate"
	"github.com/alphabot-ai/qna/internal/store"
	"github.com/alphabot-ai/qna/internal/store/memory"
	"github.com/alphabot-ai/qna/internal/store/seed"
	"github.com/alphabot-ai/qna/internal/store/sqlite"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the HTTP server",
		Long: `Start the HTTP server.

Environment:
  QNA_ADDR              listen address (default :8080, or :$PORT)
  QNA_STORE             memory | sqlite (default memory)
  QNA_DB                sqlite database path (default qna.db)
  QNA_SEED              YAML or JSON file of questions loaded at boot
  QNA_JWT_ALG           HS256 | ES256K (default HS256)
  QNA_JWT_SECRET        HS256 secret; QNA_JWT_SECRET_FILE wins when set
  QNA_JWT_KEY_FILE      hex secp256k1 private key for ES256K
  QNA_TOKEN_TTL         token lifetime (default 24h)
  QNA_BAD_WORDS_KEY     profanity filter API key; filtering is off without it
  QNA_RL_WRITE_PER_MIN  writes per minute per client (default 60)
  QNA_LOG_LEVEL         logrus level (default info)`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(cfg.LogLevel)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.SeedPath != "" {
		added, err := seed.LoadFile(ctx, st, cfg.SeedPath)
		if err != nil {
			return fmt.Errorf("load seed %s: %w", cfg.SeedPath, err)
		}
		logger.WithFields(logrus.Fields{"path": cfg.SeedPath, "added": added}).Info("seeded questions")
	}

	var checker censor.Checker = censor.Nop{}
	if cfg.Censor.APIKey != "" {
		checker = censor.NewClient(cfg.Censor.BaseURL, cfg.Censor.APIKey)
	} else {
		logger.Warn("QNA_BAD_WORDS_KEY not set, content is stored unfiltered")
	}

	server := httpapp.NewServer(httpapp.Deps{
		Store:   st,
		Auth:    auth.NewService(st, cfg.JWT, cfg.TokenTTL),
		Censor:  checker,
		Limiter: rate.NewMemory(),
		Metrics: metric.New(),
		Logger:  logger,
	}, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.Store}).Info("qna listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Store == config.StoreSQLite {
		st, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return memory.New(), nil
}
