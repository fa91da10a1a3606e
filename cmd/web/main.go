package main

import (
	"context"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/dailywod/internal/envstruct"
	"github.com/myrjola/dailywod/internal/errors"
	"github.com/myrjola/dailywod/internal/flightrecorder"
	"github.com/myrjola/dailywod/internal/logging"
	"github.com/myrjola/dailywod/internal/pool"
	"github.com/myrjola/dailywod/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	poolService    *pool.Service
	flightRecorder *flightrecorder.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"DAILYWOD_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"DAILYWOD_SQLITE_URL" envDefault:"./dailywod.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"DAILYWOD_TEMPLATE_PATH" envDefault:""`
	// SeedPool controls whether the workout pool is generated from the movement catalog on startup.
	SeedPool bool `env:"DAILYWOD_SEED_POOL" envDefault:"true"`
	// TracesDirectory is the directory where timeout traces are written.
	TracesDirectory string `env:"DAILYWOD_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	poolService := pool.NewService(db, logger, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if cfg.SeedPool {
		if err = poolService.EnsurePool(ctx, time.Now()); err != nil {
			return errors.Wrap(err, "ensure workout pool")
		}
	}

	var recorder *flightrecorder.Service
	if recorder, err = flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: cfg.TracesDirectory,
	}); err != nil {
		return errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	defer recorder.Stop(ctx)

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		templateFS:     os.DirFS(htmlTemplatePath),
		poolService:    poolService,
		flightRecorder: recorder,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if serveErr := app.configureAndStartServer(gctx, cfg.Addr); serveErr != nil {
			return errors.Wrap(serveErr, "start server")
		}
		return nil
	})
	g.Go(func() error {
		if optimizeErr := db.RunOptimizer(gctx); !errors.Is(optimizeErr, context.Canceled) {
			return errors.Wrap(optimizeErr, "run sqlite optimizer")
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return err
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 30 * 24 * time.Hour                                           //nolint:mnd // month
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
