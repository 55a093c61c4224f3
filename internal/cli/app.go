// Package cli implements the interactive REPL front over the sync engine.
// It is presentation glue: every command goes through the engine's
// data-access contract and never touches the stores directly.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meterbook/meterbook/internal/cache"
	"github.com/meterbook/meterbook/internal/config"
	"github.com/meterbook/meterbook/internal/connectivity"
	"github.com/meterbook/meterbook/internal/docstore"
	"github.com/meterbook/meterbook/internal/importer"
	"github.com/meterbook/meterbook/internal/logging"
	"github.com/meterbook/meterbook/internal/remote"
	"github.com/meterbook/meterbook/internal/syncer"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	engine   *syncer.Engine
	watcher  *connectivity.Watcher
	importer *importer.Importer
	log      logging.Logger
	reader   *bufio.Reader

	cacheDB *sql.DB
	pool    *pgxpool.Pool
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	docs, cacheDB, err := docstore.InitDatabase(ctx, cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("init cache database: %w", err)
	}

	pool, err := remote.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		_ = cacheDB.Close()
		return nil, err
	}

	if err := remote.RunMigrations(ctx, cfg.DatabaseDSN); err != nil {
		// offline start: the schema can catch up on a later run
		log.Warn(ctx, "remote schema migration skipped", "error", err)
	}

	store := remote.NewPostgresStore(pool)
	watcher := connectivity.NewWatcher(store, cfg.OnlineCheckInterval, log)
	engine := syncer.New(store, cache.NewStore(docs, log), watcher, log)

	return &App{
		config:   cfg,
		engine:   engine,
		watcher:  watcher,
		importer: importer.New(engine, log),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		cacheDB:  cacheDB,
		pool:     pool,
	}, nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.cacheDB != nil {
		_ = a.cacheDB.Close()
	}
}

func (a *App) mode() string {
	if a.watcher.Online() {
		return "online"
	}
	return "offline"
}

// Run starts the connectivity watcher, wires the automatic sync drain to
// the regained-connectivity signal and enters the command loop.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	go a.watcher.Run(ctx)

	unsubscribe := a.watcher.OnRegained(func(ctx context.Context) int {
		n, _ := a.engine.SyncUnsynced(ctx)
		if n > 0 {
			fmt.Printf("\nsynced %d pending entr%s\n", n, plural(n, "y", "ies"))
		}
		return n
	})
	defer unsubscribe()

	a.Root(ctx)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
