// Package cli is the interactive muster client: a small REPL over the farm
// services with an online-status watcher.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/openpaddock/muster/internal/api"
	"github.com/openpaddock/muster/internal/config"
	"github.com/openpaddock/muster/internal/farm"
	"github.com/openpaddock/muster/internal/gateway"
	"github.com/openpaddock/muster/internal/localdb"
	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/netx"
	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/session"
	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *session.Session
	client  *api.Client
	farm    *farm.Service
	engine  *syncer.Engine
	queue   *queue.Queue
	prober  *netx.Prober
	reader  *bufio.Reader

	// mode is written by the watcher goroutine and read by the REPL
	modeMu sync.RWMutex
	mode   Mode
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	meta := store.NewMetadata(db)
	sess := session.New(meta)
	if err := sess.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	gw := gateway.New(cfg.ServerEndpointURL, httpClient, sess, log)
	client := api.NewClient(gw)

	records := store.New(db)
	q := queue.New(db)

	app := &App{
		config:  cfg,
		log:     log,
		db:      db,
		session: sess,
		client:  client,
		farm:    farm.New(client, client, records, q, log),
		engine:  &syncer.Engine{Queue: q, Remote: client, Meta: meta, Store: records, Log: log},
		queue:   q,
		prober:  netx.NewProber(cfg.ServerEndpointURL, httpClient),
		mode:    ModeOffline,
		reader:  bufio.NewReader(os.Stdin),
	}

	sess.OnAuthRequired(func() {
		fmt.Println("Session expired, please login again.")
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) currentMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	if a.mode == mode {
		a.modeMu.Unlock()
		return
	}
	a.mode = mode
	a.modeMu.Unlock()

	a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	fmt.Printf("Switched to %s mode\n", mode)

	if mode == ModeOnline {
		a.replay(ctx)
	}
}

// StartOnlineStatusWatcher polls the server's health endpoint and flips the
// mode accordingly. Coming back online triggers a replay pass.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.prober.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) replay(ctx context.Context) {
	n, err := a.queue.Len(ctx)
	if err != nil || n == 0 {
		return
	}
	res, err := a.engine.Replay(ctx)
	if err != nil {
		a.log.Warn(ctx, "replay pass did not run", "error", err)
		return
	}
	fmt.Printf("Synced %d pending change(s), %d still queued\n", res.Applied, res.Failed)
}
