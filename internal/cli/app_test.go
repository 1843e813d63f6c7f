package cli

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaddock/muster/internal/localdb"
	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/session"
	"github.com/openpaddock/muster/internal/store"
)

// The watcher goroutine flips the mode while the REPL goroutine reads it;
// this is only a meaningful check under the race detector.
func TestSetMode_ConcurrentWithStatusReads(t *testing.T) {
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := &App{
		log:     logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		session: session.New(store.NewMetadata(db)),
		queue:   queue.New(db),
		mode:    ModeOffline,
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				a.setMode(ctx, ModeOnline)
			} else {
				a.setMode(ctx, ModeOffline)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = a.getStatus()
			_ = a.currentMode()
		}
	}()

	wg.Wait()
	assert.Contains(t, []Mode{ModeOnline, ModeOffline}, a.currentMode())
}
