package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/meterbook/meterbook/internal/logging"
)

const probeTimeout = 3 * time.Second

// Pinger probes the remote store for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher implements Oracle by probing a Pinger on a fixed interval.
// It starts offline, so the first successful probe counts as a regained
// transition and drains anything left pending from the previous run.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu     sync.Mutex
	online bool
	subs   map[int]Handler
	nextID int
}

// NewWatcher returns a stopped watcher; call Run to start probing.
func NewWatcher(pinger Pinger, interval time.Duration, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Watcher{
		pinger:   pinger,
		interval: interval,
		log:      log,
		subs:     make(map[int]Handler),
	}
}

func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

func (w *Watcher) OnRegained(h Handler) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.subs[id] = h

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Run probes immediately and then on every interval until ctx is
// cancelled. Intended to be started once, in its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	w.CheckNow(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckNow performs a single probe and applies the resulting transition.
func (w *Watcher) CheckNow(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := w.pinger.Ping(probeCtx)
	cancel()

	w.mu.Lock()
	was := w.online
	w.online = err == nil
	var handlers []Handler
	if !was && w.online {
		handlers = make([]Handler, 0, len(w.subs))
		for _, h := range w.subs {
			handlers = append(handlers, h)
		}
	}
	w.mu.Unlock()

	switch {
	case was && err != nil:
		w.log.Info(ctx, "switched to offline mode", "error", err)
	case !was && err == nil:
		w.log.Info(ctx, "switched to online mode")
	}

	// at most one notification per offline→online transition
	if len(handlers) > 0 {
		go func() {
			for _, h := range handlers {
				if n := h(ctx); n > 0 {
					w.log.Info(ctx, "synced pending entries after reconnect", "count", n)
				}
			}
		}()
	}
}
