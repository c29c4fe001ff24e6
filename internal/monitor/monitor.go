// Package monitor watches a serialized state snapshot on disk and
// reports structural changes. It combines filesystem notifications with
// a periodic poll (editors that replace files atomically defeat watches)
// and throttles reloads so rapid rewrites coalesce.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/parley-dm/parley/internal/domain"
)

// Change describes one observed state transition.
type Change struct {
	// State is the newly loaded information state.
	State *domain.InformationState
	// Diff is a structural diff against the previous state, empty on
	// the first load.
	Diff string
	// At is when the change was observed.
	At time.Time
}

// Handler receives state changes.
type Handler func(Change)

// Monitor watches one snapshot file.
type Monitor struct {
	path     string
	limiter  *rate.Limiter
	interval time.Duration
	handler  Handler
	logger   *zap.Logger

	mu      sync.Mutex
	prev    *domain.InformationState
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithPollInterval overrides the fallback poll period (default 2s).
func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithReloadLimit overrides the reload throttle.
func WithReloadLimit(rps float64, burst int) Option {
	return func(m *Monitor) { m.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New builds a monitor for the snapshot at path.
func New(path string, handler Handler, logger *zap.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		path:     path,
		limiter:  rate.NewLimiter(rate.Limit(4), 2),
		interval: 2 * time.Second,
		handler:  handler,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins watching. Non-blocking; Stop tears the watcher down.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(m.path); err != nil {
		// The file may not exist yet; polling will pick it up.
		m.logger.Warn("watch failed, relying on polling", zap.String("path", m.path), zap.Error(err))
	}
	m.watcher = watcher
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.running = true
	m.mu.Unlock()

	// Initial load so the first diff has a baseline.
	m.reload()

	go m.loop(ctx)
	return nil
}

// Stop shuts the monitor down and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.doneCh)
	defer m.watcher.Close()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				m.throttledReload()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			m.throttledReload()
		}
	}
}

func (m *Monitor) throttledReload() {
	if !m.limiter.Allow() {
		return
	}
	m.reload()
}

func (m *Monitor) reload() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	state, err := domain.DecodeState(data)
	if err != nil {
		m.logger.Warn("snapshot not decodable", zap.String("path", m.path), zap.Error(err))
		return
	}

	m.mu.Lock()
	prev := m.prev
	diff := Diff(prev, state)
	changed := prev == nil || diff != ""
	if changed {
		m.prev = state
	}
	m.mu.Unlock()

	if changed && m.handler != nil {
		m.handler(Change{State: state, Diff: diff, At: time.Now().UTC()})
	}
}

// Diff returns a structural diff between two states, empty when equal.
// Comparison goes through the serialized form so unexported fields and
// interface dynamic types do not trip cmp.
func Diff(prev, next *domain.InformationState) string {
	if prev == nil || next == nil {
		return ""
	}
	prevData, err := domain.EncodeState(prev)
	if err != nil {
		return ""
	}
	nextData, err := domain.EncodeState(next)
	if err != nil {
		return ""
	}
	var a, b map[string]any
	if err := json.Unmarshal(prevData, &a); err != nil {
		return ""
	}
	if err := json.Unmarshal(nextData, &b); err != nil {
		return ""
	}
	return cmp.Diff(a, b)
}
