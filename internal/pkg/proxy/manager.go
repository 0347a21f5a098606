// Package proxy owns the current egress route of one task and replaces it
// when a protocol call fails on the transport layer.
package proxy

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"

	"github.com/ticketrush/ticketrush/internal/pkg/egress"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const (
	// MaxSwitches bounds consecutive unsuccessful route switches per task.
	MaxSwitches = 20
	// EmptySourcePause distinguishes vendor throttling from a generic transient error.
	EmptySourcePause = 5 * time.Second
)

// ErrRouteExhausted is returned when the switch bound is reached, the task must fail.
var ErrRouteExhausted = errors.New("no route available, switch attempts exhausted")

// RouteProvider yields one validated route, egress.ErrSourceEmpty signals vendor exhaustion.
type RouteProvider interface {
	AcquireRoute(ctx context.Context, class model.RouteClass) (*model.ValidatedRoute, error)
}

// Manager state is owned by one task, only the current route is read concurrently.
type Manager struct {
	logger   log.Logger
	clock    clockwork.Clock
	provider RouteProvider
	class    model.RouteClass

	config Config

	lock        sync.RWMutex
	current     *model.ValidatedRoute
	switchCount *atomic.Int32
}

type Config struct {
	MaxSwitches      int
	EmptySourcePause time.Duration
}

func DefaultConfig() Config {
	return Config{MaxSwitches: MaxSwitches, EmptySourcePause: EmptySourcePause}
}

func NewManager(logger log.Logger, clock clockwork.Clock, provider RouteProvider, class model.RouteClass, initial *model.ValidatedRoute, config Config) *Manager {
	return &Manager{
		logger:      logger.AddPrefix("[proxy]"),
		clock:       clock,
		provider:    provider,
		class:       class,
		config:      config,
		current:     initial,
		switchCount: atomic.NewInt32(0),
	}
}

// Current returns the route protocol calls should be sent through.
// The returned value is immutable, a switch installs a new one wholesale.
func (m *Manager) Current() *model.ValidatedRoute {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current
}

func (m *Manager) SwitchCount() int {
	return int(m.switchCount.Load())
}

// Classify reports whether the error is a transport-layer failure.
func (m *Manager) Classify(err error) bool {
	return Classify(err)
}

// Switch acquires a replacement route. An explicit bounded loop, one iteration
// per acquisition attempt, the counter resets to zero on every success.
func (m *Manager) Switch(ctx context.Context) (*model.ValidatedRoute, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if int(m.switchCount.Load()) >= m.config.MaxSwitches {
			return nil, ErrRouteExhausted
		}
		m.switchCount.Inc()

		route, err := m.provider.AcquireRoute(ctx, m.class)
		switch {
		case err == nil:
			m.switchCount.Store(0)
			m.install(route)
			m.logger.Infof(`switched to route "%s"`, route.HostPort())
			return route, nil
		case errors.Is(err, egress.ErrSourceEmpty):
			m.logger.Debugf(`route source is empty, waiting %s`, m.config.EmptySourcePause)
			m.clock.Sleep(m.config.EmptySourcePause)
		default:
			m.logger.Debugf(`route acquisition failed: %s`, err)
		}
	}
}

func (m *Manager) install(route *model.ValidatedRoute) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.current = route
}
