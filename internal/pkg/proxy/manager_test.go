package proxy

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/pkg/egress"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// fakeProvider returns the prepared results in order, the last one repeats.
type fakeProvider struct {
	results []acquireResult
	calls   int
}

type acquireResult struct {
	route *model.ValidatedRoute
	err   error
}

func (p *fakeProvider) AcquireRoute(ctx context.Context, class model.RouteClass) (*model.ValidatedRoute, error) {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	r := p.results[i]
	return r.route, r.err
}

func route(addr string) *model.ValidatedRoute {
	return &model.ValidatedRoute{
		RouteCandidate: model.RouteCandidate{Address: addr, Port: 8080},
		ObservedAddr:   addr,
	}
}

func testConfig() Config {
	c := DefaultConfig()
	c.EmptySourcePause = 0
	return c
}

func TestManager_SwitchSuccess(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{results: []acquireResult{{route: route("10.0.0.2")}}}
	m := NewManager(log.NewDebugLogger(), clockwork.NewRealClock(), provider, "residential", route("10.0.0.1"), testConfig())

	assert.Equal(t, "10.0.0.1:8080", m.Current().HostPort())
	switched, err := m.Switch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:8080", switched.HostPort())
	assert.Equal(t, switched, m.Current())
	// Counter resets to zero on every successful acquisition
	assert.Equal(t, 0, m.SwitchCount())
}

func TestManager_SwitchRetriesValidationFailures(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{results: []acquireResult{
		{err: errors.New("check failed")},
		{err: egress.ErrSourceEmpty},
		{route: route("10.0.0.3")},
	}}
	m := NewManager(log.NewDebugLogger(), clockwork.NewRealClock(), provider, "residential", route("10.0.0.1"), testConfig())

	switched, err := m.Switch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.3:8080", switched.HostPort())
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, 0, m.SwitchCount())
}

func TestManager_SwitchExhausted(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{results: []acquireResult{{err: errors.New("check failed")}}}
	m := NewManager(log.NewDebugLogger(), clockwork.NewRealClock(), provider, "residential", route("10.0.0.1"), testConfig())

	_, err := m.Switch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRouteExhausted))
	assert.Equal(t, MaxSwitches, provider.calls)
	// Current route is kept, it may still work for business errors
	assert.Equal(t, "10.0.0.1:8080", m.Current().HostPort())
}

func TestManager_SwitchCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &fakeProvider{results: []acquireResult{{route: route("10.0.0.2")}}}
	m := NewManager(log.NewDebugLogger(), clockwork.NewRealClock(), provider, "residential", route("10.0.0.1"), testConfig())

	_, err := m.Switch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, provider.calls)
}
