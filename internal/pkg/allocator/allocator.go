// Package allocator matches validated egress routes to waiting tasks.
//
// Routes are acquired in batches sized to the current waiting-task count and
// validated concurrently. Every validation success is bound to the
// longest-waiting task right away, so the latency between "route becomes
// valid" and "task starts running" stays minimal.
package allocator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/ticketrush/ticketrush/internal/pkg/egress"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
)

const (
	// MaxAcquisitionAttempts bounds the batch acquisition loop.
	MaxAcquisitionAttempts = 20
	EmptyBatchDelay        = 2 * time.Second
	SourceErrorDelay       = 3 * time.Second
	InterBatchDelay        = time.Second
)

// MatchFunc is invoked for every task/route pair, outside the allocator lock.
type MatchFunc func(task model.Task, route *model.ValidatedRoute)

type Config struct {
	MaxAcquisitionAttempts int
	EmptyBatchDelay        time.Duration
	SourceErrorDelay       time.Duration
	InterBatchDelay        time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAcquisitionAttempts: MaxAcquisitionAttempts,
		EmptyBatchDelay:        EmptyBatchDelay,
		SourceErrorDelay:       SourceErrorDelay,
		InterBatchDelay:        InterBatchDelay,
	}
}

type Allocator struct {
	logger  log.Logger
	clock   clockwork.Clock
	source  egress.Source
	checker egress.Checker
	config  Config
	onMatch MatchFunc

	// lock guards both queues, a pop-task/pop-route/bind sequence is atomic
	lock    sync.Mutex
	waiting []model.Task
	free    []*model.ValidatedRoute
}

func New(logger log.Logger, clock clockwork.Clock, source egress.Source, checker egress.Checker, onMatch MatchFunc, config Config) *Allocator {
	return &Allocator{
		logger:  logger.AddPrefix("[allocator]"),
		clock:   clock,
		source:  source,
		checker: checker,
		config:  config,
		onMatch: onMatch,
	}
}

// Enqueue appends tasks to the waiting queue, no route is pre-assigned.
func (a *Allocator) Enqueue(tasks ...model.Task) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.waiting = append(a.waiting, tasks...)
}

func (a *Allocator) WaitingCount() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return len(a.waiting)
}

func (a *Allocator) FreeCount() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return len(a.free)
}

// Run acquires and validates routes until the waiting queue is empty or the
// attempt bound is exhausted. It does not wait for started tasks to finish.
// Tasks still waiting after Run returns get no route, the caller reports them.
func (a *Allocator) Run(ctx context.Context, class model.RouteClass) error {
	for attempt := 1; attempt <= a.config.MaxAcquisitionAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchSize := a.WaitingCount()
		if batchSize == 0 {
			a.logger.Debugf(`all tasks matched after %d attempts`, attempt-1)
			return nil
		}

		candidates, err := a.source.Fetch(ctx, class, batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warnf(`acquisition attempt %d failed: %s`, attempt, err)
			a.clock.Sleep(a.config.SourceErrorDelay)
			continue
		}
		if len(candidates) == 0 {
			a.logger.Infof(`source returned no candidates, attempt %d, waiting %s`, attempt, a.config.EmptyBatchDelay)
			a.clock.Sleep(a.config.EmptyBatchDelay)
			continue
		}

		succeeded := a.validateBatch(ctx, candidates)
		a.TryMatch()

		switch {
		case succeeded == 0:
			a.clock.Sleep(a.config.EmptyBatchDelay)
		case succeeded*2 < len(candidates) || len(candidates) < batchSize:
			// Low success rate or short batch, go again right away
		default:
			a.clock.Sleep(a.config.InterBatchDelay)
		}
	}

	a.logger.Warnf(`acquisition attempts exhausted, %d tasks still waiting`, a.WaitingCount())
	return nil
}

// validateBatch checks all candidates concurrently. Completions are handled as
// they arrive, each success binds to a waiting task immediately or parks in the
// free queue. Returns the number of successful validations.
func (a *Allocator) validateBatch(ctx context.Context, candidates []model.RouteCandidate) int {
	succeeded := atomic.NewInt32(0)
	grp, grpCtx := errgroup.WithContext(ctx)
	for _, candidate := range candidates {
		candidate := candidate
		grp.Go(func() error {
			route, err := a.checker.Check(grpCtx, candidate)
			if err != nil {
				a.logger.Debugf(`candidate "%s" rejected: %s`, candidate.HostPort(), err)
				return nil // a failed candidate is dropped, not an error of the batch
			}
			succeeded.Inc()
			a.bindOrPark(route)
			return nil
		})
	}
	_ = grp.Wait()
	return int(succeeded.Load())
}

// bindOrPark pops one waiting task and binds it to the route, or parks the
// route when no task is waiting at this instant. The pop and the park are
// atomic with respect to concurrent completions.
func (a *Allocator) bindOrPark(route *model.ValidatedRoute) {
	a.lock.Lock()
	if len(a.waiting) > 0 {
		task := a.waiting[0]
		a.waiting = a.waiting[1:]
		a.lock.Unlock()
		a.logger.Infof(`route "%s" bound to task "%s"`, route.HostPort(), task)
		a.onMatch(task, route)
		return
	}
	a.free = append(a.free, route)
	a.lock.Unlock()
	a.logger.Debugf(`route "%s" parked, no task waiting`, route.HostPort())
}

// TryMatch drains both queues pairwise, FIFO on both sides, until one is empty.
func (a *Allocator) TryMatch() {
	for {
		a.lock.Lock()
		if len(a.waiting) == 0 || len(a.free) == 0 {
			a.lock.Unlock()
			return
		}
		task := a.waiting[0]
		a.waiting = a.waiting[1:]
		route := a.free[0]
		a.free = a.free[1:]
		a.lock.Unlock()
		a.logger.Infof(`route "%s" bound to task "%s"`, route.HostPort(), task)
		a.onMatch(task, route)
	}
}

// AcquireRoute yields one validated route for a route switch: a parked route
// if one is available, otherwise a single fetch and check.
// egress.ErrSourceEmpty is returned when the vendor has no candidate.
func (a *Allocator) AcquireRoute(ctx context.Context, class model.RouteClass) (*model.ValidatedRoute, error) {
	a.lock.Lock()
	if len(a.free) > 0 {
		route := a.free[0]
		a.free = a.free[1:]
		a.lock.Unlock()
		return route, nil
	}
	a.lock.Unlock()

	candidates, err := a.source.Fetch(ctx, class, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, egress.ErrSourceEmpty
	}
	return a.checker.Check(ctx, candidates[0])
}

// DrainWaiting removes and returns all tasks that never got a route.
func (a *Allocator) DrainWaiting() []model.Task {
	a.lock.Lock()
	defer a.lock.Unlock()
	out := a.waiting
	a.waiting = nil
	return out
}
