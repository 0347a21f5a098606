// Package orchestrator runs one batch of tasks end to end: it feeds the
// allocator, starts a purchase machine for every matched task and collects
// exactly one terminal outcome per task.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ticketrush/ticketrush/internal/pkg/allocator"
	"github.com/ticketrush/ticketrush/internal/pkg/audit"
	"github.com/ticketrush/ticketrush/internal/pkg/egress"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/notify"
	"github.com/ticketrush/ticketrush/internal/pkg/proto"
	"github.com/ticketrush/ticketrush/internal/pkg/proxy"
	"github.com/ticketrush/ticketrush/internal/pkg/purchase"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const (
	// MonitorInterval is the period of the matching/completion check loop.
	MonitorInterval = 500 * time.Millisecond
	// WallClockCeiling bounds the whole run, pending tasks fail on expiry.
	WallClockCeiling = 300 * time.Second
)

type Config struct {
	MonitorInterval  time.Duration
	WallClockCeiling time.Duration
	MaxTicketRefresh int
	Allocator        allocator.Config
	Proxy            proxy.Config
}

func DefaultConfig() Config {
	return Config{
		MonitorInterval:  MonitorInterval,
		WallClockCeiling: WallClockCeiling,
		MaxTicketRefresh: purchase.MaxTicketRefresh,
		Allocator:        allocator.DefaultConfig(),
		Proxy:            proxy.DefaultConfig(),
	}
}

type dependencies interface {
	Logger() log.Logger
	Clock() clockwork.Clock
	EgressSource() egress.Source
	EgressChecker() egress.Checker
	ProtocolClient() proto.Client
	Notifier() notify.Notifier
	AuditLog() *audit.Writer
}

type Orchestrator struct {
	logger   log.Logger
	clock    clockwork.Clock
	source   egress.Source
	checker  egress.Checker
	client   proto.Client
	notifier notify.Notifier
	auditLog *audit.Writer
	config   Config

	// prepared by Prepare, consumed by Start
	class model.RouteClass
	tasks []model.Task
	alloc *allocator.Allocator

	runCtx context.Context
	wg     sync.WaitGroup

	// lock guards outcomes, the first write for a task wins
	lock     sync.Mutex
	outcomes map[string]model.Outcome
}

func NewOrchestrator(d dependencies, config Config) *Orchestrator {
	return &Orchestrator{
		logger:   d.Logger().AddPrefix("[orchestrator]"),
		clock:    d.Clock(),
		source:   d.EgressSource(),
		checker:  d.EgressChecker(),
		client:   d.ProtocolClient(),
		notifier: d.Notifier(),
		auditLog: d.AuditLog(),
		config:   config,
	}
}

// RunAll is the single phase entrypoint, Prepare and Start back to back.
func (o *Orchestrator) RunAll(ctx context.Context, tasks []model.Task, class model.RouteClass) (*model.Summary, error) {
	if err := o.Prepare(tasks, class); err != nil {
		return nil, err
	}
	return o.Start(ctx)
}

// Prepare builds the run state without touching the network, so that Start
// can fire at an exact scheduled instant.
func (o *Orchestrator) Prepare(tasks []model.Task, class model.RouteClass) error {
	if len(tasks) == 0 {
		return errors.New("no tasks to run")
	}

	o.class = class
	o.tasks = tasks
	o.outcomes = make(map[string]model.Outcome, len(tasks))
	o.alloc = allocator.New(o.logger, o.clock, o.source, o.checker, o.startMachine, o.config.Allocator)
	o.alloc.Enqueue(tasks...)
	return nil
}

// Start runs the acquisition loop and the monitor until every task has an
// outcome or the wall clock ceiling expires. It must follow a Prepare call.
func (o *Orchestrator) Start(ctx context.Context) (*model.Summary, error) {
	if o.alloc == nil {
		return nil, errors.New("run is not prepared")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.runCtx = runCtx

	deadline := o.clock.Now().Add(o.config.WallClockCeiling)
	o.logger.Infof(`run started, %d tasks, route class "%s"`, len(o.tasks), o.class)
	_ = o.auditLog.Append(nil, "run_started", "")

	allocDone := make(chan struct{})
	go func() {
		defer close(allocDone)
		if err := o.alloc.Run(runCtx, o.class); err != nil {
			o.logger.Debugf(`allocator stopped: %s`, err)
		}
	}()

	ticker := o.clock.NewTicker(o.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cancel()
			o.failPending(model.ReasonTimeout)
			return o.summary(), ctx.Err()

		case <-allocDone:
			// Bind any routes parked after the last batch, the rest of the
			// waiting tasks will never get a route.
			allocDone = nil
			o.alloc.TryMatch()
			for _, task := range o.alloc.DrainWaiting() {
				o.recordOutcome(task, model.FailedOutcome(model.ReasonNoRoute, nil))
			}
			if o.outcomeCount() == len(o.tasks) {
				return o.summary(), nil
			}

		case <-ticker.Chan():
			o.alloc.TryMatch()
			if o.outcomeCount() == len(o.tasks) {
				return o.summary(), nil
			}
			if o.clock.Now().After(deadline) {
				o.logger.Warnf(`wall clock ceiling reached, failing pending tasks`)
				cancel()
				o.failPending(model.ReasonTimeout)
				return o.summary(), nil
			}
		}
	}
}

// startMachine is the allocator match callback, it runs the purchase protocol
// for the task in its own goroutine. The allocator itself serves route
// switches, parked routes are handed out before the source is asked again.
func (o *Orchestrator) startMachine(task model.Task, route *model.ValidatedRoute) {
	_ = o.auditLog.Append(&task, "route_bound", route.HostPort())

	manager := proxy.NewManager(o.logger, o.clock, o.alloc, o.class, route, o.config.Proxy)
	machine := purchase.NewMachine(o.logger, o.client, manager, task, purchase.WithMaxTicketRefresh(o.config.MaxTicketRefresh))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.recordOutcome(task, machine.Run(o.runCtx))
	}()
}

// recordOutcome stores the outcome unless one exists already. The first write
// wins, a machine finishing during the timeout sweep cannot produce a second
// outcome for its task.
func (o *Orchestrator) recordOutcome(task model.Task, outcome model.Outcome) {
	o.lock.Lock()
	if _, ok := o.outcomes[task.AccountID]; ok {
		o.lock.Unlock()
		return
	}
	o.outcomes[task.AccountID] = outcome
	o.lock.Unlock()

	switch outcome.Status {
	case model.StatusSuccess:
		o.logger.Infof(`task "%s" succeeded: %s`, task, outcome.Message)
	case model.StatusDuplicate:
		o.logger.Infof(`task "%s" already has an accepted application`, task)
	default:
		o.logger.Warnf(`task "%s" failed: %s: %s`, task, outcome.Reason, outcome.Message)
	}

	_ = o.auditLog.Append(&task, "outcome_"+string(outcome.Status), string(outcome.Reason))
	if o.notifier != nil {
		// Outcome delivery must survive the run cancellation
		o.notifier.Notify(context.WithoutCancel(o.runCtx), task, outcome)
	}
}

func (o *Orchestrator) failPending(reason model.FailReason) {
	for _, task := range o.tasks {
		o.lock.Lock()
		_, ok := o.outcomes[task.AccountID]
		o.lock.Unlock()
		if !ok {
			o.recordOutcome(task, model.FailedOutcome(reason, nil))
		}
	}
}

func (o *Orchestrator) outcomeCount() int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return len(o.outcomes)
}

// summary returns outcomes in the input task order.
func (o *Orchestrator) summary() *model.Summary {
	o.lock.Lock()
	defer o.lock.Unlock()
	s := &model.Summary{}
	for _, task := range o.tasks {
		s.Outcomes = append(s.Outcomes, model.TaskOutcome{Task: task, Outcome: o.outcomes[task.AccountID]})
	}
	return s
}
