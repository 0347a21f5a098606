// Package purchase drives the three-step reservation protocol for one task:
// fetch an admission ticket, verify it, submit the application.
package purchase

import (
	"context"

	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/proto"
	"github.com/ticketrush/ticketrush/internal/pkg/proxy"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

type State string

const (
	StateFetchTicket  State = "fetch_ticket"
	StateVerifyTicket State = "verify_ticket"
	StateSubmit       State = "submit"
	StateSuccess      State = "success"
	StateDuplicate    State = "duplicate"
	StateFailed       State = "failed"

	// MaxTicketRefresh bounds the submit -> fetch ticket refresh loop.
	MaxTicketRefresh = 10
)

// Machine is a per-task state machine, it runs in a single goroutine.
type Machine struct {
	logger  log.Logger
	client  proto.Client
	proxies *proxy.Manager
	task    model.Task

	maxTicketRefresh int
	refreshCount     int
	state            State
}

type Option func(m *Machine)

// WithMaxTicketRefresh overrides the refresh bound, used in tests.
func WithMaxTicketRefresh(v int) Option {
	return func(m *Machine) {
		m.maxTicketRefresh = v
	}
}

func NewMachine(logger log.Logger, client proto.Client, proxies *proxy.Manager, task model.Task, opts ...Option) *Machine {
	m := &Machine{
		logger:           logger.AddPrefix("[task][" + task.String() + "]"),
		client:           client,
		proxies:          proxies,
		task:             task,
		maxTicketRefresh: MaxTicketRefresh,
		state:            StateFetchTicket,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) State() State {
	return m.state
}

// TicketRefreshCount is monotonically non-decreasing within a run.
func (m *Machine) TicketRefreshCount() int {
	return m.refreshCount
}

// Run executes the protocol and returns the terminal outcome.
func (m *Machine) Run(ctx context.Context) model.Outcome {
	var ticket proto.Ticket

	for {
		if err := ctx.Err(); err != nil {
			m.state = StateFailed
			return model.FailedOutcome(model.ReasonTimeout, err)
		}

		switch m.state {
		case StateFetchTicket:
			t, err := m.fetchTicket(ctx)
			if err != nil {
				return m.fail(err)
			}
			ticket = t
			m.logger.Debugf(`ticket acquired`)
			m.state = StateVerifyTicket

		case StateVerifyTicket:
			if err := m.verifyTicket(ctx, ticket); err != nil {
				return m.fail(err)
			}
			m.logger.Debugf(`ticket verified`)
			m.state = StateSubmit

		case StateSubmit:
			result, err := m.submit(ctx, ticket)
			switch {
			case err == nil:
				m.state = StateSuccess
				m.logger.Infof(`application accepted: %s`, result.Message)
				return model.SuccessOutcome(result.Message, result.Payload)

			case proto.IsDuplicate(err):
				// Terminal, further attempts are pointless
				m.state = StateDuplicate
				m.logger.Infof(`account already has an accepted application`)
				return model.DuplicateOutcome(err.Error())

			case proto.IsTicketExpired(err):
				m.refreshCount++
				if m.refreshCount >= m.maxTicketRefresh {
					m.state = StateFailed
					return model.FailedOutcome(model.ReasonRefreshExhausted,
						errors.PrefixErrorf(err, "ticket refresh attempts exhausted (%d)", m.refreshCount))
				}
				m.logger.Infof(`ticket expired, refreshing (%d)`, m.refreshCount)
				m.state = StateFetchTicket

			default:
				return m.fail(err)
			}
		}
	}
}

// fetchTicket hot-polls the admission queue. A negative response means
// "try again right away", a delay here would reduce the admission chance.
func (m *Machine) fetchTicket(ctx context.Context) (proto.Ticket, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var ticket proto.Ticket
		err := m.callStep(ctx, "fetch ticket", func(route *model.ValidatedRoute) error {
			t, err := m.client.FetchTicket(ctx, m.task, route)
			ticket = t
			return err
		})
		if err != nil {
			return "", err
		}
		if ticket != "" {
			return ticket, nil
		}
	}
}

// verifyTicket hot-polls until the backend confirms the ticket.
func (m *Machine) verifyTicket(ctx context.Context, ticket proto.Ticket) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var ok bool
		err := m.callStep(ctx, "verify ticket", func(route *model.ValidatedRoute) error {
			v, err := m.client.VerifyTicket(ctx, m.task, route, ticket)
			ok = v
			return err
		})
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}

func (m *Machine) submit(ctx context.Context, ticket proto.Ticket) (*proto.SubmitResult, error) {
	var result *proto.SubmitResult
	err := m.callStep(ctx, "submit", func(route *model.ValidatedRoute) error {
		r, err := m.client.Submit(ctx, m.task, route, ticket)
		result = r
		return err
	})
	return result, err
}

// callStep invokes the call with the current route. On a transport failure the
// route is switched and the call is retried exactly once with the new route.
// Business errors are returned to the step logic untouched.
func (m *Machine) callStep(ctx context.Context, name string, call func(route *model.ValidatedRoute) error) error {
	err := call(m.proxies.Current())
	if err == nil {
		return nil
	}
	if !m.proxies.Classify(err) {
		return err
	}

	m.logger.Warnf(`%s failed on transport layer: %s`, name, err)
	route, switchErr := m.proxies.Switch(ctx)
	if switchErr != nil {
		return errors.PrefixErrorf(switchErr, `%s failed`, name)
	}
	if retryErr := call(route); retryErr != nil {
		return errors.PrefixErrorf(retryErr, `%s failed after route switch`, name)
	}
	return nil
}

// fail maps a step error to the terminal outcome.
func (m *Machine) fail(err error) model.Outcome {
	m.state = StateFailed
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return model.FailedOutcome(model.ReasonTimeout, err)
	case errors.Is(err, proxy.ErrRouteExhausted):
		return model.FailedOutcome(model.ReasonRouteExhausted, err)
	case proto.IsDuplicate(err):
		m.state = StateDuplicate
		return model.DuplicateOutcome(err.Error())
	case m.proxies.Classify(err):
		return model.FailedOutcome(model.ReasonTransport, err)
	default:
		return model.FailedOutcome(model.ReasonRejected, err)
	}
}
