// Package proto defines the three-step reservation protocol:
// acquire an admission ticket, verify it, submit the application.
package proto

import (
	"context"

	"github.com/ticketrush/ticketrush/internal/pkg/model"
)

// Ticket is a short-lived opaque admission token.
type Ticket string

type SubmitResult struct {
	Message string
	Payload map[string]any
}

// Client executes the protocol calls over the given route.
// The route is captured at invocation time and is not read again during the call.
type Client interface {
	// FetchTicket polls the admission queue. An empty ticket with a nil error
	// means "not ready yet", the caller should ask again right away.
	FetchTicket(ctx context.Context, task model.Task, route *model.ValidatedRoute) (Ticket, error)
	// VerifyTicket confirms the ticket. False with a nil error means "not ready yet".
	VerifyTicket(ctx context.Context, task model.Task, route *model.ValidatedRoute, ticket Ticket) (bool, error)
	// Submit sends the application. Business rejections are returned as *APIError.
	Submit(ctx context.Context, task model.Task, route *model.ValidatedRoute, ticket Ticket) (*SubmitResult, error)
}
