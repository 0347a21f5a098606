package proto

import (
	"context"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/pkg/model"
)

func mockedClient(t *testing.T) (*HTTPClient, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := NewHTTPClient("https://backend.local", WithTransportFactory(func(route *model.ValidatedRoute) *resty.Client {
		c := resty.New()
		c.GetClient().Transport = transport
		return c
	}))
	return client, transport
}

func testTask() model.Task {
	return model.Task{AccountID: "acct-1", Token: "token-1", SubjectID: "subj-1", Selection: []int{101}}
}

func testRoute() *model.ValidatedRoute {
	return &model.ValidatedRoute{
		RouteCandidate: model.RouteCandidate{Address: "10.0.0.1", Port: 8080},
		ObservedAddr:   "203.0.113.7",
	}
}

func TestHTTPClient_FetchTicket(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/queue/ticket",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{"ticket": "tkt-123"}))

	ticket, err := client.FetchTicket(context.Background(), testTask(), testRoute())
	require.NoError(t, err)
	assert.Equal(t, Ticket("tkt-123"), ticket)
}

func TestHTTPClient_FetchTicketNotReady(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/queue/ticket",
		httpmock.NewStringResponder(202, ``))

	// Not ready is not an error, the caller polls again
	ticket, err := client.FetchTicket(context.Background(), testTask(), testRoute())
	require.NoError(t, err)
	assert.Empty(t, ticket)
}

func TestHTTPClient_VerifyTicket(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/queue/verify",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{"ok": true}))

	ok, err := client.VerifyTicket(context.Background(), testTask(), testRoute(), "tkt-123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHTTPClient_Submit(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/apply",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"message": "accepted",
			"payload": map[string]any{"application_id": "app-1"},
		}))

	result, err := client.Submit(context.Background(), testTask(), testRoute(), "tkt-123")
	require.NoError(t, err)
	assert.Equal(t, "accepted", result.Message)
	assert.Equal(t, "app-1", result.Payload["application_id"])
}

func TestHTTPClient_SubmitDuplicate(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/apply",
		httpmock.NewStringResponder(409, `{"code": "duplicate_application", "message": "account already has an accepted application"}`))

	_, err := client.Submit(context.Background(), testTask(), testRoute(), "tkt-123")
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsTicketExpired(err))
}

func TestHTTPClient_SubmitTicketExpired(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/apply",
		httpmock.NewStringResponder(410, `{"code": "ticket_expired", "message": "ticket is no longer valid"}`))

	_, err := client.Submit(context.Background(), testTask(), testRoute(), "tkt-123")
	require.Error(t, err)
	assert.True(t, IsTicketExpired(err))
	assert.False(t, IsDuplicate(err))
}

func TestHTTPClient_SubmitRejectionWithoutCode(t *testing.T) {
	t.Parallel()
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://backend.local/api/apply",
		httpmock.NewStringResponder(400, `{"message": "selection is not available"}`))

	_, err := client.Submit(context.Background(), testTask(), testRoute(), "tkt-123")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode())
	assert.False(t, IsDuplicate(err))
	assert.False(t, IsTicketExpired(err))
}
