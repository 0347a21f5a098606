package proto

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ticketrush/ticketrush/internal/pkg/encoding/json"
	"github.com/ticketrush/ticketrush/internal/pkg/idgenerator"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const requestTimeout = 30 * time.Second

// HTTPClient is the production Client implementation.
// Every call builds its request on a client bound to the captured route,
// so a concurrent route switch never affects an in-flight call.
type HTTPClient struct {
	baseURL       string
	userAgent     string
	clientFactory func(route *model.ValidatedRoute) *resty.Client
}

type ClientOption func(c *HTTPClient)

// WithTransportFactory replaces the HTTP client constructor, used in tests.
func WithTransportFactory(factory func(route *model.ValidatedRoute) *resty.Client) ClientOption {
	return func(c *HTTPClient) {
		c.clientFactory = factory
	}
}

func WithUserAgent(v string) ClientOption {
	return func(c *HTTPClient) {
		c.userAgent = v
	}
}

func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{baseURL: baseURL, userAgent: "ticketrush"}
	c.clientFactory = func(route *model.ValidatedRoute) *resty.Client {
		client := resty.New().SetTimeout(requestTimeout)
		if route != nil {
			client.SetProxy(route.URL())
		}
		return client
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) request(ctx context.Context, task model.Task, route *model.ValidatedRoute) *resty.Request {
	return c.clientFactory(route).R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent).
		SetHeader("X-Request-Id", idgenerator.RequestId()).
		SetAuthToken(task.Token)
}

func (c *HTTPClient) FetchTicket(ctx context.Context, task model.Task, route *model.ValidatedRoute) (Ticket, error) {
	result := struct {
		Ticket string `json:"ticket"`
	}{}
	resp, err := c.request(ctx, task, route).
		SetBody(map[string]any{"subject_id": task.SubjectID}).
		SetResult(&result).
		Post(c.baseURL + "/api/queue/ticket")
	if err != nil {
		return "", errors.PrefixError(err, "fetch ticket call failed")
	}
	switch {
	case resp.StatusCode() == http.StatusAccepted:
		// Admission queue has not admitted the account yet
		return "", nil
	case resp.IsSuccess():
		return Ticket(result.Ticket), nil
	default:
		return "", apiError(resp)
	}
}

func (c *HTTPClient) VerifyTicket(ctx context.Context, task model.Task, route *model.ValidatedRoute, ticket Ticket) (bool, error) {
	result := struct {
		OK bool `json:"ok"`
	}{}
	resp, err := c.request(ctx, task, route).
		SetBody(map[string]any{"ticket": string(ticket)}).
		SetResult(&result).
		Post(c.baseURL + "/api/queue/verify")
	if err != nil {
		return false, errors.PrefixError(err, "verify ticket call failed")
	}
	if !resp.IsSuccess() {
		return false, apiError(resp)
	}
	return result.OK, nil
}

func (c *HTTPClient) Submit(ctx context.Context, task model.Task, route *model.ValidatedRoute, ticket Ticket) (*SubmitResult, error) {
	result := struct {
		Message string         `json:"message"`
		Payload map[string]any `json:"payload"`
	}{}
	resp, err := c.request(ctx, task, route).
		SetBody(map[string]any{
			"ticket":     string(ticket),
			"subject_id": task.SubjectID,
			"selection":  task.Selection,
		}).
		SetResult(&result).
		Post(c.baseURL + "/api/apply")
	if err != nil {
		return nil, errors.PrefixError(err, "submit call failed")
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}
	return &SubmitResult{Message: result.Message, Payload: result.Payload}, nil
}

// apiError maps a non-2xx response to the structured error taxonomy.
func apiError(resp *resty.Response) error {
	body := struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{}
	// Body may not be JSON at all, for example a proxy error page
	_ = json.Decode(resp.Body(), &body)
	if body.Message == "" {
		body.Message = resp.String()
	}
	return &APIError{Status: resp.StatusCode(), Code: body.Code, Message: body.Message}
}
