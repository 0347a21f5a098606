package egress

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const sourceRequestTimeout = 10 * time.Second

// HTTPSource fetches route candidates from the vendor HTTP API.
type HTTPSource struct {
	client *resty.Client
	clock  clockwork.Clock
	apiKey string
}

type sourceItem struct {
	Addr string `json:"addr"`
	Port int    `json:"port"`
	// TTL is the route lifetime in seconds, zero means unknown.
	TTL int `json:"ttl"`
}

func NewHTTPSource(baseURL string, apiKey string, clock clockwork.Clock) *HTTPSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(sourceRequestTimeout)
	return &HTTPSource{client: client, clock: clock, apiKey: apiKey}
}

// RestyClient is exported for tests, to mock the HTTP transport.
func (s *HTTPSource) RestyClient() *resty.Client {
	return s.client
}

func (s *HTTPSource) Fetch(ctx context.Context, class model.RouteClass, count int) ([]model.RouteCandidate, error) {
	result := make([]sourceItem, 0)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("class", string(class)).
		SetQueryParam("count", strconv.Itoa(count)).
		SetQueryParam("key", s.apiKey).
		SetQueryParam("format", "json").
		SetResult(&result).
		Get("/fetch")
	if err != nil {
		return nil, errors.PrefixError(err, "egress source request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf(`egress source returned status "%d": %s`, resp.StatusCode(), resp.String())
	}

	out := make([]model.RouteCandidate, 0, len(result))
	for _, item := range result {
		candidate := model.RouteCandidate{Address: item.Addr, Port: item.Port, Vendor: string(class)}
		if item.TTL > 0 {
			expiresAt := s.clock.Now().Add(time.Duration(item.TTL) * time.Second)
			candidate.ExpiresAt = &expiresAt
		}
		out = append(out, candidate)
	}
	return out, nil
}
