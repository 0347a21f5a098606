package egress

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const probeTimeout = 15 * time.Second

// HTTPChecker validates a candidate by requesting the probe endpoint through it.
// The probe returns the address the request arrived from.
type HTTPChecker struct {
	probeURL      string
	clientFactory func(candidate model.RouteCandidate) *resty.Client
}

type CheckerOption func(c *HTTPChecker)

// WithClientFactory replaces the HTTP client constructor, used in tests.
func WithClientFactory(factory func(candidate model.RouteCandidate) *resty.Client) CheckerOption {
	return func(c *HTTPChecker) {
		c.clientFactory = factory
	}
}

func NewHTTPChecker(probeURL string, opts ...CheckerOption) *HTTPChecker {
	c := &HTTPChecker{probeURL: probeURL}
	c.clientFactory = func(candidate model.RouteCandidate) *resty.Client {
		return resty.New().
			SetProxy(candidate.URL()).
			SetTimeout(probeTimeout)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPChecker) Check(ctx context.Context, candidate model.RouteCandidate) (*model.ValidatedRoute, error) {
	result := struct {
		IP string `json:"ip"`
	}{}

	client := c.clientFactory(candidate)
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.probeURL)
	if err != nil {
		return nil, errors.PrefixErrorf(err, `route "%s" check failed`, candidate.HostPort())
	}
	if resp.IsError() {
		return nil, errors.Errorf(`route "%s" check failed: status "%d"`, candidate.HostPort(), resp.StatusCode())
	}
	if result.IP == "" {
		return nil, errors.Errorf(`route "%s" check failed: no observed address in response`, candidate.HostPort())
	}

	return &model.ValidatedRoute{RouteCandidate: candidate, ObservedAddr: result.IP}, nil
}
