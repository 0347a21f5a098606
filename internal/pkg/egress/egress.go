// Package egress provides acquisition and validation of egress routes.
//
// A Source returns unverified route candidates from a vendor API.
// A Checker proves that a candidate carries traffic by probing through it.
package egress

import (
	"context"

	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// ErrSourceEmpty signals temporary vendor exhaustion, the caller should pause before retrying.
// It is not returned by Source.Fetch itself, an empty batch is a valid response there.
var ErrSourceEmpty = errors.New("egress source is empty")

type Source interface {
	// Fetch returns up to count candidates, fewer or zero is a valid non-error response.
	Fetch(ctx context.Context, class model.RouteClass, count int) ([]model.RouteCandidate, error)
}

type Checker interface {
	// Check probes the candidate and returns a validated route with the observed external address.
	Check(ctx context.Context, candidate model.RouteCandidate) (*model.ValidatedRoute, error)
}
