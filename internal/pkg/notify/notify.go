// Package notify delivers terminal outcomes to an external webhook.
// Delivery is fire and forget, a failure never affects the run.
package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

type Notifier interface {
	Notify(ctx context.Context, task model.Task, outcome model.Outcome)
}

const (
	notifyTimeout = 10 * time.Second
	retryInterval = time.Second
	maxRetries    = 2
)

// WebhookNotifier posts one JSON message per outcome.
type WebhookNotifier struct {
	logger log.Logger
	client *resty.Client
	url    string
}

func NewWebhookNotifier(logger log.Logger, url string) *WebhookNotifier {
	client := resty.New().SetTimeout(notifyTimeout)
	return &WebhookNotifier{logger: logger.AddPrefix("[notify]"), client: client, url: url}
}

// RestyClient is exported for tests, to mock the HTTP transport.
func (n *WebhookNotifier) RestyClient() *resty.Client {
	return n.client
}

func (n *WebhookNotifier) Notify(ctx context.Context, task model.Task, outcome model.Outcome) {
	body := map[string]any{
		"account_id": task.AccountID,
		"label":      task.Label,
		"status":     string(outcome.Status),
		"message":    outcome.Message,
	}
	if outcome.Reason != "" {
		body["reason"] = string(outcome.Reason)
	}

	operation := func() error {
		resp, err := n.client.R().SetContext(ctx).SetBody(body).Post(n.url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return errors.Errorf(`webhook returned status "%d"`, resp.StatusCode())
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		n.logger.Warnf(`cannot notify outcome of task "%s": %s`, task, err)
	}
}
