package notify

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
)

func TestWebhookNotifier(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	notifier := NewWebhookNotifier(logger, "https://hooks.local/outcome")
	transport := httpmock.NewMockTransport()
	notifier.RestyClient().GetClient().Transport = transport
	transport.RegisterResponder("POST", "https://hooks.local/outcome", httpmock.NewStringResponder(200, `ok`))

	task := model.Task{AccountID: "acct-1", Label: "first"}
	notifier.Notify(context.Background(), task, model.SuccessOutcome("accepted", nil))

	assert.Equal(t, 1, transport.GetCallCountInfo()["POST https://hooks.local/outcome"])
	assert.Empty(t, logger.WarnAndErrorMessages())
}

func TestWebhookNotifier_FailureIsLoggedOnly(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	notifier := NewWebhookNotifier(logger, "https://hooks.local/outcome")
	transport := httpmock.NewMockTransport()
	notifier.RestyClient().GetClient().Transport = transport
	transport.RegisterResponder("POST", "https://hooks.local/outcome", httpmock.NewStringResponder(500, `boom`))

	task := model.Task{AccountID: "acct-1"}
	notifier.Notify(context.Background(), task, model.FailedOutcome(model.ReasonTimeout, nil))

	// Initial attempt plus two retries, then only a warning
	assert.Equal(t, 3, transport.GetCallCountInfo()["POST https://hooks.local/outcome"])
	assert.Contains(t, logger.WarnAndErrorMessages(), "cannot notify outcome")
}
