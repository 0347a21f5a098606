package cli

import (
	"github.com/jonboulle/clockwork"

	"github.com/ticketrush/ticketrush/internal/pkg/audit"
	"github.com/ticketrush/ticketrush/internal/pkg/build"
	"github.com/ticketrush/ticketrush/internal/pkg/egress"
	"github.com/ticketrush/ticketrush/internal/pkg/log"
	"github.com/ticketrush/ticketrush/internal/pkg/notify"
	"github.com/ticketrush/ticketrush/internal/pkg/options"
	"github.com/ticketrush/ticketrush/internal/pkg/proto"
)

// container provides the collaborators of one run, built from the options.
type container struct {
	logger   log.Logger
	clock    clockwork.Clock
	source   egress.Source
	checker  egress.Checker
	client   proto.Client
	notifier notify.Notifier
	auditLog *audit.Writer
}

func newDependencies(logger log.Logger, clock clockwork.Clock, opts *options.Options, runID string) *container {
	d := &container{
		logger:  logger,
		clock:   clock,
		source:  egress.NewHTTPSource(opts.EgressURL, opts.EgressKey, clock),
		checker: egress.NewHTTPChecker(opts.ProbeURL),
		client:  proto.NewHTTPClient(opts.BackendURL, proto.WithUserAgent("ticketrush/"+build.BuildVersion)),
		// Audit events go to the log file as JSON lines
		auditLog: audit.NewWriter(clock, runID, logger.DebugWriter()),
	}
	if opts.NotifyURL != "" {
		d.notifier = notify.NewWebhookNotifier(logger, opts.NotifyURL)
	}
	return d
}

func (d *container) Logger() log.Logger { return d.logger }

func (d *container) Clock() clockwork.Clock { return d.clock }

func (d *container) EgressSource() egress.Source { return d.source }

func (d *container) EgressChecker() egress.Checker { return d.checker }

func (d *container) ProtocolClient() proto.Client { return d.client }

func (d *container) Notifier() notify.Notifier { return d.notifier }

func (d *container) AuditLog() *audit.Writer { return d.auditLog }
