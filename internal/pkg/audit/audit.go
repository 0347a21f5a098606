// Package audit appends per-task lifecycle events to a run log file,
// one JSON line per event.
package audit

import (
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ticketrush/ticketrush/internal/pkg/encoding/json"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

type Event struct {
	Time      time.Time `json:"time"`
	RunID     string    `json:"runId"`
	AccountID string    `json:"accountId,omitempty"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
}

type Writer struct {
	lock  sync.Mutex
	clock clockwork.Clock
	runID string
	out   io.Writer
}

func NewWriter(clock clockwork.Clock, runID string, out io.Writer) *Writer {
	return &Writer{clock: clock, runID: runID, out: out}
}

// Append writes one event. A nil writer is a valid no-op target.
func (w *Writer) Append(task *model.Task, kind string, detail string) error {
	if w == nil {
		return nil
	}

	event := Event{Time: w.clock.Now().UTC(), RunID: w.runID, Kind: kind, Detail: detail}
	if task != nil {
		event.AccountID = task.AccountID
	}

	line, err := json.Encode(event, false)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.lock.Lock()
	defer w.lock.Unlock()
	if _, err := w.out.Write(line); err != nil {
		return errors.PrefixError(err, "cannot write audit event")
	}
	return nil
}
