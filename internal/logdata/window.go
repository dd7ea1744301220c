package logdata

import (
	"fmt"

	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// Window is the inclusive index range of one transfer. It is fixed when a job starts so that
// rows appended to a growing log during the job are left for the next run.
type Window struct {
	Start models.Index
	End   models.Index
}

// WindowFromHeader snapshots the range a log header advertises. It reports false when the log
// holds no data. A header without an end yields an open end.
func WindowFromHeader(log *witsml.Log) (Window, bool, error) {
	start, ok, err := StartIndex(log)
	if err != nil || !ok {
		return Window{}, false, err
	}
	end, ok, err := EndIndex(log)
	if err != nil {
		return Window{}, false, err
	}
	if !ok {
		end = models.OpenEnd(start.Kind(), start.Direction())
	}
	return Window{Start: start, End: end}, true, nil
}

// StartingAt narrows the window to begin no earlier than from. It reports false when from lies
// beyond the end, leaving nothing to transfer.
func (w Window) StartingAt(from models.Index) (Window, bool, error) {
	c, err := from.Compare(w.Start)
	if err != nil {
		return Window{}, false, err
	}
	if c <= 0 {
		return w, true, nil
	}
	c, err = from.Compare(w.End)
	if err != nil {
		return Window{}, false, err
	}
	if c > 0 {
		return Window{}, false, nil
	}
	return Window{Start: from, End: w.End}, true, nil
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start, w.End)
}
