package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logdata"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// CopyLogDataWorker copies curve data from one log into an existing log, page by page.
type CopyLogDataWorker struct {
	pageSize int
	log      *log.Logger
}

func NewCopyLogDataWorker(opts Options) *CopyLogDataWorker {
	opts = opts.withDefaults()
	return &CopyLogDataWorker{pageSize: opts.PageSize, log: logging.New("CopyLogDataWorker")}
}

// copyStats summarises one data copy.
type copyStats struct {
	rows        int
	mnemonics   []string
	curvesAdded int
}

func (w *CopyLogDataWorker) Execute(ctx context.Context, clients Clients, job models.CopyLogDataJob) (models.WorkerResult, *models.RefreshAction, error) {
	return w.execute(ctx, clients, job, true)
}

// execute runs job. Without resume a growing source is copied from its start, as a replace
// needs after deleting the curves it writes back.
func (w *CopyLogDataWorker) execute(ctx context.Context, clients Clients, job models.CopyLogDataJob, resume bool) (models.WorkerResult, *models.RefreshAction, error) {
	target := clients.Target
	w.log.Infof("Starting %s", job.Description())

	stats, err := w.copyData(ctx, clients.SourceOrTarget(), target, job.Source.Parent, job.Target, job.Source.ComponentUids, job.StartIndex, resume)
	refresh := w.refresh(target, job.Target, stats)
	if err != nil {
		if !isReportable(err) {
			w.log.Errorf("Aborted %s: %v", job.Description(), err)
			return models.WorkerResult{}, nil, err
		}
		w.log.Errorf("Failed %s after %d rows: %v", job.Description(), stats.rows, err)
		return failureResult(target.ServerUrl(), fmt.Sprintf("Failed to copy log data after %d rows", stats.rows), err), refresh, nil
	}

	w.log.Infof("Copied %d rows for %s", stats.rows, job.Description())
	message := fmt.Sprintf("Copied %d rows of %s from log %s to log %s",
		stats.rows, strings.Join(dataMnemonics(stats.mnemonics), ", "), job.Source.Parent.Uid, job.Target.Uid)
	return models.NewSuccess(target.ServerUrl(), message), refresh, nil
}

func (w *CopyLogDataWorker) refresh(target witsml.Client, ref models.ObjectReference, stats copyStats) *models.RefreshAction {
	if stats.rows == 0 && stats.curvesAdded == 0 {
		return nil
	}
	return models.NewRefreshObject(target.ServerUrl(), ref.WellUid, ref.WellboreUid, witsml.ObjectTypeLog, ref.Uid, models.RefreshUpdate)
}

// copyData moves the requested curves from sourceRef into targetRef. Both headers are read once
// and the copied range is fixed before the first page. With resume, a growing source is copied
// from just after the point every copied curve already reaches at the target.
func (w *CopyLogDataWorker) copyData(ctx context.Context, source, target witsml.Client, sourceRef, targetRef models.ObjectReference, requested []string, startOverride string, resume bool) (copyStats, error) {
	var stats copyStats

	remote := context.WithoutCancel(ctx)
	sourceLog, err := getLogHeader(remote, source, sourceRef)
	if err != nil {
		return stats, err
	}
	targetLog, err := getLogHeader(remote, target, targetRef)
	if err != nil {
		return stats, err
	}
	if err := logdata.CheckCompatible(sourceLog, targetLog); err != nil {
		return stats, err
	}

	mnemonics, err := logdata.MnemonicList(sourceLog, requested)
	if err != nil {
		return stats, err
	}
	stats.mnemonics = mnemonics

	window, ok, err := w.window(sourceLog, targetLog, mnemonics, startOverride, resume)
	if err != nil || !ok {
		return stats, err
	}

	if stats.curvesAdded, err = w.addMissingCurves(remote, target, sourceLog, targetLog, mnemonics); err != nil {
		return stats, err
	}

	reader := logdata.NewReader(source, w.pageSize)
	stats.rows, err = reader.Pages(ctx, sourceRef, mnemonics, window, false, func(block *models.LogDataBlock) error {
		columns := block.Mnemonics()
		columns[0] = targetLog.IndexCurve
		doc := witsml.UpdateLogData(targetRef.WellUid, targetRef.WellboreUid, targetRef.Uid, witsml.LogData{
			MnemonicList: columns,
			UnitList:     block.Units(),
			Data:         block.TransportRows(),
		})
		result, err := target.UpdateInStore(remote, doc)
		if err != nil {
			return fmt.Errorf("writing rows %s..%s to log %s: %w", block.StartIndex, block.EndIndex, targetRef.Uid, err)
		}
		if !result.IsSuccessful {
			return fail(fmt.Sprintf("Failed to write rows %s..%s to log %s", block.StartIndex, block.EndIndex, targetRef.Uid), result.Reason)
		}
		return nil
	})
	return stats, err
}

// window snapshots the source range and narrows it by the explicit start and, when resuming a
// growing log, by the copied curves' end at the target. It reports false when nothing is left
// to copy.
func (w *CopyLogDataWorker) window(sourceLog, targetLog *witsml.Log, mnemonics []string, startOverride string, resume bool) (logdata.Window, bool, error) {
	window, ok, err := logdata.WindowFromHeader(sourceLog)
	if err != nil || !ok {
		return logdata.Window{}, false, err
	}

	if startOverride != "" {
		from, err := models.ParseIndex(window.Start.Kind(), startOverride, window.Start.Uom(), window.Start.Direction())
		if err != nil {
			return logdata.Window{}, false, fmt.Errorf("%w: start index: %v", models.ErrValidation, err)
		}
		if window, ok, err = window.StartingAt(from); err != nil || !ok {
			return logdata.Window{}, false, err
		}
	}

	if resume && sourceLog.ObjectGrowing {
		targetEnd, ok, err := copiedEnd(targetLog, dataMnemonics(mnemonics))
		if err != nil {
			return logdata.Window{}, false, err
		}
		if ok {
			w.log.Debugf("Log %s is growing, resuming after %s", sourceLog.Uid, targetEnd)
			return window.StartingAt(targetEnd.Next())
		}
	}
	return window, true, nil
}

// copiedEnd returns the earliest of the curve ends at the target, so no copied curve misses
// rows. It reports false when any copied curve is unknown to the target or holds no data.
func copiedEnd(targetLog *witsml.Log, mnemonics []string) (models.Index, bool, error) {
	var end models.Index
	for _, m := range mnemonics {
		curveEnd, ok, err := logdata.CurveEndIndex(targetLog, m)
		if err != nil || !ok {
			return models.Index{}, false, err
		}
		if end.IsZero() {
			end = curveEnd
			continue
		}
		c, err := curveEnd.Compare(end)
		if err != nil {
			return models.Index{}, false, err
		}
		if c < 0 {
			end = curveEnd
		}
	}
	return end, !end.IsZero(), nil
}

// addMissingCurves describes at the target every copied curve it does not know yet.
func (w *CopyLogDataWorker) addMissingCurves(ctx context.Context, target witsml.Client, sourceLog, targetLog *witsml.Log, mnemonics []string) (int, error) {
	var missing []witsml.LogCurveInfo
	for _, m := range dataMnemonics(mnemonics) {
		if _, ok := targetLog.CurveInfo(m); ok {
			continue
		}
		info, _ := sourceLog.CurveInfo(m)
		info.MinIndex, info.MaxIndex = "", ""
		info.MinDateTimeIndex, info.MaxDateTimeIndex = "", ""
		missing = append(missing, info)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	result, err := target.UpdateInStore(ctx, witsml.UpdateLogCurves(targetLog.UidWell, targetLog.UidWellbore, targetLog.Uid, missing))
	if err != nil {
		return 0, fmt.Errorf("adding curves to log %s: %w", targetLog.Uid, err)
	}
	if !result.IsSuccessful {
		return 0, fail(fmt.Sprintf("Failed to add curves to log %s", targetLog.Uid), result.Reason)
	}
	w.log.Debugf("Added %d curves to log %s", len(missing), targetLog.Uid)
	return len(missing), nil
}

// dataMnemonics drops the leading index curve.
func dataMnemonics(mnemonics []string) []string {
	if len(mnemonics) == 0 {
		return nil
	}
	return mnemonics[1:]
}
