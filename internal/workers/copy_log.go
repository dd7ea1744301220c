package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
	"golang.org/x/sync/errgroup"
)

// CopyLogWorker copies whole logs to another wellbore, creating each target log when needed.
type CopyLogWorker struct {
	data        *CopyLogDataWorker
	concurrency int
	log         *log.Logger
}

func NewCopyLogWorker(opts Options, data *CopyLogDataWorker) *CopyLogWorker {
	opts = opts.withDefaults()
	return &CopyLogWorker{data: data, concurrency: opts.MaxConcurrentTransfers, log: logging.New("CopyLogWorker")}
}

type logOutcome struct {
	started bool
	rows    int
	err     error
}

func (w *CopyLogWorker) Execute(ctx context.Context, clients Clients, job models.CopyLogJob) (models.WorkerResult, *models.RefreshAction, error) {
	source, target := clients.SourceOrTarget(), clients.Target
	w.log.Infof("Starting %s", job.Description())

	outcomes := make([]logOutcome, len(job.Source.ObjectUids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i := range job.Source.ObjectUids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i].started = true
			rows, err := w.copyLog(gctx, source, target, job.Source.Object(i), job.Target)
			outcomes[i].rows, outcomes[i].err = rows, err
			if err != nil && !isReportable(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.log.Errorf("Aborted %s: %v", job.Description(), err)
		return models.WorkerResult{}, nil, err
	}

	var copied, failed []string
	var firstErr error
	rows := 0
	for i, o := range outcomes {
		err := o.err
		if !o.started {
			err = ctx.Err()
			if err == nil {
				err = context.Canceled
			}
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failed = append(failed, job.Source.ObjectUids[i])
			continue
		}
		copied = append(copied, job.Source.ObjectUids[i])
		rows += o.rows
	}

	var refresh *models.RefreshAction
	if len(copied) > 0 {
		refresh = models.NewRefreshObjects(target.ServerUrl(), job.Target.WellUid, job.Target.WellboreUid, witsml.ObjectTypeLog, models.RefreshAdd)
	}
	var parts []string
	if len(copied) > 0 {
		parts = append(parts, fmt.Sprintf("Copied logs: %s.", strings.Join(copied, ", ")))
	}
	if firstErr != nil {
		parts = append(parts, fmt.Sprintf("Failed to copy logs: %s", strings.Join(failed, ", ")))
		w.log.Errorf("Failed %s: %v", job.Description(), firstErr)
		return failureResult(target.ServerUrl(), strings.Join(parts, " "), firstErr), refresh, nil
	}
	message := strings.Join(parts, " ")
	w.log.Infof("Copied %d logs (%d rows) for %s", len(copied), rows, job.Description())
	return models.NewSuccess(target.ServerUrl(), message), refresh, nil
}

// copyLog copies one log header and all of its curves. The target log keeps the source uid.
func (w *CopyLogWorker) copyLog(ctx context.Context, source, target witsml.Client, sourceRef models.ObjectReference, wellbore models.WellboreReference) (int, error) {
	remote := context.WithoutCancel(ctx)
	sourceLog, err := getLogHeader(remote, source, sourceRef)
	if err != nil {
		return 0, err
	}

	targetRef := models.ObjectReference{WellUid: wellbore.WellUid, WellboreUid: wellbore.WellboreUid, Uid: sourceLog.Uid}
	exists, err := logExists(remote, target, targetRef)
	if err != nil {
		return 0, err
	}
	if !exists {
		doc := witsml.CreateLog(*sourceLog, wellbore.WellUid, wellbore.WellboreUid, wellbore.WellName, wellbore.WellboreName)
		result, err := target.AddToStore(remote, doc)
		if err != nil {
			return 0, fmt.Errorf("creating log %s: %w", sourceLog.Uid, err)
		}
		if !result.IsSuccessful {
			return 0, fail(fmt.Sprintf("Failed to create log %s", sourceLog.Uid), result.Reason)
		}
		w.log.Debugf("Created log %s on %s", sourceLog.Uid, target.ServerUrl())
	}

	stats, err := w.data.copyData(ctx, source, target, sourceRef, targetRef, nil, "", true)
	return stats.rows, err
}

func logExists(ctx context.Context, client witsml.Client, ref models.ObjectReference) (bool, error) {
	set, err := client.GetFromStore(ctx, witsml.GetLogByUid(ref.WellUid, ref.WellboreUid, ref.Uid), witsml.OptionsIn{ReturnElements: witsml.ReturnIDOnly})
	if err != nil {
		return false, fmt.Errorf("looking up log %s: %w", ref.Uid, err)
	}
	return set.Len() > 0, nil
}
