package workers

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
)

// ReplaceLogDataWorker deletes colliding curves at the target and then copies them from the
// source. The two steps are separate remote calls; a failed delete stops the job before any
// copy starts.
type ReplaceLogDataWorker struct {
	deleteCurves *DeleteCurvesWorker
	copyData     *CopyLogDataWorker
	log          *log.Logger
}

func NewReplaceLogDataWorker(deleteCurves *DeleteCurvesWorker, copyData *CopyLogDataWorker) *ReplaceLogDataWorker {
	return &ReplaceLogDataWorker{deleteCurves: deleteCurves, copyData: copyData, log: logging.New("ReplaceLogDataWorker")}
}

func (w *ReplaceLogDataWorker) Execute(ctx context.Context, clients Clients, job models.ReplaceLogDataJob) (models.WorkerResult, *models.RefreshAction, error) {
	target := clients.Target
	if err := job.Validate(); err != nil {
		return models.NewFailure(target.ServerUrl(), "Invalid replace job", err.Error(), nil), nil, nil
	}

	deleteJob := job.DeleteJob
	if len(deleteJob.ToDelete.ComponentUids) == 0 {
		planned, ok, err := PlanReplace(ctx, clients, job.CopyJob)
		if err != nil {
			if !isReportable(err) {
				return models.WorkerResult{}, nil, err
			}
			return failureResult(target.ServerUrl(), "Failed to plan curve replacement", err), nil, nil
		}
		if ok {
			deleteJob = planned.DeleteJob
		}
	}

	if len(deleteJob.ToDelete.ComponentUids) > 0 {
		result, refresh, err := w.deleteCurves.Execute(ctx, Clients{Target: target}, deleteJob)
		if err != nil || !result.IsSuccess {
			w.log.Errorf("Delete step failed, not copying. %s", job.Description())
			return result, refresh, err
		}
	}

	return w.copyData.execute(ctx, clients, job.CopyJob, false)
}

// PlanReplace looks up which of the curves a copy would write already exist at the target and
// pairs the copy with their delete. It reports false when nothing collides.
func PlanReplace(ctx context.Context, clients Clients, copyJob models.CopyLogDataJob) (models.ReplaceLogDataJob, bool, error) {
	remote := context.WithoutCancel(ctx)
	targetLog, err := getLogHeader(remote, clients.Target, copyJob.Target)
	if err != nil {
		return models.ReplaceLogDataJob{}, false, err
	}

	if len(copyJob.Source.ComponentUids) == 0 {
		sourceLog, err := getLogHeader(remote, clients.SourceOrTarget(), copyJob.Source.Parent)
		if err != nil {
			return models.ReplaceLogDataJob{}, false, err
		}
		for _, m := range sourceLog.Mnemonics() {
			if m != sourceLog.IndexCurve {
				copyJob.Source.ComponentUids = append(copyJob.Source.ComponentUids, m)
			}
		}
	}

	var existing []string
	for _, m := range targetLog.Mnemonics() {
		if m != targetLog.IndexCurve {
			existing = append(existing, m)
		}
	}
	replace, ok := models.NewReplaceLogDataJob(copyJob, existing)
	return replace, ok, nil
}
