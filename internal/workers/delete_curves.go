package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// DeleteCurvesWorker removes curves and their data from one log in a single request.
type DeleteCurvesWorker struct {
	log *log.Logger
}

func NewDeleteCurvesWorker() *DeleteCurvesWorker {
	return &DeleteCurvesWorker{log: logging.New("DeleteCurvesWorker")}
}

func (w *DeleteCurvesWorker) Execute(ctx context.Context, clients Clients, job models.DeleteCurvesJob) (models.WorkerResult, *models.RefreshAction, error) {
	target := clients.Target
	if err := job.Validate(); err != nil {
		return models.NewFailure(target.ServerUrl(), "Invalid delete curves job", err.Error(), nil), nil, nil
	}

	parent := job.ToDelete.Parent
	mnemonics := job.ToDelete.ComponentUids
	doc := witsml.DeleteMnemonics(parent.WellUid, parent.WellboreUid, parent.Uid, mnemonics)
	result, err := target.DeleteFromStore(context.WithoutCancel(ctx), doc)
	if err != nil {
		w.log.Errorf("Aborted %s: %v", job.Description(), err)
		return models.WorkerResult{}, nil, fmt.Errorf("deleting curves of log %s: %w", parent.Uid, err)
	}
	if !result.IsSuccessful {
		w.log.Errorf("Failed %s: %s", job.Description(), result.Reason)
		return models.NewFailure(target.ServerUrl(), fmt.Sprintf("Failed to delete mnemonics for log: %s", parent.Uid), result.Reason, &models.EntityDescription{
			WellName:     parent.WellName,
			WellboreName: parent.WellboreName,
			ObjectName:   parent.Name,
		}), nil, nil
	}

	w.log.Infof("Deleted mnemonics. %s", job.Description())
	refresh := models.NewRefreshObject(target.ServerUrl(), parent.WellUid, parent.WellboreUid, witsml.ObjectTypeLog, parent.Uid, models.RefreshUpdate)
	return models.NewSuccess(target.ServerUrl(), fmt.Sprintf("Deleted mnemonics: %s for log: %s", strings.Join(mnemonics, ", "), parent.Uid)), refresh, nil
}
