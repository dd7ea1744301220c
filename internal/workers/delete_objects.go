package workers

import (
	"context"

	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// DeleteObjectsWorker deletes several objects of one type from a wellbore.
type DeleteObjectsWorker struct {
	objectType witsml.ObjectType
	utils      *DeleteUtils
}

// NewDeleteLogObjectsWorker deletes whole logs.
func NewDeleteLogObjectsWorker(utils *DeleteUtils) *DeleteObjectsWorker {
	return &DeleteObjectsWorker{objectType: witsml.ObjectTypeLog, utils: utils}
}

// NewDeleteTubularsWorker deletes tubulars.
func NewDeleteTubularsWorker(utils *DeleteUtils) *DeleteObjectsWorker {
	return &DeleteObjectsWorker{objectType: witsml.ObjectTypeTubular, utils: utils}
}

func (w *DeleteObjectsWorker) Execute(ctx context.Context, clients Clients, job models.DeleteObjectsJob) (models.WorkerResult, *models.RefreshAction, error) {
	if err := job.ToDelete.Verify(); err != nil {
		return models.NewFailure(clients.Target.ServerUrl(), "Invalid delete job", err.Error(), nil), nil, nil
	}
	refresh := models.NewRefreshObjects(clients.Target.ServerUrl(), job.ToDelete.WellUid, job.ToDelete.WellboreUid, w.objectType, models.RefreshUpdate)
	return w.utils.DeleteObjectsOnWellbore(ctx, clients.Target, w.objectType, job.ToDelete, refresh)
}
