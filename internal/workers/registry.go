package workers

import "github.com/witsml-transfer/backend/internal/models"

// NewRegistry builds one worker per job type.
func NewRegistry(opts Options) map[models.JobType]Worker {
	copyData := NewCopyLogDataWorker(opts)
	deleteCurves := NewDeleteCurvesWorker()
	deleteUtils := NewDeleteUtils(opts)

	all := []Worker{
		Bind[models.CopyLogJob](models.JobTypeCopyLog, NewCopyLogWorker(opts, copyData)),
		Bind[models.CopyLogDataJob](models.JobTypeCopyLogData, copyData),
		Bind[models.ReplaceLogDataJob](models.JobTypeReplaceLogData, NewReplaceLogDataWorker(deleteCurves, copyData)),
		Bind[models.DeleteObjectsJob](models.JobTypeDeleteLogObjects, NewDeleteLogObjectsWorker(deleteUtils)),
		Bind[models.DeleteObjectsJob](models.JobTypeDeleteTubulars, NewDeleteTubularsWorker(deleteUtils)),
		Bind[models.DeleteCurvesJob](models.JobTypeDeleteCurves, deleteCurves),
		Bind[models.ModifyWbGeometrySectionJob](models.JobTypeModifyWbGeometrySection, NewModifyWbGeometrySectionWorker()),
	}

	registry := make(map[models.JobType]Worker, len(all))
	for _, w := range all {
		registry[w.JobType()] = w
	}
	return registry
}
