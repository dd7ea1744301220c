package workers

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// ModifyWbGeometrySectionWorker updates one section of a wellbore geometry.
type ModifyWbGeometrySectionWorker struct {
	log *log.Logger
}

func NewModifyWbGeometrySectionWorker() *ModifyWbGeometrySectionWorker {
	return &ModifyWbGeometrySectionWorker{log: logging.New("ModifyWbGeometrySectionWorker")}
}

func (w *ModifyWbGeometrySectionWorker) Execute(ctx context.Context, clients Clients, job models.ModifyWbGeometrySectionJob) (models.WorkerResult, *models.RefreshAction, error) {
	target := clients.Target
	if err := job.Validate(); err != nil {
		return models.NewFailure(target.ServerUrl(), "Invalid wbGeometry section", err.Error(), nil), nil, nil
	}

	ref := job.WbGeometryReference
	remote := context.WithoutCancel(ctx)
	doc := witsml.UpdateWbGeometrySection(ref.WellUid, ref.WellboreUid, ref.Uid, job.WbGeometrySection.ToWitsml())
	result, err := target.UpdateInStore(remote, doc)
	if err != nil {
		return models.WorkerResult{}, nil, fmt.Errorf("updating wbGeometry %s: %w", ref.Uid, err)
	}
	if result.IsSuccessful {
		w.log.Infof("WbGeometrySection modified. %s", job.Description())
		refresh := models.NewRefreshObject(target.ServerUrl(), ref.WellUid, ref.WellboreUid, witsml.ObjectTypeWbGeometry, ref.Uid, models.RefreshUpdate)
		return models.NewSuccess(target.ServerUrl(), fmt.Sprintf("WbGeometrySection updated (%s)", job.WbGeometrySection.Uid)), refresh, nil
	}

	const errorMessage = "Failed to update wbGeometrySection"
	w.log.Errorf("%s. %s", errorMessage, job.Description())

	var description *models.EntityDescription
	query := witsml.GetObjectByUid(witsml.ObjectTypeWbGeometry, ref.WellUid, ref.WellboreUid, ref.Uid)
	set, err := target.GetFromStore(remote, query, witsml.OptionsIn{ReturnElements: witsml.ReturnIDOnly})
	if err != nil {
		return models.WorkerResult{}, nil, fmt.Errorf("reading wbGeometry %s: %w", ref.Uid, err)
	}
	if len(set.WbGeometries) > 0 {
		g := set.WbGeometries[0]
		description = &models.EntityDescription{
			WellName:     g.NameWell,
			WellboreName: g.NameWellbore,
			ObjectName:   job.WbGeometrySection.Uid,
		}
	}
	return models.NewFailure(target.ServerUrl(), errorMessage, result.Reason, description), nil, nil
}
