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

// DeleteUtils fans a multi-object delete out into one remote delete per object.
type DeleteUtils struct {
	concurrency int
	log         *log.Logger
}

func NewDeleteUtils(opts Options) *DeleteUtils {
	opts = opts.withDefaults()
	return &DeleteUtils{concurrency: opts.MaxConcurrentDeletes, log: logging.New("DeleteUtils")}
}

type deleteOutcome struct {
	started bool
	result  witsml.QueryResult
}

// DeleteObjectsOnWellbore deletes every referenced object with its own request, at most
// concurrency at a time. Deleted uids are listed in request order and the reason of the first
// failed object in request order is reported. refresh is returned only when at least one
// object was deleted. A transport error aborts the job and is returned as is. Once ctx is
// cancelled no further deletes start; the ones not started count as failed.
func (d *DeleteUtils) DeleteObjectsOnWellbore(ctx context.Context, client witsml.Client, objectType witsml.ObjectType, refs models.ObjectReferences, refresh *models.RefreshAction) (models.WorkerResult, *models.RefreshAction, error) {
	docs := witsml.DeleteObjects(objectType, refs.WellUid, refs.WellboreUid, refs.ObjectUids)
	outcomes := make([]deleteOutcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i].started = true
			result, err := client.DeleteFromStore(context.WithoutCancel(gctx), doc)
			if err != nil {
				d.log.Errorf("Failed to delete %s %s: %v", objectType, doc.Object, err)
				return fmt.Errorf("deleting %s %s: %w", objectType, doc.Object.Uid, err)
			}
			if result.IsSuccessful {
				d.log.Infof("Deleted %s successfully, %s", objectType, doc.Object)
			} else {
				d.log.Errorf("Failed to delete %s. %s, Reason: %s", objectType, doc.Object, result.Reason)
			}
			outcomes[i].result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.WorkerResult{}, nil, err
	}

	var deleted []string
	var reason string
	failed := false
	for i, o := range outcomes {
		if o.started && o.result.IsSuccessful {
			deleted = append(deleted, refs.ObjectUids[i])
			continue
		}
		if !failed {
			reason = o.result.Reason
			if !o.started {
				reason = fmt.Sprintf("%s %s was not deleted: %v", objectType, refs.ObjectUids[i], cancelCause(ctx))
			}
		}
		failed = true
	}

	success := ""
	if len(deleted) > 0 {
		success = fmt.Sprintf("Deleted %ss: %s.", objectType, strings.Join(deleted, ", "))
	}
	if !failed {
		return models.NewSuccess(client.ServerUrl(), success), refresh, nil
	}
	if len(deleted) == 0 {
		refresh = nil
	}
	return models.NewFailure(client.ServerUrl(), fmt.Sprintf("%s Failed to delete some %ss", success, objectType), reason, nil), refresh, nil
}

func cancelCause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return context.Canceled
}
