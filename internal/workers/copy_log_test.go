package workers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/testutil"
	"github.com/witsml-transfer/backend/internal/witsml"
)

func copyLogJob(uids ...string) models.CopyLogJob {
	return models.CopyLogJob{
		Source: models.ObjectReferences{WellUid: "w1", WellboreUid: "wb1", ObjectUids: uids},
		Target: models.WellboreReference{WellUid: "w2", WellboreUid: "wb2", WellName: "Well 2", WellboreName: "Wellbore 2"},
	}
}

func newCopyLogWorker(opts Options) *CopyLogWorker {
	return NewCopyLogWorker(opts, NewCopyLogDataWorker(opts))
}

func TestCopyLogCreatesTargetAndCopiesData(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "a", curves, rowsBetween(1, 5))))
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "b", curves, rowsBetween(10, 12))))
	target := testutil.NewMockStore("http://target")

	result, refresh, err := newCopyLogWorker(Options{PageSize: 2, MaxConcurrentTransfers: 2}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyLogJob("a", "b"))
	require.NoError(t, err)
	assert.True(t, result.IsSuccess, result.Reason)
	assert.Equal(t, "Copied logs: a, b.", result.Message)
	require.NotNil(t, refresh)
	assert.Equal(t, models.RefreshAdd, refresh.RefreshType)
	assert.Equal(t, witsml.ObjectTypeLog, refresh.ObjectType)

	assert.Equal(t, rowsBetween(1, 5), target.LogRows("w2", "wb2", "a"))
	assert.Equal(t, rowsBetween(10, 12), target.LogRows("w2", "wb2", "b"))
	assert.Equal(t, 2, target.Calls("add"))
}

func TestCopyLogKeepsGoingAfterOneFails(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "a", curves, rowsBetween(1, 3))))
	target := testutil.NewMockStore("http://target")

	result, refresh, err := newCopyLogWorker(Options{MaxConcurrentTransfers: 1}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyLogJob("missing", "a"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "Copied logs: a. Failed to copy logs: missing", result.Message)
	assert.Contains(t, result.Reason, "log not found")
	assert.NotNil(t, refresh)
	assert.True(t, target.HasLog("w2", "wb2", "a"))
}

func TestCopyLogAddFailure(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "a", curves, rowsBetween(1, 3))))
	target := testutil.NewMockStore("http://target")
	target.AddFailure = "wellbore wb2 does not exist"

	result, refresh, err := newCopyLogWorker(Options{}).Execute(context.Background(), Clients{Target: target, Source: source}, copyLogJob("a"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "wellbore wb2 does not exist", result.Reason)
	assert.Nil(t, refresh)
}

func TestCopyLogNamesEveryFailedLog(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	for _, uid := range []string{"a", "b", "c"} {
		require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", uid, curves, rowsBetween(1, 3))))
	}
	target := testutil.NewMockStore("http://target")
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "a", curves, nil)))
	target.AddFailure = "wellbore is locked"

	result, refresh, err := newCopyLogWorker(Options{MaxConcurrentTransfers: 2}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyLogJob("a", "b", "c"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "Copied logs: a. Failed to copy logs: b, c", result.Message)
	assert.Equal(t, "wellbore is locked", result.Reason)
	assert.NotNil(t, refresh)
	assert.Equal(t, rowsBetween(1, 3), target.LogRows("w2", "wb2", "a"))
}

func TestCopyLogTransportErrorAbortsJob(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	for _, uid := range []string{"a", "b", "c", "d"} {
		require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", uid, curves, rowsBetween(1, 3))))
	}
	target := testutil.NewMockStore("http://target")
	target.GetErr = fmt.Errorf("%w: connection reset", witsml.ErrTransport)

	result, refresh, err := newCopyLogWorker(Options{MaxConcurrentTransfers: 2}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyLogJob("a", "b", "c", "d"))
	require.Error(t, err)
	assert.ErrorIs(t, err, witsml.ErrTransport)
	assert.Equal(t, models.WorkerResult{}, result)
	assert.Nil(t, refresh)
	assert.Zero(t, target.Calls("add"))
	assert.Less(t, target.Calls("get"), 4, "logs not yet started are skipped once the job aborts")
}

func TestCopyLogSameServer(t *testing.T) {
	store := testutil.NewMockStore("http://one")
	require.NoError(t, store.PutLog(testutil.DepthLog("w1", "wb1", "a", curves, rowsBetween(1, 3))))

	result, _, err := newCopyLogWorker(Options{}).Execute(context.Background(), Clients{Target: store}, copyLogJob("a"))
	require.NoError(t, err)
	assert.True(t, result.IsSuccess, result.Reason)
	assert.Equal(t, rowsBetween(1, 3), store.LogRows("w2", "wb2", "a"))
	assert.Equal(t, rowsBetween(1, 3), store.LogRows("w1", "wb1", "a"))
}
