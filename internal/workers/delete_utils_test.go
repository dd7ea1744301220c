package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/testutil"
	"github.com/witsml-transfer/backend/internal/witsml"
)

func tubularStore(uids ...string) *testutil.MockStore {
	store := testutil.NewMockStore("http://target")
	for _, uid := range uids {
		store.PutObject(witsml.ObjectTypeTubular, witsml.ObjectOnWellbore{UidWell: "w", UidWellbore: "wb", Uid: uid})
	}
	return store
}

func deleteJob(uids ...string) models.DeleteObjectsJob {
	return models.DeleteObjectsJob{ToDelete: models.ObjectReferences{WellUid: "w", WellboreUid: "wb", ObjectUids: uids}}
}

func TestDeleteTubularsAllSucceed(t *testing.T) {
	store := tubularStore("a", "b", "c")
	w := NewDeleteTubularsWorker(NewDeleteUtils(Options{MaxConcurrentDeletes: 2}))

	result, refresh, err := w.Execute(context.Background(), Clients{Target: store}, deleteJob("a", "b", "c"))
	require.NoError(t, err)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, "Deleted tubulars: a, b, c.", result.Message)
	require.NotNil(t, refresh)
	assert.Equal(t, witsml.ObjectTypeTubular, refresh.ObjectType)
	assert.Equal(t, models.RefreshUpdate, refresh.RefreshType)
	assert.Equal(t, 3, store.Calls("delete"))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, store.Deleted())
}

func TestDeleteTubularsPartialFailure(t *testing.T) {
	store := tubularStore("a", "b", "c")
	store.DeleteFailures["b"] = "tubular b is referenced"
	w := NewDeleteTubularsWorker(NewDeleteUtils(Options{MaxConcurrentDeletes: 3}))

	result, refresh, err := w.Execute(context.Background(), Clients{Target: store}, deleteJob("a", "b", "c"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "Deleted tubulars: a, c. Failed to delete some tubulars", result.Message)
	assert.Equal(t, "tubular b is referenced", result.Reason)
	assert.NotNil(t, refresh)
	assert.True(t, store.HasObject(witsml.ObjectTypeTubular, "w", "wb", "b"))
}

func TestDeleteLogsAllFail(t *testing.T) {
	store := testutil.NewMockStore("http://target")
	store.DeleteFailures["x"] = "first reason"
	store.DeleteFailures["y"] = "second reason"
	w := NewDeleteLogObjectsWorker(NewDeleteUtils(Options{MaxConcurrentDeletes: 2}))

	result, refresh, err := w.Execute(context.Background(), Clients{Target: store}, deleteJob("x", "y"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, " Failed to delete some logs", result.Message)
	assert.Equal(t, "first reason", result.Reason)
	assert.Nil(t, refresh)
}

func TestDeleteFirstFailureInRequestOrderWins(t *testing.T) {
	for i := 0; i < 20; i++ {
		store := tubularStore("a", "b", "c", "d")
		store.DeleteFailures["b"] = "reason b"
		store.DeleteFailures["d"] = "reason d"
		w := NewDeleteTubularsWorker(NewDeleteUtils(Options{MaxConcurrentDeletes: 4}))

		result, _, err := w.Execute(context.Background(), Clients{Target: store}, deleteJob("d", "a", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, "reason d", result.Reason)
		assert.Equal(t, "Deleted tubulars: a, c. Failed to delete some tubulars", result.Message)
	}
}

func TestDeleteTransportErrorAborts(t *testing.T) {
	store := tubularStore("a", "b", "c")
	store.DeleteTransportErrors["b"] = true
	w := NewDeleteTubularsWorker(NewDeleteUtils(Options{MaxConcurrentDeletes: 1}))

	_, refresh, err := w.Execute(context.Background(), Clients{Target: store}, deleteJob("a", "b", "c"))
	assert.ErrorIs(t, err, witsml.ErrTransport)
	assert.Nil(t, refresh)
	assert.True(t, store.HasObject(witsml.ObjectTypeTubular, "w", "wb", "c"), "no delete starts after the abort")
}

func TestDeleteCancelledBeforeStart(t *testing.T) {
	store := tubularStore("a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, refresh, err := NewDeleteTubularsWorker(NewDeleteUtils(Options{})).Execute(ctx, Clients{Target: store}, deleteJob("a", "b"))
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Contains(t, result.Reason, context.Canceled.Error())
	assert.Nil(t, refresh)
	assert.Zero(t, store.Calls("delete"))
}

func TestDeleteRejectsInvalidJob(t *testing.T) {
	store := tubularStore("a")
	result, _, err := NewDeleteTubularsWorker(NewDeleteUtils(Options{})).Execute(context.Background(), Clients{Target: store}, deleteJob())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Zero(t, store.Calls("delete"))
}

func TestDeleteCurves(t *testing.T) {
	store := testutil.NewMockStore("http://target")
	require.NoError(t, store.PutLog(testutil.DepthLog("w", "wb", "log", []string{"DEPTH", "GR", "ROP"}, [][]string{{"1", "g", "r"}})))
	job := models.DeleteCurvesJob{ToDelete: models.ComponentReferences{
		Parent:        models.ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "log"},
		ComponentType: models.ComponentTypeMnemonic,
		ComponentUids: []string{"GR"},
	}}

	result, refresh, err := NewDeleteCurvesWorker().Execute(context.Background(), Clients{Target: store}, job)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, "Deleted mnemonics: GR for log: log", result.Message)
	require.NotNil(t, refresh)
	assert.Equal(t, "log", refresh.ObjectUid)
	assert.Equal(t, 1, store.Calls("delete"))
	assert.Equal(t, [][]string{{"1", "r"}}, store.LogRows("w", "wb", "log"))
}

func TestDeleteCurvesFailure(t *testing.T) {
	store := testutil.NewMockStore("http://target")
	require.NoError(t, store.PutLog(testutil.DepthLog("w", "wb", "log", []string{"DEPTH", "GR"}, nil)))
	job := models.DeleteCurvesJob{ToDelete: models.ComponentReferences{
		Parent:        models.ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "log", WellName: "Well 1"},
		ComponentUids: []string{"DEPTH"},
	}}

	result, refresh, err := NewDeleteCurvesWorker().Execute(context.Background(), Clients{Target: store}, job)
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "the index curve cannot be deleted", result.Reason)
	require.NotNil(t, result.Description)
	assert.Equal(t, "Well 1", result.Description.WellName)
	assert.Nil(t, refresh)
}
