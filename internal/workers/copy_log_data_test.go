package workers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/testutil"
	"github.com/witsml-transfer/backend/internal/witsml"
)

var curves = []string{"DEPTH", "GR", "ROP"}

func rowsBetween(from, to int) [][]string {
	var rows [][]string
	for d := from; d <= to; d++ {
		rows = append(rows, []string{fmt.Sprint(d), fmt.Sprintf("gr%d", d), fmt.Sprintf("rop%d", d)})
	}
	return rows
}

func newStores(t *testing.T, sourceRows [][]string) (*testutil.MockStore, *testutil.MockStore) {
	t.Helper()
	source := testutil.NewMockStore("http://source")
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "log1", curves, sourceRows)))
	target := testutil.NewMockStore("http://target")
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "log2", []string{"DEPTH"}, nil)))
	return source, target
}

func copyDataJob(mnemonics ...string) models.CopyLogDataJob {
	return models.CopyLogDataJob{
		Source: models.ComponentReferences{
			Parent:        models.ObjectReference{WellUid: "w1", WellboreUid: "wb1", Uid: "log1"},
			ComponentType: models.ComponentTypeMnemonic,
			ComponentUids: mnemonics,
		},
		Target: models.ObjectReference{WellUid: "w2", WellboreUid: "wb2", Uid: "log2"},
	}
}

func TestCopyLogDataAcrossPages(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 10))
	w := NewCopyLogDataWorker(Options{PageSize: 3})

	result, refresh, err := w.Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob("GR", "ROP"))
	require.NoError(t, err)
	assert.True(t, result.IsSuccess, result.Reason)
	assert.Equal(t, "http://target", result.ServerUrl)
	assert.Contains(t, result.Message, "Copied 10 rows")
	require.NotNil(t, refresh)
	assert.Equal(t, models.RefreshUpdate, refresh.RefreshType)
	assert.Equal(t, "log2", refresh.ObjectUid)

	assert.Equal(t, rowsBetween(1, 10), target.LogRows("w2", "wb2", "log2"))
	// one update adds the curves, then one update per page
	assert.Equal(t, 1+4, target.Calls("update"))
}

func TestCopyLogDataSubsetOfCurves(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 4))
	w := NewCopyLogDataWorker(Options{PageSize: 100})

	result, _, err := w.Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob("ROP"))
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)

	rows := target.LogRows("w2", "wb2", "log2")
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "rop1"}, rows[0])
}

func TestCopyLogDataZeroRowsSucceeds(t *testing.T) {
	source, target := newStores(t, nil)
	w := NewCopyLogDataWorker(Options{PageSize: 3})

	result, refresh, err := w.Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess)
	assert.Contains(t, result.Message, "Copied 0 rows")
	assert.Nil(t, refresh)
	assert.Zero(t, target.Calls("update"))
}

func TestCopyLogDataIndexTypeMismatch(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	require.NoError(t, source.PutLog(testutil.DepthLog("w1", "wb1", "log1", curves, rowsBetween(1, 3))))
	target := testutil.NewMockStore("http://target")
	require.NoError(t, target.PutLog(testutil.TimeLog("w2", "wb2", "log2", []string{"TIME"}, nil)))

	result, refresh, err := NewCopyLogDataWorker(Options{}).Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Contains(t, result.Reason, models.ErrInvalidState.Error())
	assert.Nil(t, refresh)
	assert.Zero(t, target.Calls("update"))
}

func TestCopyLogDataMissingTargetLog(t *testing.T) {
	source, _ := newStores(t, rowsBetween(1, 3))
	empty := testutil.NewMockStore("http://target")

	result, _, err := NewCopyLogDataWorker(Options{}).Execute(context.Background(), Clients{Target: empty, Source: source}, copyDataJob())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Contains(t, result.Reason, "log not found")
}

func TestCopyLogDataStopsOnFailedWrite(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 10))
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "log2", curves, nil)))
	target.UpdateFailure = "store is read only"

	result, _, err := NewCopyLogDataWorker(Options{PageSize: 3}).Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "store is read only", result.Reason)
	assert.Equal(t, 1, target.Calls("update"))
	assert.Equal(t, 2, source.Calls("get"), "header read plus the first page only")
}

func TestCopyLogDataTransportErrorAborts(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 3))
	source.GetErr = fmt.Errorf("%w: connection refused", witsml.ErrTransport)

	_, _, err := NewCopyLogDataWorker(Options{}).Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob())
	assert.ErrorIs(t, err, witsml.ErrTransport)
}

func TestCopyLogDataStartIndexOverride(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 10))
	job := copyDataJob()
	job.StartIndex = "7"

	result, _, err := NewCopyLogDataWorker(Options{PageSize: 2}).Execute(context.Background(), Clients{Target: target, Source: source}, job)
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)
	assert.Equal(t, rowsBetween(7, 10), target.LogRows("w2", "wb2", "log2"))
}

func TestCopyLogDataGrowingSourceIsSnapshotted(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	growing := testutil.DepthLog("w1", "wb1", "log1", curves, rowsBetween(1, 10))
	growing.ObjectGrowing = true
	require.NoError(t, source.PutLog(growing))
	target := testutil.NewMockStore("http://target")
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "log2", curves, nil)))

	// New rows arrive at the source while the first page is being written.
	var once sync.Once
	target.OnUpdate = func(doc witsml.Document) {
		once.Do(func() {
			require.NoError(t, source.AppendRows("w1", "wb1", "log1", witsml.LogData{MnemonicList: curves, Data: rowsBetween(11, 15)}))
		})
	}

	w := NewCopyLogDataWorker(Options{PageSize: 4})
	clients := Clients{Target: target, Source: source}

	result, _, err := w.Execute(context.Background(), clients, copyDataJob())
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)
	assert.Contains(t, result.Message, "Copied 10 rows")
	assert.Equal(t, rowsBetween(1, 10), target.LogRows("w2", "wb2", "log2"))

	result, _, err = w.Execute(context.Background(), clients, copyDataJob())
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)
	assert.Contains(t, result.Message, "Copied 5 rows")
	assert.Equal(t, rowsBetween(1, 15), target.LogRows("w2", "wb2", "log2"))
}

func TestCopyLogDataGrowingSourceCopiesHistoryOfNewCurve(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	growing := testutil.DepthLog("w1", "wb1", "log1", curves, rowsBetween(1, 10))
	growing.ObjectGrowing = true
	require.NoError(t, source.PutLog(growing))
	target := testutil.NewMockStore("http://target")
	var grRows [][]string
	for _, r := range rowsBetween(1, 10) {
		grRows = append(grRows, r[:2])
	}
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "log2", []string{"DEPTH", "GR"}, grRows)))

	result, _, err := NewCopyLogDataWorker(Options{PageSize: 4}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob("ROP"))
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)
	assert.Contains(t, result.Message, "Copied 10 rows of ROP")
	assert.Equal(t, rowsBetween(1, 10), target.LogRows("w2", "wb2", "log2"))
}

func TestCopyLogDataGrowingSourceResumesFromLaggingCurve(t *testing.T) {
	source := testutil.NewMockStore("http://source")
	growing := testutil.DepthLog("w1", "wb1", "log1", curves, rowsBetween(1, 10))
	growing.ObjectGrowing = true
	require.NoError(t, source.PutLog(growing))
	target := testutil.NewMockStore("http://target")
	targetRows := rowsBetween(1, 8)
	for _, r := range rowsBetween(9, 10) {
		targetRows = append(targetRows, []string{r[0], r[1], ""})
	}
	require.NoError(t, target.PutLog(testutil.DepthLog("w2", "wb2", "log2", curves, targetRows)))

	result, _, err := NewCopyLogDataWorker(Options{PageSize: 4}).
		Execute(context.Background(), Clients{Target: target, Source: source}, copyDataJob("GR", "ROP"))
	require.NoError(t, err)
	require.True(t, result.IsSuccess, result.Reason)
	assert.Contains(t, result.Message, "Copied 2 rows")
	assert.Equal(t, rowsBetween(1, 10), target.LogRows("w2", "wb2", "log2"))
}

func TestCopyLogDataCancelledBetweenPages(t *testing.T) {
	source, target := newStores(t, rowsBetween(1, 10))
	ctx, cancel := context.WithCancel(context.Background())
	target.OnUpdate = func(doc witsml.Document) {
		if doc.Log != nil && doc.Log.LogData != nil {
			cancel()
		}
	}

	result, refresh, err := NewCopyLogDataWorker(Options{PageSize: 3}).Execute(ctx, Clients{Target: target, Source: source}, copyDataJob())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.Contains(t, result.Message, "after 3 rows")
	assert.NotNil(t, refresh)
	assert.Len(t, target.LogRows("w2", "wb2", "log2"), 3)
}
