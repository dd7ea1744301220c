package logdata

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

var logRef = models.ObjectReference{WellUid: "w1", WellboreUid: "wb1", Uid: "log1"}

// depthRows returns n rows at depths 1000, 1000.5, ...
func depthRows(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		depth := 1000 + float64(i)*0.5
		rows = append(rows, []string{fmt.Sprintf("%g", depth), fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*2)})
	}
	return rows
}

func seededStore(t *testing.T, rows int) (*testutil.MockStore, *witsml.Log) {
	t.Helper()
	store := testutil.NewMockStore("http://source")
	l := testutil.DepthLog("w1", "wb1", "log1", []string{"DEPTH", "GR", "ROP"}, depthRows(rows))
	require.NoError(t, store.PutLog(l))

	set, err := store.GetFromStore(context.Background(), witsml.GetLogByUid("w1", "wb1", "log1"), witsml.OptionsIn{ReturnElements: witsml.ReturnHeaderOnly})
	require.NoError(t, err)
	header, ok := set.FirstLog()
	require.True(t, ok)
	return store, header
}

func TestPagesCoverWindowWithoutGapsOrDuplicates(t *testing.T) {
	for _, pageSize := range []int{1, 3, 7, 25, 1000} {
		t.Run(fmt.Sprintf("page size %d", pageSize), func(t *testing.T) {
			store, header := seededStore(t, 25)
			window, ok, err := WindowFromHeader(header)
			require.NoError(t, err)
			require.True(t, ok)

			reader := NewReader(store, pageSize)
			var seen []string
			var pages int
			total, err := reader.Pages(context.Background(), logRef, []string{"DEPTH", "GR", "ROP"}, window, false, func(b *models.LogDataBlock) error {
				pages++
				assert.LessOrEqual(t, b.Len(), pageSize)
				assert.Equal(t, []string{"DEPTH", "GR", "ROP"}, b.Mnemonics())
				for _, r := range b.Rows {
					seen = append(seen, r.Index.TransportString())
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 25, total)

			var want []string
			for _, r := range depthRows(25) {
				want = append(want, r[0])
			}
			assert.Equal(t, want, seen)
			assert.Equal(t, (25+pageSize-1)/pageSize, pages)
		})
	}
}

func TestPagesStopsAtSnapshotEnd(t *testing.T) {
	store, header := seededStore(t, 10)
	window, _, err := WindowFromHeader(header)
	require.NoError(t, err)

	// Rows written after the snapshot lie beyond the window end.
	require.NoError(t, store.AppendRows("w1", "wb1", "log1", witsml.LogData{
		MnemonicList: []string{"DEPTH", "GR", "ROP"},
		Data:         [][]string{{"2000", "1", "1"}},
	}))

	total, err := NewReader(store, 4).Pages(context.Background(), logRef, []string{"DEPTH", "GR", "ROP"}, window, false, func(b *models.LogDataBlock) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestPagesEmptyLog(t *testing.T) {
	store, header := seededStore(t, 0)
	_, ok, err := WindowFromHeader(header)
	require.NoError(t, err)
	assert.False(t, ok)

	start, _ := models.ParseDepthIndex("0", "m", models.Increasing)
	window := Window{Start: start, End: models.OpenEnd(models.IndexKindDepth, models.Increasing)}
	calls := 0
	total, err := NewReader(store, 10).Pages(context.Background(), logRef, nil, window, false, func(b *models.LogDataBlock) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, calls)
}

func TestPagesStopsWhenCancelled(t *testing.T) {
	store, header := seededStore(t, 20)
	window, _, err := WindowFromHeader(header)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	total, err := NewReader(store, 5).Pages(ctx, logRef, nil, window, false, func(b *models.LogDataBlock) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, store.Calls("get"), "one header read plus one page")
}

func TestPagesPropagatesConsumerError(t *testing.T) {
	store, header := seededStore(t, 20)
	window, _, err := WindowFromHeader(header)
	require.NoError(t, err)

	boom := fmt.Errorf("write failed")
	_, err = NewReader(store, 5).Pages(context.Background(), logRef, nil, window, false, func(b *models.LogDataBlock) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestReadWithHeader(t *testing.T) {
	store, header := seededStore(t, 5)
	window, _, err := WindowFromHeader(header)
	require.NoError(t, err)

	block, err := NewReader(store, 2).Read(context.Background(), logRef, []string{"DEPTH", "ROP"}, window.Start, window.End, true)
	require.NoError(t, err)
	require.Len(t, block.CurveSpecifications, 2)
	assert.Equal(t, models.CurveSpecification{Mnemonic: "DEPTH", Unit: "m", DataType: "double"}, block.CurveSpecifications[0])
	assert.Equal(t, "ROP", block.CurveSpecifications[1].Mnemonic)
	assert.Equal(t, 2, block.Len())
	assert.Equal(t, "1000", block.StartIndex.TransportString())
	assert.Equal(t, "1000.5", block.EndIndex.TransportString())
	assert.Equal(t, [][]string{{"1000", "0"}, {"1000.5", "2"}}, block.TransportRows())
}

func TestReadMissingLog(t *testing.T) {
	store := testutil.NewMockStore("http://empty")
	start, _ := models.ParseDepthIndex("0", "m", models.Increasing)
	_, err := NewReader(store, 2).Read(context.Background(), logRef, nil, start, models.OpenEnd(models.IndexKindDepth, models.Increasing), false)
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestPagesDecreasingLog(t *testing.T) {
	store := testutil.NewMockStore("http://source")
	l := testutil.DepthLog("w1", "wb1", "log1", []string{"DEPTH", "GR"}, [][]string{
		{"10", "a"}, {"9", "b"}, {"8", "c"}, {"7", "d"}, {"6", "e"},
	})
	l.Direction = witsml.DirectionDecreasing
	require.NoError(t, store.PutLog(l))

	set, err := store.GetFromStore(context.Background(), witsml.GetLogByUid("w1", "wb1", "log1"), witsml.OptionsIn{ReturnElements: witsml.ReturnHeaderOnly})
	require.NoError(t, err)
	window, ok, err := WindowFromHeader(&set.Logs[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10", window.Start.TransportString())

	var seen []string
	_, err = NewReader(store, 2).Pages(context.Background(), logRef, []string{"DEPTH", "GR"}, window, false, func(b *models.LogDataBlock) error {
		for _, r := range b.Rows {
			seen = append(seen, r.Values[0])
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
}
