package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/testutil"
)

func TestRegistryCoversEveryJobType(t *testing.T) {
	registry := NewRegistry(Options{})
	for _, jobType := range []models.JobType{
		models.JobTypeCopyLog,
		models.JobTypeCopyLogData,
		models.JobTypeReplaceLogData,
		models.JobTypeDeleteLogObjects,
		models.JobTypeDeleteTubulars,
		models.JobTypeDeleteCurves,
		models.JobTypeModifyWbGeometrySection,
	} {
		w, ok := registry[jobType]
		require.True(t, ok, jobType)
		assert.Equal(t, jobType, w.JobType())
	}
}

func TestDecodeValidatesPayload(t *testing.T) {
	w := NewRegistry(Options{})[models.JobTypeDeleteTubulars]

	job, err := w.Decode([]byte(`{"toDelete":{"wellUid":"w","wellboreUid":"wb","objectUids":["a"]}}`))
	require.NoError(t, err)
	assert.Equal(t, models.DeleteObjectsJob{ToDelete: models.ObjectReferences{WellUid: "w", WellboreUid: "wb", ObjectUids: []string{"a"}}}, job)

	_, err = w.Decode([]byte(`{"toDelete":{"wellUid":"w","objectUids":["a"]}}`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = w.Decode([]byte(`not json`))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRunRejectsForeignJob(t *testing.T) {
	w := NewRegistry(Options{})[models.JobTypeDeleteTubulars]
	_, _, err := w.Run(context.Background(), Clients{Target: testutil.NewMockStore("x")}, models.DeleteCurvesJob{})
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, _, err = w.Run(context.Background(), Clients{}, models.DeleteObjectsJob{})
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestRunDispatchesToExecutor(t *testing.T) {
	store := tubularStore("a")
	w := NewRegistry(Options{})[models.JobTypeDeleteTubulars]
	job, err := w.Decode([]byte(`{"toDelete":{"wellUid":"w","wellboreUid":"wb","objectUids":["a"]}}`))
	require.NoError(t, err)

	result, refresh, err := w.Run(context.Background(), Clients{Target: store}, job)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess)
	assert.NotNil(t, refresh)
}
