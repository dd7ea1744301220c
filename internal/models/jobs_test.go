package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCopyDataJob() CopyLogDataJob {
	return CopyLogDataJob{
		Source: ComponentReferences{
			Parent:        ObjectReference{WellUid: "w1", WellboreUid: "wb1", Uid: "src"},
			ComponentType: ComponentTypeMnemonic,
			ComponentUids: []string{"GR", "ROP"},
		},
		Target: ObjectReference{WellUid: "w2", WellboreUid: "wb2", Uid: "dst"},
	}
}

func TestJobValidation(t *testing.T) {
	tests := []struct {
		name    string
		job     interface{ Validate() error }
		wantErr bool
	}{
		{"copy log ok", CopyLogJob{
			Source: ObjectReferences{WellUid: "w", WellboreUid: "wb", ObjectUids: []string{"l1"}},
			Target: WellboreReference{WellUid: "w2", WellboreUid: "wb2"},
		}, false},
		{"copy log no uids", CopyLogJob{
			Source: ObjectReferences{WellUid: "w", WellboreUid: "wb"},
			Target: WellboreReference{WellUid: "w2", WellboreUid: "wb2"},
		}, true},
		{"copy log blank uid", CopyLogJob{
			Source: ObjectReferences{WellUid: "w", WellboreUid: "wb", ObjectUids: []string{" "}},
			Target: WellboreReference{WellUid: "w2", WellboreUid: "wb2"},
		}, true},
		{"copy data ok", sampleCopyDataJob(), false},
		{"copy data missing target", CopyLogDataJob{Source: sampleCopyDataJob().Source}, true},
		{"delete curves empty", DeleteCurvesJob{ToDelete: ComponentReferences{
			Parent: ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "l"},
		}}, true},
		{"delete objects ok", DeleteObjectsJob{ToDelete: ObjectReferences{
			WellUid: "w", WellboreUid: "wb", ObjectUids: []string{"a", "b"},
		}}, false},
		{"wbgeometry missing uom", ModifyWbGeometrySectionJob{
			WbGeometryReference: ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "g"},
			WbGeometrySection: WbGeometrySection{
				Uid:   "s1",
				MdTop: &LengthMeasure{Value: decimal.NewFromInt(10)},
			},
		}, true},
		{"wbgeometry missing section uid", ModifyWbGeometrySectionJob{
			WbGeometryReference: ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "g"},
		}, true},
		{"wbgeometry ok", ModifyWbGeometrySectionJob{
			WbGeometryReference: ObjectReference{WellUid: "w", WellboreUid: "wb", Uid: "g"},
			WbGeometrySection: WbGeometrySection{
				Uid:   "s1",
				MdTop: &LengthMeasure{Uom: "m", Value: decimal.NewFromInt(10)},
			},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewReplaceLogDataJob(t *testing.T) {
	copyJob := sampleCopyDataJob()

	_, ok := NewReplaceLogDataJob(copyJob, []string{"DEPTH", "CALI"})
	assert.False(t, ok)

	replace, ok := NewReplaceLogDataJob(copyJob, []string{"DEPTH", "ROP"})
	require.True(t, ok)
	assert.Equal(t, []string{"ROP"}, replace.DeleteJob.ToDelete.ComponentUids)
	assert.Equal(t, copyJob.Target, replace.DeleteJob.ToDelete.Parent)
	assert.NoError(t, replace.Validate())
}

func TestReplaceLogDataJobRejectsMismatchedTarget(t *testing.T) {
	replace, ok := NewReplaceLogDataJob(sampleCopyDataJob(), []string{"GR"})
	require.True(t, ok)
	tests := []struct {
		name   string
		mutate func(*ObjectReference)
	}{
		{"log", func(r *ObjectReference) { r.Uid = "other" }},
		{"wellbore", func(r *ObjectReference) { r.WellboreUid = "wb9" }},
		{"well", func(r *ObjectReference) { r.WellUid = "w9" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mismatched := replace
			tt.mutate(&mismatched.DeleteJob.ToDelete.Parent)
			assert.ErrorIs(t, mismatched.Validate(), ErrValidation)
		})
	}

	replace.DeleteJob.ToDelete.Parent.Name = "display name only"
	assert.NoError(t, replace.Validate())

	empty := ReplaceLogDataJob{CopyJob: sampleCopyDataJob()}
	assert.NoError(t, empty.Validate())
}

func TestWbGeometrySectionToWitsml(t *testing.T) {
	s := WbGeometrySection{
		Uid:      "s1",
		MdTop:    &LengthMeasure{Uom: "m", Value: decimal.RequireFromString("12.50")},
		DiaDrift: &LengthMeasure{Uom: "in", Value: decimal.RequireFromString("8.5")},
		Grade:    "L80",
	}
	w := s.ToWitsml()
	assert.Equal(t, "s1", w.Uid)
	require.NotNil(t, w.MdTop)
	assert.Equal(t, "m", w.MdTop.Uom)
	assert.Equal(t, "12.5", w.MdTop.Value)
	assert.Nil(t, w.MdBottom)
	assert.Equal(t, "L80", w.Grade)
}
