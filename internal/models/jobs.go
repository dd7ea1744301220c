package models

import (
	"fmt"
	"strings"

	"github.com/witsml-transfer/backend/internal/witsml"
)

// JobType names a kind of job a worker executes.
type JobType string

const (
	JobTypeCopyLog                 JobType = "CopyLog"
	JobTypeCopyLogData             JobType = "CopyLogData"
	JobTypeReplaceLogData          JobType = "ReplaceLogData"
	JobTypeDeleteLogObjects        JobType = "DeleteLogObjects"
	JobTypeDeleteTubulars          JobType = "DeleteTubulars"
	JobTypeDeleteCurves            JobType = "DeleteCurves"
	JobTypeModifyWbGeometrySection JobType = "ModifyWbGeometrySection"
)

// Job is a unit of work a worker executes. Validate rejects a job before any remote call.
type Job interface {
	Validate() error
	Description() string
}

// CopyLogJob copies whole logs, header and data, to a target wellbore.
type CopyLogJob struct {
	Source ObjectReferences  `json:"source"`
	Target WellboreReference `json:"target"`
}

func (j CopyLogJob) Validate() error {
	if err := j.Source.Verify(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := j.Target.Verify(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

func (j CopyLogJob) Description() string {
	return fmt.Sprintf("CopyLog - Source - WellUid: %s, WellboreUid: %s, Uids: %s; Target - WellUid: %s, WellboreUid: %s",
		j.Source.WellUid, j.Source.WellboreUid, strings.Join(j.Source.ObjectUids, ", "), j.Target.WellUid, j.Target.WellboreUid)
}

// CopyLogDataJob copies the data of selected curves from one log into an existing target log.
// An empty component list copies every curve of the source.
type CopyLogDataJob struct {
	Source ComponentReferences `json:"source"`
	Target ObjectReference     `json:"target"`
	// StartIndex overrides the first index to copy, as a transport string.
	StartIndex string `json:"startIndex,omitempty"`
}

func (j CopyLogDataJob) Validate() error {
	if err := j.Source.Verify(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := j.Target.Verify(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

func (j CopyLogDataJob) Description() string {
	return fmt.Sprintf("CopyLogData - Source - %s, Mnemonics: %s; Target - %s",
		j.Source.Parent, strings.Join(j.Source.ComponentUids, ", "), j.Target)
}

// DeleteObjectsJob deletes several objects of one type from one wellbore.
type DeleteObjectsJob struct {
	ToDelete ObjectReferences `json:"toDelete"`
}

func (j DeleteObjectsJob) Validate() error {
	return j.ToDelete.Verify()
}

func (j DeleteObjectsJob) Description() string {
	return fmt.Sprintf("Delete - WellUid: %s, WellboreUid: %s, Uids: %s",
		j.ToDelete.WellUid, j.ToDelete.WellboreUid, strings.Join(j.ToDelete.ObjectUids, ", "))
}

// DeleteCurvesJob deletes curves, and their data, from one log.
type DeleteCurvesJob struct {
	ToDelete ComponentReferences `json:"toDelete"`
}

func (j DeleteCurvesJob) Validate() error {
	if err := j.ToDelete.Verify(); err != nil {
		return err
	}
	if len(j.ToDelete.ComponentUids) == 0 {
		return fmt.Errorf("%w: ComponentUids cannot be empty", ErrValidation)
	}
	return nil
}

func (j DeleteCurvesJob) Description() string {
	return fmt.Sprintf("DeleteCurves - %s, Mnemonics: %s", j.ToDelete.Parent, strings.Join(j.ToDelete.ComponentUids, ", "))
}

// ReplaceLogDataJob deletes colliding curves at the target and then copies them from the source.
// The two steps are never merged into one remote call.
type ReplaceLogDataJob struct {
	DeleteJob DeleteCurvesJob `json:"deleteJob"`
	CopyJob   CopyLogDataJob  `json:"copyJob"`
}

// Validate checks the copy step. The delete step may be left empty, in which case the colliding
// curves are looked up at the target before running.
func (j ReplaceLogDataJob) Validate() error {
	if err := j.CopyJob.Validate(); err != nil {
		return err
	}
	if len(j.DeleteJob.ToDelete.ComponentUids) > 0 {
		if err := j.DeleteJob.Validate(); err != nil {
			return err
		}
		del, cp := j.DeleteJob.ToDelete.Parent, j.CopyJob.Target
		if del.WellUid != cp.WellUid || del.WellboreUid != cp.WellboreUid || del.Uid != cp.Uid {
			return fmt.Errorf("%w: delete and copy must address the same target log", ErrValidation)
		}
	}
	return nil
}

func (j ReplaceLogDataJob) Description() string {
	return fmt.Sprintf("ReplaceLogData - %s; %s", j.DeleteJob.Description(), j.CopyJob.Description())
}

// NewReplaceLogDataJob pairs a copy with the delete of the target curves it would overwrite.
// It reports false when nothing collides and a plain copy is enough.
func NewReplaceLogDataJob(copyJob CopyLogDataJob, targetMnemonics []string) (ReplaceLogDataJob, bool) {
	existing := make(map[string]struct{}, len(targetMnemonics))
	for _, m := range targetMnemonics {
		existing[m] = struct{}{}
	}

	var colliding []string
	for _, m := range copyJob.Source.ComponentUids {
		if _, ok := existing[m]; ok {
			colliding = append(colliding, m)
		}
	}
	if len(colliding) == 0 {
		return ReplaceLogDataJob{}, false
	}

	return ReplaceLogDataJob{
		DeleteJob: DeleteCurvesJob{ToDelete: ComponentReferences{
			Parent:        copyJob.Target,
			ComponentType: ComponentTypeMnemonic,
			ComponentUids: colliding,
		}},
		CopyJob: copyJob,
	}, true
}

// WbGeometrySection is the editable part of a wellbore geometry section.
type WbGeometrySection struct {
	Uid            string         `json:"uid"`
	TypeHoleCasing string         `json:"typeHoleCasing,omitempty"`
	MdTop          *LengthMeasure `json:"mdTop,omitempty"`
	MdBottom       *LengthMeasure `json:"mdBottom,omitempty"`
	TvdTop         *LengthMeasure `json:"tvdTop,omitempty"`
	TvdBottom      *LengthMeasure `json:"tvdBottom,omitempty"`
	IdSection      *LengthMeasure `json:"idSection,omitempty"`
	OdSection      *LengthMeasure `json:"odSection,omitempty"`
	WtPerLen       *LengthMeasure `json:"wtPerLen,omitempty"`
	DiaDrift       *LengthMeasure `json:"diaDrift,omitempty"`
	Grade          string         `json:"grade,omitempty"`
}

// ToWitsml converts the section to its store representation.
func (s WbGeometrySection) ToWitsml() witsml.WbGeometrySection {
	return witsml.WbGeometrySection{
		Uid:            s.Uid,
		TypeHoleCasing: s.TypeHoleCasing,
		MdTop:          s.MdTop.ToWitsml(),
		MdBottom:       s.MdBottom.ToWitsml(),
		TvdTop:         s.TvdTop.ToWitsml(),
		TvdBottom:      s.TvdBottom.ToWitsml(),
		IdSection:      s.IdSection.ToWitsml(),
		OdSection:      s.OdSection.ToWitsml(),
		WtPerLen:       s.WtPerLen.ToWitsml(),
		DiaDrift:       s.DiaDrift.ToWitsml(),
		Grade:          s.Grade,
	}
}

// ModifyWbGeometrySectionJob updates one section of a wellbore geometry.
type ModifyWbGeometrySectionJob struct {
	WbGeometryReference ObjectReference   `json:"wbGeometryReference"`
	WbGeometrySection   WbGeometrySection `json:"wbGeometrySection"`
}

func (j ModifyWbGeometrySectionJob) Validate() error {
	if err := j.WbGeometryReference.Verify(); err != nil {
		return err
	}
	s := j.WbGeometrySection
	if err := requireField(s.Uid, "WbGeometrySection.Uid"); err != nil {
		return err
	}
	measures := []struct {
		name    string
		measure *LengthMeasure
	}{
		{"DiaDrift", s.DiaDrift},
		{"IdSection", s.IdSection},
		{"OdSection", s.OdSection},
		{"MdBottom", s.MdBottom},
		{"MdTop", s.MdTop},
		{"TvdBottom", s.TvdBottom},
		{"TvdTop", s.TvdTop},
		{"WtPerLen", s.WtPerLen},
	}
	for _, m := range measures {
		if m.measure != nil && strings.TrimSpace(m.measure.Uom) == "" {
			return fmt.Errorf("%w: unit of measure for %s cannot be empty", ErrValidation, m.name)
		}
	}
	return nil
}

func (j ModifyWbGeometrySectionJob) Description() string {
	return fmt.Sprintf("ModifyWbGeometrySection - %s, SectionUid: %s", j.WbGeometryReference, j.WbGeometrySection.Uid)
}
