package witsml

import "fmt"

// ObjectType tags the kind of object a query or document addresses.
type ObjectType string

const (
	ObjectTypeLog        ObjectType = "log"
	ObjectTypeTubular    ObjectType = "tubular"
	ObjectTypeWbGeometry ObjectType = "wbGeometry"
	ObjectTypeTrajectory ObjectType = "trajectory"
)

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectTypeLog, ObjectTypeTubular, ObjectTypeWbGeometry, ObjectTypeTrajectory:
		return true
	}
	return false
}

// Index types as stored on a log header.
const (
	IndexTypeMeasuredDepth = "measured depth"
	IndexTypeDateTime      = "date time"
)

// Log directions as stored on a log header.
const (
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
)

// ObjectOnWellbore holds the identity fields every wellbore child object carries.
type ObjectOnWellbore struct {
	UidWell      string `json:"uidWell" msgpack:"uidWell"`
	UidWellbore  string `json:"uidWellbore" msgpack:"uidWellbore"`
	Uid          string `json:"uid" msgpack:"uid"`
	Name         string `json:"name,omitempty" msgpack:"name,omitempty"`
	NameWell     string `json:"nameWell,omitempty" msgpack:"nameWell,omitempty"`
	NameWellbore string `json:"nameWellbore,omitempty" msgpack:"nameWellbore,omitempty"`
}

func (o ObjectOnWellbore) String() string {
	return fmt.Sprintf("UidWell: %s, UidWellbore: %s, Uid: %s", o.UidWell, o.UidWellbore, o.Uid)
}

// Measure is a value with a unit of measure, both kept as transport strings.
type Measure struct {
	Uom   string `json:"uom" msgpack:"uom"`
	Value string `json:"value" msgpack:"value"`
}

// LogCurveInfo describes one curve of a log header.
type LogCurveInfo struct {
	Uid              string `json:"uid" msgpack:"uid"`
	Mnemonic         string `json:"mnemonic" msgpack:"mnemonic"`
	Unit             string `json:"unit,omitempty" msgpack:"unit,omitempty"`
	TypeLogData      string `json:"typeLogData,omitempty" msgpack:"typeLogData,omitempty"`
	CurveDescription string `json:"curveDescription,omitempty" msgpack:"curveDescription,omitempty"`
	MinIndex         string `json:"minIndex,omitempty" msgpack:"minIndex,omitempty"`
	MaxIndex         string `json:"maxIndex,omitempty" msgpack:"maxIndex,omitempty"`
	MinDateTimeIndex string `json:"minDateTimeIndex,omitempty" msgpack:"minDateTimeIndex,omitempty"`
	MaxDateTimeIndex string `json:"maxDateTimeIndex,omitempty" msgpack:"maxDateTimeIndex,omitempty"`
}

// LogData is the columnar payload of a log. Each row holds the index value first and then one
// value per remaining mnemonic; an empty string is an absent value.
type LogData struct {
	MnemonicList []string   `json:"mnemonicList" msgpack:"mnemonicList"`
	UnitList     []string   `json:"unitList" msgpack:"unitList"`
	Data         [][]string `json:"data" msgpack:"data"`
}

// Log is a log object: header, curve descriptions and optionally data.
type Log struct {
	ObjectOnWellbore
	ObjectGrowing      bool           `json:"objectGrowing,omitempty" msgpack:"objectGrowing,omitempty"`
	ServiceCompany     string         `json:"serviceCompany,omitempty" msgpack:"serviceCompany,omitempty"`
	RunNumber          string         `json:"runNumber,omitempty" msgpack:"runNumber,omitempty"`
	CreationDate       string         `json:"creationDate,omitempty" msgpack:"creationDate,omitempty"`
	Description        string         `json:"description,omitempty" msgpack:"description,omitempty"`
	IndexType          string         `json:"indexType" msgpack:"indexType"`
	Direction          string         `json:"direction,omitempty" msgpack:"direction,omitempty"`
	IndexCurve         string         `json:"indexCurve" msgpack:"indexCurve"`
	StartIndex         *Measure       `json:"startIndex,omitempty" msgpack:"startIndex,omitempty"`
	EndIndex           *Measure       `json:"endIndex,omitempty" msgpack:"endIndex,omitempty"`
	StartDateTimeIndex string         `json:"startDateTimeIndex,omitempty" msgpack:"startDateTimeIndex,omitempty"`
	EndDateTimeIndex   string         `json:"endDateTimeIndex,omitempty" msgpack:"endDateTimeIndex,omitempty"`
	LogCurveInfo       []LogCurveInfo `json:"logCurveInfo,omitempty" msgpack:"logCurveInfo,omitempty"`
	LogData            *LogData       `json:"logData,omitempty" msgpack:"logData,omitempty"`
}

// IsDepthLog reports whether the log is indexed by depth. Anything that is not a date time log is
// treated as a depth log.
func (l *Log) IsDepthLog() bool {
	return l.IndexType != IndexTypeDateTime
}

// IsDecreasing reports whether the log index runs from high to low values.
func (l *Log) IsDecreasing() bool {
	return l.Direction == DirectionDecreasing
}

// Mnemonics returns the curve mnemonics in header order.
func (l *Log) Mnemonics() []string {
	mnemonics := make([]string, 0, len(l.LogCurveInfo))
	for _, c := range l.LogCurveInfo {
		mnemonics = append(mnemonics, c.Mnemonic)
	}
	return mnemonics
}

// CurveInfo returns the curve description for mnemonic.
func (l *Log) CurveInfo(mnemonic string) (LogCurveInfo, bool) {
	for _, c := range l.LogCurveInfo {
		if c.Mnemonic == mnemonic {
			return c, true
		}
	}
	return LogCurveInfo{}, false
}

// HeaderOnly returns a copy of the log without data.
func (l Log) HeaderOnly() Log {
	l.LogData = nil
	l.LogCurveInfo = append([]LogCurveInfo(nil), l.LogCurveInfo...)
	return l
}

// WbGeometrySection is one section of a wellbore geometry.
type WbGeometrySection struct {
	Uid            string   `json:"uid" msgpack:"uid"`
	TypeHoleCasing string   `json:"typeHoleCasing,omitempty" msgpack:"typeHoleCasing,omitempty"`
	MdTop          *Measure `json:"mdTop,omitempty" msgpack:"mdTop,omitempty"`
	MdBottom       *Measure `json:"mdBottom,omitempty" msgpack:"mdBottom,omitempty"`
	TvdTop         *Measure `json:"tvdTop,omitempty" msgpack:"tvdTop,omitempty"`
	TvdBottom      *Measure `json:"tvdBottom,omitempty" msgpack:"tvdBottom,omitempty"`
	IdSection      *Measure `json:"idSection,omitempty" msgpack:"idSection,omitempty"`
	OdSection      *Measure `json:"odSection,omitempty" msgpack:"odSection,omitempty"`
	WtPerLen       *Measure `json:"wtPerLen,omitempty" msgpack:"wtPerLen,omitempty"`
	DiaDrift       *Measure `json:"diaDrift,omitempty" msgpack:"diaDrift,omitempty"`
	Grade          string   `json:"grade,omitempty" msgpack:"grade,omitempty"`
}

// WbGeometry is a wellbore geometry object with its sections.
type WbGeometry struct {
	ObjectOnWellbore
	Sections []WbGeometrySection `json:"sections,omitempty" msgpack:"sections,omitempty"`
}
