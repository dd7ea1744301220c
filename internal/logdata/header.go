package logdata

import (
	"fmt"

	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// IndexKindOf returns the index variant of a log header.
func IndexKindOf(log *witsml.Log) models.IndexKind {
	if log.IsDepthLog() {
		return models.IndexKindDepth
	}
	return models.IndexKindDateTime
}

// DirectionOf returns the index direction of a log header.
func DirectionOf(log *witsml.Log) models.Direction {
	if log.IsDecreasing() {
		return models.Decreasing
	}
	return models.Increasing
}

// IndexUom returns the unit of the index curve, falling back to the header ranges.
func IndexUom(log *witsml.Log) string {
	if c, ok := log.CurveInfo(log.IndexCurve); ok && c.Unit != "" {
		return c.Unit
	}
	if log.StartIndex != nil {
		return log.StartIndex.Uom
	}
	if log.EndIndex != nil {
		return log.EndIndex.Uom
	}
	return ""
}

// StartIndex returns the first index of the log in its direction. It reports false when the
// header carries no start, which means the log holds no data.
func StartIndex(log *witsml.Log) (models.Index, bool, error) {
	if log.IsDepthLog() {
		return parseMeasure(log, log.StartIndex)
	}
	return parseDateTime(log, log.StartDateTimeIndex)
}

// EndIndex returns the last index of the log in its direction.
func EndIndex(log *witsml.Log) (models.Index, bool, error) {
	if log.IsDepthLog() {
		return parseMeasure(log, log.EndIndex)
	}
	return parseDateTime(log, log.EndDateTimeIndex)
}

// CurveEndIndex returns the last index holding a value of mnemonic, in the log direction. It
// reports false when the header does not describe the curve or the curve holds no data.
func CurveEndIndex(log *witsml.Log, mnemonic string) (models.Index, bool, error) {
	c, ok := log.CurveInfo(mnemonic)
	if !ok {
		return models.Index{}, false, nil
	}
	if log.IsDepthLog() {
		value := c.MaxIndex
		if log.IsDecreasing() {
			value = c.MinIndex
		}
		if value == "" {
			return models.Index{}, false, nil
		}
		return parseMeasure(log, &witsml.Measure{Uom: IndexUom(log), Value: value})
	}
	value := c.MaxDateTimeIndex
	if log.IsDecreasing() {
		value = c.MinDateTimeIndex
	}
	return parseDateTime(log, value)
}

func parseMeasure(log *witsml.Log, m *witsml.Measure) (models.Index, bool, error) {
	if m == nil || m.Value == "" {
		return models.Index{}, false, nil
	}
	i, err := models.ParseDepthIndex(m.Value, m.Uom, DirectionOf(log))
	if err != nil {
		return models.Index{}, false, fmt.Errorf("log %s: %w", log.Uid, err)
	}
	return i, true, nil
}

func parseDateTime(log *witsml.Log, value string) (models.Index, bool, error) {
	if value == "" {
		return models.Index{}, false, nil
	}
	i, err := models.ParseDateTimeIndex(value, DirectionOf(log))
	if err != nil {
		return models.Index{}, false, fmt.Errorf("log %s: %w", log.Uid, err)
	}
	return i, true, nil
}

// CheckCompatible fails with ErrInvalidState when two logs cannot exchange data.
func CheckCompatible(source, target *witsml.Log) error {
	if IndexKindOf(source) != IndexKindOf(target) {
		return fmt.Errorf("%w: source log %s is indexed by %s but target log %s is indexed by %s",
			models.ErrInvalidState, source.Uid, IndexKindOf(source), target.Uid, IndexKindOf(target))
	}
	if DirectionOf(source) != DirectionOf(target) {
		return fmt.Errorf("%w: source log %s is %s but target log %s is %s",
			models.ErrInvalidState, source.Uid, DirectionOf(source), target.Uid, DirectionOf(target))
	}
	return nil
}

// MnemonicList fixes the column list of a transfer: the index curve first, then the requested
// curves in header order. An empty request selects every curve.
func MnemonicList(header *witsml.Log, requested []string) ([]string, error) {
	want := make(map[string]bool, len(requested))
	for _, m := range requested {
		if _, ok := header.CurveInfo(m); !ok {
			return nil, fmt.Errorf("%w: log %s has no curve %q", models.ErrValidation, header.Uid, m)
		}
		want[m] = true
	}

	mnemonics := []string{header.IndexCurve}
	for _, m := range header.Mnemonics() {
		if m == header.IndexCurve {
			continue
		}
		if len(requested) == 0 || want[m] {
			mnemonics = append(mnemonics, m)
		}
	}
	return mnemonics, nil
}
