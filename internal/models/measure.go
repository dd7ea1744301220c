package models

import (
	"github.com/shopspring/decimal"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// LengthMeasure is a decimal length with its unit of measure.
type LengthMeasure struct {
	Uom   string          `json:"uom"`
	Value decimal.Decimal `json:"value"`
}

// ToWitsml converts the measure to transport strings. A nil measure stays nil.
func (m *LengthMeasure) ToWitsml() *witsml.Measure {
	if m == nil {
		return nil
	}
	return &witsml.Measure{Uom: m.Uom, Value: m.Value.String()}
}

// LengthMeasureFromWitsml parses a store measure. A nil or unparsable value yields nil.
func LengthMeasureFromWitsml(m *witsml.Measure) *LengthMeasure {
	if m == nil {
		return nil
	}
	v, err := decimal.NewFromString(m.Value)
	if err != nil {
		return nil
	}
	return &LengthMeasure{Uom: m.Uom, Value: v}
}
