// Package models contains domain types for the log curve transfer engine.
package models

// CurveSpecification describes one column of log data.
type CurveSpecification struct {
	Mnemonic string `json:"mnemonic"`
	Unit     string `json:"unit"`
	DataType string `json:"dataType,omitempty"`
}

// Row is one data row. Values holds one entry per non-index curve; an empty string is an
// absent value.
type Row struct {
	Index  Index
	Values []string
}

// LogDataBlock is one page of log data. StartIndex and EndIndex are the first and last index
// actually present in Rows; both are zero when the block is empty.
type LogDataBlock struct {
	CurveSpecifications []CurveSpecification
	Rows                []Row
	StartIndex          Index
	EndIndex            Index
}

// Len returns the number of rows.
func (b *LogDataBlock) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// IsEmpty reports whether the block carries no rows.
func (b *LogDataBlock) IsEmpty() bool {
	return b.Len() == 0
}

// Mnemonics returns the column mnemonics, index curve first.
func (b *LogDataBlock) Mnemonics() []string {
	mnemonics := make([]string, 0, len(b.CurveSpecifications))
	for _, c := range b.CurveSpecifications {
		mnemonics = append(mnemonics, c.Mnemonic)
	}
	return mnemonics
}

// Units returns the column units, index curve first.
func (b *LogDataBlock) Units() []string {
	units := make([]string, 0, len(b.CurveSpecifications))
	for _, c := range b.CurveSpecifications {
		units = append(units, c.Unit)
	}
	return units
}

// TransportRows renders the rows as store rows, index value first.
func (b *LogDataBlock) TransportRows() [][]string {
	rows := make([][]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		row := make([]string, 0, len(r.Values)+1)
		row = append(row, r.Index.TransportString())
		row = append(row, r.Values...)
		rows = append(rows, row)
	}
	return rows
}
