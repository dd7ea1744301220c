package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/witsml-transfer/backend/internal/logdata"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// logValue is one stored cell: the value of one curve at one index.
type logValue struct {
	uidWell     string
	uidWellbore string
	uidLog      string
	mnemonic    string
	idx         string
	depth       float64
	timeNs      int64
	value       string
}

// keyColumn is the column that orders the rows of the log.
func keyColumn(h *witsml.Log) string {
	if h.IsDepthLog() {
		return "depth"
	}
	return "time_ns"
}

func clearRange(c witsml.LogCurveInfo) witsml.LogCurveInfo {
	c.MinIndex, c.MaxIndex = "", ""
	c.MinDateTimeIndex, c.MaxDateTimeIndex = "", ""
	return c
}

// storedHeader strips data and ranges; ranges are derived from the stored values on read.
func storedHeader(l witsml.Log) witsml.Log {
	h := l.HeaderOnly()
	h.StartIndex, h.EndIndex = nil, nil
	h.StartDateTimeIndex, h.EndDateTimeIndex = "", ""
	for i := range h.LogCurveInfo {
		h.LogCurveInfo[i] = clearRange(h.LogCurveInfo[i])
	}
	return h
}

// prepareValues validates rows against the header and flattens them into cells. Indexes are
// normalized so the same position always yields the same key; empty values are dropped and a
// later row wins over an earlier one at the same index.
func prepareValues(h witsml.Log, data witsml.LogData) ([]logValue, error) {
	if len(data.MnemonicList) == 0 {
		if len(data.Data) > 0 {
			return nil, fmt.Errorf("log data without a mnemonic list")
		}
		return nil, nil
	}
	for _, m := range data.MnemonicList[1:] {
		if _, ok := h.CurveInfo(m); !ok {
			return nil, fmt.Errorf("mnemonic %s is not described in the log header", m)
		}
	}

	kind, direction := logdata.IndexKindOf(&h), logdata.DirectionOf(&h)
	seen := make(map[string]int)
	var out []logValue
	for n, raw := range data.Data {
		if len(raw) == 0 {
			continue
		}
		idx, err := models.ParseIndex(kind, raw[0], "", direction)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		cell := logValue{uidWell: h.UidWell, uidWellbore: h.UidWellbore, uidLog: h.Uid, idx: idx.TransportString()}
		if kind == models.IndexKindDepth {
			cell.depth = idx.Depth().InexactFloat64()
		} else {
			cell.timeNs = idx.Time().UnixNano()
		}
		for i, v := range raw[1:] {
			if i+1 >= len(data.MnemonicList) {
				break
			}
			if v == "" {
				continue
			}
			cell.mnemonic, cell.value = data.MnemonicList[i+1], v
			k := cell.mnemonic + "\x00" + cell.idx
			if pos, ok := seen[k]; ok {
				out[pos] = cell
				continue
			}
			seen[k] = len(out)
			out = append(out, cell)
		}
	}
	return out, nil
}

// columns returns the index curve followed by the requested curves known to the header.
func columns(h *witsml.Log, requested []string) []string {
	cols := []string{h.IndexCurve}
	if len(requested) == 0 {
		requested = h.Mnemonics()
	}
	for _, m := range requested {
		if m == h.IndexCurve {
			continue
		}
		if _, ok := h.CurveInfo(m); ok {
			cols = append(cols, m)
		}
	}
	return cols
}

func keyValue(kind models.IndexKind, idx models.Index) any {
	if kind == models.IndexKindDepth {
		return idx.Depth().InexactFloat64()
	}
	return idx.Time().UnixNano()
}

// rangeFilter turns inclusive transport-string bounds into key conditions. On a decreasing log
// the start bound is the larger value.
func rangeFilter(h *witsml.Log, start, end string) ([]string, []any, error) {
	kind, direction := logdata.IndexKindOf(h), logdata.DirectionOf(h)
	kc := keyColumn(h)
	lower, upper := ">=", "<="
	if direction == models.Decreasing {
		lower, upper = upper, lower
	}

	var where []string
	var args []any
	for _, bound := range []struct {
		value string
		op    string
	}{{start, lower}, {end, upper}} {
		if bound.value == "" {
			continue
		}
		idx, err := models.ParseIndex(kind, bound.value, "", direction)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		where = append(where, fmt.Sprintf("%s %s ?", kc, bound.op))
		args = append(args, keyValue(kind, idx))
	}
	return where, args, nil
}

// readData returns up to maxRows rows of the requested curves within the query bounds, in log
// direction. Rows without a value in any requested curve are skipped.
func (ds *DuckStore) readData(ctx context.Context, h witsml.Log, query witsml.Query, maxRows int) (*witsml.LogData, error) {
	cols := columns(&h, query.Mnemonics)
	kc := keyColumn(&h)
	order := "ASC"
	if h.IsDecreasing() {
		order = "DESC"
	}

	where := []string{"uid_well = ?", "uid_wellbore = ?", "uid_log = ?"}
	args := []any{h.UidWell, h.UidWellbore, h.Uid}
	if len(cols) > 1 {
		in, inArgs := inClause(cols[1:])
		where = append(where, "mnemonic IN "+in)
		args = append(args, inArgs...)
	}
	bounds, boundArgs, err := rangeFilter(&h, query.StartIndex, query.EndIndex)
	if err != nil {
		return nil, err
	}
	where = append(where, bounds...)
	args = append(args, boundArgs...)

	sqlText := fmt.Sprintf("SELECT idx, min(%s) AS k FROM log_values WHERE %s GROUP BY idx ORDER BY k %s",
		kc, strings.Join(where, " AND "), order)
	if maxRows > 0 {
		sqlText += fmt.Sprintf(" LIMIT %d", maxRows)
	}

	rows, err := ds.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, transportError("select index values", err)
	}
	var indexes []string
	var first, last any
	for rows.Next() {
		var idx string
		var k any
		if err := rows.Scan(&idx, &k); err != nil {
			rows.Close()
			return nil, transportError("scan index value", err)
		}
		if first == nil {
			first = k
		}
		last = k
		indexes = append(indexes, idx)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, transportError("select index values", err)
	}

	data := &witsml.LogData{MnemonicList: cols}
	for _, c := range cols {
		info, _ := h.CurveInfo(c)
		data.UnitList = append(data.UnitList, info.Unit)
	}
	if len(indexes) == 0 {
		return data, nil
	}

	position := make(map[string]int, len(indexes))
	data.Data = make([][]string, len(indexes))
	for i, idx := range indexes {
		position[idx] = i
		data.Data[i] = make([]string, len(cols))
		data.Data[i][0] = idx
	}
	column := make(map[string]int, len(cols))
	for i, c := range cols[1:] {
		column[c] = i + 1
	}

	lo, hi := first, last
	if h.IsDecreasing() {
		lo, hi = last, first
	}
	valueSQL := fmt.Sprintf("SELECT idx, mnemonic, value FROM log_values WHERE %s AND %s BETWEEN ? AND ?",
		strings.Join(where, " AND "), kc)
	values, err := ds.db.QueryContext(ctx, valueSQL, append(args, lo, hi)...)
	if err != nil {
		return nil, transportError("select values", err)
	}
	defer values.Close()
	for values.Next() {
		var idx, mnemonic, value string
		if err := values.Scan(&idx, &mnemonic, &value); err != nil {
			return nil, transportError("scan value", err)
		}
		row, ok := position[idx]
		if !ok {
			continue
		}
		if col, ok := column[mnemonic]; ok {
			data.Data[row][col] = value
		}
	}
	if err := values.Err(); err != nil {
		return nil, transportError("select values", err)
	}
	return data, nil
}

// withRanges returns the header, restricted to the requested curves, with the log range and the
// per-curve ranges derived from the stored values.
func (ds *DuckStore) withRanges(ctx context.Context, header witsml.Log, requested []string) (witsml.Log, error) {
	h := header.HeaderOnly()
	if len(requested) > 0 {
		cols := columns(&h, requested)
		curves := make([]witsml.LogCurveInfo, 0, len(cols))
		for _, c := range cols {
			if info, ok := h.CurveInfo(c); ok {
				curves = append(curves, info)
			}
		}
		h.LogCurveInfo = curves
	}

	kc := keyColumn(&h)
	base := "uid_well = ? AND uid_wellbore = ? AND uid_log = ?"
	args := []any{h.UidWell, h.UidWellbore, h.Uid}

	var lo, hi sql.NullString
	err := ds.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT arg_min(idx, %[1]s), arg_max(idx, %[1]s) FROM log_values WHERE %[2]s", kc, base),
		args...).Scan(&lo, &hi)
	if err != nil {
		return witsml.Log{}, transportError("select log range", err)
	}
	if !lo.Valid {
		return h, nil
	}

	type curveRange struct{ lo, hi string }
	ranges := map[string]curveRange{h.IndexCurve: {lo.String, hi.String}}
	rows, err := ds.db.QueryContext(ctx,
		fmt.Sprintf("SELECT mnemonic, arg_min(idx, %[1]s), arg_max(idx, %[1]s) FROM log_values WHERE %[2]s GROUP BY mnemonic", kc, base),
		args...)
	if err != nil {
		return witsml.Log{}, transportError("select curve ranges", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mnemonic string
		var r curveRange
		if err := rows.Scan(&mnemonic, &r.lo, &r.hi); err != nil {
			return witsml.Log{}, transportError("scan curve range", err)
		}
		ranges[mnemonic] = r
	}
	if err := rows.Err(); err != nil {
		return witsml.Log{}, transportError("select curve ranges", err)
	}

	start, end := lo.String, hi.String
	if h.IsDecreasing() {
		start, end = end, start
	}
	if h.IsDepthLog() {
		uom := logdata.IndexUom(&h)
		h.StartIndex = &witsml.Measure{Uom: uom, Value: start}
		h.EndIndex = &witsml.Measure{Uom: uom, Value: end}
	} else {
		h.StartDateTimeIndex, h.EndDateTimeIndex = start, end
	}
	for i, c := range h.LogCurveInfo {
		r, ok := ranges[c.Mnemonic]
		if !ok {
			continue
		}
		if h.IsDepthLog() {
			h.LogCurveInfo[i].MinIndex, h.LogCurveInfo[i].MaxIndex = r.lo, r.hi
		} else {
			h.LogCurveInfo[i].MinDateTimeIndex, h.LogCurveInfo[i].MaxDateTimeIndex = r.lo, r.hi
		}
	}
	return h, nil
}
