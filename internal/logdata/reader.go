// Package logdata reads log curve data from a store in bounded pages.
package logdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// DefaultPageSize is the row cap sent with every read when none is configured.
const DefaultPageSize = 10000

// ErrLogNotFound is returned when the store has no log for a reference.
var ErrLogNotFound = errors.New("log not found")

// Reader fetches log data one bounded request at a time.
type Reader struct {
	client   witsml.Client
	pageSize int
	log      *log.Logger
}

// NewReader returns a reader that asks client for at most pageSize rows per request.
func NewReader(client witsml.Client, pageSize int) *Reader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Reader{client: client, pageSize: pageSize, log: logging.New("logdata")}
}

// PageSize returns the row cap of each request.
func (r *Reader) PageSize() int {
	return r.pageSize
}

// Read fetches one page of rows between start and end, both inclusive. The store may return
// fewer rows than the range holds; callers continue from the returned EndIndex. With
// includeHeader the curve specifications carry data types from the log header.
func (r *Reader) Read(ctx context.Context, ref models.ObjectReference, mnemonics []string, start, end models.Index, includeHeader bool) (*models.LogDataBlock, error) {
	returnElements := witsml.ReturnDataOnly
	if includeHeader {
		returnElements = witsml.ReturnAll
	}
	query := witsml.GetLogData(ref.WellUid, ref.WellboreUid, ref.Uid, mnemonics, start.TransportString(), end.TransportString())
	set, err := r.client.GetFromStore(ctx, query, witsml.OptionsIn{ReturnElements: returnElements, MaxReturnNodes: r.pageSize})
	if err != nil {
		return nil, fmt.Errorf("reading data of log %s: %w", ref.Uid, err)
	}
	logObject, ok := set.FirstLog()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, ref)
	}

	block := &models.LogDataBlock{CurveSpecifications: curveSpecifications(logObject, mnemonics)}
	if logObject.LogData == nil {
		return block, nil
	}

	width := len(block.CurveSpecifications) - 1
	if width < 0 {
		width = 0
	}
	for _, raw := range logObject.LogData.Data {
		if len(raw) == 0 {
			continue
		}
		index, err := models.ParseIndex(start.Kind(), raw[0], start.Uom(), start.Direction())
		if err != nil {
			return nil, fmt.Errorf("reading data of log %s: %w", ref.Uid, err)
		}
		values := make([]string, width)
		copy(values, raw[1:])
		block.Rows = append(block.Rows, models.Row{Index: index, Values: values})
	}
	if len(block.Rows) > 0 {
		block.StartIndex = block.Rows[0].Index
		block.EndIndex = block.Rows[len(block.Rows)-1].Index
	}
	return block, nil
}

// curveSpecifications orders columns as the store returned them. Units and types fall back to
// the header curve descriptions.
func curveSpecifications(logObject *witsml.Log, requested []string) []models.CurveSpecification {
	columns := requested
	var units []string
	if logObject.LogData != nil && len(logObject.LogData.MnemonicList) > 0 {
		columns = logObject.LogData.MnemonicList
		units = logObject.LogData.UnitList
	}
	if len(columns) == 0 {
		columns = logObject.Mnemonics()
	}

	specs := make([]models.CurveSpecification, 0, len(columns))
	for i, m := range columns {
		spec := models.CurveSpecification{Mnemonic: m}
		if i < len(units) {
			spec.Unit = units[i]
		}
		if info, ok := logObject.CurveInfo(m); ok {
			if spec.Unit == "" {
				spec.Unit = info.Unit
			}
			spec.DataType = info.TypeLogData
		}
		specs = append(specs, spec)
	}
	return specs
}

// PageFunc consumes one non-empty page. Returning an error stops the loop.
type PageFunc func(block *models.LogDataBlock) error

// Pages reads the window page by page and hands each page to fn before the next read starts.
// Each page starts just after the previous page's last row, so no row is read twice. The loop
// stops on an empty page, when a page reaches the window end, or before the next page once ctx
// is cancelled. A request already sent is allowed to finish. It returns the number of rows read.
func (r *Reader) Pages(ctx context.Context, ref models.ObjectReference, mnemonics []string, window Window, includeHeader bool, fn PageFunc) (int, error) {
	rows := 0
	start := window.Start
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		block, err := r.Read(context.WithoutCancel(ctx), ref, mnemonics, start, window.End, includeHeader)
		if err != nil {
			return rows, err
		}
		if block.IsEmpty() {
			return rows, nil
		}
		r.log.Debugf("[Log %s] page %d: %d rows %s..%s", ref.Uid, page, block.Len(), block.StartIndex, block.EndIndex)

		if err := fn(block); err != nil {
			return rows, err
		}
		rows += block.Len()

		done, err := block.EndIndex.IsAfterOrAtEnd(window.End)
		if err != nil {
			return rows, err
		}
		if done {
			return rows, nil
		}

		next := block.EndIndex.Next()
		if c, err := next.Compare(start); err != nil || c <= 0 {
			return rows, fmt.Errorf("%w: page of log %s did not advance past %s", models.ErrInvalidState, ref.Uid, start)
		}
		start = next
	}
}
