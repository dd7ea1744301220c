// mock_store.go - In-memory witsml.Client for testing
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

type mockRow struct {
	index  models.Index
	values map[string]string
}

type mockLog struct {
	header witsml.Log
	rows   []mockRow
}

// MockStore implements witsml.Client over in-memory maps. Failures are injected per uid and
// every call is counted.
type MockStore struct {
	url string

	mu           sync.Mutex
	logs         map[string]*mockLog
	wbGeometries map[string]*witsml.WbGeometry
	objects      map[string]witsml.ObjectOnWellbore
	calls        map[string]int
	deleted      []string

	// DeleteFailures maps an object uid to the reason its delete fails with.
	DeleteFailures map[string]string
	// DeleteTransportErrors names object uids whose delete fails at the transport level.
	DeleteTransportErrors map[string]bool
	// UpdateFailure, when set, fails every update with this reason.
	UpdateFailure string
	// AddFailure, when set, fails every add with this reason.
	AddFailure string
	// GetErr, when set, is returned by every get.
	GetErr error
	// DeleteDelay slows each object delete down so tests can cancel in between.
	DeleteDelay time.Duration
	// OnUpdate runs after every successful update, outside the store lock.
	OnUpdate func(doc witsml.Document)
}

// NewMockStore creates an empty store identified by url.
func NewMockStore(url string) *MockStore {
	return &MockStore{
		url:                   url,
		logs:                  make(map[string]*mockLog),
		wbGeometries:          make(map[string]*witsml.WbGeometry),
		objects:               make(map[string]witsml.ObjectOnWellbore),
		calls:                 make(map[string]int),
		DeleteFailures:        make(map[string]string),
		DeleteTransportErrors: make(map[string]bool),
	}
}

func key(objectType witsml.ObjectType, wellUid, wellboreUid, uid string) string {
	return string(objectType) + "/" + wellUid + "/" + wellboreUid + "/" + uid
}

func (m *MockStore) ServerUrl() string {
	return m.url
}

// Calls returns how often an operation ("get", "add", "update", "delete") was invoked.
func (m *MockStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Deleted returns the uids of successfully deleted objects in completion order.
func (m *MockStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// PutLog stores a log, header and data, replacing any log with the same identity.
func (m *MockStore) PutLog(l witsml.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ml := &mockLog{header: l.HeaderOnly()}
	ml.header.StartIndex, ml.header.EndIndex = nil, nil
	ml.header.StartDateTimeIndex, ml.header.EndDateTimeIndex = "", ""
	if l.LogData != nil {
		if err := ml.merge(*l.LogData); err != nil {
			return err
		}
	}
	m.logs[key(witsml.ObjectTypeLog, l.UidWell, l.UidWellbore, l.Uid)] = ml
	return nil
}

// AppendRows merges rows into an existing log, as a live acquisition would.
func (m *MockStore) AppendRows(wellUid, wellboreUid, logUid string, data witsml.LogData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ml, ok := m.logs[key(witsml.ObjectTypeLog, wellUid, wellboreUid, logUid)]
	if !ok {
		return fmt.Errorf("log %s not found", logUid)
	}
	return ml.merge(data)
}

// LogRows returns the rows of a log in index order, columns in header order.
func (m *MockStore) LogRows(wellUid, wellboreUid, logUid string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ml, ok := m.logs[key(witsml.ObjectTypeLog, wellUid, wellboreUid, logUid)]
	if !ok {
		return nil
	}
	return ml.data(ml.columns(nil), ml.rows).Data
}

// HasLog reports whether the store holds the log.
func (m *MockStore) HasLog(wellUid, wellboreUid, logUid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.logs[key(witsml.ObjectTypeLog, wellUid, wellboreUid, logUid)]
	return ok
}

// PutWbGeometry stores a wellbore geometry.
func (m *MockStore) PutWbGeometry(g witsml.WbGeometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := g
	cp.Sections = append([]witsml.WbGeometrySection(nil), g.Sections...)
	m.wbGeometries[key(witsml.ObjectTypeWbGeometry, g.UidWell, g.UidWellbore, g.Uid)] = &cp
}

// WbGeometry returns a stored wellbore geometry.
func (m *MockStore) WbGeometry(wellUid, wellboreUid, uid string) (witsml.WbGeometry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.wbGeometries[key(witsml.ObjectTypeWbGeometry, wellUid, wellboreUid, uid)]
	if !ok {
		return witsml.WbGeometry{}, false
	}
	return *g, true
}

// PutObject stores the identity of an object without a typed representation, such as a tubular.
func (m *MockStore) PutObject(objectType witsml.ObjectType, o witsml.ObjectOnWellbore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key(objectType, o.UidWell, o.UidWellbore, o.Uid)] = o
}

// HasObject reports whether an untyped object exists.
func (m *MockStore) HasObject(objectType witsml.ObjectType, wellUid, wellboreUid, uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key(objectType, wellUid, wellboreUid, uid)]
	return ok
}

func (m *MockStore) GetFromStore(ctx context.Context, query witsml.Query, options witsml.OptionsIn) (*witsml.ObjectSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	set := &witsml.ObjectSet{}
	switch query.ObjectType {
	case witsml.ObjectTypeLog:
		for _, k := range m.sortedLogKeys() {
			ml := m.logs[k]
			if !matches(query, ml.header.ObjectOnWellbore) {
				continue
			}
			l, err := ml.result(query, options)
			if err != nil {
				return nil, err
			}
			set.Logs = append(set.Logs, l)
		}
	case witsml.ObjectTypeWbGeometry:
		for _, g := range m.wbGeometries {
			if !matches(query, g.ObjectOnWellbore) {
				continue
			}
			if options.ReturnElements == witsml.ReturnIDOnly {
				set.WbGeometries = append(set.WbGeometries, witsml.WbGeometry{ObjectOnWellbore: g.ObjectOnWellbore})
				continue
			}
			set.WbGeometries = append(set.WbGeometries, *g)
		}
	default:
		for k, o := range m.objects {
			if k == key(query.ObjectType, o.UidWell, o.UidWellbore, o.Uid) && matches(query, o) {
				set.Objects = append(set.Objects, o)
			}
		}
	}
	return set, nil
}

func (m *MockStore) AddToStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["add"]++

	if m.AddFailure != "" {
		return witsml.Failure(m.AddFailure), nil
	}
	id := doc.Identity()
	switch {
	case doc.Log != nil:
		k := key(witsml.ObjectTypeLog, id.UidWell, id.UidWellbore, id.Uid)
		if _, exists := m.logs[k]; exists {
			return witsml.Failure(fmt.Sprintf("log %s already exists", id.Uid)), nil
		}
		ml := &mockLog{header: doc.Log.HeaderOnly()}
		if doc.Log.LogData != nil {
			if err := ml.merge(*doc.Log.LogData); err != nil {
				return witsml.Failure(err.Error()), nil
			}
		}
		m.logs[k] = ml
	case doc.WbGeometry != nil:
		cp := *doc.WbGeometry
		m.wbGeometries[key(witsml.ObjectTypeWbGeometry, id.UidWell, id.UidWellbore, id.Uid)] = &cp
	default:
		m.objects[key(doc.ObjectType, id.UidWell, id.UidWellbore, id.Uid)] = id
	}
	return witsml.Success(), nil
}

func (m *MockStore) UpdateInStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	result := m.update(doc)
	if result.IsSuccessful && m.OnUpdate != nil {
		m.OnUpdate(doc)
	}
	return result, nil
}

func (m *MockStore) update(doc witsml.Document) witsml.QueryResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++

	if m.UpdateFailure != "" {
		return witsml.Failure(m.UpdateFailure)
	}
	id := doc.Identity()
	switch {
	case doc.Log != nil:
		ml, ok := m.logs[key(witsml.ObjectTypeLog, id.UidWell, id.UidWellbore, id.Uid)]
		if !ok {
			return witsml.Failure(fmt.Sprintf("log %s not found", id.Uid))
		}
		for _, c := range doc.Log.LogCurveInfo {
			if _, exists := ml.header.CurveInfo(c.Mnemonic); !exists {
				ml.header.LogCurveInfo = append(ml.header.LogCurveInfo, c)
			}
		}
		if doc.Log.LogData != nil {
			if err := ml.merge(*doc.Log.LogData); err != nil {
				return witsml.Failure(err.Error())
			}
		}
	case doc.WbGeometry != nil:
		g, ok := m.wbGeometries[key(witsml.ObjectTypeWbGeometry, id.UidWell, id.UidWellbore, id.Uid)]
		if !ok {
			return witsml.Failure(fmt.Sprintf("wbGeometry %s not found", id.Uid))
		}
		for _, s := range doc.WbGeometry.Sections {
			replaced := false
			for i := range g.Sections {
				if g.Sections[i].Uid == s.Uid {
					g.Sections[i] = s
					replaced = true
				}
			}
			if !replaced {
				g.Sections = append(g.Sections, s)
			}
		}
	default:
		return witsml.Failure(fmt.Sprintf("update of %s is not supported", doc.ObjectType))
	}
	return witsml.Success()
}

func (m *MockStore) DeleteFromStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	if m.DeleteDelay > 0 {
		time.Sleep(m.DeleteDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++

	id := doc.Identity()
	if m.DeleteTransportErrors[id.Uid] {
		return witsml.QueryResult{}, fmt.Errorf("%w: connection reset deleting %s", witsml.ErrTransport, id.Uid)
	}
	if reason, ok := m.DeleteFailures[id.Uid]; ok {
		return witsml.Failure(reason), nil
	}

	if doc.Log != nil && len(doc.Log.LogCurveInfo) > 0 {
		return m.deleteCurves(id, doc.Log.LogCurveInfo), nil
	}

	k := key(doc.ObjectType, id.UidWell, id.UidWellbore, id.Uid)
	switch doc.ObjectType {
	case witsml.ObjectTypeLog:
		if _, ok := m.logs[k]; !ok {
			return witsml.Failure(fmt.Sprintf("log %s not found", id.Uid)), nil
		}
		delete(m.logs, k)
	case witsml.ObjectTypeWbGeometry:
		if _, ok := m.wbGeometries[k]; !ok {
			return witsml.Failure(fmt.Sprintf("wbGeometry %s not found", id.Uid)), nil
		}
		delete(m.wbGeometries, k)
	default:
		if _, ok := m.objects[k]; !ok {
			return witsml.Failure(fmt.Sprintf("%s %s not found", doc.ObjectType, id.Uid)), nil
		}
		delete(m.objects, k)
	}
	m.deleted = append(m.deleted, id.Uid)
	return witsml.Success(), nil
}

func (m *MockStore) deleteCurves(id witsml.ObjectOnWellbore, curves []witsml.LogCurveInfo) witsml.QueryResult {
	ml, ok := m.logs[key(witsml.ObjectTypeLog, id.UidWell, id.UidWellbore, id.Uid)]
	if !ok {
		return witsml.Failure(fmt.Sprintf("log %s not found", id.Uid))
	}
	drop := make(map[string]bool, len(curves))
	for _, c := range curves {
		if c.Mnemonic == ml.header.IndexCurve {
			return witsml.Failure("the index curve cannot be deleted")
		}
		drop[c.Mnemonic] = true
	}
	kept := ml.header.LogCurveInfo[:0]
	for _, c := range ml.header.LogCurveInfo {
		if !drop[c.Mnemonic] {
			kept = append(kept, c)
		}
	}
	ml.header.LogCurveInfo = kept
	for _, r := range ml.rows {
		for mnemonic := range drop {
			delete(r.values, mnemonic)
		}
	}
	m.deleted = append(m.deleted, id.Uid)
	return witsml.Success()
}

func (m *MockStore) sortedLogKeys() []string {
	keys := make([]string, 0, len(m.logs))
	for k := range m.logs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func matches(q witsml.Query, o witsml.ObjectOnWellbore) bool {
	return (q.UidWell == "" || q.UidWell == o.UidWell) &&
		(q.UidWellbore == "" || q.UidWellbore == o.UidWellbore) &&
		(q.Uid == "" || q.Uid == o.Uid)
}

func (ml *mockLog) parse(value string) (models.Index, error) {
	kind := models.IndexKindDepth
	if !ml.header.IsDepthLog() {
		kind = models.IndexKindDateTime
	}
	direction := models.Increasing
	if ml.header.IsDecreasing() {
		direction = models.Decreasing
	}
	return models.ParseIndex(kind, value, "", direction)
}

// merge upserts rows by index. Absent values leave existing values untouched.
func (ml *mockLog) merge(data witsml.LogData) error {
	if len(data.MnemonicList) == 0 {
		return nil
	}
	for _, m := range data.MnemonicList[1:] {
		if _, ok := ml.header.CurveInfo(m); !ok {
			return fmt.Errorf("mnemonic %s is not described in the log header", m)
		}
	}
	for _, raw := range data.Data {
		if len(raw) == 0 {
			continue
		}
		idx, err := ml.parse(raw[0])
		if err != nil {
			return err
		}
		pos := sort.Search(len(ml.rows), func(i int) bool {
			c, _ := ml.rows[i].index.Compare(idx)
			return c >= 0
		})
		if pos == len(ml.rows) || !equal(ml.rows[pos].index, idx) {
			ml.rows = append(ml.rows, mockRow{})
			copy(ml.rows[pos+1:], ml.rows[pos:])
			ml.rows[pos] = mockRow{index: idx, values: make(map[string]string)}
		}
		for i, v := range raw[1:] {
			if i+1 < len(data.MnemonicList) && v != "" {
				ml.rows[pos].values[data.MnemonicList[i+1]] = v
			}
		}
	}
	return nil
}

func equal(a, b models.Index) bool {
	c, err := a.Compare(b)
	return err == nil && c == 0
}

// columns returns the index curve followed by the requested curves known to the header.
func (ml *mockLog) columns(requested []string) []string {
	cols := []string{ml.header.IndexCurve}
	if len(requested) == 0 {
		requested = ml.header.Mnemonics()
	}
	for _, m := range requested {
		if m == ml.header.IndexCurve {
			continue
		}
		if _, ok := ml.header.CurveInfo(m); ok {
			cols = append(cols, m)
		}
	}
	return cols
}

func (ml *mockLog) data(cols []string, rows []mockRow) *witsml.LogData {
	data := &witsml.LogData{MnemonicList: cols}
	for _, c := range cols {
		info, _ := ml.header.CurveInfo(c)
		data.UnitList = append(data.UnitList, info.Unit)
	}
	for _, r := range rows {
		row := []string{r.index.TransportString()}
		for _, c := range cols[1:] {
			row = append(row, r.values[c])
		}
		data.Data = append(data.Data, row)
	}
	return data
}

// selectRows applies the inclusive bounds and the row cap. Rows without a value in any
// requested curve are skipped.
func (ml *mockLog) selectRows(cols []string, query witsml.Query, maxRows int) ([]mockRow, error) {
	var start, end models.Index
	var err error
	if query.StartIndex != "" {
		if start, err = ml.parse(query.StartIndex); err != nil {
			return nil, err
		}
	}
	if query.EndIndex != "" {
		if end, err = ml.parse(query.EndIndex); err != nil {
			return nil, err
		}
	}

	var out []mockRow
	for _, r := range ml.rows {
		if !start.IsZero() {
			if c, _ := r.index.Compare(start); c < 0 {
				continue
			}
		}
		if !end.IsZero() {
			if c, _ := r.index.Compare(end); c > 0 {
				break
			}
		}
		if len(cols) > 1 && !hasAny(r, cols[1:]) {
			continue
		}
		out = append(out, r)
		if maxRows > 0 && len(out) == maxRows {
			break
		}
	}
	return out, nil
}

func hasAny(r mockRow, cols []string) bool {
	for _, c := range cols {
		if r.values[c] != "" {
			return true
		}
	}
	return false
}

// headerWithRanges returns the header with start and end derived from the stored rows.
func (ml *mockLog) headerWithRanges(requested []string) witsml.Log {
	h := ml.header.HeaderOnly()
	if len(requested) > 0 {
		cols := ml.columns(requested)
		curves := make([]witsml.LogCurveInfo, 0, len(cols))
		for _, c := range cols {
			if info, ok := h.CurveInfo(c); ok {
				curves = append(curves, info)
			}
		}
		h.LogCurveInfo = curves
	}
	h.StartIndex, h.EndIndex = nil, nil
	h.StartDateTimeIndex, h.EndDateTimeIndex = "", ""
	if len(ml.rows) == 0 {
		return h
	}
	first := ml.rows[0].index.TransportString()
	last := ml.rows[len(ml.rows)-1].index.TransportString()
	if h.IsDepthLog() {
		uom := ""
		if info, ok := h.CurveInfo(h.IndexCurve); ok {
			uom = info.Unit
		}
		h.StartIndex = &witsml.Measure{Uom: uom, Value: first}
		h.EndIndex = &witsml.Measure{Uom: uom, Value: last}
	} else {
		h.StartDateTimeIndex = first
		h.EndDateTimeIndex = last
	}
	for i, c := range h.LogCurveInfo {
		h.LogCurveInfo[i] = ml.curveRange(h, c)
	}
	return h
}

// curveRange sets the min and max index of a curve from the rows holding a value for it.
func (ml *mockLog) curveRange(h witsml.Log, c witsml.LogCurveInfo) witsml.LogCurveInfo {
	c.MinIndex, c.MaxIndex = "", ""
	c.MinDateTimeIndex, c.MaxDateTimeIndex = "", ""
	var first, last string
	for _, r := range ml.rows {
		if c.Mnemonic != h.IndexCurve && r.values[c.Mnemonic] == "" {
			continue
		}
		if first == "" {
			first = r.index.TransportString()
		}
		last = r.index.TransportString()
	}
	if first == "" {
		return c
	}
	if h.IsDecreasing() {
		first, last = last, first
	}
	if h.IsDepthLog() {
		c.MinIndex, c.MaxIndex = first, last
	} else {
		c.MinDateTimeIndex, c.MaxDateTimeIndex = first, last
	}
	return c
}

func (ml *mockLog) result(query witsml.Query, options witsml.OptionsIn) (witsml.Log, error) {
	switch options.ReturnElements {
	case witsml.ReturnIDOnly:
		return witsml.Log{ObjectOnWellbore: ml.header.ObjectOnWellbore}, nil
	case witsml.ReturnHeaderOnly:
		return ml.headerWithRanges(query.Mnemonics), nil
	}

	cols := ml.columns(query.Mnemonics)
	rows, err := ml.selectRows(cols, query, options.MaxReturnNodes)
	if err != nil {
		return witsml.Log{}, err
	}
	if options.ReturnElements == witsml.ReturnDataOnly {
		return witsml.Log{ObjectOnWellbore: ml.header.ObjectOnWellbore, LogData: ml.data(cols, rows)}, nil
	}
	l := ml.headerWithRanges(query.Mnemonics)
	l.LogData = ml.data(cols, rows)
	return l, nil
}

// DepthLog builds a measured depth log whose first curve is the index curve, in metres.
func DepthLog(wellUid, wellboreUid, uid string, mnemonics []string, rows [][]string) witsml.Log {
	return newLog(wellUid, wellboreUid, uid, witsml.IndexTypeMeasuredDepth, "m", mnemonics, rows)
}

// TimeLog builds a date time log whose first curve is the index curve.
func TimeLog(wellUid, wellboreUid, uid string, mnemonics []string, rows [][]string) witsml.Log {
	return newLog(wellUid, wellboreUid, uid, witsml.IndexTypeDateTime, "s", mnemonics, rows)
}

func newLog(wellUid, wellboreUid, uid, indexType, indexUnit string, mnemonics []string, rows [][]string) witsml.Log {
	l := witsml.Log{
		ObjectOnWellbore: witsml.ObjectOnWellbore{
			UidWell: wellUid, UidWellbore: wellboreUid, Uid: uid,
			Name: uid, NameWell: wellUid, NameWellbore: wellboreUid,
		},
		IndexType:  indexType,
		Direction:  witsml.DirectionIncreasing,
		IndexCurve: mnemonics[0],
	}
	units := make([]string, len(mnemonics))
	for i, m := range mnemonics {
		unit := "unitless"
		if i == 0 {
			unit = indexUnit
		}
		units[i] = unit
		l.LogCurveInfo = append(l.LogCurveInfo, witsml.LogCurveInfo{Uid: m, Mnemonic: m, Unit: unit, TypeLogData: "double"})
	}
	if rows != nil {
		l.LogData = &witsml.LogData{MnemonicList: mnemonics, UnitList: units, Data: rows}
	}
	return l
}

var _ witsml.Client = (*MockStore)(nil)
