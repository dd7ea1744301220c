// Package store provides a witsml.Client backed by a local DuckDB file, and the provider that
// maps configured server names to store clients.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string
	// MaxQueries bounds concurrent reads.
	MaxQueries int
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = 4
	}
	if o.MemoryLimit == "" {
		o.MemoryLimit = "1GB"
	}
	if o.MaxQueries <= 0 {
		o.MaxQueries = 3
	}
	return o
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS objects (
		object_type  VARCHAR NOT NULL,
		uid_well     VARCHAR NOT NULL,
		uid_wellbore VARCHAR NOT NULL,
		uid          VARCHAR NOT NULL,
		name         VARCHAR,
		payload      BLOB NOT NULL,
		PRIMARY KEY (object_type, uid_well, uid_wellbore, uid)
	)`,
	`CREATE TABLE IF NOT EXISTS log_values (
		uid_well     VARCHAR NOT NULL,
		uid_wellbore VARCHAR NOT NULL,
		uid_log      VARCHAR NOT NULL,
		mnemonic     VARCHAR NOT NULL,
		idx          VARCHAR NOT NULL,
		depth        DOUBLE NOT NULL,
		time_ns      BIGINT NOT NULL,
		value        VARCHAR NOT NULL,
		PRIMARY KEY (uid_well, uid_wellbore, uid_log, mnemonic, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS log_values_staging (
		uid_well     VARCHAR NOT NULL,
		uid_wellbore VARCHAR NOT NULL,
		uid_log      VARCHAR NOT NULL,
		mnemonic     VARCHAR NOT NULL,
		idx          VARCHAR NOT NULL,
		depth        DOUBLE NOT NULL,
		time_ns      BIGINT NOT NULL,
		value        VARCHAR NOT NULL
	)`,
}

// DuckStore keeps wellbore objects and log values in a DuckDB file. Object headers are stored
// as msgpack payloads; log data is stored one value per row so curves can be added and deleted
// without rewriting the log.
type DuckStore struct {
	db     *sql.DB
	dbPath string
	url    string
	log    *log.Logger

	// Writes share the staging table and are serialized.
	writeMu sync.Mutex

	// Semaphore to limit concurrent queries
	querySem chan struct{}
}

// OpenDuckStore opens or creates the store file at dbPath. url is the identity reported in
// results and refresh actions.
func OpenDuckStore(dbPath, url string, opts Options) (*DuckStore, error) {
	opts = opts.withDefaults()
	logger := logging.New("DuckStore")
	logger.Infof("Opening database at: %s", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			logger.Debugf("Executing: %s", pragma)
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	// Leftovers of an interrupted write.
	if _, err := db.Exec("DELETE FROM log_values_staging"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reset staging table: %w", err)
	}

	return &DuckStore{
		db:       db,
		dbPath:   dbPath,
		url:      url,
		log:      logger,
		querySem: make(chan struct{}, opts.MaxQueries),
	}, nil
}

func (ds *DuckStore) ServerUrl() string {
	return ds.url
}

// Path returns the database file path.
func (ds *DuckStore) Path() string {
	return ds.dbPath
}

// Close closes the database.
func (ds *DuckStore) Close() error {
	return ds.db.Close()
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", witsml.ErrTransport, op, err)
}

func (ds *DuckStore) acquire(ctx context.Context) (func(), error) {
	select {
	case ds.querySem <- struct{}{}:
		return func() { <-ds.querySem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ds *DuckStore) GetFromStore(ctx context.Context, query witsml.Query, options witsml.OptionsIn) (*witsml.ObjectSet, error) {
	release, err := ds.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := ds.selectObjects(ctx, ds.db, query)
	if err != nil {
		return nil, err
	}

	set := &witsml.ObjectSet{}
	for _, row := range rows {
		switch query.ObjectType {
		case witsml.ObjectTypeLog:
			l, err := ds.logResult(ctx, row, query, options)
			if err != nil {
				return nil, err
			}
			set.Logs = append(set.Logs, l)
		case witsml.ObjectTypeWbGeometry:
			var g witsml.WbGeometry
			if err := msgpack.Unmarshal(row.payload, &g); err != nil {
				return nil, transportError("decode wbGeometry", err)
			}
			if options.ReturnElements == witsml.ReturnIDOnly {
				g.Sections = nil
			}
			set.WbGeometries = append(set.WbGeometries, g)
		default:
			set.Objects = append(set.Objects, row.identity)
		}
	}
	return set, nil
}

func (ds *DuckStore) logResult(ctx context.Context, row objectRow, query witsml.Query, options witsml.OptionsIn) (witsml.Log, error) {
	if options.ReturnElements == witsml.ReturnIDOnly {
		return witsml.Log{ObjectOnWellbore: row.identity}, nil
	}
	var header witsml.Log
	if err := msgpack.Unmarshal(row.payload, &header); err != nil {
		return witsml.Log{}, transportError("decode log", err)
	}
	if options.ReturnElements == witsml.ReturnHeaderOnly {
		return ds.withRanges(ctx, header, query.Mnemonics)
	}

	data, err := ds.readData(ctx, header, query, options.MaxReturnNodes)
	if err != nil {
		return witsml.Log{}, err
	}
	if options.ReturnElements == witsml.ReturnDataOnly {
		return witsml.Log{ObjectOnWellbore: header.ObjectOnWellbore, LogData: data}, nil
	}
	l, err := ds.withRanges(ctx, header, query.Mnemonics)
	if err != nil {
		return witsml.Log{}, err
	}
	l.LogData = data
	return l, nil
}

func (ds *DuckStore) AddToStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	if !doc.ObjectType.Valid() {
		return witsml.Failure(fmt.Sprintf("unknown object type %q", doc.ObjectType)), nil
	}
	id := doc.Identity()
	if id.UidWell == "" || id.UidWellbore == "" || id.Uid == "" {
		return witsml.Failure("uidWell, uidWellbore and uid are required"), nil
	}

	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	existing, err := ds.selectObjects(ctx, ds.db, witsml.GetObjectByUid(doc.ObjectType, id.UidWell, id.UidWellbore, id.Uid))
	if err != nil {
		return witsml.QueryResult{}, err
	}
	if len(existing) > 0 {
		return witsml.Failure(fmt.Sprintf("%s %s already exists", doc.ObjectType, id.Uid)), nil
	}

	switch {
	case doc.Log != nil:
		header := storedHeader(*doc.Log)
		if header.IndexCurve == "" {
			return witsml.Failure("a log must name its index curve"), nil
		}
		if _, ok := header.CurveInfo(header.IndexCurve); !ok {
			return witsml.Failure(fmt.Sprintf("index curve %s is not described in the log header", header.IndexCurve)), nil
		}
		var values []logValue
		if doc.Log.LogData != nil {
			if values, err = prepareValues(header, *doc.Log.LogData); err != nil {
				return witsml.Failure(err.Error()), nil
			}
		}
		if err := ds.putObject(ctx, witsml.ObjectTypeLog, header.ObjectOnWellbore, header); err != nil {
			return witsml.QueryResult{}, err
		}
		if err := ds.writeValues(ctx, values); err != nil {
			return witsml.QueryResult{}, err
		}
		ds.log.Infof("Added log %s with %d values", id.Uid, len(values))
	case doc.WbGeometry != nil:
		if err := ds.putObject(ctx, witsml.ObjectTypeWbGeometry, id, doc.WbGeometry); err != nil {
			return witsml.QueryResult{}, err
		}
	default:
		if err := ds.putObject(ctx, doc.ObjectType, id, id); err != nil {
			return witsml.QueryResult{}, err
		}
	}
	return witsml.Success(), nil
}

func (ds *DuckStore) UpdateInStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	id := doc.Identity()
	switch {
	case doc.Log != nil:
		header, found, err := ds.loadLog(ctx, id)
		if err != nil {
			return witsml.QueryResult{}, err
		}
		if !found {
			return witsml.Failure(fmt.Sprintf("log %s not found", id.Uid)), nil
		}
		added := 0
		for _, c := range doc.Log.LogCurveInfo {
			if _, exists := header.CurveInfo(c.Mnemonic); !exists {
				header.LogCurveInfo = append(header.LogCurveInfo, clearRange(c))
				added++
			}
		}
		var values []logValue
		if doc.Log.LogData != nil {
			if values, err = prepareValues(header, *doc.Log.LogData); err != nil {
				return witsml.Failure(err.Error()), nil
			}
		}
		if added > 0 {
			if err := ds.putObject(ctx, witsml.ObjectTypeLog, header.ObjectOnWellbore, header); err != nil {
				return witsml.QueryResult{}, err
			}
		}
		if err := ds.writeValues(ctx, values); err != nil {
			return witsml.QueryResult{}, err
		}
		ds.log.Debugf("Updated log %s: %d curves added, %d values written", id.Uid, added, len(values))
	case doc.WbGeometry != nil:
		rows, err := ds.selectObjects(ctx, ds.db, witsml.GetObjectByUid(witsml.ObjectTypeWbGeometry, id.UidWell, id.UidWellbore, id.Uid))
		if err != nil {
			return witsml.QueryResult{}, err
		}
		if len(rows) == 0 {
			return witsml.Failure(fmt.Sprintf("wbGeometry %s not found", id.Uid)), nil
		}
		var g witsml.WbGeometry
		if err := msgpack.Unmarshal(rows[0].payload, &g); err != nil {
			return witsml.QueryResult{}, transportError("decode wbGeometry", err)
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
		if err := ds.putObject(ctx, witsml.ObjectTypeWbGeometry, g.ObjectOnWellbore, g); err != nil {
			return witsml.QueryResult{}, err
		}
	default:
		return witsml.Failure(fmt.Sprintf("update of %s is not supported", doc.ObjectType)), nil
	}
	return witsml.Success(), nil
}

func (ds *DuckStore) DeleteFromStore(ctx context.Context, doc witsml.Document) (witsml.QueryResult, error) {
	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	id := doc.Identity()
	if doc.Log != nil && len(doc.Log.LogCurveInfo) > 0 {
		return ds.deleteCurves(ctx, id, doc.Log.LogCurveInfo)
	}

	res, err := ds.db.ExecContext(ctx,
		"DELETE FROM objects WHERE object_type = ? AND uid_well = ? AND uid_wellbore = ? AND uid = ?",
		string(doc.ObjectType), id.UidWell, id.UidWellbore, id.Uid)
	if err != nil {
		return witsml.QueryResult{}, transportError("delete object", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return witsml.Failure(fmt.Sprintf("%s %s not found", doc.ObjectType, id.Uid)), nil
	}
	if doc.ObjectType == witsml.ObjectTypeLog {
		if _, err := ds.db.ExecContext(ctx,
			"DELETE FROM log_values WHERE uid_well = ? AND uid_wellbore = ? AND uid_log = ?",
			id.UidWell, id.UidWellbore, id.Uid); err != nil {
			return witsml.QueryResult{}, transportError("delete log values", err)
		}
	}
	ds.log.Infof("Deleted %s %s", doc.ObjectType, id.Uid)
	return witsml.Success(), nil
}

func (ds *DuckStore) deleteCurves(ctx context.Context, id witsml.ObjectOnWellbore, curves []witsml.LogCurveInfo) (witsml.QueryResult, error) {
	header, found, err := ds.loadLog(ctx, id)
	if err != nil {
		return witsml.QueryResult{}, err
	}
	if !found {
		return witsml.Failure(fmt.Sprintf("log %s not found", id.Uid)), nil
	}

	drop := make(map[string]bool, len(curves))
	mnemonics := make([]string, 0, len(curves))
	for _, c := range curves {
		if c.Mnemonic == header.IndexCurve {
			return witsml.Failure("the index curve cannot be deleted"), nil
		}
		drop[c.Mnemonic] = true
		mnemonics = append(mnemonics, c.Mnemonic)
	}
	kept := header.LogCurveInfo[:0]
	for _, c := range header.LogCurveInfo {
		if !drop[c.Mnemonic] {
			kept = append(kept, c)
		}
	}
	header.LogCurveInfo = kept

	if err := ds.putObject(ctx, witsml.ObjectTypeLog, header.ObjectOnWellbore, header); err != nil {
		return witsml.QueryResult{}, err
	}
	in, args := inClause(mnemonics)
	args = append([]any{id.UidWell, id.UidWellbore, id.Uid}, args...)
	if _, err := ds.db.ExecContext(ctx,
		"DELETE FROM log_values WHERE uid_well = ? AND uid_wellbore = ? AND uid_log = ? AND mnemonic IN "+in,
		args...); err != nil {
		return witsml.QueryResult{}, transportError("delete curve values", err)
	}
	ds.log.Infof("Deleted curves %s from log %s", strings.Join(mnemonics, ", "), id.Uid)
	return witsml.Success(), nil
}

type objectRow struct {
	identity witsml.ObjectOnWellbore
	payload  []byte
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// selectObjects returns the objects matching the query identity. Empty identity fields match
// everything at that level.
func (ds *DuckStore) selectObjects(ctx context.Context, q queryer, query witsml.Query) ([]objectRow, error) {
	sqlText := `SELECT uid_well, uid_wellbore, uid, name, payload FROM objects
		WHERE object_type = ?
		  AND (? = '' OR uid_well = ?)
		  AND (? = '' OR uid_wellbore = ?)
		  AND (? = '' OR uid = ?)
		ORDER BY uid_well, uid_wellbore, uid`
	rows, err := q.QueryContext(ctx, sqlText, string(query.ObjectType),
		query.UidWell, query.UidWell, query.UidWellbore, query.UidWellbore, query.Uid, query.Uid)
	if err != nil {
		return nil, transportError("select objects", err)
	}
	defer rows.Close()

	var out []objectRow
	for rows.Next() {
		var r objectRow
		var name sql.NullString
		if err := rows.Scan(&r.identity.UidWell, &r.identity.UidWellbore, &r.identity.Uid, &name, &r.payload); err != nil {
			return nil, transportError("scan object", err)
		}
		r.identity.Name = name.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, transportError("select objects", err)
	}
	return out, nil
}

func (ds *DuckStore) loadLog(ctx context.Context, id witsml.ObjectOnWellbore) (witsml.Log, bool, error) {
	rows, err := ds.selectObjects(ctx, ds.db, witsml.GetLogByUid(id.UidWell, id.UidWellbore, id.Uid))
	if err != nil || len(rows) == 0 {
		return witsml.Log{}, false, err
	}
	var header witsml.Log
	if err := msgpack.Unmarshal(rows[0].payload, &header); err != nil {
		return witsml.Log{}, false, transportError("decode log", err)
	}
	return header, true, nil
}

func (ds *DuckStore) putObject(ctx context.Context, objectType witsml.ObjectType, id witsml.ObjectOnWellbore, payload any) error {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", objectType, err)
	}
	if _, err := ds.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO objects VALUES (?, ?, ?, ?, ?, ?)",
		string(objectType), id.UidWell, id.UidWellbore, id.Uid, id.Name, data); err != nil {
		return transportError("write object", err)
	}
	return nil
}

// writeValues appends values to the staging table with the Appender API and merges them into
// log_values in one statement, so rows with an existing index are overwritten.
func (ds *DuckStore) writeValues(ctx context.Context, values []logValue) error {
	if len(values) == 0 {
		return nil
	}

	conn, err := ds.db.Conn(ctx)
	if err != nil {
		return transportError("get connection", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return errors.New("failed to cast to duckdb.Conn")
		}
		appender, err := duckdb.NewAppenderFromConn(dConn, "", "log_values_staging")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, v := range values {
			if err := appender.AppendRow(v.uidWell, v.uidWellbore, v.uidLog, v.mnemonic, v.idx, v.depth, v.timeNs, v.value); err != nil {
				return fmt.Errorf("failed to append value %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return transportError("append values", err)
	}

	if _, err := conn.ExecContext(ctx, "INSERT OR REPLACE INTO log_values SELECT * FROM log_values_staging"); err != nil {
		conn.ExecContext(context.WithoutCancel(ctx), "DELETE FROM log_values_staging")
		return transportError("merge values", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM log_values_staging"); err != nil {
		return transportError("clear staging", err)
	}
	return nil
}

func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ") + ")", args
}

var _ witsml.Client = (*DuckStore)(nil)
