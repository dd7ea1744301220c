package witsml

// Query selects objects in a store. Empty identity fields match everything at that level.
type Query struct {
	ObjectType  ObjectType
	UidWell     string
	UidWellbore string
	Uid         string
	// Mnemonics restricts log curves and data columns. Empty selects all curves.
	Mnemonics []string
	// StartIndex and EndIndex bound log data rows, inclusive, as transport strings.
	// An empty bound is open.
	StartIndex string
	EndIndex   string
}

// Document is the payload of an add, update or delete.
type Document struct {
	ObjectType ObjectType
	Object     ObjectOnWellbore
	Log        *Log
	WbGeometry *WbGeometry
}

// Identity returns the identity of the addressed object whatever its type.
func (d Document) Identity() ObjectOnWellbore {
	switch {
	case d.Log != nil:
		return d.Log.ObjectOnWellbore
	case d.WbGeometry != nil:
		return d.WbGeometry.ObjectOnWellbore
	}
	return d.Object
}

// ObjectSet is the typed result of a get.
type ObjectSet struct {
	Logs         []Log
	WbGeometries []WbGeometry
	// Objects holds identities for object types without a typed representation.
	Objects []ObjectOnWellbore
}

// Len returns the number of objects in the set.
func (s *ObjectSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Logs) + len(s.WbGeometries) + len(s.Objects)
}

// FirstLog returns the first log in the set.
func (s *ObjectSet) FirstLog() (*Log, bool) {
	if s == nil || len(s.Logs) == 0 {
		return nil, false
	}
	return &s.Logs[0], true
}
