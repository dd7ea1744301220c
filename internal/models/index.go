package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidState is returned when a caller mixes values that can never be related, such as a
// depth index and a date time index. It signals a defect in the caller, not bad data.
var ErrInvalidState = errors.New("invalid state")

// IndexKind is the variant of an Index.
type IndexKind uint8

const (
	IndexKindDepth IndexKind = iota + 1
	IndexKindDateTime
)

func (k IndexKind) String() string {
	switch k {
	case IndexKindDepth:
		return "depth"
	case IndexKindDateTime:
		return "datetime"
	}
	return "unknown"
}

// Direction is the ordering of a log's index axis.
type Direction uint8

const (
	Increasing Direction = iota
	Decreasing
)

func (d Direction) String() string {
	if d == Decreasing {
		return "decreasing"
	}
	return "increasing"
}

// DepthEpsilon is the step taken by Next on a depth index. A log sampled finer than this step
// loses the rows lying between a page end and its Next, so paging copies such logs incompletely.
var DepthEpsilon = decimal.New(1, -6)

// Index is one position along a log's ordering axis. It is an immutable value; every operation
// returns a new Index.
type Index struct {
	kind      IndexKind
	direction Direction
	depth     decimal.Decimal
	uom       string
	time      time.Time
	open      bool
}

// NewDepthIndex returns a depth index.
func NewDepthIndex(value decimal.Decimal, uom string, direction Direction) Index {
	return Index{kind: IndexKindDepth, direction: direction, depth: value, uom: uom}
}

// NewDateTimeIndex returns a date time index. The value is kept in UTC.
func NewDateTimeIndex(value time.Time, direction Direction) Index {
	return Index{kind: IndexKindDateTime, direction: direction, time: value.UTC()}
}

// OpenEnd returns the sentinel for the unbounded end of a log. It compares after every concrete
// index of the same kind and direction.
func OpenEnd(kind IndexKind, direction Direction) Index {
	return Index{kind: kind, direction: direction, open: true}
}

// ParseDepthIndex parses a depth transport string.
func ParseDepthIndex(value, uom string, direction Direction) (Index, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Index{}, fmt.Errorf("parsing depth index %q: %w", value, err)
	}
	return NewDepthIndex(d, uom, direction), nil
}

// ParseDateTimeIndex parses a date time transport string (RFC 3339, optional fraction).
func ParseDateTimeIndex(value string, direction Direction) (Index, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return Index{}, fmt.Errorf("parsing date time index %q: %w", value, err)
	}
	return NewDateTimeIndex(t, direction), nil
}

// ParseIndex parses a transport string of the given kind.
func ParseIndex(kind IndexKind, value, uom string, direction Direction) (Index, error) {
	switch kind {
	case IndexKindDepth:
		return ParseDepthIndex(value, uom, direction)
	case IndexKindDateTime:
		return ParseDateTimeIndex(value, direction)
	}
	return Index{}, fmt.Errorf("%w: unknown index kind %d", ErrInvalidState, kind)
}

func (i Index) Kind() IndexKind { return i.kind }
func (i Index) Direction() Direction { return i.direction }
func (i Index) IsOpen() bool { return i.open }
func (i Index) IsZero() bool { return i.kind == 0 }
func (i Index) Depth() decimal.Decimal { return i.depth }
func (i Index) Uom() string { return i.uom }
func (i Index) Time() time.Time { return i.time }

// Compare orders i and other along the log direction: negative when i comes before other,
// zero when equal, positive when after. Indices of different kinds or directions cannot be
// compared and yield ErrInvalidState.
func (i Index) Compare(other Index) (int, error) {
	if i.kind == 0 || i.kind != other.kind {
		return 0, fmt.Errorf("%w: cannot compare %s index with %s index", ErrInvalidState, i.kind, other.kind)
	}
	if i.direction != other.direction {
		return 0, fmt.Errorf("%w: cannot compare %s index with %s index", ErrInvalidState, i.direction, other.direction)
	}

	switch {
	case i.open && other.open:
		return 0, nil
	case i.open:
		return 1, nil
	case other.open:
		return -1, nil
	}

	var c int
	if i.kind == IndexKindDepth {
		c = i.depth.Cmp(other.depth)
	} else {
		c = i.time.Compare(other.time)
	}
	if i.direction == Decreasing {
		c = -c
	}
	return c, nil
}

// Next returns the first position strictly after i in the log direction. It exists for
// exclusive paging boundaries; for date time logs it is not a sampling interval.
func (i Index) Next() Index {
	if i.open {
		return i
	}
	next := i
	switch i.kind {
	case IndexKindDepth:
		if i.direction == Decreasing {
			next.depth = i.depth.Sub(DepthEpsilon)
		} else {
			next.depth = i.depth.Add(DepthEpsilon)
		}
	case IndexKindDateTime:
		if i.direction == Decreasing {
			next.time = i.time.Add(-time.Nanosecond)
		} else {
			next.time = i.time.Add(time.Nanosecond)
		}
	}
	return next
}

// IsAfterOrAtEnd reports whether i has reached end.
func (i Index) IsAfterOrAtEnd(end Index) (bool, error) {
	c, err := i.Compare(end)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}

// TransportString renders the index for a store query. The open end renders as an empty
// string, which stores read as an unbounded range.
func (i Index) TransportString() string {
	if i.open {
		return ""
	}
	switch i.kind {
	case IndexKindDepth:
		return i.depth.String()
	case IndexKindDateTime:
		return i.time.Format(time.RFC3339Nano)
	}
	return ""
}

func (i Index) String() string {
	switch {
	case i.kind == 0:
		return "<none>"
	case i.open:
		return "open end"
	case i.kind == IndexKindDepth && i.uom != "":
		return i.depth.String() + " " + i.uom
	}
	return i.TransportString()
}
