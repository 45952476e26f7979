package snowpager

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// Bit layout of an ID, most significant bit first:
//
//	[1 unused][41 timestamp ms][10 node][12 sequence]
//
// The unused sign bit keeps every ID representable as a signed BIGINT.
const (
	timestampBits = 41
	nodeBits      = 10
	sequenceBits  = 12

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits

	MaxNodeID    = 1<<nodeBits - 1
	maxSequence  = 1<<sequenceBits - 1
	maxTimestamp = 1<<timestampBits - 1
)

// ID is a 64-bit, time-ordered unique identifier. A larger ID was created
// later, so IDs double as the chronological sort key of the records they stamp.
//
// Outside of this package an ID is an opaque integer.
type ID uint64

// ParseID parses the decimal form produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%s': %w", s, err)
	}

	if v > math.MaxInt64 {
		return 0, fmt.Errorf("invalid id '%s': out of range", s)
	}

	return ID(v), nil
}

// String - implements fmt.Stringer.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Int64 returns the ID as a signed integer, the way it is stored in SQL columns.
func (id ID) Int64() int64 {
	return int64(id)
}

// MarshalText - implements encoding.TextMarshaler. JSON carries IDs as
// decimal strings, which keeps them intact for clients without 64-bit integers.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// Value - implements driver.Valuer.
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Scan - implements sql.Scanner.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("cannot scan negative value %d into id", v)
		}
		*id = ID(v)
	case int:
		return id.Scan(int64(v))
	case []byte:
		return id.UnmarshalText(v)
	case string:
		return id.UnmarshalText([]byte(v))
	case nil:
		*id = 0
	default:
		return fmt.Errorf("cannot scan %T into id", src)
	}

	return nil
}

// decompose splits the ID into its bit fields. The layout is internal to the
// package, callers never see it.
func (id ID) decompose() (ms int64, node int64, seq int64) {
	ms = int64(id>>timestampShift) & maxTimestamp
	node = int64(id>>nodeShift) & MaxNodeID
	seq = int64(id) & maxSequence

	return ms, node, seq
}

func composeID(ms int64, node int64, seq int64) ID {
	return ID(ms)<<timestampShift | ID(node)<<nodeShift | ID(seq)
}

// OrderedID - implements OrderedItem, so bare IDs can be paginated.
func (id ID) OrderedID() ID {
	return id
}
