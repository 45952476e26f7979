package snowpager

import (
	"fmt"

	"gorm.io/gorm"
)

// Cursor is an optional exclusive upper bound on IDs: a page requested with a
// cursor holds only items older than it. The zero value is the empty cursor,
// which starts from the newest item of the partition.
type Cursor struct {
	maxID ID
	set   bool
}

// NewCursor returns a cursor admitting only IDs strictly below maxID.
func NewCursor(maxID ID) Cursor {
	return Cursor{
		maxID: maxID,
		set:   true,
	}
}

// DecodeCursor parses the form produced by Cursor.String. An empty string
// decodes to the empty cursor.
func DecodeCursor(s string) (Cursor, error) {
	if len(s) == 0 {
		return Cursor{}, nil
	}

	id, err := ParseID(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("failed to decode cursor: %w", err)
	}

	return NewCursor(id), nil
}

// String - implements fmt.Stringer. The empty cursor is "".
func (c Cursor) String() string {
	if !c.set {
		return ""
	}

	return c.maxID.String()
}

// IsEmpty reports whether the cursor is unbounded.
func (c Cursor) IsEmpty() bool {
	return !c.set
}

// MaxID returns the exclusive bound and whether it is set.
func (c Cursor) MaxID() (ID, bool) {
	return c.maxID, c.set
}

// Admits reports whether an item with the given id belongs after the cursor.
func (c Cursor) Admits(id ID) bool {
	return !c.set || id < c.maxID
}

// MarshalText - implements encoding.TextMarshaler.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText - implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(text []byte) error {
	decoded, err := DecodeCursor(string(text))
	if err != nil {
		return err
	}

	*c = decoded

	return nil
}

// Apply adds "column < maxID" to a gorm query. The empty cursor leaves the
// query as is.
func (c Cursor) Apply(db *gorm.DB, column string) *gorm.DB {
	if !c.set {
		return db
	}

	return db.Clauses(condition{
		Column:   column,
		Operator: DirectionDESC.ForOperator(),
		Value:    c.maxID,
	}.toGORMExpression())
}

var _ fmt.Stringer = Cursor{}

// Window is one page of a partition: at most AppliedLimit items, newest first.
type Window[T any] struct {
	// Items result elements, ordered by descending ID.
	Items []T
	// AppliedLimit effective page size used for the query.
	AppliedLimit int
	// PrevPage cursor of the next older page. Empty when the window already
	// holds the oldest item of the partition.
	PrevPage Cursor
}

// HasOlder reports whether an older page exists.
func (w *Window[T]) HasOlder() bool {
	return w != nil && !w.PrevPage.IsEmpty()
}
