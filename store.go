package snowpager

import "context"

// OrderedItem is a record keyed by an ID. The pager only reads the ID, the
// rest of the item is opaque to it.
type OrderedItem interface {
	OrderedID() ID
}

// Bounds is the smallest and the largest ID present in a partition.
type Bounds struct {
	Min ID
	Max ID
}

// Store is the ordered collection the Pager reads from. A partition is the
// subset of the collection owned by one entity, e.g. one account's statuses.
type Store[K any, T OrderedItem] interface {
	// ReadOrdered returns at most limit items of the partition admitted by
	// before (ID < before when set), ordered by descending ID.
	ReadOrdered(ctx context.Context, partition K, before Cursor, limit int) ([]T, error)
	// ReadBounds returns the ID bounds of the partition. found is false when
	// the partition is empty.
	ReadBounds(ctx context.Context, partition K) (bounds Bounds, found bool, err error)
}
