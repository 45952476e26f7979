package snowpager

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// MemoryStore is an in-process Store. Each partition keeps its IDs in a
// roaring bitmap, so a window is located by rank and read back by select
// without scanning the partition.
//
// MemoryStore is safe for concurrent use.
type MemoryStore[K comparable, T OrderedItem] struct {
	mu         sync.RWMutex
	partitions map[K]*memoryPartition[T]
}

type memoryPartition[T OrderedItem] struct {
	ids   *roaring64.Bitmap
	items map[ID]T
}

func NewMemoryStore[K comparable, T OrderedItem]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		partitions: make(map[K]*memoryPartition[T]),
	}
}

// Insert adds item to the partition. It fails with ErrDuplicateID when the
// partition already holds the item's ID.
func (s *MemoryStore[K, T]) Insert(partition K, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = &memoryPartition[T]{
			ids:   roaring64.New(),
			items: make(map[ID]T),
		}
		s.partitions[partition] = p
	}

	id := item.OrderedID()
	if !p.ids.CheckedAdd(uint64(id)) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	p.items[id] = item

	return nil
}

// Remove deletes the item with the given ID. It reports whether it existed.
func (s *MemoryStore[K, T]) Remove(partition K, id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok || !p.ids.CheckedRemove(uint64(id)) {
		return false
	}
	delete(p.items, id)

	if p.ids.IsEmpty() {
		delete(s.partitions, partition)
	}

	return true
}

// Len returns the number of items in the partition.
func (s *MemoryStore[K, T]) Len(partition K) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok {
		return 0
	}

	return int(p.ids.GetCardinality())
}

// ReadOrdered - implements Store.
func (s *MemoryStore[K, T]) ReadOrdered(ctx context.Context, partition K, before Cursor, limit int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok || limit <= 0 {
		return nil, nil
	}

	// Number of IDs admitted by the cursor. They occupy ranks [0, admitted).
	admitted := p.ids.GetCardinality()
	if maxID, set := before.MaxID(); set {
		if maxID == 0 {
			return nil, nil
		}
		admitted = p.ids.Rank(uint64(maxID) - 1)
	}

	ret := make([]T, 0, min(uint64(limit), admitted))
	for rank := admitted; rank > 0 && len(ret) < limit; rank-- {
		v, err := p.ids.Select(rank - 1)
		if err != nil {
			return nil, fmt.Errorf("cannot select rank %d: %w", rank-1, err)
		}
		ret = append(ret, p.items[ID(v)])
	}

	return ret, nil
}

// ReadBounds - implements Store.
func (s *MemoryStore[K, T]) ReadBounds(ctx context.Context, partition K) (Bounds, bool, error) {
	if err := ctx.Err(); err != nil {
		return Bounds{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok || p.ids.IsEmpty() {
		return Bounds{}, false, nil
	}

	return Bounds{
		Min: ID(p.ids.Minimum()),
		Max: ID(p.ids.Maximum()),
	}, true, nil
}

var _ Store[string, ID] = (*MemoryStore[string, ID])(nil)
