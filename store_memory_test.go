package snowpager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_ReadOrdered(t *testing.T) {
	store := newPartition(t, 10, 50, 30, 20, 40)
	ctx := context.Background()

	tests := []struct {
		name   string
		before Cursor
		limit  int
		want   []ID
	}{
		{"unbounded", Cursor{}, 10, []ID{50, 40, 30, 20, 10}},
		{"limited", Cursor{}, 2, []ID{50, 40}},
		{"exclusive bound", NewCursor(30), 10, []ID{20, 10}},
		{"bound between ids", NewCursor(31), 1, []ID{30}},
		{"bound at zero", NewCursor(0), 10, nil},
		{"bound below everything", NewCursor(10), 10, []ID{}},
		{"zero limit", Cursor{}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := store.ReadOrdered(ctx, 7, tt.before, tt.limit)
			require.NoError(t, err)
			if tt.want == nil {
				require.Empty(t, items)
				return
			}
			require.Equal(t, tt.want, statusIDs(items))
		})
	}

	items, err := store.ReadOrdered(ctx, 8, Cursor{}, 10)
	require.NoError(t, err)
	require.Empty(t, items, "unknown partition")
}

func Test_MemoryStore_PartitionsAreIsolated(t *testing.T) {
	store := NewMemoryStore[string, ID]()
	require.NoError(t, store.Insert("alice", 5))
	require.NoError(t, store.Insert("bob", 3))
	require.NoError(t, store.Insert("bob", 9))

	bounds, found, err := store.ReadBounds(context.Background(), "bob")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, Bounds{Min: 3, Max: 9}, bounds)

	items, err := store.ReadOrdered(context.Background(), "alice", Cursor{}, 10)
	require.NoError(t, err)
	require.Equal(t, []ID{5}, items)
}

func Test_MemoryStore_InsertDuplicate(t *testing.T) {
	store := newPartition(t, 10)

	err := store.Insert(7, status{ID: 10})
	require.ErrorIs(t, err, ErrDuplicateID)
	require.NoError(t, store.Insert(8, status{ID: 10}), "ids are unique per partition")
}

func Test_MemoryStore_Remove(t *testing.T) {
	store := newPartition(t, 10, 20, 30)
	ctx := context.Background()

	assert.True(t, store.Remove(7, 10))
	assert.False(t, store.Remove(7, 10))
	assert.False(t, store.Remove(9, 10))

	bounds, found, err := store.ReadBounds(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, Bounds{Min: 20, Max: 30}, bounds)

	// The window that now holds the oldest item must not announce an older page.
	window, err := NewPager[int64, status](store).Page(ctx, 7, NewCursor(30), 10)
	require.NoError(t, err)
	require.Equal(t, []ID{20}, statusIDs(window.Items))
	require.False(t, window.HasOlder())

	assert.True(t, store.Remove(7, 20))
	assert.True(t, store.Remove(7, 30))
	_, found, err = store.ReadBounds(ctx, 7)
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, store.Len(7))
}

func Test_MemoryStore_CancelledContext(t *testing.T) {
	store := newPartition(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ReadOrdered(ctx, 7, Cursor{}, 10)
	require.ErrorIs(t, err, context.Canceled)

	_, _, err = store.ReadBounds(ctx, 7)
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewPager[int64, status](store).Page(ctx, 7, Cursor{}, 10)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}
