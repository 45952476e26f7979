package snowpager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store over Redis. Each partition is a sorted set of IDs plus
// a hash of JSON payloads keyed by the same members.
//
// All set members share score 0 and are zero-padded to 20 digits, so the
// lexicographic order of the set is the numeric order of the IDs. Windows are
// read with ZREVRANGEBYLEX.
type RedisStore[K any, T OrderedItem] struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore returns a store whose keys start with prefix.
func NewRedisStore[K any, T OrderedItem](rdb redis.Cmdable, prefix string) (*RedisStore[K, T], error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	if prefix == "" {
		return nil, fmt.Errorf("redis key prefix is empty")
	}

	return &RedisStore[K, T]{
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

// insertScript indexes an ID and stores its payload in one step. It checks
// for a duplicate before writing anything, so a failing call leaves neither
// key changed.
//
// KEYS[1] ids sorted set, KEYS[2] payload hash, ARGV[1] member, ARGV[2] payload.
const insertScript = `
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	return 0
end
redis.call('ZADD', KEYS[1], 0, ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return 1
`

// Insert adds item to the partition. The ID and its payload are written
// together by a server-side script: readers never see one without the other,
// and a failed insert can be retried. It fails with ErrDuplicateID when the
// partition already holds the item's ID.
func (s *RedisStore[K, T]) Insert(ctx context.Context, partition K, item T) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cannot marshal item: %w", err)
	}

	id := item.OrderedID()
	idsKey, itemsKey := s.keys(partition)

	created, err := s.rdb.Eval(ctx, insertScript, []string{idsKey, itemsKey}, redisMember(id), string(payload)).Int()
	if err != nil {
		return fmt.Errorf("cannot insert item %s: %w", id, err)
	} else if created == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	return nil
}

// ReadOrdered - implements Store.
func (s *RedisStore[K, T]) ReadOrdered(ctx context.Context, partition K, before Cursor, limit int) ([]T, error) {
	if limit <= 0 {
		return nil, nil
	}

	idsKey, itemsKey := s.keys(partition)

	upper := "+"
	if maxID, set := before.MaxID(); set {
		upper = "(" + redisMember(maxID)
	}

	members, err := s.rdb.ZRevRangeByLex(ctx, idsKey, &redis.ZRangeBy{
		Min:   "-",
		Max:   upper,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot read ids: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	payloads, err := s.rdb.HMGet(ctx, itemsKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot read payloads: %w", err)
	}

	ret := make([]T, 0, len(payloads))
	for i, raw := range payloads {
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("payload of id %s is missing", members[i])
		}

		var item T
		if err = json.Unmarshal([]byte(str), &item); err != nil {
			return nil, fmt.Errorf("cannot unmarshal payload of id %s: %w", members[i], err)
		}
		ret = append(ret, item)
	}

	return ret, nil
}

// ReadBounds - implements Store.
func (s *RedisStore[K, T]) ReadBounds(ctx context.Context, partition K) (Bounds, bool, error) {
	idsKey, _ := s.keys(partition)

	lowest, err := s.rdb.ZRange(ctx, idsKey, 0, 0).Result()
	if err != nil {
		return Bounds{}, false, fmt.Errorf("cannot read lowest id: %w", err)
	} else if len(lowest) == 0 {
		return Bounds{}, false, nil
	}

	highest, err := s.rdb.ZRange(ctx, idsKey, -1, -1).Result()
	if err != nil {
		return Bounds{}, false, fmt.Errorf("cannot read highest id: %w", err)
	} else if len(highest) == 0 {
		return Bounds{}, false, nil
	}

	minID, err := ParseID(lowest[0])
	if err != nil {
		return Bounds{}, false, err
	}

	maxID, err := ParseID(highest[0])
	if err != nil {
		return Bounds{}, false, err
	}

	return Bounds{Min: minID, Max: maxID}, true, nil
}

func (s *RedisStore[K, T]) keys(partition K) (ids string, items string) {
	base := fmt.Sprintf("%s:%v", s.prefix, partition)
	return base + ":ids", base + ":items"
}

// redisMember renders id as a fixed-width member, 20 digits fit any uint64.
func redisMember(id ID) string {
	return fmt.Sprintf("%020d", uint64(id))
}
