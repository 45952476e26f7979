package snowpager

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// RawPageRequest is intended for request binding. For query strings:
//
//	GET /users/alice/statuses?max_id=123&limit=10
type RawPageRequest struct {
	// Limit - maximum number of records to return in the response.
	Limit int `json:"limit" form:"limit"`
	// MaxID - exclusive upper bound obtained from Window.PrevPage. If empty,
	// the newest page is returned.
	MaxID string `json:"max_id" form:"max_id"`
}

// Decode validates MaxID and normalizes Limit.
func (r RawPageRequest) Decode() (Cursor, int, error) {
	cursor, err := DecodeCursor(r.MaxID)
	if err != nil {
		return Cursor{}, 0, err
	}

	return cursor, NormalizeLimit(r.Limit), nil
}

// Pager walks the partitions of a Store backwards in fixed-size windows.
// It holds no mutable state and is safe for concurrent use.
type Pager[K any, T OrderedItem] struct {
	store    Store[K, T]
	maxLimit int
	logger   logrus.FieldLogger
}

type pagerOptions struct {
	maxLimit int
	logger   logrus.FieldLogger
}

type PagerOption func(*pagerOptions)

// WithMaxLimit caps the page size. Non-positive values are ignored.
func WithMaxLimit(limit int) PagerOption {
	return func(o *pagerOptions) {
		if limit > 0 {
			o.maxLimit = limit
		}
	}
}

func WithPagerLogger(logger logrus.FieldLogger) PagerOption {
	return func(o *pagerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewPager[K any, T OrderedItem](store Store[K, T], opts ...PagerOption) *Pager[K, T] {
	o := pagerOptions{
		maxLimit: MaxLimit,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pager[K, T]{
		store:    store,
		maxLimit: o.maxLimit,
		logger:   o.logger,
	}
}

// Page returns the window of the partition right below cursor.
//
// Whether an older page exists is decided by comparing the oldest ID of the
// window with the partition's minimum ID rather than by counting items: a
// window of exactly pageSize items may well be the last one.
//
// Store errors are returned wrapped in ErrStorageUnavailable. A store that
// breaks its ordering contract makes Page panic with ErrInvariantViolation.
func (p *Pager[K, T]) Page(ctx context.Context, partition K, cursor Cursor, pageSize int) (*Window[T], error) {
	limit := NormalizeLimitMax(pageSize, p.maxLimit)
	log := p.logger.WithFields(logrus.Fields{
		"partition": partition,
		"max_id":    cursor.String(),
		"limit":     limit,
	})

	items, err := p.store.ReadOrdered(ctx, partition, cursor, limit)
	if err != nil {
		log.WithError(err).Warn("cannot read page")
		return nil, fmt.Errorf("%w: cannot read page: %w", ErrStorageUnavailable, err)
	}

	checkWindow(items, cursor, limit)

	window := &Window[T]{
		Items:        items,
		AppliedLimit: limit,
	}
	if len(items) == 0 {
		window.Items = []T{}
		log.Debug("empty page")
		return window, nil
	}

	oldest := items[len(items)-1].OrderedID()

	bounds, found, err := p.store.ReadBounds(ctx, partition)
	if err != nil {
		log.WithError(err).Warn("cannot read partition bounds")
		return nil, fmt.Errorf("%w: cannot read partition bounds: %w", ErrStorageUnavailable, err)
	}

	if !found {
		panic(fmt.Errorf("%w: partition has items but no bounds", ErrInvariantViolation))
	} else if bounds.Min > oldest {
		panic(fmt.Errorf("%w: partition minimum %s is above returned id %s", ErrInvariantViolation, bounds.Min, oldest))
	}

	if oldest > bounds.Min {
		window.PrevPage = NewCursor(oldest)
	}

	log.WithFields(logrus.Fields{
		"items":     len(items),
		"prev_page": window.PrevPage.String(),
	}).Debug("page served")

	return window, nil
}

// checkWindow panics when a store returned more items than asked, items out
// of order, or items the cursor does not admit.
func checkWindow[T OrderedItem](items []T, cursor Cursor, limit int) {
	if len(items) > limit {
		panic(fmt.Errorf("%w: store returned %d items for limit %d", ErrInvariantViolation, len(items), limit))
	}

	for i, item := range items {
		id := item.OrderedID()
		if !cursor.Admits(id) {
			panic(fmt.Errorf("%w: id %s is not below cursor %s", ErrInvariantViolation, id, cursor))
		}

		if i > 0 && items[i-1].OrderedID() <= id {
			panic(fmt.Errorf("%w: ids %s and %s are not strictly descending", ErrInvariantViolation, items[i-1].OrderedID(), id))
		}
	}
}
