package snowpager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

const defaultIDColumn = "id"

// GormStore is a Store over a SQL table. T is the table's gorm model and must
// be a struct; its ID column holds IDs as signed 64-bit integers. Windows are
// read as keyset queries:
//
//	SELECT * FROM statuses WHERE account_id = ? AND id < ? ORDER BY id DESC LIMIT 10
//
// which an index on (account_id, id) answers without scanning.
type GormStore[K any, T OrderedItem] struct {
	db              *gorm.DB
	partitionColumn string
	idColumn        string
	sort            Orderings
}

type gormStoreOptions struct {
	idColumn string
}

type GormStoreOption func(*gormStoreOptions)

// WithIDColumn overrides the default "id" column.
func WithIDColumn(column string) GormStoreOption {
	return func(o *gormStoreOptions) {
		o.idColumn = column
	}
}

// NewGormStore returns a store partitioned by partitionColumn.
func NewGormStore[K any, T OrderedItem](db *gorm.DB, partitionColumn string, opts ...GormStoreOption) (*GormStore[K, T], error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db is nil")
	}

	if kind := reflect.TypeOf((*T)(nil)).Elem().Kind(); kind != reflect.Struct {
		return nil, fmt.Errorf("gorm store model must be a struct, got %s", kind)
	}

	o := gormStoreOptions{idColumn: defaultIDColumn}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateColumnName(partitionColumn); err != nil {
		return nil, fmt.Errorf("invalid partition column: %w", err)
	}

	sort := Orderings{{Column: o.idColumn, Direction: DirectionDESC}}
	if err := sort.validate(); err != nil {
		return nil, fmt.Errorf("invalid id column: %w", err)
	}

	return &GormStore[K, T]{
		db:              db,
		partitionColumn: partitionColumn,
		idColumn:        o.idColumn,
		sort:            sort,
	}, nil
}

// Create inserts item. Duplicate keys surface as ErrDuplicateID when the db
// was opened with gorm.Config{TranslateError: true}.
func (s *GormStore[K, T]) Create(ctx context.Context, item *T) error {
	err := s.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, (*item).OrderedID())
	} else if err != nil {
		return fmt.Errorf("cannot create item: %w", err)
	}

	return nil
}

// ReadOrdered - implements Store.
func (s *GormStore[K, T]) ReadOrdered(ctx context.Context, partition K, before Cursor, limit int) ([]T, error) {
	var items []T

	q := before.Apply(s.partition(ctx, partition), s.idColumn)
	q = s.sort.Apply(q)

	if err := q.Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("cannot read ordered items: %w", err)
	}

	return items, nil
}

// ReadBounds - implements Store.
func (s *GormStore[K, T]) ReadBounds(ctx context.Context, partition K) (Bounds, bool, error) {
	var row boundsRow

	err := s.partition(ctx, partition).
		Select(fmt.Sprintf("MIN(%[1]s) AS min_id, MAX(%[1]s) AS max_id", s.idColumn)).
		Scan(&row).Error
	if err != nil {
		return Bounds{}, false, fmt.Errorf("cannot read bounds: %w", err)
	}

	if !row.MinID.Valid || !row.MaxID.Valid {
		return Bounds{}, false, nil
	}

	return Bounds{
		Min: ID(row.MinID.Int64),
		Max: ID(row.MaxID.Int64),
	}, true, nil
}

type boundsRow struct {
	MinID sql.NullInt64
	MaxID sql.NullInt64
}

func (s *GormStore[K, T]) partition(ctx context.Context, partition K) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(new(T)).
		Clauses(condition{
			Column:   s.partitionColumn,
			Operator: operatorEq,
			Value:    partition,
		}.toGORMExpression())
}
