// Package snowpager provides time-ordered unique IDs and backward cursor
// pagination over collections keyed by them.
//
// Overview
//
// snowpager has two independent parts that a caller composes:
//   - Generator: produces 64-bit IDs packing a millisecond timestamp, a node
//     id and a per-millisecond sequence. IDs of one generator strictly
//     increase; generators with distinct node ids never collide.
//   - Pager: walks one partition of a Store from the newest item back in
//     fixed-size windows and tells whether an older window exists.
//
// Key concepts
//   - ID: primary key and chronological sort key at once.
//   - Cursor: optional exclusive upper bound, the "max_id" of a request.
//   - Window: one page plus the Cursor of the next older page.
//   - Store: the ordered collection contract. MemoryStore, GormStore and
//     RedisStore implement it.
//
// Typical flow:
//
//	id, err := gen.Next()
//	// ... store the status keyed by id ...
//	window, err := pager.Page(ctx, accountID, snowpager.Cursor{}, 10)
//	if window.HasOlder() {
//	    // link to ?max_id=window.PrevPage.String()
//	}
package snowpager
