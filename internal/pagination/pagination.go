// Package pagination implements the keyset (cursor) pagination protocol
// shared by the feed and the bookmark list.
//
// KEYSET PAGINATION:
// Instead of LIMIT/OFFSET (which drifts when rows are inserted between
// pages), each page is keyed by the identifier of the last row the client
// saw. The repository fetches limit+1 rows ordered by
// (created_at DESC, id DESC) starting strictly after the cursor row; the
// extra row only tells us whether another page exists.
//
// Ties on created_at are broken by id so the ordering is total — without a
// unique tiebreaker, two rows created in the same instant could swap places
// between calls and a row could be skipped or repeated at a page boundary.
//
// Concurrent mutation between two paginated calls can still make a
// late-arriving row invisible to an in-progress walk or re-show a moved
// row. That is the standard keyset trade-off, accepted here.
package pagination

// Limit bounds for paginated listings.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Page is one page of a keyset-paginated listing. NextCursor is nil when
// the collection is exhausted — clients repeat the call with the previous
// NextCursor until it is absent, accumulating Items in order.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// ClampLimit normalises a client-supplied limit into [1, MaxLimit],
// defaulting to DefaultLimit when unset or non-positive.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Trim turns an over-fetched row set (up to limit+1 rows) into a Page.
//
// If more than limit rows came back, the extra row is dropped and its
// identifier becomes the next cursor. Exactly limit rows (or fewer) means
// the collection is exhausted and NextCursor stays nil — so a collection of
// exactly limit rows never produces an empty extra page.
//
// id extracts the row identifier used as the cursor value.
func Trim[T any](rows []T, limit int, id func(T) string) Page[T] {
	if len(rows) <= limit {
		return Page[T]{Items: rows}
	}

	rows = rows[:limit]
	cursor := id(rows[limit-1])
	return Page[T]{Items: rows, NextCursor: &cursor}
}
