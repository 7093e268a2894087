// internal/app/system/paging/paging.go
//
// Package paging chunks slices into fixed-size pages. Archived session
// documents store meetings in pages of models.MeetingsPerPage so a
// single semester's history can be fetched without decoding the whole
// meeting list.
package paging

// NumPages returns ceil(n/size). Zero for n <= 0.
func NumPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Chunk splits items into pages of at most size elements, in order.
// Every page except possibly the last is full. The returned pages
// share backing arrays with items; callers that mutate pages must copy
// first.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	pages := make([][]T, 0, NumPages(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end])
	}
	return pages
}
