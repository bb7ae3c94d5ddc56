package zia

import (
	"context"
	"errors"
	"iter"
)

const (
	defaultPageSize = 100
	maxPageSize     = 10000
)

// ErrEmptyIterator is returned by First when the iterator yields no items.
var ErrEmptyIterator = errors.New("iterator is empty")

// pageFetcher retrieves one page of results.
type pageFetcher[T any] func(ctx context.Context, page *PageOptions) ([]T, error)

// paginate follows 1-based pages until the server returns a page shorter
// than the requested size.
func paginate[T any](ctx context.Context, pageSize int, fetch pageFetcher[T]) iter.Seq2[T, error] {
	pageSize = clampPageSize(pageSize)

	return func(yield func(T, error) bool) {
		var zero T
		for page := 1; ; page++ {
			items, err := fetch(ctx, &PageOptions{Page: page, PageSize: pageSize})
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range items {
				if err := ctx.Err(); err != nil {
					yield(zero, err)
					return
				}
				if !yield(item, nil) {
					return
				}
			}

			if len(items) < pageSize {
				return
			}
		}
	}
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}

// Collect gathers all items from an iterator into a slice.
// It stops on the first error and returns all items collected so far along with the error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	result := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return result, err
		}
		result = append(result, item)
	}
	return result, nil
}

// First returns the first item from an iterator, or an error if the iterator is empty or fails.
func First[T any](seq iter.Seq2[T, error]) (T, error) {
	for item, err := range seq {
		return item, err
	}
	var zero T
	return zero, ErrEmptyIterator
}
