// Package batch runs per-item work over a slice in fixed-size chunks with a
// full barrier between chunks.
package batch

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize bounds the number of in-flight items.
const DefaultChunkSize = 6

// Outcome is the result of one item. Exactly one of Value and Err is meaningful.
type Outcome[R any] struct {
	Value R
	Err   error
}

// PanicError is the item error produced when fn panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("item panicked: %v", e.Value)
}

// Map calls fn once per item. Items are split into chunks of size; all items
// of a chunk run concurrently and the next chunk starts only after every item
// of the previous one has finished. Outcomes are returned in input order.
// An item error or panic never stops its siblings or later chunks.
// Chunks not yet started when ctx is done get ctx.Err() as their outcome.
func Map[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error)) []Outcome[R] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make([]Outcome[R], len(items))

	offset := 0
	for chunk := range slices.Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			for i := offset; i < len(items); i++ {
				out[i].Err = err
			}
			break
		}

		var g errgroup.Group
		for i, item := range chunk {
			slot := &out[offset+i]
			g.Go(func() error {
				slot.Value, slot.Err = call(ctx, item, fn)
				return nil
			})
		}
		_ = g.Wait()
		offset += len(chunk)
	}
	return out
}

func call[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx, item)
}
