package engine

import (
	"context"
	"errors"
)

// WithDB wraps fn so that every call runs against a fresh Database opened
// with cfg. The cursor is prepended to fn's argument, and the Database is
// closed when fn returns or panics. A failed open is returned, not retried.
func WithDB[A, R any](cfg Config, fn func(context.Context, *Cursor, A) (R, error), opts ...Option) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (res R, err error) {
		db, err := Open(ctx, cfg, opts...)
		if err != nil {
			return res, err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()

		cur, err := db.Cursor()
		if err != nil {
			return res, err
		}
		return fn(ctx, cur, arg)
	}
}

// Do opens a Database with cfg, runs fn with a cursor and closes it.
func Do(ctx context.Context, cfg Config, fn func(context.Context, *Cursor) error, opts ...Option) error {
	call := WithDB(cfg, func(ctx context.Context, cur *Cursor, _ struct{}) (struct{}, error) {
		return struct{}{}, fn(ctx, cur)
	}, opts...)
	_, err := call(ctx, struct{}{})
	return err
}
