// Package pipeline provides composable cross-cutting stages for processing
// operations: input validation, timing, memoization, and error recovery.
//
// Stages compose explicitly through Chain; the first stage listed is the
// outermost wrapper. Call sites document their stage order by listing it:
//
//	op := pipeline.Chain(fn,
//	    pipeline.Recover[I, O](logger, "segmentation failed"),
//	    pipeline.Validate[I, O](),
//	    pipeline.Timed[I, O](logger, "segment"),
//	)
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"stylelens-go/core/apperr"
)

// Func is a processing operation carried through the pipeline.
type Func[I, O any] func(ctx context.Context, in I) (O, error)

// Stage wraps a Func with additional behavior.
type Stage[I, O any] func(next Func[I, O]) Func[I, O]

// Chain applies stages around fn. The first stage is the outermost wrapper,
// so it sees the call first and the result last.
func Chain[I, O any](fn Func[I, O], stages ...Stage[I, O]) Func[I, O] {
	for i := len(stages) - 1; i >= 0; i-- {
		fn = stages[i](fn)
	}
	return fn
}

// Validate rejects empty input with a ValidationError before the operation
// runs: nil values, empty or blank-after-trim strings, and nil pointers,
// slices, or maps all fail.
func Validate[I, O any]() Stage[I, O] {
	return func(next Func[I, O]) Func[I, O] {
		return func(ctx context.Context, in I) (O, error) {
			if reason, ok := emptyReason(in); ok {
				var zero O
				return zero, apperr.NewValidation(reason)
			}
			return next(ctx, in)
		}
	}
}

// emptyReason reports whether v counts as empty user input.
func emptyReason(v any) (string, bool) {
	if v == nil {
		return "input is nil", true
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return "input is blank", true
		}
		return "", false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "input is nil", true
		}
	case reflect.Slice, reflect.Map:
		if rv.IsNil() || rv.Len() == 0 {
			return "input is empty", true
		}
	}
	return "", false
}

// Timed logs the start of the operation, its elapsed duration on success,
// and the error on failure. Errors are never swallowed here.
func Timed[I, O any](logger *slog.Logger, op string) Stage[I, O] {
	return func(next Func[I, O]) Func[I, O] {
		return func(ctx context.Context, in I) (O, error) {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Info("Operation started", "op", op)
			start := time.Now()

			out, err := next(ctx, in)
			if err != nil {
				logger.Error("Operation failed", "op", op, "error", err)
				return out, err
			}

			logger.Info("Operation completed", "op", op, "elapsed", time.Since(start))
			return out, nil
		}
	}
}

// Memoize caches results keyed by the operation name plus the stringified
// input. A key hit returns the stored output without re-invoking the
// operation. The cache is unbounded and never invalidated; stringified keys
// are not collision-safe. Both are understood limitations of this stage, so
// reserve it for small, repeat-heavy inputs.
func Memoize[I, O any](op string) Stage[I, O] {
	var mu sync.Mutex
	cache := make(map[string]O)

	return func(next Func[I, O]) Func[I, O] {
		return func(ctx context.Context, in I) (O, error) {
			key := fmt.Sprintf("%s_%v", op, in)

			mu.Lock()
			if out, ok := cache[key]; ok {
				mu.Unlock()
				return out, nil
			}
			mu.Unlock()

			out, err := next(ctx, in)
			if err != nil {
				return out, err
			}

			mu.Lock()
			cache[key] = out
			mu.Unlock()
			return out, nil
		}
	}
}

// Recover is the silent-failure boundary: any error (or panic) from the
// wrapped operation is logged exactly once with the supplied message and
// replaced by the zero value. Callers behind this stage must not rely on
// errors crossing it. Reserve it for display-only operations whose failure
// should not interrupt the user.
func Recover[I, O any](logger *slog.Logger, msg string) Stage[I, O] {
	return func(next Func[I, O]) Func[I, O] {
		return func(ctx context.Context, in I) (out O, err error) {
			if logger == nil {
				logger = slog.Default()
			}
			defer func() {
				if r := recover(); r != nil {
					logger.Error(msg, "panic", r)
					var zero O
					out, err = zero, nil
				}
			}()

			out, innerErr := next(ctx, in)
			if innerErr != nil {
				logger.Error(msg, "error", innerErr)
				var zero O
				return zero, nil
			}
			return out, nil
		}
	}
}
