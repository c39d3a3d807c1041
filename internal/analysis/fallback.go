package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrAllModelsFailed = errors.New("all models failed")

type ModelAttempt struct {
	Model string
	Err   error
}

// FallbackError lists every failed attempt. It matches ErrAllModelsFailed with errors.Is.
type FallbackError struct {
	Attempts []ModelAttempt
}

func (e *FallbackError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllModelsFailed.Error() + ": no models configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Model, a.Err))
	}
	return ErrAllModelsFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *FallbackError) Unwrap() error { return ErrAllModelsFailed }

// FirstSuccess calls fn for each model in order and returns the first result without error,
// along with the model that produced it. Context cancellation stops the walk.
func FirstSuccess[T any](ctx context.Context, models []string, fn func(ctx context.Context, model string) (T, error)) (T, string, error) {
	var zero T
	ferr := &FallbackError{}
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		out, err := fn(ctx, model)
		if err == nil {
			return out, model, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, "", fmt.Errorf("%s: %w", model, ctxErr)
		}
		ferr.Attempts = append(ferr.Attempts, ModelAttempt{Model: model, Err: err})
	}
	return zero, "", ferr
}
