package forms

import (
	"context"
	"errors"

	"fraud-dashboard/internal/riskapi"
)

// RedirectDelay is how long the success banner of a create flow is shown
// before the browser moves on, in seconds.
const RedirectDelay = 1.5

// Invalidator drops cached queries by key prefix.
type Invalidator interface {
	Invalidate(prefixes ...string) int
}

// Action describes one form submission.
type Action[T any] struct {
	// Validate runs before anything else. Any error aborts the submission.
	Validate func() Errors
	// Mutate calls the backend. It runs at most once and is never retried.
	Mutate func(ctx context.Context) (T, error)
	// Fallback is shown when the backend rejects without a message.
	Fallback string
	// Success is the banner shown after the mutation succeeded.
	Success string
	// Invalidate lists the cache prefixes dropped on success.
	Invalidate []string
	// Redirect, when set, gives the page a create flow should move to.
	Redirect func(T) string
}

// Outcome is what the page renders after a submission.
type Outcome struct {
	Errors   Errors // field errors; the backend was not called
	Err      error  // backend failure
	Message  string // banner text
	Success  bool
	Redirect string
}

// Failed reports whether the form must be shown again.
func (o Outcome) Failed() bool { return !o.Success }

// Submit runs the submit contract of a. It returns the created or updated
// record on success.
func Submit[T any](ctx context.Context, cache Invalidator, a Action[T]) (T, Outcome) {
	var zero T
	if a.Validate != nil {
		if errs := a.Validate(); errs.Any() {
			return zero, Outcome{Errors: errs, Message: "Please correct the highlighted fields."}
		}
	}

	v, err := a.Mutate(ctx)
	if err != nil {
		msg := riskapi.ServerMessage(err)
		if msg == "" {
			msg = a.Fallback
		}
		if msg == "" {
			msg = "The request failed. Please try again."
		}
		if errors.Is(err, context.Canceled) {
			msg = "The request was cancelled."
		}
		return zero, Outcome{Err: err, Message: msg}
	}

	if cache != nil && len(a.Invalidate) > 0 {
		cache.Invalidate(a.Invalidate...)
	}
	out := Outcome{Success: true, Message: a.Success}
	if a.Redirect != nil {
		out.Redirect = a.Redirect(v)
	}
	return v, out
}
