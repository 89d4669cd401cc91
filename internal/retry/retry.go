// Package retry runs fallible calls a bounded number of times with a fixed
// delay between attempts.
package retry

import (
	"context"
	"log"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Policy is applied uniformly to every wrapped call: no backoff growth, no jitter.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Func is the shape of a retryable call.
type Func[T any] func(ctx context.Context) (T, error)

// Wrap retries fn until it succeeds or the policy is exhausted. Exhaustion
// is logged once and yields the zero value of T with a nil error, so callers
// see "no data" rather than a fault. Only context cancellation is returned
// as an error.
func Wrap[T any](name string, p Policy, fn Func[T]) Func[T] {
	attempts := p.attempts()
	return func(ctx context.Context) (T, error) {
		result, err := retrygo.DoWithData(
			func() (T, error) { return fn(ctx) },
			retrygo.Context(ctx),
			retrygo.Attempts(uint(attempts)),
			retrygo.Delay(p.Delay),
			retrygo.DelayType(retrygo.FixedDelay),
			retrygo.LastErrorOnly(true),
			retrygo.OnRetry(func(n uint, err error) {
				if attempt := int(n) + 1; attempt < attempts {
					log.Printf("WARN: %s failed, retrying (%d/%d): %v", name, attempt, attempts, err)
				}
			}),
		)
		if err == nil {
			return result, nil
		}

		var zero T
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		log.Printf("ERROR: %s final failure: %v", name, err)
		return zero, nil
	}
}
