package signaling

import (
	"context"

	"github.com/cenkalti/backoff"
)

// retrySend retries send with exponential backoff seeded from the
// configured RetryBaseDelay, up to MaxIQRetries retries after the
// first attempt. ctx
// cancellation aborts the retry loop immediately.
func (s *Signaling) retrySend(ctx context.Context, send func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.params.RetryBaseDelay
	eb.MaxElapsedTime = 0 // bounded by MaxIQRetries instead of wall-clock
	policy := backoff.WithMaxRetries(eb, uint64(s.params.MaxIQRetries))

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return send()
	}
	return backoff.Retry(op, policy)
}
