package typedkv

import (
	"context"
	"time"
)

// ComputeOption configures a single GetOrCompute call.
type ComputeOption func(*computeConfig)

type computeConfig struct {
	detached bool
}

// Detached runs the producer on its own goroutine instead of the caller's.
// Use it when the producer must not inherit goroutine-local state the caller
// holds (a locked OS thread, for instance). The call still waits for the
// result, and the wait honors context cancellation; an abandoned producer
// finishes in the background and its result is discarded without a write.
func Detached() ComputeOption {
	return func(c *computeConfig) { c.detached = true }
}

// GetOrCompute implements cache-aside fill: the read always completes before
// the producer runs, a hit short-circuits, and a miss runs the producer
// exactly once for this call, writes the result with ttl, and returns it.
//
// Producer errors propagate to the caller verbatim and nothing is written:
// a subsequent read still reports the key absent. A failed or cancelled
// write surfaces as the call's error.
func (s *scalar[V]) GetOrCompute(ctx context.Context, key string, produce ProducerFunc[V], ttl time.Duration, opts ...ComputeOption) (V, error) {
	var zero V
	var cfg computeConfig
	for _, o := range opts {
		o(&cfg)
	}

	v, ok, err := s.Get(ctx, key)
	if err != nil || ok {
		return v, err
	}

	s.log.Debug("get_or_compute miss; invoking producer", Fields{"key": key, "detached": cfg.detached})

	sp := s.trace.StartSpan(opScalarCompute, s.ks.Key(key).Name())
	v, err = runProducer(ctx, produce, cfg.detached)
	if err != nil {
		sp.End(err)
		return zero, err
	}

	if err := s.Set(ctx, key, v, ttl); err != nil {
		sp.End(err)
		return zero, err
	}
	sp.End(nil)
	return v, nil
}

func runProducer[V any](ctx context.Context, produce ProducerFunc[V], detached bool) (V, error) {
	if !detached {
		return produce(ctx)
	}

	type result struct {
		v   V
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := produce(ctx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
