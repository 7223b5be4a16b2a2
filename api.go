package typedkv

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/typedkv/codec"
)

// ProducerFunc computes a value on a cache miss. It receives the caller's
// context and its error, if any, propagates to the caller verbatim.
type ProducerFunc[V any] func(ctx context.Context) (V, error)

// Scalar is the typed single-value cache API over the store's string type.
// V is the caller's value type; serialization is handled by a pluggable
// codec.Codec[V].
//
// The clamped increment methods operate on the store's native numeric text,
// not on codec-encoded values: a counter key must only ever be touched by
// the Incr* methods. An absent counter key counts as zero.
type Scalar[V any] interface {
	// Get returns the stored value, or ok=false on a miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Set stores value with the given TTL (NoExpiry = persist).
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// GetSet atomically replaces the stored value and returns the previous
	// one (existed=false when the key was absent). With a TTL the swap and
	// the expiry are committed as one transaction: no other client can
	// observe the new value without its TTL, and on failure or abandonment
	// neither applies.
	GetSet(ctx context.Context, key string, value V, ttl time.Duration) (old V, existed bool, err error)

	// GetOrCompute reads the key and, on a miss, runs produce exactly once,
	// stores its result with ttl and returns it. On a hit produce is not
	// invoked. Producer failures propagate unwrapped and nothing is written.
	//
	// The exactly-once guarantee is per call, not global: concurrent callers
	// that each observe a miss each run their own producer. There is no
	// cross-call single-flight by design.
	GetOrCompute(ctx context.Context, key string, produce ProducerFunc[V], ttl time.Duration, opts ...ComputeOption) (V, error)

	// Incr / IncrFloat are plain unclamped atomic increments.
	Incr(ctx context.Context, key string, delta int64) (int64, error)
	IncrFloat(ctx context.Context, key string, delta float64) (float64, error)

	// Clamped increments: add delta atomically, then - in the same server
	// side atomic unit - cap the stored value at the bound and return the
	// final stored value. The bound holds even when the very first write to
	// an absent key already exceeds it, and under concurrent clamped calls
	// from many clients.
	IncrClampMax(ctx context.Context, key string, delta, max int64) (int64, error)
	IncrClampMin(ctx context.Context, key string, delta, min int64) (int64, error)
	IncrFloatClampMax(ctx context.Context, key string, delta, max float64) (float64, error)
	IncrFloatClampMin(ctx context.Context, key string, delta, min float64) (float64, error)

	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the key; existed reports whether it was present.
	Delete(ctx context.Context, key string) (existed bool, err error)

	// Expire / ExpireAt manage the entry's TTL. ok=false when the key does
	// not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ExpireAt(ctx context.Context, key string, deadline time.Time) (bool, error)
}

// SetColl is the typed unordered-collection cache API over the store's set
// type. All operations are single round trips; the multi-member variants
// encode every element first and issue one command. No atomicity beyond the
// store's per-command guarantee is provided or needed here.
type SetColl[V any] interface {
	// Add returns true when the member was newly added.
	Add(ctx context.Context, key string, member V) (bool, error)
	// AddAll returns how many members were newly added.
	AddAll(ctx context.Context, key string, members ...V) (int64, error)

	Remove(ctx context.Context, key string, member V) (bool, error)
	RemoveAll(ctx context.Context, key string, members ...V) (int64, error)

	Contains(ctx context.Context, key string, member V) (bool, error)
	Members(ctx context.Context, key string) ([]V, error)
	Card(ctx context.Context, key string) (int64, error)

	// RandMember samples one member uniformly without removing it.
	RandMember(ctx context.Context, key string) (v V, ok bool, err error)
	RandMembers(ctx context.Context, key string, count int64) ([]V, error)

	// Pop removes and returns one uniformly random member.
	Pop(ctx context.Context, key string) (v V, ok bool, err error)
	PopN(ctx context.Context, key string, count int64) ([]V, error)

	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ExpireAt(ctx context.Context, key string, deadline time.Time) (bool, error)

	// Clear removes the whole set.
	Clear(ctx context.Context, key string) error
}

// Options tune a typed cache. KeySpace and Codec are required; Logger and
// Tracer default to no-ops.
type Options[V any] struct {
	// Required
	KeySpace KeySpace
	Codec    c.Codec[V]

	Logger Logger // if nil, NopLogger is used
	Tracer Tracer // if nil, NopTracer is used
}

// NewScalar builds a typed single-value cache over opts.KeySpace.
func NewScalar[V any](opts Options[V]) (Scalar[V], error) {
	base, err := newBase(opts)
	if err != nil {
		return nil, err
	}
	return &scalar[V]{base: base}, nil
}

// NewSet builds a typed set cache over opts.KeySpace.
func NewSet[V any](opts Options[V]) (SetColl[V], error) {
	base, err := newBase(opts)
	if err != nil {
		return nil, err
	}
	return &setColl[V]{base: base}, nil
}

// base carries the immutable configuration shared by both cache kinds.
// Every operation is stateless apart from it.
type base[V any] struct {
	ks    KeySpace
	codec c.Codec[V]
	log   Logger
	trace Tracer
}

func newBase[V any](opts Options[V]) (base[V], error) {
	if opts.KeySpace.conn == nil {
		return base[V]{}, fmt.Errorf("typedkv: keyspace with a live conn is required")
	}
	if opts.Codec == nil {
		return base[V]{}, fmt.Errorf("typedkv: codec is required")
	}
	return base[V]{
		ks:    opts.KeySpace,
		codec: opts.Codec,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		trace: coalesce[Tracer](opts.Tracer, NopTracer{}),
	}, nil
}

func (b *base[V]) encode(k Key, v V) ([]byte, error) {
	raw, err := b.codec.Encode(v)
	if err != nil {
		return nil, &EncodeError{Key: k.Name(), Err: err}
	}
	return raw, nil
}

func (b *base[V]) decode(k Key, raw []byte) (V, error) {
	v, err := b.codec.Decode(raw)
	if err != nil {
		var zero V
		return zero, &DecodeError{Key: k.Name(), Err: err}
	}
	return v, nil
}
