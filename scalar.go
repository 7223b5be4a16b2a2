package typedkv

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type scalar[V any] struct {
	base[V]
}

var _ Scalar[string] = (*scalar[string])(nil)

func (s *scalar[V]) Get(ctx context.Context, key string) (v V, ok bool, err error) {
	var zero V
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarGet, k.Name())
	defer func() { sp.End(err) }()

	raw, ok, err := k.conn.Get(ctx, k.Name())
	if err != nil {
		return zero, false, &OpError{Op: opScalarGet, Key: k.Name(), Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	v, err = s.decode(k, raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *scalar[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarSet, k.Name())
	defer func() { sp.End(err) }()

	raw, err := s.encode(k, value)
	if err != nil {
		return err
	}
	if err := k.conn.Set(ctx, k.Name(), raw, ttl); err != nil {
		return &OpError{Op: opScalarSet, Key: k.Name(), Err: err}
	}
	return nil
}

// GetSet without a TTL is a single atomic swap. With a TTL the store has no
// combined swap-with-expiry-returning-old primitive, so the conn commits
// GETSET+EXPIRE as one transaction (see store.Conn.GetSetEx).
func (s *scalar[V]) GetSet(ctx context.Context, key string, value V, ttl time.Duration) (old V, existed bool, err error) {
	var zero V
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarGetSet, k.Name())
	defer func() { sp.End(err) }()

	raw, err := s.encode(k, value)
	if err != nil {
		return zero, false, err
	}

	var prev []byte
	if ttl == NoExpiry {
		prev, existed, err = k.conn.GetSet(ctx, k.Name(), raw)
	} else {
		prev, existed, err = k.conn.GetSetEx(ctx, k.Name(), raw, ttl)
	}
	if err != nil {
		return zero, false, &OpError{Op: opScalarGetSet, Key: k.Name(), Err: err}
	}
	if !existed {
		return zero, false, nil
	}
	old, err = s.decode(k, prev)
	if err != nil {
		return zero, false, err
	}
	return old, true, nil
}

func (s *scalar[V]) Incr(ctx context.Context, key string, delta int64) (n int64, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarIncr, k.Name())
	defer func() { sp.End(err) }()

	n, err = k.conn.IncrBy(ctx, k.Name(), delta)
	if err != nil {
		return 0, &OpError{Op: opScalarIncr, Key: k.Name(), Err: err}
	}
	return n, nil
}

func (s *scalar[V]) IncrFloat(ctx context.Context, key string, delta float64) (f float64, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarIncr, k.Name())
	defer func() { sp.End(err) }()

	text, err := k.conn.IncrByFloat(ctx, k.Name(), floatText(delta))
	if err != nil {
		return 0, &OpError{Op: opScalarIncr, Key: k.Name(), Err: err}
	}
	return parseFloatText(k, text)
}

func (s *scalar[V]) IncrClampMax(ctx context.Context, key string, delta, max int64) (int64, error) {
	return s.clampInt(ctx, key, delta, max, clampIntMax)
}

func (s *scalar[V]) IncrClampMin(ctx context.Context, key string, delta, min int64) (int64, error) {
	return s.clampInt(ctx, key, delta, min, clampIntMin)
}

func (s *scalar[V]) IncrFloatClampMax(ctx context.Context, key string, delta, max float64) (float64, error) {
	return s.clampFloat(ctx, key, delta, max, clampFloatMax)
}

func (s *scalar[V]) IncrFloatClampMin(ctx context.Context, key string, delta, min float64) (float64, error) {
	return s.clampFloat(ctx, key, delta, min, clampFloatMin)
}

func (s *scalar[V]) clampInt(ctx context.Context, key string, delta, bound int64, p clampProgram) (n int64, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarClamp, k.Name())
	defer func() { sp.End(err) }()

	res, err := k.conn.Eval(ctx, p.source, []string{k.Name()}, delta, bound)
	if err != nil {
		s.log.Error("clamp script failed", Fields{"op": p.name, "key": k.Name(), "err": err})
		return 0, &ScriptError{Op: p.name, Key: k.Name(), Err: err}
	}
	n, ok := res.(int64)
	if !ok {
		return 0, &ScriptError{Op: p.name, Key: k.Name(), Err: fmt.Errorf("unexpected reply type %T", res)}
	}
	return n, nil
}

func (s *scalar[V]) clampFloat(ctx context.Context, key string, delta, bound float64, p clampProgram) (f float64, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarClamp, k.Name())
	defer func() { sp.End(err) }()

	res, err := k.conn.Eval(ctx, p.source, []string{k.Name()}, floatText(delta), floatText(bound))
	if err != nil {
		s.log.Error("clamp script failed", Fields{"op": p.name, "key": k.Name(), "err": err})
		return 0, &ScriptError{Op: p.name, Key: k.Name(), Err: err}
	}
	text, ok := replyText(res)
	if !ok {
		return 0, &ScriptError{Op: p.name, Key: k.Name(), Err: fmt.Errorf("unexpected reply type %T", res)}
	}
	return parseFloatText(k, text)
}

func (s *scalar[V]) Exists(ctx context.Context, key string) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarExists, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.Exists(ctx, k.Name())
	if err != nil {
		return false, &OpError{Op: opScalarExists, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *scalar[V]) Delete(ctx context.Context, key string) (existed bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarDelete, k.Name())
	defer func() { sp.End(err) }()

	n, err := k.conn.Del(ctx, k.Name())
	if err != nil {
		return false, &OpError{Op: opScalarDelete, Key: k.Name(), Err: err}
	}
	return n > 0, nil
}

func (s *scalar[V]) Expire(ctx context.Context, key string, ttl time.Duration) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarExpire, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.Expire(ctx, k.Name(), ttl)
	if err != nil {
		return false, &OpError{Op: opScalarExpire, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *scalar[V]) ExpireAt(ctx context.Context, key string, deadline time.Time) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opScalarExpire, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.ExpireAt(ctx, k.Name(), deadline)
	if err != nil {
		return false, &OpError{Op: opScalarExpire, Key: k.Name(), Err: err}
	}
	return ok, nil
}

// floatText formats a float argument as its shortest exact decimal text, the
// form INCRBYFLOAT expects.
func floatText(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// parseFloatText parses the store's full-precision reply text. Going through
// decimal keeps the parse exact before the final float64 conversion.
func parseFloatText(k Key, text string) (float64, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, &DecodeError{Key: k.Name(), Err: err}
	}
	f, _ := d.Float64()
	return f, nil
}

func replyText(res any) (string, bool) {
	switch v := res.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
