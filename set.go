package typedkv

import (
	"context"
	"time"
)

type setColl[V any] struct {
	base[V]
}

var _ SetColl[string] = (*setColl[string])(nil)

func (s *setColl[V]) Add(ctx context.Context, key string, member V) (bool, error) {
	n, err := s.AddAll(ctx, key, member)
	return n > 0, err
}

// AddAll encodes every member up front, then issues one multi-value command.
// An encode failure aborts before anything is sent.
func (s *setColl[V]) AddAll(ctx context.Context, key string, members ...V) (added int64, err error) {
	if len(members) == 0 {
		return 0, nil
	}
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetAdd, k.Name())
	defer func() { sp.End(err) }()

	raw, err := s.encodeAll(k, members)
	if err != nil {
		return 0, err
	}
	added, err = k.conn.SAdd(ctx, k.Name(), raw...)
	if err != nil {
		return 0, &OpError{Op: opSetAdd, Key: k.Name(), Err: err}
	}
	return added, nil
}

func (s *setColl[V]) Remove(ctx context.Context, key string, member V) (bool, error) {
	n, err := s.RemoveAll(ctx, key, member)
	return n > 0, err
}

func (s *setColl[V]) RemoveAll(ctx context.Context, key string, members ...V) (removed int64, err error) {
	if len(members) == 0 {
		return 0, nil
	}
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetRemove, k.Name())
	defer func() { sp.End(err) }()

	raw, err := s.encodeAll(k, members)
	if err != nil {
		return 0, err
	}
	removed, err = k.conn.SRem(ctx, k.Name(), raw...)
	if err != nil {
		return 0, &OpError{Op: opSetRemove, Key: k.Name(), Err: err}
	}
	return removed, nil
}

// Contains relies on deterministic encoding: membership is decided by
// comparing encoded bytes on the store side.
func (s *setColl[V]) Contains(ctx context.Context, key string, member V) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetContains, k.Name())
	defer func() { sp.End(err) }()

	raw, err := s.encode(k, member)
	if err != nil {
		return false, err
	}
	ok, err = k.conn.SIsMember(ctx, k.Name(), raw)
	if err != nil {
		return false, &OpError{Op: opSetContains, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *setColl[V]) Members(ctx context.Context, key string) (out []V, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetMembers, k.Name())
	defer func() { sp.End(err) }()

	raw, err := k.conn.SMembers(ctx, k.Name())
	if err != nil {
		return nil, &OpError{Op: opSetMembers, Key: k.Name(), Err: err}
	}
	return s.decodeAll(k, raw)
}

func (s *setColl[V]) Card(ctx context.Context, key string) (n int64, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetCard, k.Name())
	defer func() { sp.End(err) }()

	n, err = k.conn.SCard(ctx, k.Name())
	if err != nil {
		return 0, &OpError{Op: opSetCard, Key: k.Name(), Err: err}
	}
	return n, nil
}

func (s *setColl[V]) RandMember(ctx context.Context, key string) (V, bool, error) {
	vs, err := s.RandMembers(ctx, key, 1)
	return first(vs, err)
}

func (s *setColl[V]) RandMembers(ctx context.Context, key string, count int64) (out []V, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetRandMember, k.Name())
	defer func() { sp.End(err) }()

	raw, err := k.conn.SRandMember(ctx, k.Name(), count)
	if err != nil {
		return nil, &OpError{Op: opSetRandMember, Key: k.Name(), Err: err}
	}
	return s.decodeAll(k, raw)
}

func (s *setColl[V]) Pop(ctx context.Context, key string) (V, bool, error) {
	vs, err := s.PopN(ctx, key, 1)
	return first(vs, err)
}

// PopN removes and returns up to count uniformly random members in one
// command; removal and return are atomic per the store's own guarantee.
func (s *setColl[V]) PopN(ctx context.Context, key string, count int64) (out []V, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetPop, k.Name())
	defer func() { sp.End(err) }()

	raw, err := k.conn.SPop(ctx, k.Name(), count)
	if err != nil {
		return nil, &OpError{Op: opSetPop, Key: k.Name(), Err: err}
	}
	return s.decodeAll(k, raw)
}

func (s *setColl[V]) Exists(ctx context.Context, key string) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetExists, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.Exists(ctx, k.Name())
	if err != nil {
		return false, &OpError{Op: opSetExists, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *setColl[V]) Expire(ctx context.Context, key string, ttl time.Duration) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetExpire, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.Expire(ctx, k.Name(), ttl)
	if err != nil {
		return false, &OpError{Op: opSetExpire, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *setColl[V]) ExpireAt(ctx context.Context, key string, deadline time.Time) (ok bool, err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetExpire, k.Name())
	defer func() { sp.End(err) }()

	ok, err = k.conn.ExpireAt(ctx, k.Name(), deadline)
	if err != nil {
		return false, &OpError{Op: opSetExpire, Key: k.Name(), Err: err}
	}
	return ok, nil
}

func (s *setColl[V]) Clear(ctx context.Context, key string) (err error) {
	k := s.ks.Key(key)
	sp := s.trace.StartSpan(opSetClear, k.Name())
	defer func() { sp.End(err) }()

	if _, err := k.conn.Del(ctx, k.Name()); err != nil {
		return &OpError{Op: opSetClear, Key: k.Name(), Err: err}
	}
	return nil
}

func (s *setColl[V]) encodeAll(k Key, members []V) ([][]byte, error) {
	out := make([][]byte, len(members))
	for i, m := range members {
		raw, err := s.encode(k, m)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func (s *setColl[V]) decodeAll(k Key, raw [][]byte) ([]V, error) {
	out := make([]V, len(raw))
	for i, b := range raw {
		v, err := s.decode(k, b)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func first[V any](vs []V, err error) (V, bool, error) {
	var zero V
	if err != nil || len(vs) == 0 {
		return zero, false, err
	}
	return vs[0], true, nil
}
