package typedkv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	st "github.com/unkn0wn-root/typedkv/store"
)

// memConn is an in-memory store.Conn used by the tests. Every method runs
// under one mutex, which models the remote store's single-threaded command
// execution: Eval and GetSetEx are atomic units exactly like their server
// side counterparts. The four clamp scripts are recognized by source text
// and emulated with the same increment-compare-overwrite-return semantics.
type memConn struct {
	mu   sync.Mutex
	vals map[string]*memVal
}

type memVal struct {
	s   []byte          // string value
	set map[string]bool // set members, keyed by encoded bytes
	exp time.Time       // zero => no TTL
}

var _ st.Conn = (*memConn)(nil)

func newMemConn() *memConn { return &memConn{vals: make(map[string]*memVal)} }

// live returns the entry if present and unexpired; lazily expires otherwise.
func (m *memConn) live(key string) (*memVal, bool) {
	e, ok := m.vals[key]
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(m.vals, key)
		return nil, false
	}
	return e, true
}

func (m *memConn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok || e.s == nil {
		return nil, false, nil
	}
	return e.s, true, nil
}

func (m *memConn) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.vals[key] = &memVal{s: value, exp: exp}
	return nil
}

func (m *memConn) GetSet(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.live(key)
	// GETSET's write discards any previous TTL, like the real command
	m.vals[key] = &memVal{s: value}
	if !ok || prev.s == nil {
		return nil, false, nil
	}
	return prev.s, true, nil
}

func (m *memConn) GetSetEx(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.live(key)
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.vals[key] = &memVal{s: value, exp: exp}
	if !ok || prev.s == nil {
		return nil, false, nil
	}
	return prev.s, true, nil
}

func (m *memConn) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return false, nil
	}
	e.exp = time.Now().Add(ttl)
	return true, nil
}

func (m *memConn) ExpireAt(ctx context.Context, key string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return false, nil
	}
	e.exp = at
	return true, nil
}

func (m *memConn) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key)
	return ok, nil
}

func (m *memConn) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.live(k); ok {
			delete(m.vals, k)
			n++
		}
	}
	return n, nil
}

func (m *memConn) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incrByLocked(key, delta)
}

func (m *memConn) incrByLocked(key string, delta int64) (int64, error) {
	var cur int64
	if e, ok := m.live(key); ok {
		n, err := strconv.ParseInt(string(e.s), 10, 64)
		if err != nil {
			return 0, errors.New("ERR value is not an integer or out of range")
		}
		cur = n
	}
	cur += delta
	m.setNumLocked(key, []byte(strconv.FormatInt(cur, 10)))
	return cur, nil
}

func (m *memConn) IncrByFloat(ctx context.Context, key string, delta string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := decimal.NewFromString(delta)
	if err != nil {
		return "", errors.New("ERR value is not a valid float")
	}
	return m.incrByFloatLocked(key, d)
}

func (m *memConn) incrByFloatLocked(key string, delta decimal.Decimal) (string, error) {
	cur := decimal.Zero
	if e, ok := m.live(key); ok {
		d, err := decimal.NewFromString(string(e.s))
		if err != nil {
			return "", errors.New("ERR value is not a valid float")
		}
		cur = d
	}
	out := cur.Add(delta).String()
	m.setNumLocked(key, []byte(out))
	return out, nil
}

// setNumLocked writes numeric text preserving an existing TTL, as the
// increment commands do.
func (m *memConn) setNumLocked(key string, text []byte) {
	if e, ok := m.live(key); ok {
		e.s = text
		return
	}
	m.vals[key] = &memVal{s: text}
}

// Eval recognizes the four clamp scripts by their fixed source text and
// applies increment, compare, conditional overwrite and final-value return
// as one unit under the connection mutex.
func (m *memConn) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := keys[0]

	switch script {
	case clampIntMax.source, clampIntMin.source:
		delta := args[0].(int64)
		bound := args[1].(int64)
		v, err := m.incrByLocked(key, delta)
		if err != nil {
			return nil, err
		}
		if (script == clampIntMax.source && v > bound) || (script == clampIntMin.source && v < bound) {
			v = bound
			m.setNumLocked(key, []byte(strconv.FormatInt(v, 10)))
		}
		return v, nil

	case clampFloatMax.source, clampFloatMin.source:
		delta, err := decimal.NewFromString(args[0].(string))
		if err != nil {
			return nil, errors.New("ERR value is not a valid float")
		}
		boundText := args[1].(string)
		bound, err := decimal.NewFromString(boundText)
		if err != nil {
			return nil, errors.New("ERR value is not a valid float")
		}
		text, err := m.incrByFloatLocked(key, delta)
		if err != nil {
			return nil, err
		}
		v, _ := decimal.NewFromString(text)
		if (script == clampFloatMax.source && v.GreaterThan(bound)) ||
			(script == clampFloatMin.source && v.LessThan(bound)) {
			m.setNumLocked(key, []byte(boundText))
			return boundText, nil
		}
		return text, nil
	}
	return nil, fmt.Errorf("memConn: unknown script %q", script)
}

func (m *memConn) SAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		e = &memVal{set: make(map[string]bool)}
		m.vals[key] = e
	}
	var n int64
	for _, mb := range members {
		if !e.set[string(mb)] {
			e.set[string(mb)] = true
			n++
		}
	}
	return n, nil
}

func (m *memConn) SRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return 0, nil
	}
	var n int64
	for _, mb := range members {
		if e.set[string(mb)] {
			delete(e.set, string(mb))
			n++
		}
	}
	if len(e.set) == 0 {
		delete(m.vals, key)
	}
	return n, nil
}

func (m *memConn) SIsMember(ctx context.Context, key string, member []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return false, nil
	}
	return e.set[string(member)], nil
}

func (m *memConn) SMembers(ctx context.Context, key string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, len(e.set))
	for mb := range e.set {
		out = append(out, []byte(mb))
	}
	return out, nil
}

func (m *memConn) SCard(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return 0, nil
	}
	return int64(len(e.set)), nil
}

func (m *memConn) SRandMember(ctx context.Context, key string, count int64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, count)
	for mb := range e.set { // map order is as uniform as the tests need
		if int64(len(out)) == count {
			break
		}
		out = append(out, []byte(mb))
	}
	return out, nil
}

func (m *memConn) SPop(ctx context.Context, key string, count int64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, count)
	for mb := range e.set {
		if int64(len(out)) == count {
			break
		}
		out = append(out, []byte(mb))
		delete(e.set, mb)
	}
	if len(e.set) == 0 {
		delete(m.vals, key)
	}
	return out, nil
}

func (m *memConn) Close(context.Context) error { return nil }

// test-side inspection helpers

func (m *memConn) rawValue(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, false
	}
	return e.s, true
}

func (m *memConn) expiry(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return time.Time{}, false
	}
	return e.exp, true
}
