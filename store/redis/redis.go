// Package redis adapts a go-redis client to the store.Conn contract.
package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	st "github.com/unkn0wn-root/typedkv/store"
)

var ErrNilClient = errors.New("redis conn: nil client")

// Conn executes typedkv commands on a go-redis client. The client's database
// index (redis.Options.DB) is the partition this Conn targets.
type Conn struct {
	rdb         goredis.UniversalClient
	closeClient bool

	// scripts caches redis.Script handles per script body so repeated Eval
	// calls reuse the precomputed SHA1 (EVALSHA with NOSCRIPT fallback).
	scripts sync.Map // string -> *goredis.Script
}

var _ st.Conn = (*Conn)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this Conn exclusively owns the client
}

func New(cfg Config) (*Conn, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Conn{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Open dials addr and selects the given database index. The returned Conn
// owns the client and closes it on Close.
func Open(addr string, db int) *Conn {
	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: db})
	return &Conn{rdb: client, closeClient: true}
}

func (c *Conn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set passes ttl through unvalidated: 0 persists, negative values are the
// caller's error and the server rejects or immediately expires them.
func (c *Conn) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Conn) GetSet(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	b, err := c.rdb.GetSet(ctx, key, value).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// GetSetEx bundles GETSET and EXPIRE into one MULTI/EXEC transaction. Redis
// has no single command that swaps a value, applies a TTL and returns the old
// value, so the pair is committed as a unit: either both apply or neither.
func (c *Conn) GetSetEx(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, bool, error) {
	var getset *goredis.StringCmd
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		getset = p.GetSet(ctx, key, value)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil && err != goredis.Nil {
		return nil, false, err
	}
	b, err := getset.Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *Conn) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.Expire(ctx, key, ttl).Result()
}

func (c *Conn) ExpireAt(ctx context.Context, key string, at time.Time) (bool, error) {
	return c.rdb.ExpireAt(ctx, key, at).Result()
}

func (c *Conn) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Conn) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.rdb.Del(ctx, keys...).Result()
}

func (c *Conn) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return c.rdb.IncrBy(ctx, key, delta).Result()
}

// IncrByFloat goes through Do instead of the typed client method: go-redis
// parses the reply into a float64, and the raw reply text is what keeps the
// value round-trippable.
func (c *Conn) IncrByFloat(ctx context.Context, key string, delta string) (string, error) {
	return c.rdb.Do(ctx, "incrbyfloat", key, delta).Text()
}

func (c *Conn) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	var s *goredis.Script
	if v, ok := c.scripts.Load(script); ok {
		s = v.(*goredis.Script)
	} else {
		v, _ := c.scripts.LoadOrStore(script, goredis.NewScript(script))
		s = v.(*goredis.Script)
	}
	return s.Run(ctx, c.rdb, keys, args...).Result()
}

func (c *Conn) SAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	return c.rdb.SAdd(ctx, key, toArgs(members)...).Result()
}

func (c *Conn) SRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	return c.rdb.SRem(ctx, key, toArgs(members)...).Result()
}

func (c *Conn) SIsMember(ctx context.Context, key string, member []byte) (bool, error) {
	return c.rdb.SIsMember(ctx, key, member).Result()
}

func (c *Conn) SMembers(ctx context.Context, key string) ([][]byte, error) {
	ms, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return toBytes(ms), nil
}

func (c *Conn) SCard(ctx context.Context, key string) (int64, error) {
	return c.rdb.SCard(ctx, key).Result()
}

func (c *Conn) SRandMember(ctx context.Context, key string, count int64) ([][]byte, error) {
	ms, err := c.rdb.SRandMemberN(ctx, key, count).Result()
	if err != nil {
		return nil, err
	}
	return toBytes(ms), nil
}

func (c *Conn) SPop(ctx context.Context, key string, count int64) ([][]byte, error) {
	ms, err := c.rdb.SPopN(ctx, key, count).Result()
	if err != nil {
		return nil, err
	}
	return toBytes(ms), nil
}

// Close releases the underlying client only when this Conn owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (c *Conn) Close(context.Context) error {
	if c.closeClient {
		if err := c.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func toArgs(members [][]byte) []any {
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

func toBytes(ms []string) [][]byte {
	out := make([][]byte, len(ms))
	for i, m := range ms {
		out[i] = []byte(m)
	}
	return out
}
