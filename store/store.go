// Package store defines the command-level executor contract consumed by
// typedkv. A Conn issues single commands, one fixed multi-command
// transaction (GetSetEx), and server-side scripts against a Redis-compatible
// store. Connection pooling, retries and reconnects belong to the
// implementation (or the client library underneath it), not to this contract.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for the same key. They MUST be safe for
// concurrent use and MUST honor context cancellation by abandoning the
// in-flight call rather than waiting locally.
package store

import (
	"context"
	"time"
)

// Conn is one target partition of the remote store: a connection handle plus
// the database index it was opened against.
//
// TTL semantics: ttl > 0 applies an expiry, ttl == 0 persists the key.
// Boolean ok results distinguish a miss from an empty value.
type Conn interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (0 = no expiry).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetSet atomically replaces the value and returns the previous one.
	// ok=false means the key did not exist before the write.
	GetSet(ctx context.Context, key string, value []byte) ([]byte, bool, error)

	// GetSetEx is GetSet plus an expiry on the new value, committed as one
	// transaction: no other client may observe the new value without its TTL,
	// and on failure or abandonment neither command applies.
	GetSetEx(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, bool, error)

	// Expire sets a relative TTL. ok=false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ExpireAt sets an absolute deadline. ok=false when the key does not exist.
	ExpireAt(ctx context.Context, key string, at time.Time) (bool, error)

	Exists(ctx context.Context, key string) (bool, error)

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// IncrBy / IncrByFloat are the store's native atomic increments over
	// numeric text. An absent key counts as zero. IncrByFloat returns the
	// store's reply text verbatim so no precision is lost.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, delta string) (string, error)

	// Eval runs a server-side script as one atomic unit. keys and args map to
	// the script's KEYS and ARGV arrays. The reply is the script's single
	// result: int64 for integer replies, string for bulk replies.
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)

	// Set-type commands. Multi-member variants issue one command.
	SAdd(ctx context.Context, key string, members ...[]byte) (int64, error)
	SRem(ctx context.Context, key string, members ...[]byte) (int64, error)
	SIsMember(ctx context.Context, key string, member []byte) (bool, error)
	SMembers(ctx context.Context, key string) ([][]byte, error)
	SCard(ctx context.Context, key string) (int64, error)
	SRandMember(ctx context.Context, key string, count int64) ([][]byte, error)
	SPop(ctx context.Context, key string, count int64) ([][]byte, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
