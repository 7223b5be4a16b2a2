package typedkv

import "github.com/unkn0wn-root/typedkv/store"

// KeySpace binds a key prefix to one target partition: the store.Conn it is
// built with carries the connection handle and the database index selected
// at client construction. A KeySpace is a pure mapping with no state of its
// own; which Conn serves which prefix is caller configuration.
type KeySpace struct {
	prefix string
	conn   store.Conn
}

// NewKeySpace builds a keyspace over conn. prefix may be empty; when set,
// every logical key is stored under "<prefix>:<name>".
func NewKeySpace(conn store.Conn, prefix string) KeySpace {
	return KeySpace{prefix: prefix, conn: conn}
}

// Key resolves a logical name to its cache key. The binding is fixed at
// construction: a Key resolves to exactly one partition for its lifetime.
func (ks KeySpace) Key(name string) Key {
	if ks.prefix == "" {
		return Key{name: name, conn: ks.conn}
	}
	return Key{name: ks.prefix + ":" + name, conn: ks.conn}
}

// Conn exposes the partition this keyspace targets.
func (ks KeySpace) Conn() store.Conn { return ks.conn }

// Key is an immutable (storage name, partition) pair.
type Key struct {
	name string
	conn store.Conn
}

// Name returns the full storage key, prefix included.
func (k Key) Name() string { return k.name }
