// Package typedkv is a typed client layer over a remote Redis-compatible
// store's string and set data types. It adds generic value serialization,
// expiration management, atomic server-side clamped counters, and a
// get-or-compute (cache-aside) helper on top of a connection the caller owns.
//
// Components:
//   - store.Conn: command-level executor contract (single commands, the
//     GETSET+EXPIRE transaction, Lua eval). store/redis adapts go-redis v9.
//   - codec.Codec[V]: (de)serializes V <-> []byte. JSON, msgpack, CBOR,
//     protobuf and identity codecs ship in codec/.
//   - KeySpace: binds a key prefix to one Conn (connection + database index).
//   - Scalar[V] / SetColl[V]: typed operations over string and set keys.
//
// Nothing is cached locally: every operation is a round trip, and the only
// state this layer holds is the immutable configuration it was built with.
// Atomicity of the compound operations (clamped increment, GETSET with TTL)
// is delegated to the store's script/transaction execution, never to client
// side read-modify-write.
//
// Counter keys hold the store's bare numeric text so INCRBY/INCRBYFLOAT can
// operate on them server-side. Do not mix counter keys and codec-encoded
// keys under the same name.
package typedkv
