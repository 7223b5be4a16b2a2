// Package codec defines the serialization strategy used by typedkv.
//
// A Codec turns values of type V into the store's binary string
// representation and back. Implementations must satisfy the round-trip law
// (Decode(Encode(v)) == v for every supported v) and encode
// deterministically, since encoded bytes may be compared remotely.
//
// The concrete format is configuration, not contract: JSON, msgpack, CBOR,
// protobuf and identity codecs ship here, and callers may bring their own.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
