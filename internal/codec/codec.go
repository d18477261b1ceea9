// Package codec defines the payload serialization contract consumed by the
// store. The store core is byte-oriented: it frames each record as a u32
// little-endian length followed by the encoded payload, and never inspects
// the payload itself. Typed access is layered on top with Codec.
package codec

import "encoding/json"

// Codec encodes and decodes a payload type T.
//
// Encode must be deterministic and stable across runs. Decode may borrow
// from the input slice (the zero-copy path): when it does, the returned
// value is only valid while the backing store is open, and implementations
// must document that.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// Bytes is the identity codec: payloads are raw byte slices. Decode
// returns the input slice itself, so decoded values borrow from the
// underlying storage.
type Bytes struct{}

func (Bytes) Encode(v []byte) ([]byte, error) { return v, nil }

func (Bytes) Decode(data []byte) ([]byte, error) { return data, nil }

// String stores payloads as UTF-8 bytes. Decode copies.
type String struct{}

func (String) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (String) Decode(data []byte) (string, error) { return string(data), nil }

// JSON marshals payloads with encoding/json. Convenient for metadata and
// structured payloads where zero-copy decoding is not needed.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSON[T]) Decode(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
