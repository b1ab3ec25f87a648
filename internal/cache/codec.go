package cache

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts a record to and from its stored form.
// Decode(Encode(v)) must equal v.
type Codec[T any] interface {
	Name() string
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type JSONCodec[T any] struct{}

func (JSONCodec[T]) Name() string {
	return CodecJSON
}

func (JSONCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}

type MsgpackCodec[T any] struct{}

func (MsgpackCodec[T]) Name() string {
	return CodecMsgpack
}

func (MsgpackCodec[T]) Encode(value T) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (MsgpackCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := msgpack.Unmarshal(data, &value)
	return value, err
}

// CodecFor resolves a codec by name; an unknown name returns false.
func CodecFor[T any](name string) (Codec[T], bool) {
	switch name {
	case CodecJSON, "":
		return JSONCodec[T]{}, true
	case CodecMsgpack:
		return MsgpackCodec[T]{}, true
	default:
		return nil, false
	}
}
