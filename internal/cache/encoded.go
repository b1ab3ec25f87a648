package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
)

// EncodedRepository stores values of one record type in a ByteStore through a Codec.
// Backends are shared across record types; each instantiation encodes its own values.
type EncodedRepository[T any] struct {
	store        ByteStore
	codec        Codec[T]
	metadataSink metadata.MetadataSink
}

func NewEncodedRepository[T any](
	store ByteStore,
	codec Codec[T],
	metadataSink metadata.MetadataSink,
) *EncodedRepository[T] {
	return &EncodedRepository[T]{
		store:        store,
		codec:        codec,
		metadataSink: metadataSink,
	}
}

func (r *EncodedRepository[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	data, found, err := r.store.GetBytes(ctx, key)
	if err != nil {
		r.recordError("EncodedRepository.Get", key, err)
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}

	value, err := r.codec.Decode(data)
	if err != nil {
		cacheErr := &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
			Key:       key,
		}
		r.recordError("EncodedRepository.Get", key, cacheErr)
		return zero, false, cacheErr
	}
	return value, true, nil
}

func (r *EncodedRepository[T]) Set(ctx context.Context, key string, value T, ttlSeconds uint64) error {
	data, err := r.codec.Encode(value)
	if err != nil {
		cacheErr := &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Key:       key,
		}
		r.recordError("EncodedRepository.Set", key, cacheErr)
		return cacheErr
	}

	if err := r.store.SetBytes(ctx, key, data, ttlSeconds); err != nil {
		r.recordError("EncodedRepository.Set", key, err)
		return err
	}
	return nil
}

func (r *EncodedRepository[T]) recordError(action string, key string, err error) {
	cause := metadata.CauseCacheFailure
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		cause = mapCacheErrorToMetadataCause(cacheErr)
	}
	r.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, key),
			metadata.NewAttr(metadata.AttrCodec, r.codec.Name()),
		},
	)
}
