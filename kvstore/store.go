// Package kvstore is the persistence tier for intake state. It models the
// browser's local storage as a flat key-value store holding JSON documents.
package kvstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Keys used by the front-end's local storage layout.
const (
	KeyDiagnosisHistory = "diagnosisHistory"
	KeyDoctorInfo       = "doctorInfo"
	KeyLearningProgress = "dictionaryLearningProgress"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("key not found")

// Store is implemented by MemoryStore, BoltStore and RedisStore.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and unmarshals it into dest. A decode failure is returned
// wrapped so callers can differentiate it from ErrNotFound.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	return nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}
	return s.Set(ctx, key, data)
}

// DecodeError reports stored bytes that are not valid JSON for the target type.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return "failed to decode " + e.Key + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err (or anything it wraps) is a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
