package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsKV is a Store backed by a NATS JetStream key-value bucket, shared by
// all extractor instances through key namespacing. Expiry is bucket-level:
// a zero TTL keeps entries until they are explicitly deleted.
type NatsKV struct {
	kv nats.KeyValue
}

// NewNatsKV binds to the named bucket, creating it when absent.
func NewNatsKV(nc *nats.Conn, bucket string, ttl time.Duration) (*NatsKV, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    ttl,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("bind kv bucket %s: %w", bucket, err)
	}
	return &NatsKV{kv: kv}, nil
}

func (s *NatsKV) Get(_ context.Context, key string) (string, bool, error) {
	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

func (s *NatsKV) Set(_ context.Context, key, value string) error {
	if _, err := s.kv.Put(key, []byte(value)); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (s *NatsKV) Delete(_ context.Context, key string) error {
	err := s.kv.Delete(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil
	}
	return err
}
