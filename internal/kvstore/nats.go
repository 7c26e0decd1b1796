package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

// DefNATSBucket is the name of the JetStream KV bucket that is used when none
// is configured.
const DefNATSBucket = "hooky"

const (
	defBucketCreateTimeout = time.Minute
	maxCASAttempts         = 32
)

// NATS is a Store backed by a NATS JetStream key-value bucket.
//
// JetStream buckets only support a TTL per bucket, the expiration time of
// keys written with SetEx is therefore stored together with the value and
// evaluated on read. Incr is implemented as compare-and-swap on the revision
// of the key.
type NATS struct {
	nc     *nats.Conn
	kv     jetstream.KeyValue
	logger *zap.Logger
}

type natsRecord struct {
	Value []byte `json:"v"`
	// ExpiresAt is the expiration time as unix nanoseconds, 0 if the
	// record does not expire.
	ExpiresAt int64 `json:"exp,omitempty"`
}

func (r *natsRecord) expired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.UnixNano() >= r.ExpiresAt
}

// NewNATS connects to the NATS server at url and opens the key-value bucket,
// the bucket is created if it does not exist.
func NewNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("hooky"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats server failed: %w", err)
	}

	store, err := NewNATSFromConn(ctx, nc, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}

	return store, nil
}

// NewNATSFromConn opens or creates the key-value bucket via nc.
// Closing the returned store closes nc.
func NewNATSFromConn(ctx context.Context, nc *nats.Conn, bucket string) (*NATS, error) {
	logger := zap.L().Named(loggerName).Named("nats")

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("creating jetstream context failed: %w", err)
	}

	if bucket == "" {
		bucket = DefNATSBucket
	}

	kv, err := ensureBucket(ctx, logger, js, bucket)
	if err != nil {
		return nil, err
	}

	return &NATS{
		nc:     nc,
		kv:     kv,
		logger: logger,
	}, nil
}

// ensureBucket opens the bucket or creates it if it does not exist.
// Multiple instances can race on creating it, failed attempts are retried.
func ensureBucket(ctx context.Context, logger *zap.Logger, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	var kv jetstream.KeyValue

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = defBucketCreateTimeout

	err := backoff.Retry(func() error {
		var err error

		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "hooky selection counters and caches",
			History:     1,
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err = js.KeyValue(ctx, bucket)
			if err == nil {
				return nil
			}
		}

		logger.Info(
			"creating kv bucket failed, retrying",
			logfields.Event("kv_bucket_creation_failed"),
			zap.String("bucket", bucket),
			zap.Error(err),
		)

		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("creating or opening kv bucket %q failed: %w", bucket, err)
	}

	return kv, nil
}

// natsKey maps key to a valid JetStream key, keys may only contain a
// restricted set of characters.
func natsKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (n *NATS) getRecord(ctx context.Context, key string) (*natsRecord, uint64, error) {
	entry, err := n.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, ErrNotFound
		}

		return nil, 0, fmt.Errorf("nats kv get %s failed: %w", key, err)
	}

	var rec natsRecord
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, 0, fmt.Errorf("decoding nats kv record %s failed: %w", key, err)
	}

	return &rec, entry.Revision(), nil
}

func (n *NATS) putRecord(ctx context.Context, key string, rec *natsRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(ctx, natsKey(key), data); err != nil {
		return fmt.Errorf("nats kv put %s failed: %w", key, err)
	}

	return nil
}

func (n *NATS) Incr(ctx context.Context, key string) (int64, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		rec, revision, err := n.getRecord(ctx, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}

		var cur int64
		var expiresAt int64
		if rec != nil && !rec.expired(time.Now()) {
			cur, err = strconv.ParseInt(string(rec.Value), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("value of key %s is not an integer: %w", key, err)
			}
			expiresAt = rec.ExpiresAt
		}

		next := cur + 1
		data, err := json.Marshal(&natsRecord{
			Value:     []byte(strconv.FormatInt(next, 10)),
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return 0, err
		}

		if revision == 0 {
			_, err = n.kv.Create(ctx, natsKey(key), data)
		} else {
			_, err = n.kv.Update(ctx, natsKey(key), data, revision)
		}
		if err == nil {
			return next, nil
		}

		// ErrKeyExists is also returned when the revision does not match
		if !errors.Is(err, jetstream.ErrKeyExists) {
			return 0, fmt.Errorf("nats kv incr %s failed: %w", key, err)
		}

		n.logger.Debug(
			"key was modified concurrently, retrying increment",
			logfields.Event("kv_incr_conflict"),
			logfields.CacheKey(key),
			zap.Int("attempt", attempt),
		)
	}

	return 0, fmt.Errorf("nats kv incr %s failed: key was modified concurrently %d times", key, maxCASAttempts)
}

func (n *NATS) Get(ctx context.Context, key string) ([]byte, error) {
	rec, _, err := n.getRecord(ctx, key)
	if err != nil {
		return nil, err
	}

	if rec.expired(time.Now()) {
		return nil, ErrNotFound
	}

	return rec.Value, nil
}

func (n *NATS) Set(ctx context.Context, key string, value []byte) error {
	return n.putRecord(ctx, key, &natsRecord{Value: value})
}

func (n *NATS) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	return n.putRecord(ctx, key, &natsRecord{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl).UnixNano(),
	})
}

func (n *NATS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (n *NATS) Close() error {
	return n.nc.Drain()
}
