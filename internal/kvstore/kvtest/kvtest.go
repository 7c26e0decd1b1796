// Package kvtest provides kvstore backends for tests.
package kvtest

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/simplesurance/hooky/internal/kvstore"
)

// NewRedis returns a Redis store that is connected to an in-process redis
// server. The server can be used to inspect and manipulate keys.
func NewRedis(t *testing.T) (*kvstore.Redis, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	store := kvstore.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	return store, srv
}

// NewNATS returns a NATS store that is connected to an embedded NATS server
// with JetStream enabled.
func NewNATS(t *testing.T) *kvstore.NATS {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
	})
	if err != nil {
		t.Fatalf("creating embedded nats server failed: %s", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded nats server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(2*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("connecting to embedded nats server failed: %s", err)
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := kvstore.NewNATSFromConn(ctx, nc, "test")
	if err != nil {
		nc.Close()
		t.Fatalf("creating nats store failed: %s", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}
