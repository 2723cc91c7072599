package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bromq-dev/mqttc/pkg/client"
)

// The store satisfies the client's credential source.
var _ client.CredentialSource = (*Redis)(nil)

// newTestStore connects to the Redis server named by MQTTC_REDIS_ADDR.
func newTestStore(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("MQTTC_REDIS_ADDR")
	if addr == "" {
		t.Skip("MQTTC_REDIS_ADDR not set")
	}
	s := NewRedis(&Config{
		Addr:      addr,
		KeyPrefix: fmt.Sprintf("mqttc-test-%d:", time.Now().UnixNano()),
		TTL:       time.Minute,
	})
	t.Cleanup(func() { s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
	return s
}

func TestKey(t *testing.T) {
	s := NewRedis(nil)
	defer s.Close()
	if got := s.key("device-1"); got != "mqttc:cred:device-1" {
		t.Errorf("key() = %q", got)
	}
}

func TestPutCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "device-1", Record{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	username, password, err := s.Credentials(ctx, "device-1")
	if err != nil {
		t.Fatalf("Credentials() error: %v", err)
	}
	if username != "alice" || password != "s3cret" {
		t.Errorf("Credentials() = %q, %q", username, password)
	}

	if err := s.Delete(ctx, "device-1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Credentials(ctx, "device-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Credentials() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestCredentialsNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Credentials(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Credentials() error = %v, want ErrNotFound", err)
	}
}

func TestCorruptRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.client.Set(ctx, s.key("bad"), []byte{0xC1}, time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Credentials(ctx, "bad"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Credentials() error = %v, want decode error", err)
	}
}
