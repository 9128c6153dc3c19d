//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// setupRedis starts a throwaway Redis container and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	if len(endpoint) > 8 && endpoint[:8] == "redis://" {
		endpoint = endpoint[8:]
	}
	return endpoint
}

func TestRedisStore_PutAndGetLatest(t *testing.T) {
	addr := setupRedis(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	snapshot := testSnapshot("ES")
	if err := store.Put(ctx, snapshot); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := store.GetLatest(ctx, "ES")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if !found {
		t.Fatal("GetLatest() found = false")
	}
	if got.Zone != snapshot.Zone || got.Model != snapshot.Model {
		t.Errorf("GetLatest() = %+v, want %+v", got, snapshot)
	}
	if len(got.Values) != len(snapshot.Values) {
		t.Errorf("len(Values) = %d, want %d", len(got.Values), len(snapshot.Values))
	}
	if !got.Origin.Equal(snapshot.Origin) {
		t.Errorf("Origin = %v, want %v", got.Origin, snapshot.Origin)
	}
}

func TestRedisStore_GetLatest_Missing(t *testing.T) {
	addr := setupRedis(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	_, found, err := store.GetLatest(context.Background(), "PT")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if found {
		t.Error("GetLatest() found = true for missing zone")
	}
}

func TestRedisStore_Put_InvalidZone(t *testing.T) {
	addr := setupRedis(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	snapshot := testSnapshot("ES:west")
	if err := store.Put(context.Background(), snapshot); err == nil {
		t.Error("Put() = nil, want error for zone with colon")
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	addr := setupRedis(t)

	store, err := NewRedisStore(addr, "", 0, time.Second)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Put(ctx, testSnapshot("ES")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	_, found, err := store.GetLatest(ctx, "ES")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if found {
		t.Error("snapshot survived past its TTL")
	}
}

func TestRedisStore_InvalidConfig(t *testing.T) {
	if _, err := NewRedisStore("", "", 0, time.Minute); err == nil {
		t.Error("NewRedisStore() = nil for empty address")
	}
	if _, err := NewRedisStore("localhost:6379", "", -1, time.Minute); err == nil {
		t.Error("NewRedisStore() = nil for negative db")
	}
}
