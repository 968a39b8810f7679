package db

import (
	"context"
	"testing"
	"time"
)

type kvValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestKV_SetGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.KVSet(ctx, "a", kvValue{Name: "x", Count: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.KVSet(ctx, "a", kvValue{Name: "y", Count: 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var got kvValue
	if err := db.KVGet(ctx, "a", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "y" || got.Count != 2 {
		t.Errorf("got %+v, want overwritten value", got)
	}

	if err := db.KVDelete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.KVGet(ctx, "a", &got); !IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestKV_TTL(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.KVSetTTL(ctx, "short", kvValue{Name: "gone"}, time.Millisecond); err != nil {
		t.Fatalf("set ttl: %v", err)
	}
	if err := db.KVSetTTL(ctx, "long", kvValue{Name: "kept"}, time.Hour); err != nil {
		t.Fatalf("set ttl: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got kvValue
	if err := db.KVGet(ctx, "short", &got); !IsNotFound(err) {
		t.Errorf("expected expired entry to be missing, got %v", err)
	}

	if err := db.KVSetTTL(ctx, "short2", kvValue{}, time.Millisecond); err != nil {
		t.Fatalf("set ttl: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	n, err := db.KVSweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d entries, want 1", n)
	}
	if err := db.KVGet(ctx, "long", &got); err != nil {
		t.Errorf("long-lived entry should survive sweep: %v", err)
	}
}
