package persistance

import (
	"context"
	"testing"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	if _, err := store.Load(ctx, "s1", types.Course); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Save(ctx, "s1", types.Course, "category=Finance&page=2"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx, "s1", types.Course)
	if err != nil || got != "category=Finance&page=2" {
		t.Errorf("unexpected state %q, %v", got, err)
	}
	if _, err := store.Load(ctx, "s1", types.Event); err != ErrNotFound {
		t.Errorf("state must be kept per content type")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Millisecond)
	store.Save(ctx, "s1", types.Guide, "q=vpn")
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Load(ctx, "s1", types.Guide); err != ErrNotFound {
		t.Errorf("expected expired entry, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("abc", types.Service); got != "slaskcatalog:view:abc:service" {
		t.Errorf("unexpected key %s", got)
	}
}
