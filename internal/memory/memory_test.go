package memory

import (
	"context"
	"testing"
)

func TestInMemory_RoundTrip(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v1" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	// Set overwrites rather than appending.
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, _, _ = s.Get(ctx, "k")
	if v != "v2" {
		t.Errorf("Get after overwrite = %q", v)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestInMemory_DeleteMissing(t *testing.T) {
	if err := NewInMemory().Delete(context.Background(), "absent"); err != nil {
		t.Fatalf("Delete on missing key: %v", err)
	}
}
