package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jacentio/arbor/kv/memory"
)

func TestGetMissing(t *testing.T) {
	s := memory.New()
	v, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, _ := s.Get(ctx, "k")
	if !ok || v != "v1" {
		t.Errorf("expected ('v1', true), got (%q, %v)", v, ok)
	}

	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = s.Get(ctx, "k")
	if v != "v2" {
		t.Errorf("expected overwritten value 'v2', got %q", v)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected key gone after delete")
	}

	// deleting again is not an error
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "ctr")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestIncrNonNumeric(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Set(ctx, "ctr", "not a number")
	if _, err := s.Incr(ctx, "ctr"); err == nil {
		t.Error("expected error incrementing non-numeric value")
	}
}

func TestSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	ok, err := s.SetIfAbsent(ctx, "k", "first")
	if err != nil || !ok {
		t.Fatalf("expected first SetIfAbsent to win, got (%v, %v)", ok, err)
	}
	ok, err = s.SetIfAbsent(ctx, "k", "second")
	if err != nil {
		t.Fatalf("second SetIfAbsent: %v", err)
	}
	if ok {
		t.Error("expected second SetIfAbsent to lose")
	}
	v, _, _ := s.Get(ctx, "k")
	if v != "first" {
		t.Errorf("expected value 'first' preserved, got %q", v)
	}
}

func TestDeleteIfEquals(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Set(ctx, "k", "mine")

	ok, err := s.DeleteIfEquals(ctx, "k", "theirs")
	if err != nil {
		t.Fatalf("delete-if-equals: %v", err)
	}
	if ok {
		t.Error("expected mismatch to leave key in place")
	}
	if _, present, _ := s.Get(ctx, "k"); !present {
		t.Fatal("key removed despite value mismatch")
	}

	ok, _ = s.DeleteIfEquals(ctx, "k", "mine")
	if !ok {
		t.Error("expected matching delete to succeed")
	}
	ok, _ = s.DeleteIfEquals(ctx, "k", "mine")
	if ok {
		t.Error("expected delete of missing key to report false")
	}
}

func TestIncrConcurrent(t *testing.T) {
	const workers = 64
	const perWorker = 50

	ctx := context.Background()
	s := memory.New()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := s.Incr(ctx, "ctr"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := s.Incr(ctx, "ctr")
	if err != nil {
		t.Fatal(err)
	}
	if got != workers*perWorker+1 {
		t.Errorf("expected %d after concurrent increments, got %d", workers*perWorker+1, got)
	}
}

func TestSetIfAbsentConcurrent(t *testing.T) {
	const workers = 32

	ctx := context.Background()
	s := memory.New()

	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.SetIfAbsent(ctx, "claim", "x")
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}
