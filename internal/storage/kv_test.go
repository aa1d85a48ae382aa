package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "data", "expenses.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKVImplementations(t *testing.T) {
	impls := map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemoryKV() },
		"sqlite": func(t *testing.T) KV { return newSQLite(t) },
	}
	for name, open := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := open(t)

			if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}

			if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := kv.Set(ctx, "k", []byte("v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := kv.Get(ctx, "k")
			if err != nil || !ok || string(got) != "v2" {
				t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
			}

			if err := kv.Set(ctx, "empty", nil); err != nil {
				t.Fatalf("set empty: %v", err)
			}
			if got, ok, err := kv.Get(ctx, "empty"); err != nil || !ok || len(got) != 0 {
				t.Fatalf("get empty: %q ok=%v err=%v", got, ok, err)
			}

			if err := kv.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if _, _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
				t.Fatalf("expected ErrClosed, got %v", err)
			}
			if err := kv.Set(ctx, "k", []byte("x")); !errors.Is(err, ErrClosed) {
				t.Fatalf("expected ErrClosed, got %v", err)
			}
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	in := []byte("abc")
	if err := kv.Set(ctx, "k", in); err != nil {
		t.Fatal(err)
	}
	in[0] = 'X'
	out, _, _ := kv.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", out)
	}
	out[1] = 'Y'
	again, _, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased stored slice: %q", again)
	}
}

func TestMemoryKVConcurrent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = kv.Set(ctx, "k", []byte{byte(i)})
			_, _, _ = kv.Get(ctx, "k")
		}(i)
	}
	wg.Wait()
	if _, ok, _ := kv.Get(ctx, "k"); !ok {
		t.Fatal("expected key after concurrent writes")
	}
}

func TestMemoryKVHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, ExpensesKey, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	if err := kv.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatal(err)
	}

	kv, err = NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	got, ok, err := kv.Get(ctx, ExpensesKey)
	if err != nil || !ok || string(got) != `[]` {
		t.Fatalf("after reopen: %q ok=%v err=%v", got, ok, err)
	}

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("unexpected schema version %d dirty=%v", version, dirty)
	}
}
