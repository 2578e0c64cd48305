package database

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestProvider_ConcurrentGetSharesPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")

	var opens atomic.Int32
	p := NewProvider(func() (*DB, error) {
		opens.Add(1)
		return Open(DialectSQLite, SQLiteDSN(path))
	})
	defer p.Close()

	const callers = 32
	results := make([]*DB, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := p.Get()
			if err != nil {
				t.Errorf("Get returned error: %v", err)
				return
			}
			results[i] = db
		}(i)
	}
	wg.Wait()

	if n := opens.Load(); n != 1 {
		t.Fatalf("expected the pool to be opened once, got %d", n)
	}
	for i, db := range results {
		if db == nil || db != results[0] {
			t.Fatalf("caller %d got a different pool", i)
		}
	}
}

func TestProvider_OpenErrorIsSticky(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	p := NewProvider(func() (*DB, error) {
		calls++
		return nil, boom
	})

	for range 3 {
		if _, err := p.Get(); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one open attempt, got %d", calls)
	}
}

func TestProvider_CloseBeforeGet(t *testing.T) {
	p := NewProvider(func() (*DB, error) {
		t.Fatal("open should not be called after Close")
		return nil, nil
	})

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := p.Get(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	if _, err := Open(Dialect("postgres"), "whatever"); err == nil {
		t.Fatal("expected an error for an unsupported dialect")
	}
}
