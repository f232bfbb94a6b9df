package db

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil tx for wrong type")
	}
}

func TestLocalTransactor_ReturnsError(t *testing.T) {
	tr := NewLocalTransactor()
	want := errors.New("boom")

	err := tr.InTx(context.Background(), func(ctx context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestLocalTransactor_Reentrant(t *testing.T) {
	tr := NewLocalTransactor()
	inner := false

	err := tr.InTx(context.Background(), func(ctx context.Context) error {
		return tr.InTx(ctx, func(ctx context.Context) error {
			inner = true
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inner {
		t.Error("expected nested scope to run")
	}
}

func TestLocalTransactor_Serialises(t *testing.T) {
	tr := NewLocalTransactor()
	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.InTx(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one active scope, saw %d", maxSeen)
	}
}
