package cache

import (
	"errors"
	"testing"

	"github.com/shy-lang/shy/instr"
)

func compileStub(src string) *instr.Expression {
	return &instr.Expression{Source: src}
}

func TestCache_Basic(t *testing.T) {
	c := New(2)
	if c == nil {
		t.Fatal("expected non-nil Cache")
	}
	if c.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", c.Capacity())
	}

	calls := 0
	produce := func(key string) (*instr.Expression, error) {
		calls++
		return compileStub(key), nil
	}

	e1, err := c.GetOrAdd("1 + 1", produce)
	if err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}

	e2, err := c.GetOrAdd("1 + 1", produce)
	if err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}

	if e1 != e2 {
		t.Fatalf("expected cached *Expression pointer, got different instances")
	}
	if calls != 1 {
		t.Fatalf("expected produce to run once on a hit, ran %d times", calls)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(2)
	produce := func(key string) (*instr.Expression, error) {
		return compileStub(key), nil
	}

	if _, err := c.GetOrAdd("a", produce); err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}
	if _, err := c.GetOrAdd("b", produce); err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}
	if _, err := c.GetOrAdd("c", produce); err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}

	if c.Size() != 2 {
		t.Fatalf("expected size to stay at capacity 2 after eviction, got %d", c.Size())
	}
}

func TestCache_ProduceError(t *testing.T) {
	c := New(2)
	wantErr := errors.New("bad source")
	_, err := c.GetOrAdd("bad", func(key string) (*instr.Expression, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected produce's error to propagate, got %v", err)
	}
	if c.Size() != 0 {
		t.Fatalf("expected nothing cached after a produce error, got size %d", c.Size())
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(5)
	produce := func(key string) (*instr.Expression, error) {
		return compileStub(key), nil
	}

	if _, err := c.GetOrAdd("a", produce); err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}
	if _, err := c.GetOrAdd("b", produce); err != nil {
		t.Fatalf("GetOrAdd failed: %v", err)
	}

	if c.Size() == 0 {
		t.Fatalf("expected non-zero size before Clear")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected size 0 after Clear, got %d", c.Size())
	}
}
