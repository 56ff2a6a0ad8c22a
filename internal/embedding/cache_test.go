package embedding

import (
	"context"
	"errors"
	"testing"
)

func TestCachedEmbedder(t *testing.T) {
	inner := NewMockEmbedder(4)
	c, err := NewCachedEmbedder(inner, 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	a1, err := c.Embed(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := c.Embed(ctx, "a")
	if inner.Calls() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.Calls())
	}
	a2[0] = 99
	a3, _ := c.Embed(ctx, "a")
	if a3[0] != a1[0] {
		t.Error("cached vector was mutated through a returned copy")
	}

	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts a
	_, _ = c.Embed(ctx, "a")
	if inner.Calls() != 4 {
		t.Errorf("inner calls = %d, want 4 after eviction", inner.Calls())
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Dimensions() != 4 {
		t.Errorf("Dimensions() = %d", c.Dimensions())
	}
}

func TestCachedEmbedder_FailuresNotCached(t *testing.T) {
	boom := errors.New("boom")
	inner := NewMockEmbedder(2, WithFailures(map[string]error{"x": boom}))
	c, _ := NewCachedEmbedder(inner, 8)
	if _, err := c.Embed(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	inner.SetFailure("x", nil)
	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("second call err = %v", err)
	}
	if inner.Calls() != 2 {
		t.Errorf("inner calls = %d, want 2", inner.Calls())
	}
}
