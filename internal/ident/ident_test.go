package ident

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := NewWithClock(func() time.Time { return fixed })

	tests := []struct {
		prefix string
		want   string
	}{
		{"acc", "acc_1700000000000_1"},
		{"cat", "cat_1700000000000_2"},
		{"txn", "txn_1700000000000_3"},
	}

	for _, tt := range tests {
		got := g.NewID(tt.prefix)
		if got != tt.want {
			t.Errorf("NewID(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestCounterIsMonotonic(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.NewID("txn")
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestReset(t *testing.T) {
	fixed := time.UnixMilli(42)
	g := NewWithClock(func() time.Time { return fixed })

	g.NewID("acc")
	g.NewID("acc")
	g.Reset()

	got := g.NewID("acc")
	want := fmt.Sprintf("acc_%d_1", fixed.UnixMilli())
	if got != want {
		t.Errorf("after Reset, NewID = %q, want %q", got, want)
	}
}

func TestPrefixIsPreserved(t *testing.T) {
	g := New()
	for _, prefix := range []string{"acc", "cat", "txn", "bud"} {
		id := g.NewID(prefix)
		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("NewID(%q) = %q, missing prefix", prefix, id)
		}
	}
}
