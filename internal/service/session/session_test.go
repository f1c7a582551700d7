package session

import (
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestGenerator_Next(t *testing.T) {
	gen := New()

	s1 := gen.Next("op-0")
	if s1 != "op-0-session-1" {
		t.Errorf("expected 'op-0-session-1', got %s", s1)
	}

	s2 := gen.Next("op-0")
	if s2 != "op-0-session-2" {
		t.Errorf("expected 'op-0-session-2', got %s", s2)
	}

	s3 := gen.Next("op-1")
	if s3 != "op-1-session-1" {
		t.Errorf("expected 'op-1-session-1', got %s", s3)
	}
}

func TestGenerator_ThreadSafety(t *testing.T) {
	gen := New()
	numGoroutines := 100
	resultsPerGoroutine := 10

	var wg sync.WaitGroup
	results := make(chan string, numGoroutines*resultsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < resultsPerGoroutine; j++ {
				results <- gen.Next("op-concurrent")
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		if seen[id] {
			t.Errorf("duplicate session ID generated: %s", id)
		}
		seen[id] = true
	}

	expectedCount := numGoroutines * resultsPerGoroutine
	if len(seen) != expectedCount {
		t.Errorf("expected %d unique session IDs, got %d", expectedCount, len(seen))
	}
	if got := gen.Count("op-concurrent"); got != uint64(expectedCount) {
		t.Errorf("expected count %d, got %d", expectedCount, got)
	}
}

func TestGenerator_CounterMonotonic(t *testing.T) {
	gen := New()

	var prev uint64
	for i := 0; i < 100; i++ {
		id := gen.Next("op-test")
		idx := strings.LastIndex(id, "-")
		num, err := strconv.ParseUint(id[idx+1:], 10, 64)
		if err != nil {
			t.Fatalf("failed to parse session ID: %s", id)
		}
		if num <= prev {
			t.Errorf("counter not monotonic: %d <= %d", num, prev)
		}
		prev = num
	}
}

func TestGenerator_CountUnknownOperator(t *testing.T) {
	gen := New()
	if got := gen.Count("nobody"); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
