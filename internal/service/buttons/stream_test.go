package buttons

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRun_CompletesWithSource(t *testing.T) {
	r := &recorder{}

	err := Run(context.Background(), SliceSource(btn1, both, none), r)
	if err != nil {
		t.Fatalf("expected nil error on completion, got %v", err)
	}

	expected := []string{"down", "start", "down", "twoUp"}
	if !reflect.DeepEqual(r.events, expected) {
		t.Errorf("expected events %v, got %v", expected, r.events)
	}
}

func TestRun_PropagatesSourceError(t *testing.T) {
	errTransport := errors.New("transport lost")
	calls := 0
	src := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		calls++
		if calls == 1 {
			return btn1, nil
		}
		return Snapshot{}, errTransport
	})

	r := &recorder{}
	err := Run(context.Background(), src, r)
	if !errors.Is(err, errTransport) {
		t.Errorf("expected source error, got %v", err)
	}
	if r.count("start") != 1 {
		t.Errorf("expected the snapshot before the error to be processed, got %v", r.events)
	}
}

func TestRun_ChanSource(t *testing.T) {
	ch := make(chan Snapshot, 4)
	ch <- both
	ch <- btn2
	ch <- none
	close(ch)

	r := &recorder{}
	if err := Run(context.Background(), ChanSource(ch), r); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if r.count("twoUp") != 1 {
		t.Errorf("expected one twoUp, got %v", r.events)
	}
}

func TestRun_CancelStopsEvaluation(t *testing.T) {
	ch := make(chan Snapshot)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	r := &recorder{}
	go func() {
		done <- Run(ctx, ChanSource(ch), r)
	}()

	ch <- btn1
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if r.count("oneUp") != 0 {
		t.Errorf("expected no release after cancel, got %v", r.events)
	}
}

func TestRun_EachSubscriptionOwnsItsState(t *testing.T) {
	first := &recorder{}
	second := &recorder{}

	// First subscription ends mid-session with both buttons down
	if err := Run(context.Background(), SliceSource(both), first); err != nil {
		t.Fatal(err)
	}
	// A new subscription starts idle, so releasing from one button is a plain oneUp
	if err := Run(context.Background(), SliceSource(btn1, none), second); err != nil {
		t.Fatal(err)
	}

	expected := []string{"down", "start", "oneUp"}
	if !reflect.DeepEqual(second.events, expected) {
		t.Errorf("expected events %v, got %v", expected, second.events)
	}
}
