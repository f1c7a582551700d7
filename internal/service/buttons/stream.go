package buttons

import (
	"context"
	"io"
)

// Source delivers snapshots in arrival order.
// Next returns io.EOF once the upstream has completed.
type Source interface {
	Next(ctx context.Context) (Snapshot, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) (Snapshot, error)

// Next calls f.
func (f SourceFunc) Next(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

type chanSource struct {
	ch <-chan Snapshot
}

// ChanSource returns a Source reading from ch. Closing ch completes the source.
func ChanSource(ch <-chan Snapshot) Source {
	return &chanSource{ch: ch}
}

func (c *chanSource) Next(ctx context.Context) (Snapshot, error) {
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case s, ok := <-c.ch:
		if !ok {
			return Snapshot{}, io.EOF
		}
		return s, nil
	}
}

// SliceSource returns a Source that yields the given snapshots and completes.
func SliceSource(snapshots ...Snapshot) Source {
	i := 0
	return SourceFunc(func(ctx context.Context) (Snapshot, error) {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		if i >= len(snapshots) {
			return Snapshot{}, io.EOF
		}
		s := snapshots[i]
		i++
		return s, nil
	})
}

// Run subscribes l to src with a fresh machine and blocks until the source
// completes (nil), fails (the source error, unchanged) or ctx is cancelled
// (ctx.Err()). No snapshot is evaluated after Run returns.
func Run(ctx context.Context, src Source, l Listener) error {
	m := NewMachine()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.Dispatch(s, l)
	}
}
