package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/polkiloo/procuremart/internal/metrics"
)

func TestSagaRunsAllSteps(t *testing.T) {
	var trace []string
	s := &saga{logger: discardLogger()}
	for _, name := range []string{"a", "b"} {
		name := name
		s.add(sagaStep{
			name: name,
			do:   func(context.Context) error { trace = append(trace, "do "+name); return nil },
			undo: func(context.Context) error { trace = append(trace, "undo "+name); return nil },
		})
	}
	require.NoError(t, s.run(context.Background()))
	assert.Equal(t, []string{"do a", "do b"}, trace)
}

func TestSagaCompensatesInReverse(t *testing.T) {
	errStep := errors.New("insert failed")
	reg := prometheus.NewRegistry()
	var trace []string
	s := &saga{logger: discardLogger(), metrics: metrics.NewProcurement(reg)}
	s.add(sagaStep{
		name: "first",
		do:   func(context.Context) error { trace = append(trace, "do first"); return nil },
		undo: func(context.Context) error { trace = append(trace, "undo first"); return nil },
	})
	s.add(sagaStep{
		name: "second",
		do:   func(context.Context) error { trace = append(trace, "do second"); return nil },
	})
	s.add(sagaStep{
		name: "third",
		do:   func(context.Context) error { trace = append(trace, "do third"); return errStep },
		undo: func(context.Context) error { trace = append(trace, "undo third"); return nil },
	})

	err := s.run(context.Background())
	require.ErrorIs(t, err, errStep)
	assert.Equal(t, []string{"do first", "do second", "do third", "undo first"}, trace)
}

func TestSagaUndoIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &saga{logger: discardLogger()}
	var undoCtxErr error
	s.add(sagaStep{
		name: "reserve",
		do:   func(context.Context) error { return nil },
		undo: func(ctx context.Context) error { undoCtxErr = ctx.Err(); return nil },
	})
	s.add(sagaStep{
		name: "insert",
		do: func(context.Context) error {
			cancel()
			return context.Canceled
		},
	})

	err := s.run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, undoCtxErr)
}

func TestSagaCombinesUndoFailures(t *testing.T) {
	errStep := errors.New("insert failed")
	errUndo := errors.New("release failed")
	s := &saga{logger: discardLogger()}
	s.add(sagaStep{
		name: "reserve",
		do:   func(context.Context) error { return nil },
		undo: func(context.Context) error { return errUndo },
	})
	s.add(sagaStep{
		name: "insert",
		do:   func(context.Context) error { return errStep },
	})

	err := s.run(context.Background())
	require.ErrorIs(t, err, errStep)
	require.ErrorIs(t, err, errUndo)
	assert.Len(t, multierr.Errors(err), 2)
}
