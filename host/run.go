package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/lv2/mutable"
)

// runBuffers is the number of output buffers shared between stages.
const runBuffers = 2

// Run executes the session asynchronously. The session is processed in
// one goroutine and its output is sent to the sink in another one.
type Run struct {
	session  *Session
	ctx      context.Context
	cancelFn context.CancelFunc
	errc     chan error

	mu     sync.Mutex
	pusher mutable.Pusher
	dest   mutable.Destination
}

// Start allocates the sink and starts the run. Provided mutations are
// applied before the first cycle. Session must not be used directly
// until the run is done.
func Start(ctx context.Context, s *Session, sink Sink, initializers ...mutable.Mutation) (*Run, error) {
	sinkFn, err := sink.Sink(s.id, s.sampleRate, s.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("allocate sink: %w", err)
	}
	ctx, cancelFn := context.WithCancel(ctx)
	r := Run{
		session:  s,
		ctx:      ctx,
		cancelFn: cancelFn,
		errc:     make(chan error, 1),
		pusher:   mutable.NewPusher(),
		dest:     mutable.NewDestination(),
	}
	r.pusher.AddDestination(s.Context, r.dest)
	if err := r.Push(initializers...); err != nil {
		cancelFn()
		return nil, err
	}

	free := make(chan []float32, runBuffers)
	for i := 0; i < runBuffers; i++ {
		free <- make([]float32, s.bufferSize)
	}
	out := make(chan []float32, runBuffers)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(out)
		return r.process(gctx, free, out)
	})
	g.Go(func() error {
		return r.sink(gctx, sinkFn, free, out)
	})
	s.log.Info("run started")
	go r.wait(g, sink)
	return &r, nil
}

// process stage applies mutations and runs cycles until session is done.
func (r *Run) process(ctx context.Context, free <-chan []float32, out chan<- []float32) error {
	s := r.session
	for {
		if err := r.dest.Receive().ApplyTo(s.Context); err != nil {
			return fmt.Errorf("mutation: %w", err)
		}
		c, err := s.Process()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var buf []float32
		select {
		case buf = <-free:
		case <-ctx.Done():
			return ctx.Err()
		}
		buf = buf[:len(c.Output)]
		copy(buf, c.Output)
		select {
		case out <- buf:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sink stage sends processed buffers to the sink.
func (r *Run) sink(ctx context.Context, sinkFn func([]float32) error, free chan<- []float32, out <-chan []float32) error {
	for {
		select {
		case buf, ok := <-out:
			if !ok {
				return nil
			}
			if err := sinkFn(buf); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
			free <- buf[:cap(buf)]
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// wait for stages to finish and flush components.
func (r *Run) wait(g *errgroup.Group, sink Sink) {
	errExec := g.Wait()
	r.cancelFn()
	s := r.session
	errFlush := s.Flush()
	if f, ok := sink.(Flusher); ok {
		if err := f.Flush(s.id); err != nil && errFlush == nil {
			errFlush = err
		}
	}
	err := newErrorRun(errExec, errFlush)
	l := s.log.WithFields(logrus.Fields{
		"frames":  s.position,
		"dropped": s.dropped,
	})
	if err != nil {
		l.WithError(err).Error("run failed")
	} else {
		l.Info("run done")
	}
	r.errc <- err
	close(r.errc)
}

// Push mutations to the session. Mutations are applied before the next
// cycle.
func (r *Run) Push(mutations ...mutable.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.pusher.Put(mutations...); err != nil {
		return err
	}
	return r.pusher.Push(r.ctx)
}

// Cancel stops the run.
func (r *Run) Cancel() {
	r.cancelFn()
}

// Wait for the run to finish. It returns ErrorRun if execution or flush
// failed.
func (r *Run) Wait() error {
	return <-r.errc
}
