package sim

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Post once the runner has stopped.
var ErrStopped = errors.New("sim: runner stopped")

// Runner drives a Loop from a frame channel on its own goroutine. Work that touches the
// world must go through Post so it runs between frames on that goroutine.
type Runner struct {
	loop   *Loop
	inbox  chan func(*Loop)
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	onStop func()
	err    error
}

// Start runs loop.Advance once per value received from frames until ctx is cancelled or
// Stop is called.
func Start(ctx context.Context, loop *Loop, frames <-chan time.Time) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{
		loop:   loop,
		inbox:  make(chan func(*Loop), 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.run(ctx, frames)
	return r
}

// StartTicker drives loop at a fixed wall-clock interval.
func StartTicker(ctx context.Context, loop *Loop, interval time.Duration) *Runner {
	ticker := time.NewTicker(interval)
	r := Start(ctx, loop, ticker.C)
	r.onStop = ticker.Stop
	return r
}

func (r *Runner) run(ctx context.Context, frames <-chan time.Time) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.err = ctx.Err()
			return
		case fn := <-r.inbox:
			fn(r.loop)
		case _, ok := <-frames:
			if !ok {
				return
			}
			// a frame that raced with cancellation must not step the world
			if ctx.Err() != nil {
				r.err = ctx.Err()
				return
			}
			r.loop.Advance()
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is full.
func (r *Runner) Post(fn func(*Loop)) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (r *Runner) Call(fn func(*Loop)) error {
	finished := make(chan struct{})
	if err := r.Post(func(l *Loop) {
		defer close(finished)
		fn(l)
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Stop cancels the runner and waits for the goroutine to exit. No Advance happens after
// Stop returns. It is safe to call more than once.
func (r *Runner) Stop() error {
	r.once.Do(func() {
		r.cancel()
		<-r.done
		if r.onStop != nil {
			r.onStop()
		}
	})
	if errors.Is(r.err, context.Canceled) {
		return nil
	}
	return r.err
}

func (r *Runner) Done() <-chan struct{} { return r.done }
