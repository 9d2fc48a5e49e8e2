// Package stream adapts callback-style producers into cold observables that
// Go code consumes through channels.
//
// A producer receives an [Emitter] and wires it to whatever callbacks it
// owns. Nothing runs until Subscribe. Each subscription runs the producer once,
// so subscribing twice registers the producer's callbacks twice.
package stream

import (
	"context"
	"errors"
	"sync"
)

// DefaultBuffer is the number of values a subscription holds before Next
// blocks waiting for the consumer.
const DefaultBuffer = 16

// ErrEmpty is returned by First when a stream completes without a value.
var ErrEmpty = errors.New("stream completed without a value")

// Emitter is the handle a producer pushes into. Calls after Error or
// Complete are ignored, so late callbacks are harmless. Emitter methods are
// safe for concurrent use.
type Emitter[T any] interface {
	Next(v T)
	Error(err error)
	Complete()
}

// Observable is a cold stream of T.
type Observable[T any] struct {
	produce func(Emitter[T])
	buffer  int
}

// Create returns an Observable that runs produce on every Subscribe.
func Create[T any](produce func(Emitter[T])) *Observable[T] {
	return &Observable[T]{produce: produce, buffer: DefaultBuffer}
}

// WithBuffer returns a copy of o whose subscriptions buffer n values.
// Values below 1 are raised to 1.
func (o *Observable[T]) WithBuffer(n int) *Observable[T] {
	if n < 1 {
		n = 1
	}
	return &Observable[T]{produce: o.produce, buffer: n}
}

// Subscribe runs the producer and returns the subscription it feeds.
// Cancelling ctx detaches the subscription the same way Unsubscribe does;
// it does not reach back into the producer.
//
// The producer runs before Subscribe returns, so there is no consumer yet: a
// producer that calls Next synchronously more times than the buffer holds
// blocks Subscribe forever. Synchronous producers must stay within the buffer.
func (o *Observable[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		values:   make(chan T, o.buffer),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		detached: make(chan struct{}),
	}
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.Unsubscribe()
			case <-s.done:
			}
		}()
	}
	o.produce(s)
	return s
}

// Subscription is one consumer's view of an Observable.
type Subscription[T any] struct {
	values   chan T
	done     chan struct{}
	stopped  chan struct{} // closed on the terminal event, before values
	detached chan struct{}
	detach   sync.Once

	// sends counts Next calls between the terminated check and their send;
	// values is closed only once they have all returned.
	sends sync.WaitGroup

	mu         sync.Mutex
	terminated bool
	err        error
}

// Values delivers emitted values. It is closed when the stream terminates
// or the subscription is detached.
func (s *Subscription[T]) Values() <-chan T { return s.values }

// Done is closed once Values is closed.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Err returns the terminal error, or nil if the stream completed normally,
// was detached, or is still open.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe detaches the consumer. Values emitted afterwards are dropped.
func (s *Subscription[T]) Unsubscribe() {
	s.detach.Do(func() { close(s.detached) })
	s.terminate(nil)
}

// Next delivers v, blocking while the buffer is full until the consumer
// reads, detaches, or the stream terminates. No lock is held while blocked,
// so Err, Error and Complete never wait on the consumer. A value still
// blocked when the stream terminates is dropped.
func (s *Subscription[T]) Next(v T) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.sends.Add(1)
	s.mu.Unlock()
	defer s.sends.Done()

	select {
	case s.values <- v:
		return
	default:
	}
	select {
	case s.values <- v:
	case <-s.detached:
	case <-s.stopped:
	}
}

// Error terminates the stream with err.
func (s *Subscription[T]) Error(err error) { s.terminate(err) }

// Complete terminates the stream normally.
func (s *Subscription[T]) Complete() { s.terminate(nil) }

func (s *Subscription[T]) terminate(err error) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.err = err
	close(s.stopped)
	s.mu.Unlock()

	s.sends.Wait()
	close(s.values)
	close(s.done)
}

// First subscribes to o and returns its first value. It returns the stream's
// error if it terminates first, ErrEmpty if it completes empty, or ctx.Err()
// if ctx ends first. The subscription is detached before returning.
func First[T any](ctx context.Context, o *Observable[T]) (T, error) {
	sub := o.Subscribe(ctx)
	defer sub.Unsubscribe()

	var zero T
	select {
	case v, ok := <-sub.Values():
		if ok {
			return v, nil
		}
		if err := sub.Err(); err != nil {
			return zero, err
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrEmpty
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
