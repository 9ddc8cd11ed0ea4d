// Package progress carries best-effort progress events from the redemption
// loop to an independent consumer.
//
// Sends never block. Events sent while the buffer is full, after the consumer
// stopped, or after Close are dropped.
package progress

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind tags an Event
type Kind int

const (
	CodeStarted Kind = iota + 1
	Increment
	Finished
)

func (k Kind) String() string {
	switch k {
	case CodeStarted:
		return "code"
	case Increment:
		return "inc"
	case Finished:
		return "finish"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one progress message
type Event struct {
	Kind Kind
	Code string
}

// Consumer renders events. Run returns once events is closed or the consumer
// decides it is done.
type Consumer interface {
	Run(events <-chan Event)
}

// Channel is the producer side
type Channel struct {
	mu     sync.Mutex
	events chan Event
	closed bool
	done   chan struct{}
}

// Start runs consumer on its own goroutine. buffer bounds the number of
// undelivered events. A nil consumer yields a channel that drops everything.
// A consumer that panics is logged and treated as stopped.
func Start(consumer Consumer, buffer int, log *zap.Logger) *Channel {
	c := &Channel{done: make(chan struct{})}
	if consumer == nil {
		c.closed = true
		close(c.done)
		return c
	}

	if buffer < 1 {
		buffer = 1
	}
	c.events = make(chan Event, buffer)

	if log == nil {
		log = zap.NewNop()
	}

	go func() {
		defer close(c.done)
		defer func() {
			if r := recover(); r != nil {
				log.Error("Progress consumer crashed", zap.Any("panic", r))
			}
		}()
		consumer.Run(c.events)
	}()

	return c
}

// Disabled returns a channel with no consumer attached
func Disabled() *Channel {
	return Start(nil, 0, nil)
}

// Send delivers ev if the consumer can take it, and drops it otherwise.
// It reports whether the event was queued.
func (c *Channel) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// CodeStarted announces the code about to be redeemed
func (c *Channel) CodeStarted(code string) bool {
	return c.Send(Event{Kind: CodeStarted, Code: code})
}

// Increment advances the progress by one code
func (c *Channel) Increment() bool {
	return c.Send(Event{Kind: Increment})
}

// Finish announces the end of the batch
func (c *Channel) Finish() bool {
	return c.Send(Event{Kind: Finished})
}

// Close stops accepting events and lets the consumer drain. Close never
// blocks and may be called more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Done is closed once the consumer has returned
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the consumer returns or timeout elapses. It reports
// whether the consumer finished.
func (c *Channel) Wait(timeout time.Duration) bool {
	select {
	case <-c.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
