package location

import (
	"context"
	"sync"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// subscription is one running delivery loop.
type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// subscriptions tracks the delivery loops a provider has started, keyed by handle.
type subscriptions struct {
	table cmap.ConcurrentMap[string, *subscription]
	wg    sync.WaitGroup
}

func newSubscriptions() *subscriptions {
	return &subscriptions{table: cmap.New[*subscription]()}
}

// start runs loop on its own goroutine until the handle is released.
func (s *subscriptions) start(loop func(ctx context.Context)) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	h := Handle(uuid.New().String())
	s.table.Set(string(h), sub)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(sub.done)
		loop(ctx)
	}()
	return h
}

// stop cancels the loop behind h. It does not wait for the loop to exit.
func (s *subscriptions) stop(h Handle) error {
	sub, ok := s.table.Pop(string(h))
	if !ok {
		return ErrUnknownHandle
	}
	sub.cancel()
	return nil
}

// done returns a channel closed once the loop behind h has returned.
// A nil channel is returned for unknown handles.
func (s *subscriptions) done(h Handle) <-chan struct{} {
	sub, ok := s.table.Get(string(h))
	if !ok {
		return nil
	}
	return sub.done
}

// active reports the number of live handles.
func (s *subscriptions) active() int {
	return s.table.Count()
}

// closeAll cancels every loop and waits for all of them to return.
func (s *subscriptions) closeAll() {
	for _, key := range s.table.Keys() {
		if sub, ok := s.table.Pop(key); ok {
			sub.cancel()
		}
	}
	s.wg.Wait()
}
