package store

import "sync"

// subscriber delivers snapshots to fn in publish order on its own goroutine.
//
// push never blocks and never calls fn, so publishing is safe under the
// store lock and fn is free to use the store, subscribe or unsubscribe.
type subscriber struct {
	fn func(State)

	mu    sync.Mutex
	queue []State

	wake chan struct{}
	done chan struct{}
	stop sync.Once
}

func newSubscriber(fn func(State)) *subscriber {
	sub := &subscriber{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go sub.run()

	return sub
}

func (sub *subscriber) push(st State) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, st)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

// close stops delivery, queued snapshots are dropped.
func (sub *subscriber) close() {
	sub.stop.Do(func() {
		close(sub.done)
	})
}

func (sub *subscriber) run() {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}

		for {
			st, ok := sub.next()
			if !ok {
				break
			}

			select {
			case <-sub.done:
				return
			default:
			}

			sub.fn(st)
		}
	}
}

func (sub *subscriber) next() (State, bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if len(sub.queue) == 0 {
		return State{}, false
	}

	st := sub.queue[0]
	sub.queue[0] = State{}
	sub.queue = sub.queue[1:]

	return st, true
}
