package memory

import "sync"

// fanout delivers snapshots to subscribers without blocking publishers.
// Each subscriber runs its callbacks sequentially on its own goroutine and
// only ever sees the latest snapshot: a newer publish replaces an undelivered
// older one.
type fanout[T any] struct {
	mu   sync.Mutex
	subs map[int64]*subscriber[T]
	next int64
}

type subscriber[T any] struct {
	ch   chan T
	stop chan struct{}
	done chan struct{}
}

func newFanout[T any]() *fanout[T] {
	return &fanout[T]{subs: make(map[int64]*subscriber[T])}
}

// subscribe registers fn and returns the subscriber (so the caller can seed
// it with an initial snapshot) and a cancel func. After cancel returns, fn is
// guaranteed not to run again.
func (f *fanout[T]) subscribe(fn func(T)) (*subscriber[T], func()) {
	s := &subscriber[T]{
		ch:   make(chan T, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = s
	f.mu.Unlock()

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.stop:
				return
			case v := <-s.ch:
				select {
				case <-s.stop:
					return
				default:
				}
				fn(v)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(s.stop)
			<-s.done
		})
	}
	return s, cancel
}

func (f *fanout[T]) publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		s.offer(v)
	}
}

// offer replaces any undelivered snapshot with v.
func (s *subscriber[T]) offer(v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
