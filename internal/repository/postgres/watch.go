package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Postgres has no push subscriptions at this layer, so Subscribe is
// implemented as a change poller: the snapshot is refetched on an interval
// and delivered only when its encoding changed since the last delivery.
const watchInterval = 2 * time.Second

// watch delivers the initial snapshot immediately, then polls. The returned
// func stops the poller; fn does not run after it returns.
func watch[T any](fetch func(ctx context.Context) (T, error), fn func(T)) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		var last []byte
		deliver := func() {
			ctx, cancel := context.WithTimeout(context.Background(), watchInterval)
			v, err := fetch(ctx)
			cancel()
			if err != nil {
				return
			}
			encoded, err := json.Marshal(v)
			if err != nil {
				return
			}
			if bytes.Equal(encoded, last) {
				return
			}
			last = encoded
			fn(v)
		}

		deliver()

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				deliver()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}
}
