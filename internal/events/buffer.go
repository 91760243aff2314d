package events

import (
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// queue holds the envelopes not yet handed to the writer, oldest first.
type queue struct {
	lock    sync.Mutex
	pending []cloudevents.Event
}

func (q *queue) push(e cloudevents.Event) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.pending = append(q.pending, e)
}

// drain takes every pending envelope at once.
func (q *queue) drain() []cloudevents.Event {
	q.lock.Lock()
	defer q.lock.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *queue) len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.pending)
}
