// Package progress fans human-readable step notices out to the server log
// and any connected WebSocket subscribers. Notices are informational only;
// nothing in the pipeline depends on their delivery.
package progress

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Event is one step notice for one job
type Event struct {
	JobID   string    `json:"job_id"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier broadcasts pipeline step notices
type Notifier struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber channel. The caller must
// Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 16)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.subs[ch]; ok {
		delete(n.subs, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Stepf logs a step notice and broadcasts it. Sends are non-blocking; a
// slow subscriber drops messages rather than stalling the pipeline.
func (n *Notifier) Stepf(jobID, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[job %s] %s", jobID, msg)

	event := Event{JobID: jobID, Message: msg, Time: time.Now()}

	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
