package msr605

import (
	"errors"
	"sync"
	"time"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

type waitResult struct {
	pkt []byte
	err error
}

// waiter is one pending "await next packet" request. Its channel is buffered
// so the resolver never blocks; each waiter receives exactly one result.
type waiter struct {
	ch chan waitResult
}

// packetQueue matches reassembled packets to consumers. Packets arriving
// with nobody waiting go to the backlog; consumers arriving with an empty
// backlog suspend as waiters, resolved in FIFO order.
type packetQueue struct {
	mu      sync.Mutex
	backlog [][]byte
	waiters []*waiter

	// term, once set, fails every later next call outright. It closes the
	// window between a caller's cancel check and its waiter registration:
	// a cancel or disconnect landing there must still reject the wait.
	term error
}

func newPacketQueue() *packetQueue {
	return &packetQueue{}
}

// deliver hands pkt to the oldest waiter, or stores it for a future call to
// next.
func (q *packetQueue) deliver(pkt []byte) {
	q.mu.Lock()
	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		q.mu.Unlock()
		w.ch <- waitResult{pkt: pkt}
		return
	}
	q.backlog = append(q.backlog, pkt)
	q.mu.Unlock()
}

// failOldest resolves the oldest waiter with err. With no waiter registered
// the error is dropped along with the fragment that caused it.
func (q *packetQueue) failOldest(err error) {
	q.mu.Lock()
	if len(q.waiters) == 0 {
		q.mu.Unlock()
		return
	}
	w := q.waiters[0]
	q.waiters = q.waiters[1:]
	q.mu.Unlock()
	w.ch <- waitResult{err: err}
}

// cancelAll resolves every outstanding waiter with err and latches err so a
// wait arriving afterwards fails instead of suspending.
func (q *packetQueue) cancelAll(err error) {
	q.mu.Lock()
	q.term = err
	ws := q.waiters
	q.waiters = nil
	q.mu.Unlock()
	for _, w := range ws {
		w.ch <- waitResult{err: err}
	}
}

// clearCancel lifts an abort latched by cancelAll. A latched disconnect
// stays; that session is not coming back.
func (q *packetQueue) clearCancel() {
	q.mu.Lock()
	if errors.Is(q.term, device.ErrAborted) {
		q.term = nil
	}
	q.mu.Unlock()
}

// discardBacklog drops queued packets without touching waiters.
func (q *packetQueue) discardBacklog() {
	q.mu.Lock()
	q.backlog = nil
	q.mu.Unlock()
}

// next pops the oldest backlog packet, or waits up to timeout for a delivery.
// timeout <= 0 waits until a packet arrives or the waiter is cancelled.
// Expiry returns device.ErrTimeout.
func (q *packetQueue) next(timeout time.Duration) ([]byte, error) {
	q.mu.Lock()
	if q.term != nil {
		err := q.term
		q.mu.Unlock()
		return nil, err
	}
	if len(q.backlog) > 0 {
		pkt := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.mu.Unlock()
		return pkt, nil
	}
	w := &waiter{ch: make(chan waitResult, 1)}
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	if timeout <= 0 {
		res := <-w.ch
		return res.pkt, res.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-w.ch:
		return res.pkt, res.err
	case <-timer.C:
		if q.remove(w) {
			return nil, device.ErrTimeout
		}
		// A delivery raced the timer; the result is already in flight.
		res := <-w.ch
		return res.pkt, res.err
	}
}

// remove unregisters w. Returns false when w was already resolved.
func (q *packetQueue) remove(w *waiter) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, x := range q.waiters {
		if x == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return true
		}
	}
	return false
}
