package runtime

import (
	"sync"
)

// sequencer releases the batches of one room in the order their transactions committed.
// Whichever caller submits the batch at the head of the queue drains every batch that
// is ready, without holding any lock while delivering.
type sequencer struct {
	mu       sync.Mutex
	next     uint64
	pending  map[uint64]Batch
	draining bool
}

func newSequencer() *sequencer {
	return &sequencer{next: 1, pending: make(map[uint64]Batch)}
}

func (s *sequencer) submit(b Batch, deliver func(Batch)) {
	s.mu.Lock()
	s.pending[b.Seq] = b
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		batch, ok := s.pending[s.next]
		if !ok {
			s.draining = false
			s.mu.Unlock()
			return
		}
		delete(s.pending, s.next)
		s.next++
		s.mu.Unlock()
		s.release(batch, deliver)
		s.mu.Lock()
	}
}

// release hands the room back to the next submitter when deliver panics,
// so later batches are not stuck behind a drain that never resumes.
func (s *sequencer) release(b Batch, deliver func(Batch)) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	deliver(b)
}
