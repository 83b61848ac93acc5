package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionHistoryAppendOnly(t *testing.T) {
	s := NewSession()

	first := &QueryResult{Question: "q1"}
	second := &QueryResult{Question: "q2"}
	s.AppendHistory(first)
	s.AppendHistory(second)

	history := s.History()
	assert.Len(t, history, 2)
	assert.Equal(t, "q1", history[0].Question)
	assert.Equal(t, "q2", history[1].Question)

	// Mutating the returned slice must not affect the session.
	history[0] = nil
	assert.Equal(t, "q1", s.History()[0].Question)
}

func TestSessionConcurrentAppends(t *testing.T) {
	s := NewSession()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendHistory(&QueryResult{})
			s.AppendDebug(&DebugRecord{})
		}()
	}
	wg.Wait()

	assert.Len(t, s.History(), 50)
	assert.Len(t, s.DebugLog(), 50)
}
