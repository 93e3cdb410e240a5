// Package assembler collects one answer segment per question and produces
// the ordered list at finalize time.
package assembler

import (
	"errors"
	"sort"
	"sync"
	"time"

	"interview-capture-service/internal/models"
)

// Errors reported by Record.
var (
	// ErrCaptureEmpty - the captured artifact has zero length. Recoverable:
	// the segment is discarded and the pipeline continues.
	ErrCaptureEmpty = errors.New("captured artifact is empty")
	// ErrDuplicateSegment - a segment for this question index already
	// exists. The first one wins.
	ErrDuplicateSegment = errors.New("segment already recorded for question index")
)

// Assembler maintains an append-only set of answer segments keyed by
// question index, independent of capture completion order.
// Thread-safe for concurrent access.
type Assembler struct {
	mu       sync.Mutex
	segments []models.AnswerSegment
	seen     map[int]bool
	empty    map[int]bool

	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

// New creates an empty assembler.
func New() *Assembler {
	return &Assembler{
		seen:  make(map[int]bool),
		empty: make(map[int]bool),
		clock: time.Now,
	}
}

// Record appends a segment for the given question index.
// A zero-length artifact is discarded and reported as ErrCaptureEmpty.
// A duplicate index is rejected; the original segment is kept.
func (a *Assembler) Record(questionIndex int, audio []byte, questionText string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen[questionIndex] {
		return ErrDuplicateSegment
	}
	if len(audio) == 0 {
		a.empty[questionIndex] = true
		return ErrCaptureEmpty
	}

	a.seen[questionIndex] = true
	a.segments = append(a.segments, models.AnswerSegment{
		QuestionIndex: questionIndex,
		Audio:         audio,
		QuestionText:  questionText,
		CapturedAt:    a.clock(),
	})
	return nil
}

// Has reports whether a non-discarded segment exists for the index.
func (a *Assembler) Has(questionIndex int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen[questionIndex]
}

// Count returns the number of recorded segments.
func (a *Assembler) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.segments)
}

// EmptyCount returns the number of discarded empty captures.
func (a *Assembler) EmptyCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.empty)
}

// Ordered returns a copy of all recorded segments sorted ascending by
// question index. Indexes with no segment are absent, never padded.
func (a *Assembler) Ordered() []models.AnswerSegment {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.AnswerSegment, len(a.segments))
	copy(out, a.segments)
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionIndex < out[j].QuestionIndex
	})
	return out
}
