package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// RecorderState represents the lifecycle state of a recorder.
type RecorderState int

const (
	// RecorderCreated - Recorder constructed, not yet collecting.
	RecorderCreated RecorderState = iota
	// RecorderRecording - Collector goroutines draining track chunks.
	RecorderRecording
	// RecorderStopRequested - Stop requested, buffered data being flushed.
	RecorderStopRequested
	// RecorderStopped - Flush complete, artifact available.
	RecorderStopped
	// RecorderDisposed - Buffers released. Terminal state.
	RecorderDisposed
)

// String returns the string representation of the state.
func (s RecorderState) String() string {
	switch s {
	case RecorderCreated:
		return "CREATED"
	case RecorderRecording:
		return "RECORDING"
	case RecorderStopRequested:
		return "STOP_REQUESTED"
	case RecorderStopped:
		return "STOPPED"
	case RecorderDisposed:
		return "DISPOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Errors for invalid recorder transitions.
var (
	ErrRecorderDisposed   = errors.New("recorder is disposed")
	ErrRecorderNotStarted = errors.New("recorder was never started")
	ErrAlreadyRecording   = errors.New("recorder already recording")
)

// Recorder collects chunks from a set of tracks into one contiguous artifact.
//
// Lifecycle:
//
//	CREATED → RECORDING → STOP_REQUESTED → STOPPED → DISPOSED
//
// Stop requests a flush of any buffered-but-undelivered data before the
// artifact is sealed, so the final artifact is never truncated. Completion is
// a single-shot channel: Wait blocks until the sealed artifact is available.
// Stop is idempotent; a racing second stop observes the first.
type Recorder struct {
	mu     sync.Mutex
	state  RecorderState
	tracks []Track

	buf      []byte
	artifact []byte

	stopReq chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder over the given tracks in CREATED state.
func NewRecorder(tracks []Track) *Recorder {
	return &Recorder{
		state:   RecorderCreated,
		tracks:  tracks,
		stopReq: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// BufferedBytes returns the number of bytes collected so far.
func (r *Recorder) BufferedBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Start begins collecting. Only valid from CREATED.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case RecorderCreated:
		r.state = RecorderRecording
	case RecorderRecording:
		return ErrAlreadyRecording
	default:
		return ErrRecorderDisposed
	}

	for _, tr := range r.tracks {
		r.wg.Add(1)
		go r.collect(tr)
	}
	return nil
}

func (r *Recorder) collect(tr Track) {
	defer r.wg.Done()
	for {
		select {
		case data, ok := <-tr.Chunks():
			if !ok {
				return
			}
			r.append(data)
		case <-r.stopReq:
			// Flush whatever the track has already buffered, then exit.
			for {
				select {
				case data, ok := <-tr.Chunks():
					if !ok {
						return
					}
					r.append(data)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) append(data []byte) {
	if len(data) == 0 {
		return
	}
	r.mu.Lock()
	r.buf = append(r.buf, data...)
	r.mu.Unlock()
}

// Stop requests the flush and seals the artifact once all collectors have
// drained. Tolerates a recorder that is already stopped or was never started.
func (r *Recorder) Stop() {
	r.mu.Lock()
	switch r.state {
	case RecorderRecording:
		r.state = RecorderStopRequested
		close(r.stopReq)
		r.mu.Unlock()

		go func() {
			r.wg.Wait()
			r.mu.Lock()
			r.artifact = r.buf
			r.state = RecorderStopped
			r.mu.Unlock()
			close(r.done)
		}()
	case RecorderCreated:
		// Never started: seal an empty artifact immediately.
		r.state = RecorderStopped
		r.mu.Unlock()
		close(r.done)
	default:
		r.mu.Unlock()
	}
}

// Wait blocks until the artifact is sealed or the context expires.
func (r *Recorder) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.state == RecorderDisposed {
			return nil, ErrRecorderDisposed
		}
		return r.artifact, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dispose releases buffers and track references. Terminal.
func (r *Recorder) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = RecorderDisposed
	r.buf = nil
	r.artifact = nil
	r.tracks = nil
}
