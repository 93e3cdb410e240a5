package capture

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeTrack implements Track for testing.
type fakeTrack struct {
	kind TrackKind
	ch   chan []byte

	mu      sync.Mutex
	stopped bool
}

func newFakeTrack(kind TrackKind) *fakeTrack {
	return &fakeTrack{kind: kind, ch: make(chan []byte, 16)}
}

func (f *fakeTrack) Kind() TrackKind       { return f.kind }
func (f *fakeTrack) Chunks() <-chan []byte { return f.ch }

func (f *fakeTrack) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stopped {
		f.stopped = true
		close(f.ch)
	}
}

func (f *fakeTrack) Live() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.stopped
}

func TestRecorder_InitialState(t *testing.T) {
	r := NewRecorder([]Track{newFakeTrack(TrackAudio)})

	if r.State() != RecorderCreated {
		t.Errorf("expected RecorderCreated, got %v", r.State())
	}
	if r.BufferedBytes() != 0 {
		t.Errorf("expected empty buffer, got %d bytes", r.BufferedBytes())
	}
}

func TestRecorder_CollectsChunks(t *testing.T) {
	track := newFakeTrack(TrackAudio)
	r := NewRecorder([]Track{track})

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if r.State() != RecorderRecording {
		t.Errorf("expected RecorderRecording, got %v", r.State())
	}

	track.ch <- []byte{1, 2, 3}
	track.ch <- []byte{4, 5}

	// Give the collector a moment to drain.
	time.Sleep(20 * time.Millisecond)

	r.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	artifact, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(artifact) != 5 {
		t.Errorf("expected 5 bytes, got %d", len(artifact))
	}
	if r.State() != RecorderStopped {
		t.Errorf("expected RecorderStopped, got %v", r.State())
	}
}

func TestRecorder_FlushesBufferedChunksOnStop(t *testing.T) {
	track := newFakeTrack(TrackAudio)
	r := NewRecorder([]Track{track})

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	// Queue data that the collector has not yet delivered, then stop:
	// the flush must pick it up so the artifact is not truncated.
	track.ch <- []byte{9, 9, 9, 9}
	r.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	artifact, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(artifact) != 4 {
		t.Errorf("expected flushed artifact of 4 bytes, got %d", len(artifact))
	}
}

func TestRecorder_Stop_Idempotent(t *testing.T) {
	r := NewRecorder([]Track{newFakeTrack(TrackAudio)})
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	r.Stop()
	r.Stop()
	r.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait failed after repeated stops: %v", err)
	}
	if r.State() != RecorderStopped {
		t.Errorf("expected RecorderStopped, got %v", r.State())
	}
}

func TestRecorder_StopBeforeStart_SealsEmptyArtifact(t *testing.T) {
	r := NewRecorder([]Track{newFakeTrack(TrackAudio)})

	r.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	artifact, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(artifact) != 0 {
		t.Errorf("expected empty artifact, got %d bytes", len(artifact))
	}
}

func TestRecorder_StartTwice(t *testing.T) {
	r := NewRecorder([]Track{newFakeTrack(TrackAudio)})
	if err := r.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := r.Start(); err != ErrAlreadyRecording {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
}

func TestRecorder_WaitHonorsContext(t *testing.T) {
	r := NewRecorder([]Track{newFakeTrack(TrackAudio)})
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Wait(ctx); err == nil {
		t.Error("expected context error while recorder still running")
	}
}

func TestRecorder_Dispose(t *testing.T) {
	track := newFakeTrack(TrackAudio)
	r := NewRecorder([]Track{track})
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	r.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	r.Dispose()
	if r.State() != RecorderDisposed {
		t.Errorf("expected RecorderDisposed, got %v", r.State())
	}
	if r.BufferedBytes() != 0 {
		t.Errorf("expected buffers released, got %d bytes", r.BufferedBytes())
	}
}

func TestRecorderState_String(t *testing.T) {
	tests := []struct {
		state    RecorderState
		expected string
	}{
		{RecorderCreated, "CREATED"},
		{RecorderRecording, "RECORDING"},
		{RecorderStopRequested, "STOP_REQUESTED"},
		{RecorderStopped, "STOPPED"},
		{RecorderDisposed, "DISPOSED"},
		{RecorderState(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("RecorderState(%d).String() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}
