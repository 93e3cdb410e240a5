package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Content types of the produced artifacts.
const (
	AudioContentType = "audio/wav"
	VideoContentType = "video/webm"
)

var (
	// ErrNoStream is returned when a recorder is requested before the
	// device stream was acquired.
	ErrNoStream = errors.New("no device stream acquired")
	// ErrAudioRecorderActive is returned when a new audio recorder is
	// requested while the previous one is still recording.
	ErrAudioRecorderActive = errors.New("audio recorder still active")
)

// Manager owns the combined device stream for the lifetime of one session:
// one whole-session video recorder and one audio recorder per question.
// It is the only component permitted to acquire or release the stream.
type Manager struct {
	mu     sync.Mutex
	device Device
	logger zerolog.Logger

	sampleRate int
	channels   int

	stream   *Stream
	videoRec *Recorder
	audioRec *Recorder
	released bool
}

// NewManager creates a capture manager for the given device.
func NewManager(device Device, sampleRate, channels int, logger zerolog.Logger) *Manager {
	return &Manager{
		device:     device,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger,
	}
}

// Acquire negotiates device access and takes ownership of the stream.
func (m *Manager) Acquire(ctx context.Context) error {
	stream, err := m.device.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMediaAccessDenied, err)
	}

	m.mu.Lock()
	m.stream = stream
	m.released = false
	m.mu.Unlock()

	m.logger.Info().
		Int("audioTracks", len(stream.AudioTracks())).
		Int("videoTracks", len(stream.VideoTracks())).
		Msg("Device stream acquired")
	return nil
}

// Stream returns a non-owning view of the acquired stream, for the preview
// renderer and the status surface. May be nil.
func (m *Manager) Stream() *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream
}

// StartVideo creates and starts the whole-session video recorder. Created
// once at session start and stopped only at finalize.
func (m *Manager) StartVideo() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return ErrNoStream
	}
	m.videoRec = NewRecorder(m.stream.VideoTracks())
	return m.videoRec.Start()
}

// StartAudio creates and starts a fresh per-question audio recorder over the
// derived audio-only sub-stream. The previous recorder must have been
// stopped via StopAudio.
func (m *Manager) StartAudio() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return ErrNoStream
	}
	if m.audioRec != nil && m.audioRec.State() == RecorderRecording {
		return ErrAudioRecorderActive
	}
	m.audioRec = NewRecorder(m.stream.AudioTracks())
	return m.audioRec.Start()
}

// StopAudio stops the current audio recorder, waits for the flush and
// returns the question's WAV artifact. A question with no captured audio
// yields a zero-length artifact. Tolerates an already-stopped recorder.
func (m *Manager) StopAudio(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	rec := m.audioRec
	m.mu.Unlock()

	if rec == nil {
		return nil, ErrRecorderNotStarted
	}

	rec.Stop()
	pcm, err := rec.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("audio flush: %w", err)
	}
	rec.Dispose()

	if len(pcm) == 0 {
		return nil, nil
	}
	return EncodeWAV(pcm, m.sampleRate, m.channels), nil
}

// StopVideo stops the whole-session video recorder and returns the video
// artifact. Tolerates an already-stopped recorder.
func (m *Manager) StopVideo(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	rec := m.videoRec
	m.mu.Unlock()

	if rec == nil {
		return nil, ErrRecorderNotStarted
	}

	rec.Stop()
	data, err := rec.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("video flush: %w", err)
	}
	rec.Dispose()
	return data, nil
}

// ReleaseAll stops any recorder still running, stops every stream track
// individually and nils internal references. Runs exactly once even under
// racing stop requests.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return
	}
	m.released = true
	audioRec := m.audioRec
	videoRec := m.videoRec
	stream := m.stream
	m.audioRec = nil
	m.videoRec = nil
	m.stream = nil
	m.mu.Unlock()

	if audioRec != nil {
		audioRec.Stop()
	}
	if videoRec != nil {
		videoRec.Stop()
	}
	if stream != nil {
		stream.StopAll()
	}
	m.logger.Info().Msg("Device stream released")
}

// Released reports whether the stream has been released.
func (m *Manager) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
