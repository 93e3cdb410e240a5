// Package sim provides a simulated capture device for running the service
// without real camera/microphone hardware.
// It produces deterministic synthetic media chunks at a configurable rate,
// and can simulate access denial and silent microphones.
package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"interview-capture-service/internal/service/capture"
)

// Config controls the simulated device behaviour.
type Config struct {
	ChunkInterval      time.Duration // audio delivery cadence; default 20ms
	VideoChunkInterval time.Duration // video delivery cadence; defaults to ChunkInterval
	AudioChunkBytes    int           // default 640
	VideoChunkBytes    int           // default 4096
	Silent             bool          // audio tracks deliver no data (empty artifacts)
	DenyAccess         bool          // Acquire fails with ErrMediaAccessDenied
}

// Device implements capture.Device with synthetic media.
type Device struct {
	cfg Config
}

// New creates a simulated device.
func New(cfg Config) *Device {
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 20 * time.Millisecond
	}
	if cfg.VideoChunkInterval <= 0 {
		cfg.VideoChunkInterval = cfg.ChunkInterval
	}
	if cfg.AudioChunkBytes <= 0 {
		cfg.AudioChunkBytes = 640
	}
	if cfg.VideoChunkBytes <= 0 {
		cfg.VideoChunkBytes = 4096
	}
	return &Device{cfg: cfg}
}

// Acquire returns a combined stream with one audio and one video track.
func (d *Device) Acquire(ctx context.Context) (*capture.Stream, error) {
	if d.cfg.DenyAccess {
		return nil, capture.ErrMediaAccessDenied
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio := newTrack(capture.TrackAudio, d.cfg.ChunkInterval, d.cfg.AudioChunkBytes, d.cfg.Silent)
	video := newTrack(capture.TrackVideo, d.cfg.VideoChunkInterval, d.cfg.VideoChunkBytes, false)
	return capture.NewStream(audio, video), nil
}

// track produces deterministic chunks until stopped.
type track struct {
	kind     capture.TrackKind
	ch       chan []byte
	stop     chan struct{}
	stopOnce sync.Once
	live     atomic.Bool
}

func newTrack(kind capture.TrackKind, interval time.Duration, chunkBytes int, silent bool) *track {
	t := &track{
		kind: kind,
		ch:   make(chan []byte, 64),
		stop: make(chan struct{}),
	}
	t.live.Store(true)
	go t.produce(interval, chunkBytes, silent)
	return t
}

func (t *track) produce(interval time.Duration, chunkBytes int, silent bool) {
	defer close(t.ch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	seq := byte(0)
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if silent {
				continue
			}
			chunk := make([]byte, chunkBytes)
			for i := range chunk {
				chunk[i] = seq + byte(i)
			}
			seq++
			select {
			case t.ch <- chunk:
			default:
				// Consumer not keeping up; drop the chunk rather than block
				// the producer.
			}
		}
	}
}

func (t *track) Kind() capture.TrackKind { return t.kind }

func (t *track) Chunks() <-chan []byte { return t.ch }

func (t *track) Stop() {
	t.stopOnce.Do(func() {
		t.live.Store(false)
		close(t.stop)
	})
}

func (t *track) Live() bool { return t.live.Load() }
