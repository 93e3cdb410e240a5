// Package capture owns the combined audio/video device stream and the
// recorder lifecycle for an interview session.
package capture

import (
	"context"
	"errors"
)

// TrackKind identifies the media kind of a track.
type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// ErrMediaAccessDenied is returned when the capture device cannot be
// acquired (access denied or device unavailable).
var ErrMediaAccessDenied = errors.New("media access denied")

// Track is one media track of an acquired stream.
type Track interface {
	// Kind returns the media kind of the track.
	Kind() TrackKind

	// Chunks delivers captured media data. The channel is closed when the
	// track stops.
	Chunks() <-chan []byte

	// Stop ends the track. Idempotent.
	Stop()

	// Live reports whether the track is still producing data.
	Live() bool
}

// Device grants access to the combined camera+microphone stream.
type Device interface {
	// Acquire negotiates device access and returns the combined stream.
	Acquire(ctx context.Context) (*Stream, error)
}

// Stream is a combined audio+video device stream. The capture manager is its
// sole owner; other components hold non-owning views.
type Stream struct {
	tracks []Track
}

// NewStream builds a stream from the given tracks.
func NewStream(tracks ...Track) *Stream {
	return &Stream{tracks: tracks}
}

// Tracks returns all tracks of the stream.
func (s *Stream) Tracks() []Track {
	return s.tracks
}

// AudioTracks returns the audio tracks of the stream. Per-question audio
// recorders are created from this derived sub-stream.
func (s *Stream) AudioTracks() []Track {
	return s.byKind(TrackAudio)
}

// VideoTracks returns the video tracks of the stream.
func (s *Stream) VideoTracks() []Track {
	return s.byKind(TrackVideo)
}

func (s *Stream) byKind(kind TrackKind) []Track {
	var out []Track
	for _, t := range s.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// LiveTracks returns the number of tracks still producing data.
func (s *Stream) LiveTracks() int {
	n := 0
	for _, t := range s.tracks {
		if t.Live() {
			n++
		}
	}
	return n
}

// StopAll stops every track individually.
func (s *Stream) StopAll() {
	for _, t := range s.tracks {
		t.Stop()
	}
}
