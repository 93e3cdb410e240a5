package upload

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
)

// LogFinalizer is the finalizer used when object storage is disabled. It
// logs every artifact that would have been uploaded and stores nothing.
type LogFinalizer struct {
	logger zerolog.Logger
}

// NewLogFinalizer creates a log-only finalizer.
func NewLogFinalizer(logger zerolog.Logger) *LogFinalizer {
	return &LogFinalizer{logger: logger}
}

// Finalize logs the artifact inventory and reports zero stored files.
func (f *LogFinalizer) Finalize(ctx context.Context, res models.SessionResult) (int, error) {
	for i, seg := range res.Segments {
		f.logger.Info().
			Str("sessionId", res.SessionID).
			Str("artifact", strconv.Itoa(i+1)).
			Int("questionIndex", seg.QuestionIndex).
			Int("bytes", len(seg.Audio)).
			Msg("Storage disabled, skipping audio upload")
	}
	if res.Video != nil {
		f.logger.Info().
			Str("sessionId", res.SessionID).
			Str("artifact", "video").
			Int("bytes", len(res.Video.Data)).
			Msg("Storage disabled, skipping video upload")
	}
	return 0, nil
}
