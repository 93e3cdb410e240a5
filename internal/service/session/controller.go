package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
	"interview-capture-service/internal/observability/metrics"
	"interview-capture-service/internal/service/assembler"
	"interview-capture-service/internal/service/capture"
	"interview-capture-service/internal/service/timer"
)

// Advance reasons, used in logs and metrics labels.
const (
	AdvanceTimeout  = "timeout"
	AdvanceManual   = "manual"
	AdvanceShutdown = "shutdown"
)

// Finalizer persists a completed session's artifacts. It returns the number
// of files stored; errors are absorbed by the controller and never surfaced
// to the session outcome.
type Finalizer interface {
	Finalize(ctx context.Context, res models.SessionResult) (int, error)
}

// CompletionSink receives the terminal session event.
type CompletionSink interface {
	PublishSessionCompleted(ctx context.Context, event models.SessionCompleted) error
}

// Config holds per-session controller settings.
type Config struct {
	SessionID        string // generated when empty
	UserID           string
	DefaultTimeLimit time.Duration // for questions without their own limit
	TickInterval     time.Duration
	SnapshotTimeout  time.Duration // max wait for a recorder flush
}

// Controller drives one interview session through its whole lifecycle:
// device acquisition, per-question capture and timing, finalize and upload.
// Advance and Finish serialize on the controller mutex; Finish additionally
// uses an in-flight flag so a timer expiry racing a manual finish runs the
// teardown exactly once.
type Controller struct {
	mu          sync.Mutex
	lifecycle   *Lifecycle
	questions   []models.Question
	capture     *capture.Manager
	assembler   *assembler.Assembler
	countdown   *timer.Countdown
	finalizer   Finalizer
	completions CompletionSink
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	cfg         Config

	current     int
	snapshotted map[int]bool
	startedAt   time.Time
	uploaded    int
	uploadOK    bool

	finishing atomic.Bool
	done      chan struct{}
}

// NewController creates a controller for one session. completions may be
// nil.
func NewController(cfg Config, questions []models.Question, manager *capture.Manager, fin Finalizer, completions CompletionSink, logger zerolog.Logger) *Controller {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	c := &Controller{
		lifecycle:   NewLifecycle(cfg.SessionID),
		questions:   questions,
		capture:     manager,
		assembler:   assembler.New(),
		finalizer:   fin,
		completions: completions,
		logger:      logger,
		metrics:     metrics.DefaultMetrics,
		cfg:         cfg,
		snapshotted: make(map[int]bool),
		done:        make(chan struct{}),
	}
	// The expiry callback reads current controller state, never a snapshot
	// of the question it was armed for.
	c.countdown = timer.New(cfg.TickInterval, func() {
		c.Advance(AdvanceTimeout)
	})
	return c
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string {
	return c.lifecycle.SessionId()
}

// Status returns the current lifecycle status.
func (c *Controller) Status() Status {
	return c.lifecycle.Status()
}

// Done is closed when the session reaches its terminal state.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start acquires the device stream and begins recording question 0. On
// device-access failure the session returns to IDLE with no recorders
// created.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lifecycle.Transition(StatusAwaitingMedia); err != nil {
		return err
	}
	c.metrics.RecordSessionStart()

	if err := c.capture.Acquire(ctx); err != nil {
		c.metrics.RecordMediaDenied()
		if terr := c.lifecycle.Transition(StatusIdle); terr != nil {
			c.logger.Error().Err(terr).Msg("Failed to return to IDLE")
		}
		c.logger.Warn().Err(err).Msg("Device access denied, session not started")
		return err
	}

	if err := c.lifecycle.Transition(StatusRecording); err != nil {
		return err
	}
	c.startedAt = time.Now()

	if err := c.capture.StartVideo(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to start session video recorder")
	}
	c.startQuestionLocked(0)

	c.logger.Info().
		Str("sessionId", c.lifecycle.SessionId()).
		Int("questions", len(c.questions)).
		Msg("Session recording started")
	return nil
}

// Advance moves to the next question, or finishes the session when the
// current question is the last. A no-op unless the session is recording and
// no finish is in flight.
func (c *Controller) Advance(reason string) {
	c.mu.Lock()
	if c.lifecycle.Status() != StatusRecording || c.finishing.Load() {
		c.mu.Unlock()
		return
	}

	c.metrics.RecordAdvance(reason)
	idx := c.current
	c.logger.Info().
		Str("sessionId", c.lifecycle.SessionId()).
		Int("questionIndex", idx).
		Str("reason", reason).
		Msg("Advancing question")

	if idx >= len(c.questions)-1 {
		c.mu.Unlock()
		c.Finish(context.Background(), reason)
		return
	}

	c.snapshotLocked(idx)
	c.current++
	c.startQuestionLocked(c.current)
	c.mu.Unlock()
}

// Finish runs the finalize pipeline exactly once: neutralize the timer,
// snapshot the final answer, stop recorders, release the device, upload.
// The session always reaches COMPLETED; upload failures are absorbed.
func (c *Controller) Finish(ctx context.Context, reason string) error {
	if !c.finishing.CompareAndSwap(false, true) {
		return nil
	}

	// Stopped before any teardown so a stale tick cannot double-advance.
	c.countdown.Stop()

	c.mu.Lock()
	if c.lifecycle.Status() != StatusRecording {
		c.finishing.Store(false)
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot finish from %s", ErrInvalidTransition, c.lifecycle.Status())
	}

	c.logger.Info().
		Str("sessionId", c.lifecycle.SessionId()).
		Str("reason", reason).
		Msg("Finalizing session")

	if !c.snapshotted[c.current] {
		c.snapshotLocked(c.current)
	}

	video := c.stopVideoLocked()
	c.capture.ReleaseAll()

	if err := c.lifecycle.Transition(StatusFinalizing); err != nil {
		c.logger.Error().Err(err).Msg("Failed to enter FINALIZING")
	}
	segments := c.assembler.Ordered()
	c.mu.Unlock()

	res := models.SessionResult{
		SessionID: c.lifecycle.SessionId(),
		UserID:    c.cfg.UserID,
		Segments:  segments,
		Video:     video,
	}
	uploaded, err := c.finalizer.Finalize(ctx, res)
	if err != nil {
		// Absorbed: the user sees a completed interview either way.
		c.logger.Error().Err(err).Msg("Finalize upload failed")
	}

	c.mu.Lock()
	c.uploaded = uploaded
	c.uploadOK = err == nil
	if terr := c.lifecycle.Transition(StatusCompleted); terr != nil {
		c.logger.Error().Err(terr).Msg("Failed to enter COMPLETED")
	}
	duration := time.Since(c.startedAt)
	c.mu.Unlock()

	c.metrics.RecordSessionEnd(duration.Seconds())
	close(c.done)

	c.publishCompleted(ctx, len(segments), uploaded, err == nil, duration)

	c.logger.Info().
		Str("sessionId", c.lifecycle.SessionId()).
		Int("segments", len(segments)).
		Int("uploaded", uploaded).
		Bool("uploadSucceeded", err == nil).
		Dur("duration", duration).
		Msg("Session completed")
	return nil
}

// startQuestionLocked rotates the audio recorder and arms the countdown for
// the question at idx. Caller holds the mutex.
func (c *Controller) startQuestionLocked(idx int) {
	if idx >= len(c.questions) {
		return
	}
	if err := c.capture.StartAudio(); err != nil {
		c.logger.Error().Err(err).Int("questionIndex", idx).Msg("Failed to start audio recorder")
	}
	c.countdown.Reset(c.limitOf(idx))
	c.metrics.RecordQuestionAsked()

	c.logger.Info().
		Str("sessionId", c.lifecycle.SessionId()).
		Int("questionIndex", idx).
		Dur("limit", c.limitOf(idx)).
		Msg("Question started")
}

// snapshotLocked stops the current audio recorder and records its artifact
// in the assembler. Caller holds the mutex.
func (c *Controller) snapshotLocked(idx int) {
	c.snapshotted[idx] = true

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SnapshotTimeout)
	defer cancel()

	artifact, err := c.capture.StopAudio(ctx)
	if err != nil {
		c.logger.Error().Err(err).Int("questionIndex", idx).Msg("Audio snapshot failed")
		return
	}

	text := ""
	if idx < len(c.questions) {
		text = c.questions[idx].Text
	}
	switch rerr := c.assembler.Record(idx, artifact, text); rerr {
	case nil:
		c.metrics.RecordSegmentCaptured(len(artifact))
	case assembler.ErrCaptureEmpty:
		// Recoverable: the segment is dropped, the session continues.
		c.metrics.RecordSegmentEmpty()
		c.logger.Warn().Int("questionIndex", idx).Msg("Empty capture discarded")
	default:
		c.logger.Warn().Err(rerr).Int("questionIndex", idx).Msg("Segment not recorded")
	}
}

// stopVideoLocked stops the whole-session video recorder. Caller holds the
// mutex.
func (c *Controller) stopVideoLocked() *models.VideoArtifact {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SnapshotTimeout)
	defer cancel()

	data, err := c.capture.StopVideo(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Video stop failed, session completes without video")
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	c.metrics.RecordVideoCaptured(len(data))
	return &models.VideoArtifact{Data: data, ContentType: capture.VideoContentType}
}

func (c *Controller) limitOf(idx int) time.Duration {
	if idx < len(c.questions) && c.questions[idx].TimeLimitSeconds > 0 {
		return time.Duration(c.questions[idx].TimeLimitSeconds) * time.Second
	}
	return c.cfg.DefaultTimeLimit
}

func (c *Controller) publishCompleted(ctx context.Context, segments, uploaded int, uploadOK bool, duration time.Duration) {
	if c.completions == nil {
		return
	}
	event := models.SessionCompleted{
		EventType:       "interview.session.completed",
		SessionID:       c.lifecycle.SessionId(),
		UserID:          c.cfg.UserID,
		Questions:       len(c.questions),
		Segments:        segments,
		UploadedFiles:   uploaded,
		UploadSucceeded: uploadOK,
		DurationMs:      duration.Milliseconds(),
		Timestamp:       time.Now().UnixMilli(),
	}
	if err := c.completions.PublishSessionCompleted(ctx, event); err != nil {
		c.logger.Error().Err(err).Msg("Failed to publish session completed event")
	}
}

// Snapshot is the read-only session view served by the status endpoint.
type Snapshot struct {
	SessionID        string  `json:"sessionId"`
	UserID           string  `json:"userId"`
	Status           string  `json:"status"`
	QuestionIndex    int     `json:"questionIndex"`
	QuestionCount    int     `json:"questionCount"`
	QuestionText     string  `json:"questionText,omitempty"`
	RemainingSeconds float64 `json:"remainingSeconds"`
	Segments         int     `json:"segments"`
	LiveTracks       int     `json:"liveTracks"`
	UploadedFiles    int     `json:"uploadedFiles"`
	UploadSucceeded  bool    `json:"uploadSucceeded"`
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SessionID:        c.lifecycle.SessionId(),
		UserID:           c.cfg.UserID,
		Status:           c.lifecycle.Status().String(),
		QuestionIndex:    c.current,
		QuestionCount:    len(c.questions),
		RemainingSeconds: c.countdown.Remaining().Seconds(),
		Segments:         c.assembler.Count(),
		UploadedFiles:    c.uploaded,
		UploadSucceeded:  c.uploadOK,
	}
	if c.current < len(c.questions) {
		snap.QuestionText = c.questions[c.current].Text
	}
	if stream := c.capture.Stream(); stream != nil {
		snap.LiveTracks = stream.LiveTracks()
	}
	return snap
}
