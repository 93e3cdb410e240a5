package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
	"interview-capture-service/internal/service/capture"
	"interview-capture-service/internal/service/capture/sim"
)

// recordingFinalizer implements Finalizer for testing.
type recordingFinalizer struct {
	mu       sync.Mutex
	calls    int
	last     models.SessionResult
	uploaded int
	err      error
}

func (f *recordingFinalizer) Finalize(ctx context.Context, res models.SessionResult) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = res
	return f.uploaded, f.err
}

func (f *recordingFinalizer) snapshot() (int, models.SessionResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.last
}

// recordingSink implements CompletionSink for testing.
type recordingSink struct {
	mu     sync.Mutex
	events []models.SessionCompleted
}

func (s *recordingSink) PublishSessionCompleted(ctx context.Context, event models.SessionCompleted) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) all() []models.SessionCompleted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SessionCompleted(nil), s.events...)
}

func testQuestions(n int) []models.Question {
	var qs []models.Question
	for i := 0; i < n; i++ {
		qs = append(qs, models.Question{ID: "q", Text: "question", PointValue: 10})
	}
	return qs
}

func newTestController(questions []models.Question, simCfg sim.Config, fin Finalizer, sink CompletionSink, limit time.Duration) (*Controller, *capture.Manager) {
	if simCfg.ChunkInterval == 0 {
		simCfg.ChunkInterval = 5 * time.Millisecond
	}
	mgr := capture.NewManager(sim.New(simCfg), 16000, 1, zerolog.Nop())
	cfg := Config{
		SessionID:        "sess-test",
		UserID:           "user-1",
		DefaultTimeLimit: limit,
		TickInterval:     10 * time.Millisecond,
		SnapshotTimeout:  time.Second,
	}
	return NewController(cfg, questions, mgr, fin, sink, zerolog.Nop()), mgr
}

func waitDone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("session did not complete in time")
	}
}

func TestController_AutoAdvanceToCompletion(t *testing.T) {
	fin := &recordingFinalizer{uploaded: 3}
	sink := &recordingSink{}
	c, mgr := newTestController(testQuestions(2), sim.Config{}, fin, sink, 40*time.Millisecond)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.Status() != StatusRecording {
		t.Fatalf("expected RECORDING, got %v", c.Status())
	}

	waitDone(t, c)

	if c.Status() != StatusCompleted {
		t.Errorf("expected COMPLETED, got %v", c.Status())
	}

	calls, res := fin.snapshot()
	if calls != 1 {
		t.Fatalf("expected 1 finalize call, got %d", calls)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	for i, seg := range res.Segments {
		if seg.QuestionIndex != i {
			t.Errorf("segment %d has index %d", i, seg.QuestionIndex)
		}
		if len(seg.Audio) == 0 {
			t.Errorf("segment %d is empty", i)
		}
	}
	if res.Video == nil || len(res.Video.Data) == 0 {
		t.Error("expected a session video artifact")
	}
	if !mgr.Released() {
		t.Error("expected device stream released after finalize")
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(events))
	}
	if events[0].Questions != 2 || events[0].Segments != 2 || !events[0].UploadSucceeded {
		t.Errorf("unexpected completed event: %+v", events[0])
	}
	if events[0].UploadedFiles != 3 {
		t.Errorf("expected 3 uploaded files in event, got %d", events[0].UploadedFiles)
	}
}

func TestController_MediaDenied(t *testing.T) {
	fin := &recordingFinalizer{}
	c, _ := newTestController(testQuestions(1), sim.Config{DenyAccess: true}, fin, nil, time.Second)

	err := c.Start(context.Background())
	if !errors.Is(err, capture.ErrMediaAccessDenied) {
		t.Fatalf("expected ErrMediaAccessDenied, got %v", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("expected session back in IDLE, got %v", c.Status())
	}

	calls, _ := fin.snapshot()
	if calls != 0 {
		t.Errorf("expected no finalize call, got %d", calls)
	}
}

func TestController_SilentCaptureDiscardedButSessionCompletes(t *testing.T) {
	fin := &recordingFinalizer{}
	sink := &recordingSink{}
	c, _ := newTestController(testQuestions(2), sim.Config{Silent: true}, fin, sink, 30*time.Millisecond)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, c)

	calls, res := fin.snapshot()
	if calls != 1 {
		t.Fatalf("expected 1 finalize call, got %d", calls)
	}
	if len(res.Segments) != 0 {
		t.Errorf("expected all silent segments discarded, got %d", len(res.Segments))
	}
	if res.Video == nil {
		t.Error("expected video artifact even with silent audio")
	}

	events := sink.all()
	if len(events) != 1 || events[0].Segments != 0 {
		t.Errorf("unexpected completed event: %+v", events)
	}
}

func TestController_UploadFailureStillCompletes(t *testing.T) {
	fin := &recordingFinalizer{err: errors.New("token broker down")}
	sink := &recordingSink{}
	c, _ := newTestController(testQuestions(1), sim.Config{}, fin, sink, 30*time.Millisecond)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, c)

	if c.Status() != StatusCompleted {
		t.Errorf("expected COMPLETED despite upload failure, got %v", c.Status())
	}
	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(events))
	}
	if events[0].UploadSucceeded {
		t.Error("expected uploadSucceeded=false in completed event")
	}
}

func TestController_ManualAdvance(t *testing.T) {
	fin := &recordingFinalizer{}
	c, _ := newTestController(testQuestions(3), sim.Config{}, fin, nil, time.Hour)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	c.Advance(AdvanceManual)
	if snap := c.Snapshot(); snap.QuestionIndex != 1 {
		t.Errorf("expected question index 1, got %d", snap.QuestionIndex)
	}

	time.Sleep(20 * time.Millisecond)
	c.Advance(AdvanceManual)
	time.Sleep(20 * time.Millisecond)
	c.Advance(AdvanceManual) // last question, triggers finish

	waitDone(t, c)

	_, res := fin.snapshot()
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(res.Segments))
	}
	for i, seg := range res.Segments {
		if seg.QuestionIndex != i {
			t.Errorf("segment %d has index %d", i, seg.QuestionIndex)
		}
	}
}

func TestController_FinishExactlyOnce(t *testing.T) {
	fin := &recordingFinalizer{}
	c, mgr := newTestController(testQuestions(1), sim.Config{}, fin, nil, time.Hour)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Finish(context.Background(), AdvanceManual)
		}()
	}
	wg.Wait()
	waitDone(t, c)

	calls, _ := fin.snapshot()
	if calls != 1 {
		t.Errorf("expected exactly 1 finalize call, got %d", calls)
	}
	if !mgr.Released() {
		t.Error("expected device stream released")
	}
	if snap := c.Snapshot(); snap.LiveTracks != 0 {
		t.Errorf("expected zero live tracks, got %d", snap.LiveTracks)
	}
}

func TestController_FinishBeforeStart(t *testing.T) {
	c, _ := newTestController(testQuestions(1), sim.Config{}, &recordingFinalizer{}, nil, time.Hour)

	if err := c.Finish(context.Background(), AdvanceManual); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("expected IDLE, got %v", c.Status())
	}
}

func TestController_AdvanceAfterCompletionIsNoOp(t *testing.T) {
	fin := &recordingFinalizer{}
	c, _ := newTestController(testQuestions(1), sim.Config{}, fin, nil, 30*time.Millisecond)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, c)

	c.Advance(AdvanceManual)

	calls, _ := fin.snapshot()
	if calls != 1 {
		t.Errorf("expected 1 finalize call, got %d", calls)
	}
	if c.Status() != StatusCompleted {
		t.Errorf("expected COMPLETED, got %v", c.Status())
	}
}

func TestController_Snapshot(t *testing.T) {
	c, _ := newTestController(testQuestions(2), sim.Config{}, &recordingFinalizer{}, nil, time.Hour)

	snap := c.Snapshot()
	if snap.SessionID != "sess-test" || snap.UserID != "user-1" {
		t.Errorf("unexpected identity fields: %+v", snap)
	}
	if snap.Status != "IDLE" || snap.QuestionCount != 2 || snap.QuestionIndex != 0 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snap = c.Snapshot()
	if snap.Status != "RECORDING" {
		t.Errorf("expected RECORDING, got %s", snap.Status)
	}
	if snap.LiveTracks == 0 {
		t.Error("expected live tracks while recording")
	}
	if snap.RemainingSeconds <= 0 {
		t.Error("expected a running countdown")
	}

	c.Finish(context.Background(), AdvanceManual)
}

func TestController_GeneratesSessionID(t *testing.T) {
	mgr := capture.NewManager(sim.New(sim.Config{}), 16000, 1, zerolog.Nop())
	c := NewController(Config{UserID: "u", TickInterval: time.Millisecond, DefaultTimeLimit: time.Second, SnapshotTimeout: time.Second}, nil, mgr, &recordingFinalizer{}, nil, zerolog.Nop())

	if c.SessionID() == "" {
		t.Error("expected a generated session id")
	}
}
