// Package upload implements the finalize upload protocol against remote
// object storage: fetch a fresh access token, resolve the destination folder
// hierarchy, then transfer every artifact strictly in sequence.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
	"interview-capture-service/internal/observability/metrics"
	"interview-capture-service/internal/service/capture"
)

// Upload protocol stages, used in failure events and metrics labels.
const (
	StageToken    = "token"
	StageFolders  = "folders"
	StageInit     = "init"
	StageTransfer = "transfer"
)

// Artifact type labels for metrics.
const (
	artifactAudio = "audio"
	artifactVideo = "video"
)

var (
	// ErrTokenFetch - the access token could not be obtained. Aborts the
	// whole upload before any artifact is sent.
	ErrTokenFetch = errors.New("access token fetch failed")
	// ErrFolderResolution - the destination folder hierarchy could not be
	// created.
	ErrFolderResolution = errors.New("destination folder resolution failed")
	// ErrUpload - an artifact upload failed. Remaining artifacts are
	// skipped; already-uploaded ones stay.
	ErrUpload = errors.New("artifact upload failed")
)

// TokenSource provides a fresh access token per finalize invocation.
type TokenSource interface {
	Fetch(ctx context.Context) (models.AccessToken, error)
}

// Storage is the slice of the object-storage API the orchestrator uses.
type Storage interface {
	CreateFolder(ctx context.Context, token models.AccessToken, name, parentID string) (string, error)
	InitUpload(ctx context.Context, token models.AccessToken, folderID, name string) (string, error)
	Transfer(ctx context.Context, location, contentType string, data []byte) (string, error)
}

// FailureSink receives operator-visibility events for failed uploads.
type FailureSink interface {
	PublishUploadFailure(ctx context.Context, event models.UploadFailure) error
}

// Orchestrator runs the upload protocol for one completed session. Uploads
// are strictly sequential; the first failure aborts the remaining queue and
// nothing is rolled back.
type Orchestrator struct {
	tokens     TokenSource
	storage    Storage
	failures   FailureSink
	rootFolder string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewOrchestrator creates an upload orchestrator. failures may be nil.
func NewOrchestrator(tokens TokenSource, storage Storage, failures FailureSink, rootFolder string, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		tokens:     tokens,
		storage:    storage,
		failures:   failures,
		rootFolder: rootFolder,
		logger:     logger,
		metrics:    metrics.DefaultMetrics,
	}
}

// Finalize uploads all artifacts of a completed session and returns the
// number of files stored. Audio artifacts are named by their 1-based
// position in the ordered segment list, the session video is named "video".
func (o *Orchestrator) Finalize(ctx context.Context, res models.SessionResult) (int, error) {
	token, err := o.tokens.Fetch(ctx)
	o.metrics.RecordTokenFetch(err)
	if err != nil {
		o.reportFailure(ctx, res, StageToken, "", err)
		return 0, fmt.Errorf("%w: %v", ErrTokenFetch, err)
	}

	dest, err := o.resolveDestination(ctx, token, res.UserID)
	if err != nil {
		o.reportFailure(ctx, res, StageFolders, "", err)
		return 0, fmt.Errorf("%w: %v", ErrFolderResolution, err)
	}

	o.logger.Info().
		Str("userFolder", dest.UserFolderID).
		Int("segments", len(res.Segments)).
		Bool("video", res.Video != nil).
		Msg("Upload destination resolved")

	uploaded := 0
	for i, seg := range res.Segments {
		name := strconv.Itoa(i + 1)
		if err := o.uploadOne(ctx, token, dest.AudiosFolderID, name, artifactAudio, capture.AudioContentType, seg.Audio); err != nil {
			o.reportFailure(ctx, res, stageOf(err), name, err)
			return uploaded, fmt.Errorf("%w: audio %s: %v", ErrUpload, name, err)
		}
		uploaded++
	}

	if res.Video != nil {
		if err := o.uploadOne(ctx, token, dest.VideoFolderID, "video", artifactVideo, res.Video.ContentType, res.Video.Data); err != nil {
			o.reportFailure(ctx, res, stageOf(err), "video", err)
			return uploaded, fmt.Errorf("%w: video: %v", ErrUpload, err)
		}
		uploaded++
	}

	o.logger.Info().
		Str("sessionId", res.SessionID).
		Int("uploaded", uploaded).
		Msg("All artifacts uploaded")
	return uploaded, nil
}

// resolveDestination creates the folder hierarchy root/user/{Audios,Video}.
// Folder creation is not idempotent across retries; no retry policy is
// applied here.
func (o *Orchestrator) resolveDestination(ctx context.Context, token models.AccessToken, userID string) (models.UploadDestination, error) {
	var dest models.UploadDestination
	var err error

	if dest.RootFolderID, err = o.createFolder(ctx, token, o.rootFolder, ""); err != nil {
		return dest, err
	}
	if dest.UserFolderID, err = o.createFolder(ctx, token, userID, dest.RootFolderID); err != nil {
		return dest, err
	}
	if dest.AudiosFolderID, err = o.createFolder(ctx, token, "Audios", dest.UserFolderID); err != nil {
		return dest, err
	}
	if dest.VideoFolderID, err = o.createFolder(ctx, token, "Video", dest.UserFolderID); err != nil {
		return dest, err
	}
	return dest, nil
}

func (o *Orchestrator) createFolder(ctx context.Context, token models.AccessToken, name, parentID string) (string, error) {
	id, err := o.storage.CreateFolder(ctx, token, name, parentID)
	if err != nil {
		return "", err
	}
	o.metrics.RecordFolderCreated()
	return id, nil
}

// stageError carries the protocol stage a step failed in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stageOf(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return StageTransfer
}

func (o *Orchestrator) uploadOne(ctx context.Context, token models.AccessToken, folderID, name, artifactType, contentType string, data []byte) error {
	start := time.Now()

	location, err := o.storage.InitUpload(ctx, token, folderID, name)
	if err != nil {
		o.metrics.RecordUploadError(StageInit)
		return &stageError{stage: StageInit, err: err}
	}

	fileID, err := o.storage.Transfer(ctx, location, contentType, data)
	if err != nil {
		o.metrics.RecordUploadError(StageTransfer)
		return &stageError{stage: StageTransfer, err: err}
	}

	o.metrics.RecordUpload(artifactType, len(data), time.Since(start).Seconds())
	o.logger.Debug().
		Str("name", name).
		Str("fileId", fileID).
		Int("bytes", len(data)).
		Msg("Artifact uploaded")
	return nil
}

func (o *Orchestrator) reportFailure(ctx context.Context, res models.SessionResult, stage, artifact string, cause error) {
	o.logger.Error().
		Err(cause).
		Str("sessionId", res.SessionID).
		Str("stage", stage).
		Str("artifact", artifact).
		Msg("Upload protocol failed")

	if o.failures == nil {
		return
	}
	event := models.UploadFailure{
		EventType: "interview.upload.failed",
		SessionID: res.SessionID,
		UserID:    res.UserID,
		Stage:     stage,
		Artifact:  artifact,
		Error:     cause.Error(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := o.failures.PublishUploadFailure(ctx, event); err != nil {
		o.logger.Error().Err(err).Msg("Failed to publish upload failure event")
	}
}
