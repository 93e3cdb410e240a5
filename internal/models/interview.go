// Package models defines the data structures for interview sessions and artifacts.
package models

import "time"

// Question is a single interview question. Immutable once the session starts.
type Question struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	PointValue       int    `json:"points"`
	TimeLimitSeconds int    `json:"time"`
}

// AnswerSegment is one question's captured audio plus its index and prompt
// text. Never mutated after creation; at most one per question index.
type AnswerSegment struct {
	QuestionIndex int
	Audio         []byte
	QuestionText  string
	CapturedAt    time.Time
}

// VideoArtifact is the single whole-session video recording, created once at
// finalize.
type VideoArtifact struct {
	Data        []byte
	ContentType string
}

// UploadDestination is the resolved folder hierarchy in object storage.
// Resolved (get-or-create) once per finalize invocation.
type UploadDestination struct {
	RootFolderID   string
	UserFolderID   string
	AudiosFolderID string
	VideoFolderID  string
}

// AccessToken is a short-lived storage credential. Fetched fresh for each
// finalize invocation; never persisted, never reused across sessions.
type AccessToken struct {
	Value     string `json:"access_token"`
	ExpiresIn int64  `json:"expires_in"`
}

// SessionResult is everything a finalizer needs to persist one completed
// session: the ordered answer segments and the optional session video.
type SessionResult struct {
	SessionID string
	UserID    string
	Segments  []AnswerSegment
	Video     *VideoArtifact
}
