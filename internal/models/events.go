package models

// SessionCompleted is published when an interview session reaches its
// terminal state, whatever the upload outcome.
type SessionCompleted struct {
	EventType       string `json:"eventType"`
	SessionID       string `json:"sessionId"`
	UserID          string `json:"userId"`
	Questions       int    `json:"questions"`
	Segments        int    `json:"segments"`
	UploadedFiles   int    `json:"uploadedFiles"`
	UploadSucceeded bool   `json:"uploadSucceeded"`
	DurationMs      int64  `json:"durationMs"`
	Timestamp       int64  `json:"timestamp"`
}

// UploadFailure is published for operator visibility when any step of the
// finalize upload protocol fails. The end user still sees a completed
// interview.
type UploadFailure struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Stage     string `json:"stage"`
	Artifact  string `json:"artifact,omitempty"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}
