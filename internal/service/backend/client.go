// Package backend submits the legacy completion record to the interview
// backend. It is the fallback finalizer when object storage is disabled but
// a backend URL is configured.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
	"interview-capture-service/internal/service/capture"
)

// Client posts the finish-interview multipart record.
type Client struct {
	client *resty.Client
	url    string
	logger zerolog.Logger
}

// NewClient creates a backend client.
func NewClient(url string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		logger: logger,
	}
}

// Finalize posts one multipart part per audio segment plus the optional
// session video, and returns the number of parts submitted.
func (c *Client) Finalize(ctx context.Context, res models.SessionResult) (int, error) {
	req := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"sessionId": res.SessionID,
			"userId":    res.UserID,
		})

	parts := 0
	for i, seg := range res.Segments {
		name := strconv.Itoa(i + 1)
		req.SetMultipartField("audios", name+".wav", capture.AudioContentType, bytes.NewReader(seg.Audio))
		parts++
	}
	if res.Video != nil {
		req.SetMultipartField("video", "video.webm", res.Video.ContentType, bytes.NewReader(res.Video.Data))
		parts++
	}

	resp, err := req.Post(c.url + "/finish-interview")
	if err != nil {
		return 0, fmt.Errorf("finish-interview request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("finish-interview returned %d", resp.StatusCode())
	}

	c.logger.Info().
		Str("sessionId", res.SessionID).
		Int("parts", parts).
		Msg("Completion record submitted")
	return parts, nil
}
