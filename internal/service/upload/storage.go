package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
)

// Client talks the object-storage folder and resumable-upload API.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  zerolog.Logger
}

// NewClient creates an object-storage client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		client:  resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		logger:  logger,
	}
}

type folderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

type folderResponse struct {
	ID string `json:"id"`
}

// CreateFolder creates a folder under parentID (empty for a top-level
// folder) and returns its id.
func (c *Client) CreateFolder(ctx context.Context, token models.AccessToken, name, parentID string) (string, error) {
	var out folderResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token.Value).
		SetBody(folderRequest{Name: name, ParentID: parentID}).
		SetResult(&out).
		Post(c.baseURL + "/folders")
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("create folder %q: storage returned %d", name, resp.StatusCode())
	}
	if out.ID == "" {
		return "", fmt.Errorf("create folder %q: response missing folder id", name)
	}
	return out.ID, nil
}

type initUploadRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

// InitUpload opens a resumable upload session for a named file in a folder
// and returns the session location from the Location header.
func (c *Client) InitUpload(ctx context.Context, token models.AccessToken, folderID, name string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token.Value).
		SetBody(initUploadRequest{Name: name, ParentID: folderID}).
		Post(c.baseURL + "/uploads")
	if err != nil {
		return "", fmt.Errorf("init upload %q: %w", name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("init upload %q: storage returned %d", name, resp.StatusCode())
	}
	location := resp.Header().Get("Location")
	if location == "" {
		return "", fmt.Errorf("init upload %q: response missing Location header", name)
	}
	return location, nil
}

type transferResponse struct {
	ID string `json:"id"`
}

// Transfer sends the artifact bytes to an open upload session and returns
// the created file id. A response without a file id is a failure.
func (c *Client) Transfer(ctx context.Context, location, contentType string, data []byte) (string, error) {
	var out transferResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		SetResult(&out).
		Put(location)
	if err != nil {
		return "", fmt.Errorf("transfer: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transfer: storage returned %d", resp.StatusCode())
	}
	if out.ID == "" {
		return "", fmt.Errorf("transfer: response missing file id")
	}
	return out.ID, nil
}
