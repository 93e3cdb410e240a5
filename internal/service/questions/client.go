// Package questions loads the interview question list for a user from the
// question service.
package questions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
)

// Errors distinguishing why a question list could not be loaded. Each kind
// maps to a different user-facing outcome.
var (
	// ErrAlreadyCompleted - the user has already taken this interview.
	ErrAlreadyCompleted = errors.New("interview already completed")
	// ErrNotAssigned - no interview is assigned to the user.
	ErrNotAssigned = errors.New("no interview assigned")
	// ErrUnauthorized - the credentials were rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConnection - the question service could not be reached.
	ErrConnection = errors.New("question service unreachable")
)

// Source provides the question list for a user.
type Source interface {
	Load(ctx context.Context, userID string) ([]models.Question, error)
}

// Client fetches questions over HTTP. The read is idempotent and retried
// with backoff on transient failures.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  zerolog.Logger
}

// NewClient creates a question service client.
func NewClient(baseURL string, timeout time.Duration, retryCount int, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &Client{
		client:  rc,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Load fetches the user's assigned questions.
func (c *Client) Load(ctx context.Context, userID string) ([]models.Question, error) {
	var questions []models.Question
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&questions).
		Get(fmt.Sprintf("%s/users/%s/questions", c.baseURL, userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusGone:
		return nil, ErrAlreadyCompleted
	case http.StatusNotFound:
		return nil, ErrNotAssigned
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: service returned %d", ErrConnection, resp.StatusCode())
	}

	c.logger.Info().
		Str("userId", userID).
		Int("questions", len(questions)).
		Msg("Question list loaded")
	return questions, nil
}
