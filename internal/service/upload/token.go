package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"interview-capture-service/internal/models"
)

// TokenClient fetches short-lived access tokens from the token broker.
type TokenClient struct {
	client *resty.Client
	url    string
	logger zerolog.Logger
}

// NewTokenClient creates a token broker client.
func NewTokenClient(url string, timeout time.Duration, logger zerolog.Logger) *TokenClient {
	return &TokenClient{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		logger: logger,
	}
}

// Fetch obtains a fresh token. Tokens are never cached and never reused
// across finalize invocations.
func (c *TokenClient) Fetch(ctx context.Context) (models.AccessToken, error) {
	var token models.AccessToken
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&token).
		Get(c.url)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("token broker request: %w", err)
	}
	if resp.IsError() {
		return models.AccessToken{}, fmt.Errorf("token broker returned %d", resp.StatusCode())
	}
	if token.Value == "" {
		return models.AccessToken{}, fmt.Errorf("token broker response missing access_token")
	}

	c.logger.Debug().
		Int64("expiresIn", token.ExpiresIn).
		Msg("Access token fetched")
	return token, nil
}
