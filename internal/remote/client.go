// Package remote fetches the current list of chest codes from an HTTP
// endpoint.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxAttempts caps the retries to avoid flooding the server
	MaxAttempts = 5

	// DefaultTimeout applies when no timeout is configured
	DefaultTimeout = 4 * time.Second

	maxBodySize = 1 << 20
)

// Code is one entry of the code list
type Code struct {
	Code string `json:"code"`
}

type errorEnvelope struct {
	Error ServerError `json:"error"`
}

// Client requests the code list with linear backoff between attempts
type Client struct {
	URL        string
	MaxRetries int
	HTTP       *http.Client
	log        *zap.Logger

	// sleep waits between attempts. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a client. A zero timeout uses DefaultTimeout.
func New(url string, maxRetries int, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		URL:        url,
		MaxRetries: maxRetries,
		HTTP:       &http.Client{Timeout: timeout},
		log:        log,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Attempts returns the number of requests Fetch will make, between 1 and
// MaxAttempts
func (c *Client) Attempts() int {
	return max(1, min(MaxAttempts, c.MaxRetries))
}

// Fetch returns the codes. After failed attempt i (counting from zero) it
// waits 2*i seconds before trying again.
func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	attempts := c.Attempts()

	var (
		lastErr  error
		category Category
	)
	for i := 0; i < attempts; i++ {
		codes, cat, err := c.fetchOnce(ctx)
		if err == nil {
			c.log.Debug("Codes retrieved", zap.Int("count", len(codes)), zap.Int("attempt", i+1))
			return codes, nil
		}
		lastErr, category = err, cat

		c.log.Error("Failed to retrieve codes",
			zap.String("category", string(cat)),
			zap.Int("attempt", i+1),
			zap.Int("max", attempts),
			zap.Error(err),
		)

		if i == attempts-1 {
			break
		}
		if err := c.sleep(ctx, time.Duration(2*i)*time.Second); err != nil {
			return nil, fmt.Errorf("fetch of codes interrupted: %w", err)
		}
	}

	return nil, &FetchError{Category: category, Attempts: attempts, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context) ([]string, Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, CategoryTransport, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, CategoryTransport, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, CategoryTransport, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, CategoryServer, &ServerError{Status: resp.StatusCode}
		}
		env.Error.Status = resp.StatusCode
		return nil, CategoryServer, &env.Error
	}

	var list []Code
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, CategoryDecode, fmt.Errorf("failed to parse codes: %w", err)
	}

	codes := make([]string, 0, len(list))
	for _, entry := range list {
		if entry.Code == "" {
			continue
		}
		codes = append(codes, entry.Code)
	}
	return codes, "", nil
}

// IsCategory reports whether err is a FetchError of the given category
func IsCategory(err error, cat Category) bool {
	var ferr *FetchError
	return errors.As(err, &ferr) && ferr.Category == cat
}
