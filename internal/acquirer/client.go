package acquirer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/json-iterator/go"
)

// ErrUnavailable indicates the acquiring bank answered with a
// non-success status. Transport-level faults are returned as plain
// wrapped errors instead.
var ErrUnavailable = errors.New("acquiring bank is unavailable")

// AuthorizationRequest is the wire payload sent to the bank.
type AuthorizationRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	CVV         string `json:"cvv"`
}

// AuthorizationDecision is the bank's verdict. The authorization code
// is an opaque token present regardless of outcome.
type AuthorizationDecision struct {
	Authorized        bool   `json:"authorized"`
	AuthorizationCode string `json:"authorization_code"`
}

// RetryPolicy controls how many authorization attempts are made and
// which failures warrant another one. A nil Retryable treats every
// failure as retryable.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// SingleAttempt is the default policy: one call, no retry.
func SingleAttempt() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

type Client struct {
	Base  string
	HTTP  *http.Client
	Retry RetryPolicy
}

func New(base string, hc *http.Client, retry RetryPolicy) *Client {
	if hc == nil {
		hc = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc, Retry: retry}
}

// Authorize submits the payment to the bank and returns its decision.
// The request is attempted once per the retry policy, sleeping Backoff
// between attempts and honoring context cancellation.
func (c *Client) Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationDecision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return AuthorizationDecision{}, fmt.Errorf("marshal authorization request: %w", err)
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		decision, err := c.authorize(ctx, body)
		if err == nil {
			return decision, nil
		}
		lastErr = err

		if attempt >= c.Retry.MaxAttempts {
			break
		}
		if c.Retry.Retryable != nil && !c.Retry.Retryable(err) {
			break
		}
		if c.Retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				return AuthorizationDecision{}, ctx.Err()
			case <-time.After(c.Retry.Backoff):
			}
		}
	}

	return AuthorizationDecision{}, lastErr
}

func (c *Client) authorize(ctx context.Context, body []byte) (AuthorizationDecision, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/payments", bytes.NewReader(body))
	if err != nil {
		return AuthorizationDecision{}, fmt.Errorf("build authorization request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return AuthorizationDecision{}, fmt.Errorf("authorize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return AuthorizationDecision{}, fmt.Errorf("authorize status=%d: %w", resp.StatusCode, ErrUnavailable)
	}

	var decision AuthorizationDecision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return AuthorizationDecision{}, fmt.Errorf("decode authorization response: %w", err)
	}

	return decision, nil
}
