// Package remote implements the HTTP client for the entitlement backend,
// the source of truth for customer snapshots and transaction verification.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/sony/gobreaker/v2"
)

// DefaultBaseURL is the production endpoint, overridable at configure time.
const DefaultBaseURL = "https://api.entitle.dev"

// Config configures the remote client.
type Config struct {
	// APIKey is the bearer token, fixed at configuration time.
	APIKey string

	// BaseURL overrides DefaultBaseURL when non-empty.
	BaseURL string

	// Timeout bounds each request. Zero leaves the transport default in
	// place; the backend contract does not prescribe a value, so none is
	// invented here.
	Timeout time.Duration

	// BreakerEnabled guards requests with a circuit breaker. Off by
	// default; background refresh loops are the intended beneficiary.
	BreakerEnabled bool
}

// TransactionDetails is informational verification metadata. It is logged,
// not returned; callers do not depend on it.
type TransactionDetails struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
}

// Client talks to the entitlement backend. It performs no internal retries;
// retry policy belongs to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates a remote client with bearer authentication.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &bearerTransport{
				base:   http.DefaultTransport,
				apiKey: cfg.APIKey,
			},
		},
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name: "entitle-backend",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}
	return c
}

// do runs the request, through the breaker when one is configured. Non-2xx
// statuses do not trip the breaker; only transport failures do.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
}

// FetchSnapshot issues an authenticated read of the customer snapshot. A 404
// is not an error: the backend not knowing the user yet is a valid state and
// yields an empty snapshot.
func (c *Client) FetchSnapshot(ctx context.Context, userID string) (*domain.CustomerSnapshot, error) {
	fetchURL := fmt.Sprintf("%s/api/v1/customers/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload struct {
			CustomerInfo *domain.CustomerSnapshot `json:"customerInfo"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.CustomerInfo == nil {
			// A malformed payload from the authoritative source is a
			// transport fault, not something callers branch on.
			return nil, fmt.Errorf("%w: malformed customer payload", domain.ErrNetwork)
		}
		return payload.CustomerInfo, nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.EmptySnapshot(userID), nil
	default:
		drain(resp.Body)
		return nil, &domain.ServerError{StatusCode: resp.StatusCode}
	}
}

// VerifyTransaction submits a transaction for backend verification and
// returns the updated snapshot. Any non-200 response or transport failure is
// a verification failure.
func (c *Client) VerifyTransaction(ctx context.Context, transactionID, userID string) (*domain.CustomerSnapshot, error) {
	body, err := json.Marshal(struct {
		TransactionID string `json:"transactionId"`
		AppUserID     string `json:"appUserId"`
	}{
		TransactionID: transactionID,
		AppUserID:     userID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	verifyURL := fmt.Sprintf("%s/api/v1/receipts/verify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, fmt.Errorf("%w: status %d", domain.ErrVerificationFailed, resp.StatusCode)
	}

	var payload struct {
		Success      bool                     `json:"success"`
		CustomerInfo *domain.CustomerSnapshot `json:"customerInfo"`
		Transaction  *TransactionDetails      `json:"transaction,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed verification payload", domain.ErrVerificationFailed)
	}
	if !payload.Success || payload.CustomerInfo == nil {
		return nil, domain.ErrVerificationFailed
	}

	if payload.Transaction != nil {
		c.logger.Debug("transaction verified",
			"transaction_id", payload.Transaction.ID,
			"product_id", payload.Transaction.ProductID,
		)
	}
	return payload.CustomerInfo, nil
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
}

type bearerTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(req)
}
