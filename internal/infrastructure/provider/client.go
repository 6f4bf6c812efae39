// Package provider wraps the financial-data provider API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	accountsPath     = "/accounts"
	transactionsPath = "/transactions"
	balancesPath     = "/balances"
)

// ClientInterface defines the provider operations consumed by the sync engines.
type ClientInterface interface {
	ListAccounts(ctx context.Context, accessToken string) ([]Account, error)
	ListTransactions(ctx context.Context, accessToken string, q TransactionQuery) (*TransactionPage, error)
	GetBalances(ctx context.Context, accessToken string, accountIDs []string) ([]Balance, error)
}

// Client handles communication with the provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a provider client. requestsPerSecond bounds the outbound
// call rate across all users; timeout applies per request.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
	}
}

// ListAccounts fetches the accounts visible through one access credential.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, accessToken, accountsPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListTransactions fetches one page of transactions. The returned page
// carries the cursor for the next page and a has-more flag.
func (c *Client) ListTransactions(ctx context.Context, accessToken string, q TransactionQuery) (*TransactionPage, error) {
	params := url.Values{}
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}
	if len(q.AccountIDs) > 0 {
		params.Set("account_ids", strings.Join(q.AccountIDs, ","))
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}

	var resp transactionsResponse
	if err := c.get(ctx, accessToken, transactionsPath, params, &resp); err != nil {
		return nil, err
	}

	return &TransactionPage{
		Transactions: resp.Data,
		NextCursor:   resp.NextCursor,
		HasMore:      resp.HasMore,
	}, nil
}

// GetBalances fetches current balances for the given accounts.
func (c *Client) GetBalances(ctx context.Context, accessToken string, accountIDs []string) ([]Balance, error) {
	params := url.Values{}
	if len(accountIDs) > 0 {
		params.Set("account_ids", strings.Join(accountIDs, ","))
	}

	var resp balancesResponse
	if err := c.get(ctx, accessToken, balancesPath, params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// get issues an authenticated GET and decodes the success envelope into out.
// out must have a Success field checked by the caller's response type.
func (c *Client) get(ctx context.Context, accessToken, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return &APIError{StatusCode: resp.StatusCode, Code: errResp.Error, Message: errResp.Message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
