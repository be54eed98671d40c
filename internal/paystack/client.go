package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.paystack.co"

// ErrTransactionNotFound means the gateway has no transaction for the reference.
var ErrTransactionNotFound = errors.New("transaction not found on gateway")

// Client calls the Paystack REST API. Webhooks do not need it; it backs the
// client-initiated verification path.
type Client struct {
	baseURL   *url.URL
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid paystack base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: u, secretKey: secretKey, http: httpClient}, nil
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// VerifyTransaction fetches the authoritative state of a transaction from the
// gateway (GET /transaction/verify/{reference}).
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*ChargeData, error) {
	rel := &url.URL{Path: "/transaction/verify/" + url.PathEscape(reference)}
	u := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify transaction %s: %w", reference, err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	if resp.StatusCode != http.StatusOK || !body.Status {
		return nil, fmt.Errorf("verify transaction %s: gateway said %d %q", reference, resp.StatusCode, body.Message)
	}

	var data ChargeData
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return nil, fmt.Errorf("decode verify data: %w", err)
	}
	if data.Reference == "" {
		return nil, fmt.Errorf("verify transaction %s: response missing reference", reference)
	}
	return &data, nil
}
