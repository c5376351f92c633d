package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/config"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
)

const (
	authPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	timestampLayout             = "20060102150405"
	responseBodyReadLimit int64 = 2048
)

var errCredentialsRequired = errors.New("mpesa consumer key and secret are required")

// Client wraps the Daraja STK push API.
type Client struct {
	httpClient *http.Client
	cfg        config.MpesaConfig

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Daraja base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.cfg.BaseURL = trimmed
		}
	}
}

// WithClock overrides the time source used for password timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds the Daraja client from configuration. In simulate
// mode no credentials are needed and no network calls are made.
func NewClient(cfg config.MpesaConfig, opts ...Option) (*Client, error) {
	if !cfg.Simulate {
		if strings.TrimSpace(cfg.ConsumerKey) == "" || strings.TrimSpace(cfg.ConsumerSecret) == "" {
			return nil, errCredentialsRequired
		}
		if strings.TrimSpace(cfg.Shortcode) == "" || strings.TrimSpace(cfg.Passkey) == "" {
			return nil, errors.New("mpesa shortcode and passkey are required")
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// STKPushRequest describes a payment prompt pushed to a customer phone.
type STKPushRequest struct {
	Amount           decimal.Decimal
	PhoneNumber      string
	AccountReference string
	TransactionDesc  string
}

// STKPushResponse is the gateway acknowledgment. ResponseCode "0" means
// the prompt was accepted for processing; settlement arrives later via
// the callback.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the gateway accepted the push request.
func (r *STKPushResponse) Accepted() bool {
	return r != nil && r.ResponseCode == "0"
}

// STKPush initiates a payment prompt on the customer's phone.
func (c *Client) STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mpesa client not configured")
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if c.cfg.Simulate {
		return &STKPushResponse{
			MerchantRequestID:   fmt.Sprintf("sim-%d", c.now().UnixNano()),
			CheckoutRequestID:   fmt.Sprintf("ws_CO_%s", req.AccountReference),
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
		}, nil
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))

	payload := map[string]any{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   c.cfg.TransactionType,
		"Amount":            req.Amount.Round(0).IntPart(),
		"PartyA":            req.PhoneNumber,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       req.PhoneNumber,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  req.AccountReference,
		"TransactionDesc":   req.TransactionDesc,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal stk push request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(stkPushPath), bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build stk push request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute stk push request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"stk push request rejected",
		)
	}

	var pushResp STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode stk push response")
	}

	return &pushResp, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(authPath), nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build token request")
	}
	httpReq.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute token request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"token request rejected",
		)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode token response")
	}
	if tokenResp.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "token response missing access_token")
	}

	ttl := 50 * time.Minute
	if secs, parseErr := time.ParseDuration(tokenResp.ExpiresIn + "s"); parseErr == nil && secs > time.Minute {
		ttl = secs - time.Minute
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	return c.accessToken, nil
}

func (c *Client) buildURL(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}
