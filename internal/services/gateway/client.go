// Package gateway implements the payment provider client used for inbound
// collection links, outbound bank payouts and webhook verification.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carepay/internal/config"
	"carepay/internal/models"

	"github.com/google/uuid"
)

var ErrMissingCredentials = errors.New("gateway credentials not configured")

const (
	moneyTimeout  = 30 * time.Second
	statusTimeout = 10 * time.Second
)

// Config holds the gateway credentials. Payout operations use a separate
// credential set; when unset they fall back to the collection credentials,
// which is how the sandbox environment works.
type Config struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string

	PayoutClientID    string
	PayoutAPIKey      string
	PayoutChecksumKey string
}

func FromEnv() Config {
	cfg := Config{
		BaseURL:     config.GetEnv("PAYOS_API_URL", "https://api-merchant.payos.vn"),
		ClientID:    config.GetEnv("PAYOS_CLIENT_ID", ""),
		APIKey:      config.GetEnv("PAYOS_API_KEY", ""),
		ChecksumKey: config.GetEnv("PAYOS_CHECKSUM_KEY", ""),
	}
	cfg.PayoutClientID = config.GetEnv("PAYOS_PAYOUT_CLIENT_ID", cfg.ClientID)
	cfg.PayoutAPIKey = config.GetEnv("PAYOS_PAYOUT_API_KEY", cfg.APIKey)
	cfg.PayoutChecksumKey = config.GetEnv("PAYOS_PAYOUT_CHECKSUM_KEY", cfg.ChecksumKey)
	return cfg
}

// Client talks to the payment gateway over HTTPS. Money-moving calls get a
// longer timeout than status lookups.
type Client struct {
	cfg          Config
	moneyClient  *http.Client
	statusClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:          cfg,
		moneyClient:  &http.Client{Timeout: moneyTimeout},
		statusClient: &http.Client{Timeout: statusTimeout},
	}
}

// Sign computes the hex HMAC-SHA256 of the payload serialized with sorted
// keys, the canonical form the gateway verifies against.
func Sign(payload map[string]interface{}, checksumKey string) (string, error) {
	// encoding/json marshals map keys in sorted order, which matches the
	// gateway's canonical serialization.
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature checks a webhook signature in constant time.
func (c *Client) VerifySignature(payload map[string]interface{}, signature string) bool {
	expected, err := Sign(payload, c.cfg.ChecksumKey)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NewOrderCode builds a unique order code with the given prefix.
func NewOrderCode(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0])
}

// CreateCollectionPayment requests a hosted payment link for an inbound
// collection. Declines and transport failures are reported in the result,
// not as an error.
func (c *Client) CreateCollectionPayment(ctx context.Context, amount int64, description, returnURL, cancelURL string) (*PaymentResult, error) {
	if c.cfg.ClientID == "" || c.cfg.APIKey == "" || c.cfg.ChecksumKey == "" {
		return nil, ErrMissingCredentials
	}

	orderCode := NewOrderCode("DEPOSIT")
	payload := map[string]interface{}{
		"orderCode":   orderCode,
		"amount":      amount,
		"description": description,
		"returnUrl":   returnURL,
		"cancelUrl":   cancelURL,
	}

	result := &PaymentResult{OrderCode: orderCode}
	body, err := c.post(ctx, c.moneyClient, "/v2/payment-requests", payload, c.cfg.ClientID, c.cfg.APIKey, c.cfg.ChecksumKey)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	result.Success = true
	result.Raw = body
	result.TransactionID = nestedString(body, "data", "id")
	result.PaymentURL = nestedString(body, "data", "checkoutUrl")
	result.QRCode = nestedString(body, "data", "qrCode")
	result.Status = nestedString(body, "data", "status")
	return result, nil
}

// CreatePayout requests an outbound bank transfer using the payout
// credential set.
func (c *Client) CreatePayout(ctx context.Context, req PayoutRequest) (*PaymentResult, error) {
	if c.cfg.PayoutClientID == "" || c.cfg.PayoutAPIKey == "" || c.cfg.PayoutChecksumKey == "" {
		return nil, ErrMissingCredentials
	}

	orderCode := NewOrderCode(string(req.Kind))
	payload := map[string]interface{}{
		"orderCode":     orderCode,
		"amount":        req.Amount,
		"description":   req.Description,
		"accountNumber": req.Bank.AccountNumber,
		"accountName":   req.Bank.AccountName,
		"bankCode":      req.Bank.BankCode,
	}

	result := &PaymentResult{OrderCode: orderCode}
	body, err := c.post(ctx, c.moneyClient, "/v2/payouts", payload, c.cfg.PayoutClientID, c.cfg.PayoutAPIKey, c.cfg.PayoutChecksumKey)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	result.Success = true
	result.Raw = body
	result.TransactionID = nestedString(body, "data", "id")
	result.Status = nestedString(body, "data", "status")
	return result, nil
}

// CheckStatus looks up the gateway-side state of an order. Status lookups
// are unsigned; only the credential headers are sent.
func (c *Client) CheckStatus(ctx context.Context, orderCode string) (*StatusResult, error) {
	if c.cfg.ClientID == "" || c.cfg.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/payment-requests/"+orderCode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("x-client-id", c.cfg.ClientID)
	req.Header.Set("x-api-key", c.cfg.APIKey)

	result := &StatusResult{}
	resp, err := c.statusClient.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	defer resp.Body.Close()

	var body models.JSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("failed to decode status response: %v", err)
		return result, nil
	}
	if resp.StatusCode != http.StatusOK {
		result.Error = gatewayError(body, resp.StatusCode)
		result.Raw = body
		return result, nil
	}

	result.Success = true
	result.Status = nestedString(body, "data", "status")
	result.Raw = body
	return result, nil
}

func (c *Client) post(ctx context.Context, client *http.Client, path string, payload map[string]interface{}, clientID, apiKey, checksumKey string) (models.JSON, error) {
	signature, err := Sign(payload, checksumKey)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", clientID)
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("x-signature", signature)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body models.JSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(gatewayError(body, resp.StatusCode))
	}
	return body, nil
}

func gatewayError(body models.JSON, statusCode int) string {
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("gateway returned status %d", statusCode)
}

func nestedString(body models.JSON, keys ...string) string {
	var current interface{} = map[string]interface{}(body)
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = m[key]
	}
	if s, ok := current.(string); ok {
		return s
	}
	return ""
}
