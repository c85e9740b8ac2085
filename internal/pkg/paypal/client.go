package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/qs3c/vidgen_server/config"
)

const StatusCompleted = "COMPLETED"

var ErrNotConfigured = errors.New("missing PayPal client id or secret")

// APIError 非 2xx 响应，附带响应体
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("PayPal HTTPError %d during %s: %s", e.StatusCode, e.Op, e.Body)
}

// Order v2 checkout 订单（只取用到的字段）
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Client struct {
	clientID   string
	secret     string
	env        string
	baseURL    string
	currency   string
	httpClient *http.Client
}

func NewClient(cfg *config.PayPalConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "GBP"
	}
	return &Client{
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		env:        cfg.Env,
		baseURL:    cfg.APIBase(),
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ClientID 前端 SDK 使用
func (c *Client) ClientID() string {
	return c.clientID
}

// AccessToken client_credentials 换取 token，每次调用都重新获取
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.secret == "" {
		return "", ErrNotConfigured
	}

	log.Printf("[paypal] getting token (env=%s) to %s", c.env, c.baseURL)

	cc := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.secret,
		TokenURL:     c.baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			apiErr := &APIError{Op: "token", StatusCode: re.Response.StatusCode, Body: string(re.Body)}
			log.Printf("[paypal] %v", apiErr)
			return "", apiErr
		}
		log.Printf("[paypal] token request failed: %v", err)
		return "", fmt.Errorf("paypal token: %w", err)
	}

	return tok.AccessToken, nil
}

// CreateOrder 创建 CAPTURE 订单，金额保留两位小数
func (c *Client) CreateOrder(ctx context.Context, amount float64) (*Order, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": c.currency,
					"value":         fmt.Sprintf("%.2f", amount),
				},
			},
		},
	}
	log.Printf("[paypal] create order body=%v", body)

	var order Order
	if err := c.do(ctx, "create order", "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}
	log.Printf("[paypal] create order response id=%s status=%s", order.ID, order.Status)
	return &order, nil
}

// CaptureOrder 完成支付；调用方需检查 Status 是否为 COMPLETED
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	log.Printf("[paypal] capture order %s", orderID)

	var order Order
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, "capture order", path, nil, &order); err != nil {
		return nil, err
	}
	log.Printf("[paypal] capture response id=%s status=%s", order.ID, order.Status)
	return &order, nil
}

func (c *Client) do(ctx context.Context, op, path string, payload interface{}, out interface{}) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[paypal] %s failed: %v", op, err)
		return fmt.Errorf("paypal %s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paypal %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
		log.Printf("[paypal] %v", apiErr)
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("paypal %s: decode response: %w", op, err)
	}
	return nil
}
