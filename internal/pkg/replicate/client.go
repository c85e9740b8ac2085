package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qs3c/vidgen_server/config"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

var (
	ErrNotConfigured = errors.New("missing replicate api token")
	ErrNoOutput      = errors.New("prediction returned no output")
)

// PredictionError 预测失败或被取消
type PredictionError struct {
	ID     string
	Status string
	Detail string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction %s %s: %s", e.ID, e.Status, e.Detail)
}

// APIError 非 2xx 响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate HTTPError %d: %s", e.StatusCode, e.Body)
}

type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (p *Prediction) terminal() bool {
	return p.Status == StatusSucceeded || p.Status == StatusFailed || p.Status == StatusCanceled
}

// OutputURL 输出可能是字符串或字符串列表，取第一个
func (p *Prediction) OutputURL() (string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return "", ErrNoOutput
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		if single == "" {
			return "", ErrNoOutput
		}
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(p.Output, &list); err != nil {
		return "", fmt.Errorf("unexpected output shape: %w", err)
	}
	if len(list) == 0 || list[0] == "" {
		return "", ErrNoOutput
	}
	return list[0], nil
}

type Client struct {
	token        string
	baseURL      string
	model        string
	timeout      time.Duration
	pollInterval time.Duration
	httpClient   *http.Client
}

func NewClient(cfg *config.ReplicateConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		token:        cfg.APIToken,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		timeout:      timeout,
		pollInterval: time.Second,
		httpClient:   &http.Client{},
	}
}

// Run 创建预测并等待结果，返回视频地址
func (c *Client) Run(ctx context.Context, prompt string, duration int) (string, error) {
	if c.token == "" {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := map[string]interface{}{"prompt": prompt}
	if duration > 0 {
		input["duration"] = duration
	}

	pred, err := c.create(ctx, input)
	if err != nil {
		return "", err
	}

	for !pred.terminal() {
		if pred.URLs.Get == "" {
			return "", fmt.Errorf("prediction %s has no poll url", pred.ID)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		if pred, err = c.get(ctx, pred.URLs.Get); err != nil {
			return "", err
		}
	}

	if pred.Status != StatusSucceeded {
		return "", &PredictionError{ID: pred.ID, Status: pred.Status, Detail: fmt.Sprint(pred.Error)}
	}
	return pred.OutputURL()
}

func (c *Client) create(ctx context.Context, input map[string]interface{}) (*Prediction, error) {
	data, err := json.Marshal(map[string]interface{}{"input": input})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Prediction, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var pred Prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("replicate decode response: %w", err)
	}
	return &pred, nil
}
