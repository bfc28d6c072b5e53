// Package recognition talks to the external sign recognition service and
// drives periodic recognition of camera frames pushed by the browser.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VanitasCaesar1/intake/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// User-facing messages shown when the recognition service misbehaves.
const (
	MsgHealthUnreachable = "无法连接到后端服务"
	MsgNetworkFailure    = "网络连接失败，请检查后端服务"
	MsgNoHand            = "未检测到手部，请将手放在识别框内"
)

// ErrUnavailable wraps every transport or decoding failure.
var ErrUnavailable = errors.New("recognition service unavailable")

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Result is the recognize response. Confidence is in [0,1] when present.
type Result struct {
	Success    bool     `json:"success"`
	Result     string   `json:"result,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Recognized reports whether r carries a usable label.
func (r Result) Recognized() bool {
	return r.Success && strings.TrimSpace(r.Result) != ""
}

// StoredConfidence is the confidence to keep with the record. A zero
// confidence is dropped, as the front-end never stored one.
func (r Result) StoredConfidence() *float64 {
	if r.Confidence == nil || *r.Confidence == 0 {
		return nil
	}
	return r.Confidence
}

type RemoteHistory struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Count   int               `json:"count"`
}

type recognizeRequest struct {
	Image     string `json:"image"`
	Timestamp string `json:"timestamp"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// CheckHealth never fails; an unreachable service reports status "error".
func (c *Client) CheckHealth(ctx context.Context) Health {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		c.logger.Warn("recognition health check failed", zap.Error(err))
		return Health{Status: "error", Message: MsgHealthUnreachable}
	}
	return h
}

// Recognize submits one base64 data-URL frame. On failure the returned Result
// still carries a user-facing message alongside the error.
func (c *Client) Recognize(ctx context.Context, image string) (Result, error) {
	body := recognizeRequest{
		Image:     image,
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}

	var r Result
	if err := c.do(ctx, http.MethodPost, "/api/recognize", body, &r); err != nil {
		metrics.RecognitionRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
		c.logger.Error("recognition request failed", zap.Error(err))
		return Result{Success: false, Error: MsgNetworkFailure}, err
	}

	if r.Recognized() {
		metrics.RecognitionRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	} else {
		metrics.RecognitionRequests.WithLabelValues(metrics.OutcomeNoResult).Inc()
		if r.Error == "" {
			r.Error = MsgNoHand
		}
	}
	return r, nil
}

// GetHistory degrades to an empty unsuccessful result.
func (c *Client) GetHistory(ctx context.Context) RemoteHistory {
	var h RemoteHistory
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &h); err != nil {
		c.logger.Warn("failed to fetch recognition history", zap.Error(err))
		return RemoteHistory{Success: false, Data: []json.RawMessage{}, Count: 0}
	}
	if h.Data == nil {
		h.Data = []json.RawMessage{}
	}
	return h
}

// do decodes the JSON body whatever the status code; the service reports
// its own failures in the body.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s returned %s with undecodable body: %v",
			ErrUnavailable, method, path, resp.Status, err)
	}
	return nil
}
