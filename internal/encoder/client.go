package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gostream/gostream/internal/config"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/metrics"
	"github.com/gostream/gostream/internal/tracing"
)

// Outcome is the single result of an encode attempt sequence.
// Encoded is false when every configured worker was skipped or failed,
// which tells the caller to store the raw upload as-is.
type Outcome struct {
	EncodedPath string
	Encoded     bool
}

// Client turns an unreliable, possibly-absent encoding capability into a
// best-effort call. It walks a priority-ordered list of transcode worker
// endpoints, probing each for liveness before committing to the transfer,
// and returns the first successful encoded-file reference.
type Client struct {
	endpoints     []string
	healthTimeout time.Duration
	encodeTimeout time.Duration
	client        *http.Client
	log           *logging.Logger
}

// NewClient creates an encoder client from configuration
func NewClient(cfg config.EncoderConfig, log *logging.Logger) *Client {
	return &Client{
		endpoints:     cfg.WorkerURLs,
		healthTimeout: cfg.HealthTimeout,
		encodeTimeout: cfg.EncodeTimeout,
		// Per-call deadlines come from the request contexts; a client-wide
		// timeout would cap large encodes.
		client: &http.Client{},
		log:    log,
	}
}

// Encode tries each configured worker in order and returns the first
// successful encoded-file reference. All failures collapse into a
// fallback outcome; no error escapes to the caller.
func (c *Client) Encode(ctx context.Context, rawPath string) Outcome {
	span, ctx := tracing.StartSpan(ctx, "encoder.encode")
	defer tracing.FinishSpan(span)

	for _, endpoint := range c.endpoints {
		start := time.Now()

		if err := c.probe(ctx, endpoint); err != nil {
			c.log.LogEncodeAttempt(endpoint, "health_failed", time.Since(start), err)
			metrics.RecordEncodeAttempt(endpoint, "health_failed")
			continue
		}

		encodedPath, err := c.encode(ctx, endpoint, rawPath)
		if err != nil {
			c.log.LogEncodeAttempt(endpoint, "encode_failed", time.Since(start), err)
			metrics.RecordEncodeAttempt(endpoint, "encode_failed")
			continue
		}

		c.log.LogEncodeAttempt(endpoint, "success", time.Since(start), nil)
		metrics.RecordEncodeAttempt(endpoint, "success")
		metrics.EncodeDuration.Observe(time.Since(start).Seconds())
		tracing.SetTag(span, "endpoint", endpoint)

		return Outcome{EncodedPath: encodedPath, Encoded: true}
	}

	tracing.SetTag(span, "fallback", true)
	return Outcome{}
}

// probe checks worker liveness with a short deadline so an unreachable
// worker cannot stall the upload before the file transfer even starts
func (c *Client) probe(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", body.Status)
	}

	return nil
}

// encode streams the raw file to a live worker. The body is piped so
// large videos never need to be buffered in memory, and no size cap is
// applied at this layer.
func (c *Client) encode(ctx context.Context, endpoint, rawPath string) (string, error) {
	file, err := os.Open(rawPath)
	if err != nil {
		return "", fmt.Errorf("failed to open raw file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, c.encodeTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("video", filepath.Base(rawPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/encode", pr)
	if err != nil {
		return "", fmt.Errorf("failed to create encode request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("encode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("encode returned status %d: %s", resp.StatusCode, body)
	}

	var body struct {
		EncodedPath string `json:"encodedPath"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode encode response: %w", err)
	}
	if body.EncodedPath == "" {
		return "", errors.New("no encodedPath returned")
	}

	return body.EncodedPath, nil
}
