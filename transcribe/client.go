// Copyright 2025 The CivicSignal Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.deepgram.com/v1/listen"

	// modelTier is the engine's high-accuracy model.
	modelTier = "nova-3"

	// chunkSize bounds each read from the audio stream, so multi-hour
	// recordings are never buffered fully in memory.
	chunkSize = 8 * 1024

	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second

	// requestTimeout bounds one transcription call end to end.
	requestTimeout = 20 * time.Minute
)

// AudioSource opens the audio stream for one transcription attempt.
// It is invoked once per attempt so a retried call re-reads from the start.
type AudioSource func(ctx context.Context) (io.ReadCloser, error)

// Client invokes the external speech-to-text engine. The engine is
// configured for diarization, paragraph and sentence segmentation, topic
// and entity detection, smart formatting and English.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the engine endpoint. Intended for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTranscribeHTTPClient sets a custom HTTP client.
func WithTranscribeHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxAttempts sets the retry bound for transient failures.
// Default is 3.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the base backoff delay between attempts.
// Default is one second.
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a transcription client.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "transcriber"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Transcribe streams the audio to the engine and returns the parsed
// transcript. Transient transport failures are retried up to the configured
// bound with backoff and jitter; auth failures and malformed responses
// propagate immediately.
func (c *Client) Transcribe(ctx context.Context, audio AudioSource) (*Transcript, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		transcript, retryable, err := c.transcribeOnce(ctx, audio)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("transcription succeeded after retry", "attempt", attempt)
			}
			return transcript, nil
		}
		if !retryable {
			return nil, &TranscriptionError{Attempts: attempt, Cause: err}
		}

		lastErr = err
		c.logger.Warn("transcription attempt failed", "attempt", attempt, "max", c.maxAttempts, "err", err)

		if attempt == c.maxAttempts {
			break
		}
		if err := sleepWithJitter(ctx, c.baseDelay, attempt); err != nil {
			return nil, err
		}
	}
	return nil, &TranscriptionError{Attempts: c.maxAttempts, Cause: lastErr}
}

// transcribeOnce performs one engine call. The second return value reports
// whether the failure is transient and worth retrying.
func (c *Client) transcribeOnce(ctx context.Context, audio AudioSource) (*Transcript, bool, error) {
	stream, err := audio(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("opening audio stream: %w", err)
	}
	defer stream.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), &chunkReader{r: stream})
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Parsed below.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("engine rejected credentials: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("engine returned status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("engine returned status %d", resp.StatusCode)
	}

	// Response validation is outside the retry policy: a malformed body is
	// not transient.
	var transcript Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, false, fmt.Errorf("decoding engine response: %w", err)
	}
	return &transcript, false, nil
}

// requestURL builds the engine URL with the fixed transcription options.
func (c *Client) requestURL() string {
	q := url.Values{}
	q.Set("model", modelTier)
	q.Set("language", "en")
	q.Set("smart_format", "true")
	q.Set("diarize", "true")
	q.Set("topics", "true")
	q.Set("detect_entities", "true")
	q.Set("paragraphs", "true")
	return c.baseURL + "?" + q.Encode()
}

// sleepWithJitter waits base*attempt plus up to one second of jitter,
// honoring context cancellation.
func sleepWithJitter(ctx context.Context, base time.Duration, attempt int) error {
	delay := base*time.Duration(attempt) + time.Duration(rand.Float64()*float64(time.Second))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// chunkReader caps each Read at chunkSize bytes so the transport streams
// the audio in fixed-size chunks.
type chunkReader struct {
	r io.Reader
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > chunkSize {
		p = p[:chunkSize]
	}
	return c.r.Read(p)
}
