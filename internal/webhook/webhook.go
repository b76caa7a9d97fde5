// Package webhook posts marketing selections to an automation endpoint
// (n8n, Zapier and the like).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Payload is one entry of the posted JSON array. Nothing else about the
// client leaves the system.
type Payload struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded %s", e.Status)
}

// Sender posts payloads. Posts are paced by a shared limiter so a burst of
// clicks cannot flood the endpoint.
type Sender struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewSender(timeout time.Duration, rps float64, logger *zap.Logger) *Sender {
	return &Sender{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook url must be an absolute http(s) url")
	}
	return nil
}

// Send posts payloads as a JSON array to target. It waits for the limiter
// first, so a cancelled ctx aborts before anything is sent.
func (s *Sender) Send(ctx context.Context, target string, payloads []Payload) error {
	if err := ValidateURL(target); err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for webhook slot: %w", err)
	}

	body, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	s.logger.Info("webhook delivered",
		zap.String("host", req.URL.Host),
		zap.Int("count", len(payloads)),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
