package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
)

// GA4Sink forwards events to Google Analytics 4 through the Measurement
// Protocol.
type GA4Sink struct {
	endpoint      string
	measurementID string
	apiSecret     string
	httpClient    *http.Client
	logger        *logging.ChanneledLogger
}

// NewGA4Sink creates a Measurement Protocol sink.
func NewGA4Sink(endpoint, measurementID, apiSecret string, timeout time.Duration, logger *logging.ChanneledLogger) *GA4Sink {
	return &GA4Sink{
		endpoint:      endpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// Send posts a single event to the Measurement Protocol collect endpoint.
func (s *GA4Sink) Send(ctx context.Context, name string, clientID string, params map[string]any) error {
	payload := ga4Payload{
		ClientID: clientID,
		Events:   []ga4Event{{Name: name, Params: params}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize ga4 payload: %w", err)
	}

	collectURL := fmt.Sprintf("%s?measurement_id=%s&api_secret=%s",
		s.endpoint, url.QueryEscape(s.measurementID), url.QueryEscape(s.apiSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, collectURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build ga4 request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ga4 collect request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ga4 collect returned status %d", resp.StatusCode)
	}

	if s.logger != nil {
		s.logger.Analytics().Debug("Event forwarded to GA4", "event", name, "duration", time.Since(start))
	}
	return nil
}
