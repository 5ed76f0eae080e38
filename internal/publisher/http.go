// Package publisher delivers audit notifications from Clientes and Facturas
// to the audit service, either over HTTP or through Kafka.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facturacion/internal/domain"
)

// HTTPAuditSink posts notifications to the audit service's POST /auditoria.
type HTTPAuditSink struct {
	endpoint string
	client   *http.Client
}

func NewHTTPAuditSink(baseURL string, timeout time.Duration) *HTTPAuditSink {
	return &HTTPAuditSink{
		endpoint: strings.TrimRight(baseURL, "/") + "/auditoria",
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPAuditSink) Send(ctx context.Context, n domain.AuditNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal audit notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post audit notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("audit service responded %s", resp.Status)
	}
	return nil
}

func (s *HTTPAuditSink) Close() {}
