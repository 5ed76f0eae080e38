// Package gateway holds the clients Facturas uses to reach other services.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facturacion/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// HTTPClienteGateway asks the Clientes service whether a client exists.
type HTTPClienteGateway struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

func NewHTTPClienteGateway(baseURL string, timeout time.Duration, m *metrics.Metrics) *HTTPClienteGateway {
	return &HTTPClienteGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// ClienteExists reports true only when the Clientes service answers 2xx.
// Transport failures and every other status count as "does not exist".
func (g *HTTPClienteGateway) ClienteExists(ctx context.Context, clienteID int64) bool {
	url := fmt.Sprintf("%s/api/clientes/%d", g.baseURL, clienteID)
	logger := log.WithField("cliente_id", clienteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to build cliente lookup request")
		g.metrics.ClienteCheck(metrics.ResultError)
		return false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.WithError(err).Warn("Clientes service unreachable, treating cliente as missing")
		g.metrics.ClienteCheck(metrics.ResultError)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WithField("status", resp.StatusCode).Debug("Cliente lookup returned non-success status")
		g.metrics.ClienteCheck(metrics.ResultMissing)
		return false
	}

	g.metrics.ClienteCheck(metrics.ResultExists)
	return true
}
