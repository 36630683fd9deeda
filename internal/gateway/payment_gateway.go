// internal/gateway/payment_gateway.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChargeRequest is what the billing core hands to the payment gateway.
// Reference doubles as the idempotency key on the gateway side.
type ChargeRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

type ChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error,omitempty"`
}

// Charger is the gateway collaborator. The core never retries a charge;
// retry policy lives with the caller.
type Charger interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
}

type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPGateway(baseURL, apiKey string, logger *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (g *HTTPGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway charge failed: %w", err)
	}
	defer resp.Body.Close()

	var charge ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("gateway declined charge",
			zap.Int("status", resp.StatusCode),
			zap.String("reference", req.Reference),
			zap.String("gateway_error", charge.Error),
		)
		return nil, fmt.Errorf("gateway declined charge: %s", charge.Error)
	}

	g.logger.Info("gateway charge confirmed",
		zap.String("reference", req.Reference),
		zap.String("transaction_id", charge.TransactionID),
		zap.String("amount", req.Amount.String()),
	)

	return &charge, nil
}
