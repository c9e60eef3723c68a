// Package payment adapts the external payment processor. Intent creation
// talks to the processor's REST API; verification is a local HMAC check
// and is the only trust boundary between gateway callbacks and order
// state.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrGateway       = errors.New("payment gateway request failed")
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Intent is the gateway-side reservation of an amount. It is not persisted
// locally beyond the order's transaction id.
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type Gateway struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Intent]
	log     *logrus.Logger
}

func NewGateway(cfg Config, log *logrus.Logger) *Gateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).
				Warn("payment gateway breaker state changed")
		},
	})
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		log:     log,
	}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateIntent reserves amount (major currency units) with the processor.
// The processor works in minor units, so the amount is multiplied by 100
// and must stay positive after conversion.
func (g *Gateway) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*Intent, error) {
	minor := amount * 100
	if minor <= 0 {
		return nil, ErrInvalidAmount
	}

	return g.breaker.Execute(func() (*Intent, error) {
		body, err := json.Marshal(createIntentRequest{Amount: minor, Currency: currency, Receipt: receipt})
		if err != nil {
			return nil, fmt.Errorf("marshal intent request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build intent request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
		}

		var intent Intent
		if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
		}
		return &intent, nil
	})
}

// Verify recomputes the signature the gateway is expected to have produced
// over "<gatewayOrderID>|<gatewayPaymentID>" and compares it in constant
// time. A mismatch is an ordinary false, not an error.
func (g *Gateway) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
