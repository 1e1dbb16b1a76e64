package payment

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

	"github.com/LavaJover/shvark-slot-service/internal/config"
	paymentdto "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/payment"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	ModeSimulated = "simulated"
	ModeHTTP      = "http"
)

// NewGateway picks the gateway implementation from payment-service.mode.
func NewGateway(cfg config.PaymentService) (domain.PaymentGateway, error) {
	switch cfg.Mode {
	case "", ModeSimulated:
		return NewSimulatedGateway()
	case ModeHTTP:
		return NewHTTPGateway(cfg.Address, nil)
	default:
		return nil, fmt.Errorf("unknown payment mode %q", cfg.Mode)
	}
}

// SimulatedGateway accepts every charge. Used locally and in demo envs.
type SimulatedGateway struct {
	newID func() string
}

func NewSimulatedGateway() (*SimulatedGateway, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	return &SimulatedGateway{newID: gen}, nil
}

func (g *SimulatedGateway) Charge(ctx context.Context, tx *domain.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "sim_" + g.newID(), nil
}

type HTTPGateway struct {
	Address string
	client  *http.Client
}

func NewHTTPGateway(address string, client *http.Client) (*HTTPGateway, error) {
	if address == "" {
		return nil, errors.New("payment gateway address is empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPGateway{
		Address: strings.TrimRight(address, "/"),
		client:  client,
	}, nil
}

// Charge posts the transaction to the provider. 202 means the provider will
// report the outcome through the webhook later.
func (g *HTTPGateway) Charge(ctx context.Context, tx *domain.Transaction) (string, error) {
	requestBodyBytes, err := json.Marshal(paymentdto.ChargeRequest{
		TransactionID: tx.ID,
		PurchaseID:    tx.PurchaseID,
		BuyerID:       tx.BuyerID,
		SellerID:      tx.SellerID,
		Amount:        tx.Amount.StringFixed(2),
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Address+"/payments/charge", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Idempotency-Key", tx.ID)

	response, err := g.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	switch {
	case response.StatusCode == http.StatusAccepted:
		return "", domain.ErrPaymentPending
	case response.StatusCode >= 200 && response.StatusCode < 300:
		var chargeResponse paymentdto.ChargeResponse
		if err := json.Unmarshal(responseBodyBytes, &chargeResponse); err != nil {
			return "", err
		}
		if chargeResponse.PaymentID == "" {
			return "", errors.New("payment gateway returned empty payment id")
		}
		return chargeResponse.PaymentID, nil
	}

	var errorResponse paymentdto.ErrorResponse
	if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil || errorResponse.Error == "" {
		return "", fmt.Errorf("payment gateway responded %d", response.StatusCode)
	}
	return "", errors.New(errorResponse.Error)
}
