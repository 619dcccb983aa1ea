package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/lumapay/paylink/internal/config"
	customError "github.com/lumapay/paylink/pkg/errors"
)

const (
	createPaymentPath = "/V4/Charge/CreatePayment"
	orderGetPath      = "/V4/Order/Get"
)

// HTTPClient is the production API implementation. One synchronous request
// per call, bounded by the configured timeout; no retries.
type HTTPClient struct {
	baseURL string
	shopID  string
	secret  string
	http    *http.Client
}

func NewHTTPClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.Gateway.BaseURL,
		shopID:  cfg.Gateway.ShopID,
		secret:  cfg.Gateway.Secret,
		http: &http.Client{
			Timeout: cfg.GetGatewayTimeout(),
		},
	}
}

// createEnvelope is the provider's answer envelope for order creation
type createEnvelope struct {
	Status       string               `json:"status"`
	ErrorCode    string               `json:"errorCode,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	Answer       *CreateOrderResponse `json:"answer,omitempty"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	var envelope createEnvelope
	if err := c.post(ctx, createPaymentPath, req, &envelope); err != nil {
		return nil, err
	}

	if envelope.Status != "SUCCESS" {
		return nil, customError.WrapGatewayDeclined(envelope.ErrorCode, envelope.ErrorMessage)
	}
	if envelope.Answer == nil || envelope.Answer.PaymentURL == "" {
		return nil, customError.WrapGatewayError(errors.New("success answer without payment URL"))
	}
	return envelope.Answer, nil
}

// queryEnvelope wraps the status answer; the error code/message pair lives
// at the envelope level so an "order not opened" answer still decodes.
type queryEnvelope struct {
	Status       string              `json:"status"`
	ErrorCode    string              `json:"errorCode,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	Answer       *QueryOrderResponse `json:"answer,omitempty"`
}

func (c *HTTPClient) QueryOrder(ctx context.Context, orderID string) (*QueryOrderResponse, error) {
	body := map[string]string{"orderId": orderID}

	var envelope queryEnvelope
	if err := c.post(ctx, orderGetPath, body, &envelope); err != nil {
		return nil, err
	}

	if envelope.Status != "SUCCESS" {
		return &QueryOrderResponse{
			Status:       envelope.Status,
			ErrorCode:    envelope.ErrorCode,
			ErrorMessage: envelope.ErrorMessage,
		}, nil
	}
	if envelope.Answer == nil {
		return nil, customError.WrapGatewayError(errors.New("success answer without body"))
	}
	envelope.Answer.Status = envelope.Status
	return envelope.Answer, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return customError.WrapGatewayError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return customError.WrapGatewayError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.shopID, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return customError.WrapGatewayTimeout(err)
		}
		return customError.WrapGatewayError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return customError.WrapGatewayError(
			fmt.Errorf("unexpected gateway status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return customError.WrapGatewayError(err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// BuildSchedule produces an explicit installment schedule: due dates spaced
// at fixed 30-day intervals from the reference date, the total split evenly
// with the remainder cents on the first installment.
func BuildSchedule(totalMinor int64, installments int, from time.Time) []InstallmentDue {
	if installments < 1 {
		installments = 1
	}
	each := totalMinor / int64(installments)
	remainder := totalMinor - each*int64(installments)

	schedule := make([]InstallmentDue, 0, installments)
	for i := 0; i < installments; i++ {
		amount := each
		if i == 0 {
			amount += remainder
		}
		schedule = append(schedule, InstallmentDue{
			DueDate:     from.AddDate(0, 0, 30*i).Format("2006-01-02"),
			AmountMinor: amount,
		})
	}
	return schedule
}
