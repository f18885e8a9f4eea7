// services/gateway.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// PaymentGateway is a thin client for the YooKassa-style payment API:
// redirect-checkout payment intents and refunds, both idempotent via the
// Idempotence-Key header. The base URL is configurable so tests can
// point it at a local server.
type PaymentGateway struct {
	shopID    string
	secretKey string
	returnURL string
	baseURL   string
	client    *http.Client
}

func NewPaymentGateway() *PaymentGateway {
	baseURL := os.Getenv("PAYMENT_API_URL")
	if baseURL == "" {
		baseURL = "https://api.yookassa.ru/v3"
	}
	returnURL := os.Getenv("PAYMENT_RETURN_URL")
	if returnURL == "" {
		returnURL = "https://example.com"
	}
	return &PaymentGateway{
		shopID:    os.Getenv("PAYMENT_SHOP_ID"),
		secretKey: os.Getenv("PAYMENT_SECRET_KEY"),
		returnURL: returnURL,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewPaymentGatewayWithBase is used by tests to target a local server.
func NewPaymentGatewayWithBase(baseURL, shopID, secretKey, returnURL string) *PaymentGateway {
	return &PaymentGateway{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PaymentGateway) post(path, idempotenceKey string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.shopID, g.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", idempotenceKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[PAYMENT] Gateway call %s failed: %s", path, resp.Status)
		return fmt.Errorf("%w: %s", ErrGateway, resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CreatePayment requests a redirect-checkout payment intent for the
// prepaid amount and returns the gateway payment id and checkout URL.
func (g *PaymentGateway) CreatePayment(bookingID uuid.UUID, amount float64, description string) (paymentID, confirmationURL string, err error) {
	idempotenceKey := fmt.Sprintf("booking-%s-%d", bookingID, time.Now().UnixMilli())

	body := map[string]interface{}{
		"amount": map[string]string{
			"value":    fmt.Sprintf("%.2f", amount),
			"currency": "RUB",
		},
		"capture": true,
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": g.returnURL,
		},
		"description": description,
		"metadata": map[string]string{
			"booking_id": bookingID.String(),
		},
	}

	var result struct {
		ID           string `json:"id"`
		Confirmation struct {
			ConfirmationURL string `json:"confirmation_url"`
		} `json:"confirmation"`
	}
	if err := g.post("/payments", idempotenceKey, body, &result); err != nil {
		return "", "", err
	}
	if result.ID == "" || result.Confirmation.ConfirmationURL == "" {
		return "", "", fmt.Errorf("%w: incomplete payment response", ErrGateway)
	}

	log.Printf("[PAYMENT] Payment %s created for booking %s", result.ID, bookingID)
	return result.ID, result.Confirmation.ConfirmationURL, nil
}

// CreateRefund refunds a captured payment.
func (g *PaymentGateway) CreateRefund(paymentID string, amount float64) error {
	idempotenceKey := fmt.Sprintf("refund-%s-%d", paymentID, time.Now().UnixMilli())

	body := map[string]interface{}{
		"payment_id": paymentID,
		"amount": map[string]string{
			"value":    fmt.Sprintf("%.2f", amount),
			"currency": "RUB",
		},
	}

	if err := g.post("/refunds", idempotenceKey, body, nil); err != nil {
		return err
	}
	log.Printf("[PAYMENT] Refund created for payment %s", paymentID)
	return nil
}
