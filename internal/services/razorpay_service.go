package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaymentGateway is the narrow interface the checkout pipeline talks to.
// Amounts are in minor units (paise for INR).
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*PaymentIntent, error)
	// VerifyPaymentSignature checks the HMAC-SHA256 signature Razorpay sends
	// after a successful payment, computed over "intentID|paymentID".
	VerifyPaymentSignature(intentID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the HMAC-SHA256 of the raw webhook body.
	VerifyWebhookSignature(body []byte, signature string) bool
}

// PaymentIntent is the remote payment order created before the customer pays.
type PaymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayService struct {
	apiKey        string
	apiSecret     string
	webhookSecret string
	baseURL       string
	http          *http.Client
}

// NewRazorpayService creates a Razorpay-backed payment gateway client.
func NewRazorpayService(apiKey, apiSecret, webhookSecret string) PaymentGateway {
	return &razorpayService{
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		webhookSecret: webhookSecret,
		baseURL:       "https://api.razorpay.com/v1",
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

func (s *razorpayService) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*PaymentIntent, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", amountMinor)
	}

	body, err := s.makeRequest(ctx, http.MethodPost, "/orders", &createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("gateway returned no order id")
	}
	return &intent, nil
}

func (s *razorpayService) VerifyPaymentSignature(intentID, paymentID, signature string) bool {
	return verifyHMAC([]byte(intentID+"|"+paymentID), signature, s.apiSecret)
}

func (s *razorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, s.webhookSecret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *razorpayService) makeRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
