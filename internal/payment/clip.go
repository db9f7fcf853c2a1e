package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClipProvider talks to the Clip.mx hosted checkout API over plain HTTP.
type ClipProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClipProvider(baseURL, apiKey string) *ClipProvider {
	if baseURL == "" {
		baseURL = "https://api.payclip.com"
	}
	return &ClipProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *ClipProvider) Name() string { return "clip" }

type clipCheckoutRequest struct {
	Amount              float64           `json:"amount"`
	Currency            string            `json:"currency"`
	PurchaseDescription string            `json:"purchase_description"`
	RedirectionURL      clipRedirection   `json:"redirection_url"`
	Metadata            map[string]string `json:"metadata"`
}

type clipRedirection struct {
	Success string `json:"success"`
	Error   string `json:"error"`
	Default string `json:"default"`
}

func (p *ClipProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	payload := clipCheckoutRequest{
		Amount:              float64(req.Amount) / 100,
		Currency:            "MXN",
		PurchaseDescription: req.Description,
		RedirectionURL: clipRedirection{
			Success: req.SuccessURL,
			Error:   req.CancelURL,
			Default: req.CancelURL,
		},
		Metadata: map[string]string{"codigo": req.Code},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal clip checkout: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build clip request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("clip returned status %d: %v", resp.StatusCode, errBody)
	}

	var result struct {
		CheckoutID        string `json:"checkout_id"`
		PaymentRequestURL string `json:"payment_request_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode clip response: %w", err)
	}
	return &CheckoutSession{ID: result.CheckoutID, URL: result.PaymentRequestURL}, nil
}

// ParseWebhook handles the checkout event Clip posts on completion. Only a
// paid checkout carries the reservation code forward.
func (p *ClipProvider) ParseWebhook(body []byte) (string, bool, error) {
	var event struct {
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return "", false, fmt.Errorf("decode clip event: %w", err)
	}
	if event.Status != "CHECKOUT_COMPLETED" && event.Status != "PAID" {
		return "", false, nil
	}
	code := event.Metadata["codigo"]
	if code == "" {
		return "", false, fmt.Errorf("clip event has no codigo metadata")
	}
	return code, true, nil
}

var _ Provider = (*ClipProvider)(nil)
