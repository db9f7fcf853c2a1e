package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/kafka"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
)

// WhatsAppSender pushes reservation notifications through the WhatsApp
// gateway. Sends are best-effort: the caller logs failures and moves on.
type WhatsAppSender struct {
	baseURL string
	token   string
	client  *http.Client
	log     logger.Logger
}

func NewWhatsAppSender(baseURL, token string, log logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

type outboundMessage struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

func (s *WhatsAppSender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Phone == "" {
		return nil
	}

	msg := outboundMessage{
		Phone: event.Phone,
		Text:  messageText(event),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	s.log.Info("whatsapp notification sent", "code", event.Code, "type", event.Type)
	return nil
}

func messageText(event kafka.ReservationEvent) string {
	english := event.Language == "en"
	switch event.Type {
	case "reservation_created":
		if english {
			return fmt.Sprintf("Hi %s! Your OPA2 transfer reservation %s was received. Total: $%s MXN.", event.Name, event.Code, event.Total)
		}
		return fmt.Sprintf("¡Hola %s! Recibimos tu reserva de traslado OPA2 %s. Total: $%s MXN.", event.Name, event.Code, event.Total)
	case "payment_confirmed":
		if english {
			return fmt.Sprintf("Payment confirmed for reservation %s. See you soon!", event.Code)
		}
		return fmt.Sprintf("Pago confirmado para la reserva %s. ¡Nos vemos pronto!", event.Code)
	default:
		if english {
			return fmt.Sprintf("Your reservation %s is now: %s.", event.Code, event.Status)
		}
		return fmt.Sprintf("Tu reserva %s ahora está: %s.", event.Code, event.Status)
	}
}
