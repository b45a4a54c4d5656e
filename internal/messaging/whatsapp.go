package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrDeliveryFailed is returned when the messaging API rejects a send or
// cannot be reached. Callers treat it as best-effort and must not let it
// undo committed writes.
var ErrDeliveryFailed = errors.New("message delivery failed")

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, number, text string) error
}

// WhatsAppClient sends messages through the store's WhatsApp gateway:
// a POST with an apikey header and a { number, text } JSON body, where any
// 2xx status counts as delivered.
type WhatsAppClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewWhatsAppClient creates a WhatsAppClient for the given endpoint.
func NewWhatsAppClient(endpoint, apiKey string) *WhatsAppClient {
	return &WhatsAppClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Send delivers text to number. The number is normalized before sending.
func (c *WhatsAppClient) Send(ctx context.Context, number, text string) error {
	body, err := json.Marshal(sendRequest{
		Number: NormalizeNumber(number),
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}

// NormalizeNumber strips formatting from a phone number and prefixes the
// Brazilian country code when it is missing, e.g. "(11) 91234-5678"
// becomes "5511912345678".
func NormalizeNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if n == "" {
		return n
	}
	if !strings.HasPrefix(n, "55") {
		n = "55" + n
	}
	return n
}

// NoOpSender discards messages (for tests or when messaging is disabled).
type NoOpSender struct{}

// Send does nothing
func (NoOpSender) Send(ctx context.Context, number, text string) error { return nil }
