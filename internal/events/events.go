package events

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/google/uuid"
)

const (
	EventCheckoutRequested = "CheckoutRequested"
	EventCatalogUpdated    = "CatalogUpdated"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // cart id or subdomain
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload with a fresh event id and the current time.
func NewEnvelope(eventType, producer, traceID, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

type CheckoutRequestedPayload struct {
	CartID    string      `json:"cart_id"`
	Subdomain string      `json:"subdomain"`
	Items     []cart.Line `json:"items"`
	Totals    cart.Totals `json:"totals"`
}

type CatalogUpdatedPayload struct {
	Subdomain string `json:"subdomain"`
}
