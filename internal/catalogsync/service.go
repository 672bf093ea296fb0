package catalogsync

import (
	"context"
	"fmt"
	"log"

	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Invalidator interface {
	Invalidate(ctx context.Context, subdomain string) error
}

// Service drops cached catalogs when the data service announces a change.
type Service struct {
	Catalogs    Invalidator
	Redis       *redis.Client
	ServiceName string
}

// HandleCatalogUpdated is installed as the consumer handler.
func (s *Service) HandleCatalogUpdated(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != events.EventCatalogUpdated {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.CatalogUpdatedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Subdomain == "" {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		// reprocessing is harmless, carry on
		log.Printf("dedup check %s: %v", env.EventID, err)
	}
	if seen {
		return nil
	}

	if err := s.Catalogs.Invalidate(ctx, p.Subdomain); err != nil {
		return fmt.Errorf("invalidate %s: %w", p.Subdomain, err)
	}
	// mark only after the work succeeded so a failed event is retried
	if _, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		log.Printf("dedup mark %s: %v", env.EventID, err)
	}
	log.Printf("catalog invalidated subdomain=%s event=%s", p.Subdomain, env.EventID)
	return nil
}
