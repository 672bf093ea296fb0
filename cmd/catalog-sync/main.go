package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-storefront/internal/catalogsync"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// only the cache side of the loader is used here
	catalogs := &storefront.Loader{Cache: &redisx.CatalogCache{Redis: rdb, TTL: cfg.CatalogTTL}}

	svc := &catalogsync.Service{
		Catalogs:    catalogs,
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-catalog-sync",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SyncGroup, events.TopicCatalogUpdated, cfg.SyncWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("catalog-sync consumer started: group=%s topic=%s workers=%d",
			cfg.SyncGroup, events.TopicCatalogUpdated, cfg.SyncWorkers)
		if err := cons.Start(ctx, svc.HandleCatalogUpdated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done
}
