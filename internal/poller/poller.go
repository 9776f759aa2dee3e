// Package poller consumes payment confirmations from the backend and
// clears the matching session's cart, so a cart empties even when the
// browser never comes back from the payment page.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/Mauthecat/tienda-sub000/internal/cache"
	"github.com/Mauthecat/tienda-sub000/internal/repository"
)

type Poller struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	reader *kafka.Reader
}

func NewPoller(repo repository.CartRepository, cache cache.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-confirmed",
		GroupID:  "storefront",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo: repo, cache: cache, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading message: %v \n", err)
			}
			continue
		}

		p.handleMessage(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing reader: %v \n", err)
	}
}

// handleMessage clears the cart named by a confirmation payload. Malformed
// payloads are logged and dropped; the topic is backend-owned.
func (p *Poller) handleMessage(ctx context.Context, value []byte) {
	var payload struct {
		SessionID string `json:"session_id"`
		OrderCode string `json:"order_code"`
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		log.Printf("error parsing message: %v \n", err)
		return
	}
	if payload.SessionID == "" {
		log.Println("missing session_id in payment confirmation")
		return
	}

	if err := p.repo.DeleteCart(ctx, payload.SessionID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("failed to delete cart: %v \n", err)
		return
	}

	if err := p.cache.Delete(ctx, payload.SessionID); err != nil {
		log.Printf("failed to delete cache: %v \n", err)
	}

	log.Printf("cart cleared for confirmed order %s", payload.OrderCode)
}
