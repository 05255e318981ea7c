package events

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module provides a *KafkaPublisher, nil when KAFKA_BROKERS is unset.
var Module = fx.Provide(newPublisher)

func newPublisher(lc fx.Lifecycle, cfg config.Config) *KafkaPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}
	p := NewKafkaPublisher(NewWriter(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic), cfg.Shop.Currency)
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrdersTopic).Msg("order events enabled")
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return p.Close() },
	})
	return p
}
