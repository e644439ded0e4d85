package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Producer publishes executed trades to a Kafka topic so downstream
// consumers (analytics, notifications) see the trade feed without
// touching the matching path.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a trade feed producer. Messages for the same
// symbol land on the same partition so per-pair ordering survives.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// PublishTrade sends one trade keyed by symbol
func (p *Producer) PublishTrade(ctx context.Context, trade *types.Trade) error {
	value, err := json.Marshal(trade)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(trade.Symbol),
		Value: value,
		Time:  trade.Timestamp,
	})
}

// Close flushes pending messages and releases the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
