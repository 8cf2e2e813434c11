package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/trends"
)

var _ trends.Publisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// InsightsEvent is the message value written for every finished analysis.
type InsightsEvent struct {
	Query      string            `json:"query"`
	Insights   []insight.Insight `json:"insights"`
	ProducedAt time.Time         `json:"produced_at"`
}

// Publisher writes insight lists to a Kafka topic keyed by query.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is empty")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w), nil
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, now: time.Now}
}

func (p *Publisher) PublishInsights(ctx context.Context, query string, insights []insight.Insight) error {
	value, err := json.Marshal(InsightsEvent{
		Query:      query,
		Insights:   insights,
		ProducedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal insights event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(query),
		Value: value,
		Time:  p.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish insights event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
