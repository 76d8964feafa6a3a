// Package kafka forwards audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
)

// producer is the subset of *kgo.Client the sink needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// DeliveryTimeout bounds how long one record may wait for acknowledgement,
// retries included.
const DeliveryTimeout = 10 * time.Second

// Sink publishes audit events as JSON records keyed by entity.
type Sink struct {
	client  producer
	topic   string
	timeout time.Duration
}

// NewSink connects to brokers. The client is lazy: brokers are dialled on
// the first produce.
func NewSink(brokers []string, topic string, opts ...kgo.Opt) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(DeliveryTimeout),
	}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: new client: %w", err)
	}
	return &Sink{client: client, topic: topic, timeout: DeliveryTimeout}, nil
}

// Write implements audit.Sink. It blocks until the broker acknowledges or
// the delivery timeout passes, whichever is first.
func (s *Sink) Write(ctx context.Context, e audit.Event) error {
	rec, err := record(s.topic, e)
	if err != nil {
		return err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", e.Action, err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}

func record(topic string, e audit.Event) (*kgo.Record, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("kafka: encode event: %w", err)
	}
	key := e.EntityType
	if e.EntityID != "" {
		key += ":" + e.EntityID
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
		},
	}, nil
}
