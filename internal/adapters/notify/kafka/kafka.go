// Package kafka publica recordatorios en un topic para que otro servicio
// (mensajería, CRM) los entregue.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pet-vaccination-tracker/internal/domain/reminders"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	Channel      = "kafka"
	DefaultTopic = "vaccination-reminders"
)

var (
	ErrNotConfigured = errors.New("kafka notifier not configured")
	ErrProduce       = errors.New("kafka produce failed")
)

// producer es el subconjunto de *kgo.Client que usamos.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Notifier struct {
	p     producer
	topic string
}

// New conecta a los brokers. El cliente es lazy: no falla si el broker
// todavía no está arriba, el error aparece en Send.
func New(brokers []string, topic string) (*Notifier, error) {
	seeds := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			seeds = append(seeds, b)
		}
	}
	if len(seeds) == 0 {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return newWithProducer(cl, topic), nil
}

func newWithProducer(p producer, topic string) *Notifier {
	return &Notifier{p: p, topic: topic}
}

var _ reminders.Notifier = (*Notifier)(nil)

// Send produce un record por recordatorio, keyed por vaccination id para que
// los reintentos caigan en la misma partición.
func (n *Notifier) Send(ctx context.Context, r reminders.Reminder) error {
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reminder: %w", err)
	}

	rec := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(r.VaccinationID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte("vaccination.reminder")},
			{Key: "pet_id", Value: []byte(r.PetID)},
		},
	}
	if err := n.p.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("%w: %v", ErrProduce, err)
	}
	return nil
}

func (n *Notifier) Close() {
	n.p.Close()
}
