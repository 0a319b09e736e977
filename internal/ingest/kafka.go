package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/signaldesk/signaldesk/internal/signal"
)

// envelope is the wire format for signals published to the intake
// topic. Category is optional; missing categories are classified from
// the text.
type envelope struct {
	Source     string  `json:"source"`
	Topic      string  `json:"topic"`
	Summary    string  `json:"summary"`
	URL        string  `json:"url,omitempty"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence"`
}

// messageReader is the subset of kafka.Reader the intake uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaIntake consumes signal envelopes from a Kafka topic.
type KafkaIntake struct {
	reader  messageReader
	signals chan signal.Signal
	log     *slog.Logger
}

// NewKafkaIntake creates an intake on a consumer-group reader.
func NewKafkaIntake(brokers, topic, consumerGroup string) *KafkaIntake {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newKafkaIntake(reader)
}

func newKafkaIntake(reader messageReader) *KafkaIntake {
	return &KafkaIntake{
		reader:  reader,
		signals: make(chan signal.Signal, 100),
		log:     slog.Default().With("component", "kafka-intake"),
	}
}

// Start consumes the topic until the context is cancelled. Malformed
// envelopes are logged and dropped, never fatal.
func (k *KafkaIntake) Start(ctx context.Context) {
	go func() {
		defer close(k.signals)
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				k.log.Warn("Kafka read error", "error", err)
				continue
			}
			sig, err := DecodeEnvelope(msg.Value)
			if err != nil {
				k.log.Warn("Dropping malformed signal envelope", "error", err, "offset", msg.Offset)
				continue
			}
			select {
			case k.signals <- sig:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Signals returns the channel of decoded signals.
func (k *KafkaIntake) Signals() <-chan signal.Signal { return k.signals }

// Close stops the underlying reader.
func (k *KafkaIntake) Close() error { return k.reader.Close() }

// DecodeEnvelope parses a signal envelope. Topic and summary are
// required; an absent category is classified from the text.
func DecodeEnvelope(data []byte) (signal.Signal, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return signal.Signal{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Topic == "" || env.Summary == "" {
		return signal.Signal{}, fmt.Errorf("envelope missing topic or summary")
	}
	if env.Source == "" {
		env.Source = "kafka"
	}
	category := signal.Category(env.Category)
	if category == "" {
		category = signal.Classify(env.Topic, env.Summary)
	}
	sig := signal.New(env.Source, env.Topic, env.Summary, category, env.Confidence)
	sig.URL = env.URL
	return sig, nil
}
