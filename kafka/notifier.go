// Package kafka publishes run events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/commission"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// EventRunCompleted is the type of the event sent after each run.
const EventRunCompleted = "run.completed"

// RunCompleted is the event sent after each run.
type RunCompleted struct {
	Type       string          `json:"type"`
	RunID      string          `json:"run_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Reconciled int             `json:"reconciled"`
	Duplicates int             `json:"duplicates"`
	Failed     int             `json:"failed"`
	Ignored    int             `json:"ignored"`
	Applied    int             `json:"applied"`
	Skipped    int             `json:"skipped"`
	SkippedBy  map[string]int  `json:"skipped_by,omitempty"`
	Changed    []string        `json:"changed"`
	Cases      int             `json:"cases"`
	Completed  int             `json:"completed"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	ViewPath   string          `json:"view_path,omitempty"`
}

// NewRunCompleted returns the event of run s that produced view v.
func NewRunCompleted(s *commission.Summary, v *commission.View) RunCompleted {
	e := RunCompleted{
		Type:       EventRunCompleted,
		RunID:      s.ID,
		OccurredAt: s.Started,
		Reconciled: s.Reconciled(),
		Duplicates: s.Duplicates(),
		Failed:     s.Failed(),
		Ignored:    s.Ignored(),
		Applied:    s.Result.Applied,
		Skipped:    s.Result.Skipped,
		Changed:    s.Result.Changed.Sorted(),
		Cases:      v.Cases,
		Completed:  v.Completed,
		Total:      v.Total.Decimal(),
		Currency:   v.Total.Currency(),
		ViewPath:   s.ViewPath,
	}
	for reason, n := range s.Result.SkippedBy {
		if e.SkippedBy == nil {
			e.SkippedBy = make(map[string]int)
		}
		e.SkippedBy[string(reason)] = n
	}
	return e
}

// messageWriter is the part of *kafka.Writer used by the Notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier sends a RunCompleted event for every run.
type Notifier struct {
	writer messageWriter
	topic  string
}

// NewNotifier returns a Notifier writing to topic on brokers.
func NewNotifier(brokers []string, topic string) *Notifier {
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		topic: topic,
	}
}

// Notify sends the event of run s. The run id is the message key.
func (n *Notifier) Notify(ctx context.Context, s *commission.Summary, v *commission.View) error {
	data, err := json.Marshal(NewRunCompleted(s, v))
	if err != nil {
		return err
	}
	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventRunCompleted)},
		},
	})
	if err != nil {
		return &commission.TransportError{Target: fmt.Sprintf("kafka topic %q", n.topic), Err: err}
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *Notifier) Close() error { return n.writer.Close() }
